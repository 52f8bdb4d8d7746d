package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/bymjmazzei/par-noir/internal/http"
	identityHTTP "github.com/bymjmazzei/par-noir/internal/identity/http"
)

// HTTPServer returns the HTTP server with its router fully set up.
func (c *Container) HTTPServer() (*http.Server, error) {
	return lazy(c, &c.httpServerInit, "httpServer", &c.httpServer, c.initHTTPServer)
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return lazy(c, &c.metricsServerInit, "metricsServer", &c.metricsServer, c.initMetricsServer)
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	handler, err := c.IdentityHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity handler for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	var authLimiter gin.HandlerFunc
	if c.config.RateLimitAuthEnabled {
		authLimiter = identityHTTP.AuthRateLimitMiddleware(
			c.ctx,
			c.config.RateLimitAuthRequestsPerSec,
			c.config.RateLimitAuthBurst,
			logger,
		)
	}

	gin.SetMode(c.config.GetGinMode())

	server := http.NewServer(c.config.ServerHost, c.config.ServerPort, logger, c.ReadinessChecks()...)
	server.SetupRouter(c.config, handler, authLimiter, provider, c.config.MetricsNamespace)
	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
