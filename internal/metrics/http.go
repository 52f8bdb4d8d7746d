package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpMetrics struct {
	requests   metric.Int64Counter
	duration   metric.Float64Histogram
	rejections metric.Int64Counter
}

// HTTPMetricsMiddleware returns a Gin middleware that records request counts
// and durations labelled with method, route and status code. Responses that
// turn a caller away at the authentication boundary (401 and 429) are also
// counted per route in <namespace>_http_auth_rejections_total.
//
// If an instrument cannot be created the middleware records nothing.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	m, err := newHTTPMetrics(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return m.handle
}

func newHTTPMetrics(meter metric.Meter, namespace string) (*httpMetrics, error) {
	requests, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter(
		fmt.Sprintf("%s_http_auth_rejections_total", namespace),
		metric.WithDescription("Requests rejected with 401 or 429"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{requests: requests, duration: duration, rejections: rejections}, nil
}

func (m *httpMetrics) handle(c *gin.Context) {
	start := time.Now()

	c.Next()

	ctx := c.Request.Context()
	route := routeLabel(c.FullPath())
	status := c.Writer.Status()

	attrs := metric.WithAttributes(
		attribute.String("method", c.Request.Method),
		attribute.String("route", route),
		attribute.String("status_code", strconv.Itoa(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if reason := rejectionReason(status); reason != "" {
		m.rejections.Add(ctx, 1, metric.WithAttributes(
			attribute.String("route", route),
			attribute.String("reason", reason),
		))
	}
}

// routeLabel keeps label cardinality bounded: public keys in the path are
// reported by their route pattern, unmatched paths as "unknown".
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

func rejectionReason(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "authentication_failed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return ""
	}
}
