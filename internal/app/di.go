// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/bymjmazzei/par-noir/internal/config"
	"github.com/bymjmazzei/par-noir/internal/database"
	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/http"
	identityHTTP "github.com/bymjmazzei/par-noir/internal/identity/http"
	identityService "github.com/bymjmazzei/par-noir/internal/identity/service"
	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
	"github.com/bymjmazzei/par-noir/internal/metrics"
	registryUseCase "github.com/bymjmazzei/par-noir/internal/registry/usecase"
	"github.com/bymjmazzei/par-noir/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	reporter        apperrors.Reporter

	// Lifetime of background helpers such as the auth limiter cleanup.
	ctx    context.Context
	cancel context.CancelFunc

	// Managers
	txManager database.TxManager

	// Registry
	kvRepository    registryUseCase.KVRepository
	registryUseCase registryUseCase.RegistryUseCase

	// Identity engine
	keyDeriver       identityService.KeyDeriver
	keyPairGenerator identityUseCase.KeyPairGenerator
	recoveryKeys     identityUseCase.RecoveryKeyGenerator
	tokenService     identityUseCase.TokenService
	keeperService    identityService.KeeperService
	identityUseCase  identityUseCase.IdentityUseCase

	// Wallet
	identityStore *store.Store
	walletUseCase identityUseCase.WalletUseCase

	// Servers
	identityHandler *identityHTTP.IdentityHandler
	httpServer      *http.Server
	metricsServer   *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                   sync.Mutex
	loggerInit           sync.Once
	dbInit               sync.Once
	metricsProviderInit  sync.Once
	businessMetricsInit  sync.Once
	reporterInit         sync.Once
	txManagerInit        sync.Once
	kvRepositoryInit     sync.Once
	registryUseCaseInit  sync.Once
	keyDeriverInit       sync.Once
	keyPairGeneratorInit sync.Once
	recoveryKeysInit     sync.Once
	tokenServiceInit     sync.Once
	keeperServiceInit    sync.Once
	identityUseCaseInit  sync.Once
	identityStoreInit    sync.Once
	walletUseCaseInit    sync.Once
	identityHandlerInit  sync.Once
	httpServerInit       sync.Once
	metricsServerInit    sync.Once
	initErrors           map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger(os.Stdout)
	})
	return c.logger
}

// Reporter returns the sink for errors handled locally instead of returned.
func (c *Container) Reporter() apperrors.Reporter {
	c.reporterInit.Do(func() {
		c.reporter = apperrors.NewSlogReporter(c.Logger())
	})
	return c.reporter
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	return lazy(c, &c.dbInit, "db", &c.db, c.initDB)
}

// TxManager returns the transaction manager. Non-database registry backends
// get a manager that runs the function directly.
func (c *Container) TxManager() (database.TxManager, error) {
	return lazy(c, &c.txManagerInit, "txManager", &c.txManager, c.initTxManager)
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return lazy(c, &c.metricsProviderInit, "metricsProvider", &c.metricsProvider, c.initMetricsProvider)
}

// BusinessMetrics returns the business metrics recorder. A no-op recorder is
// returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return lazy(c, &c.businessMetricsInit, "businessMetrics", &c.businessMetrics, c.initBusinessMetrics)
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.identityStore != nil {
		c.identityStore.Close()
	}

	if closer, ok := c.kvRepository.(io.Closer); ok && closer != nil {
		if err := closer.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("registry backend close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(shutdownErrors...))
	}

	return nil
}

// lazy runs init once and caches its result or error under key.
func lazy[T any](c *Container, once *sync.Once, key string, dst *T, init func() (T, error)) (T, error) {
	once.Do(func() {
		v, err := init()
		if err != nil {
			c.mu.Lock()
			c.initErrors[key] = err
			c.mu.Unlock()
			return
		}
		*dst = v
	})

	c.mu.Lock()
	storedErr, exists := c.initErrors[key]
	c.mu.Unlock()
	if exists {
		var zero T
		return zero, storedErr
	}
	return *dst, nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger(w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(c.ctx, database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager uses real transactions only for the database registry backend.
func (c *Container) initTxManager() (database.TxManager, error) {
	if c.config.RegistryBackend != config.RegistryBackendDatabase {
		return database.NewNoopTxManager(), nil
	}
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}
