package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bymjmazzei/par-noir/internal/config"
	identityHTTP "github.com/bymjmazzei/par-noir/internal/identity/http"
	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
	"github.com/bymjmazzei/par-noir/internal/metrics"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okCheck(name string) ReadinessCheck {
	return ReadinessCheck{Name: name, Check: func(context.Context) error { return nil }}
}

func failingCheck(name string) ReadinessCheck {
	return ReadinessCheck{Name: name, Check: func(context.Context) error { return errors.New("unreachable") }}
}

// newTestServer builds a server whose router carries the full middleware chain
// and identity routes. The wallet is nil: tests only hit routes that do not
// reach it.
func newTestServer(t *testing.T, checks ...ReadinessCheck) *Server {
	t.Helper()

	server := NewServer("127.0.0.1", 0, discardLogger(), checks...)
	var wallet identityUseCase.WalletUseCase
	server.SetupRouter(
		&config.Config{},
		identityHTTP.NewIdentityHandler(wallet, discardLogger()),
		nil,
		nil,
		"parnoir",
	)
	return server
}

func TestHealthHandler(t *testing.T) {
	server := newTestServer(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name           string
		checks         []ReadinessCheck
		expectedCode   int
		expectedStatus string
		expected       map[string]any
	}{
		{
			name:           "no checks",
			expectedCode:   http.StatusOK,
			expectedStatus: "ready",
			expected:       map[string]any{},
		},
		{
			name:           "all checks pass",
			checks:         []ReadinessCheck{okCheck("registry"), okCheck("database")},
			expectedCode:   http.StatusOK,
			expectedStatus: "ready",
			expected:       map[string]any{"registry": "ok", "database": "ok"},
		},
		{
			name:           "one check fails",
			checks:         []ReadinessCheck{okCheck("registry"), failingCheck("database")},
			expectedCode:   http.StatusServiceUnavailable,
			expectedStatus: "not_ready",
			expected:       map[string]any{"registry": "ok", "database": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.checks...)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

			server.readinessHandler(c)

			assert.Equal(t, tt.expectedCode, w.Code)
			var response map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedStatus, response["status"])
			assert.Equal(t, tt.expected, response["components"])
		})
	}
}

func TestReadinessHandler_ChecksGetDeadline(t *testing.T) {
	var hasDeadline bool
	server := newTestServer(t, ReadinessCheck{Name: "registry", Check: func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
	server.readinessHandler(c)

	assert.True(t, hasDeadline)
}

func TestRouter(t *testing.T) {
	server := newTestServer(t, okCheck("registry"))

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ready", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("request id is a uuid", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		parsed, err := uuid.Parse(w.Header().Get("X-Request-Id"))
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("no metrics endpoint", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("identity validation runs before the wallet", func(t *testing.T) {
		w := httptest.NewRecorder()
		path := "/v1/identities/" + url.QueryEscape("a/b+c==") + "/authenticate"
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCustomLoggerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "test"}) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"test"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server := newTestServer(t)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Shutdown(shutdownCtx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("127.0.0.1", 0, discardLogger(), provider)
	require.NotNil(t, metricsServer)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestMetricsServer_HealthWithoutProvider(t *testing.T) {
	metricsServer := NewMetricsServer("127.0.0.1", 0, discardLogger(), nil)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
