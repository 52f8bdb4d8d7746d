package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, 5, cfg.DBMaxIdleConnections)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, RegistryBackendBlob, cfg.RegistryBackend)
				assert.Equal(t, "file:///tmp/par-noir?create_dir=true", cfg.RegistryBlobURL)
				assert.Equal(t, 3, cfg.RegistryMaxVersions)
				assert.Equal(t, 1_000_000, cfg.KDFIterations)
				assert.Equal(t, 2048, cfg.RSAKeyBits)
				assert.Equal(t, 5, cfg.RecoveryKeyCount)
				assert.Equal(t, time.Hour, cfg.SessionTokenTTL)
				assert.Empty(t, cfg.SessionSigningKey)
				assert.Equal(t, 5*time.Minute, cfg.StoreCacheTTL)
				assert.Equal(t, 1000, cfg.StoreCacheCapacity)
				assert.Equal(t, 100*time.Millisecond, cfg.StoreBatchInterval)
				assert.Equal(t, 50*time.Millisecond, cfg.StoreBatchDebounce)
				assert.True(t, cfg.RateLimitAuthEnabled)
				assert.Equal(t, 1.0, cfg.RateLimitAuthRequestsPerSec)
				assert.Equal(t, 5, cfg.RateLimitAuthBurst)
				assert.False(t, cfg.CORSEnabled)
				assert.True(t, cfg.MetricsEnabled)
				assert.Equal(t, "parnoir", cfg.MetricsNamespace)
				assert.Equal(t, 8081, cfg.MetricsPort)
				assert.Empty(t, cfg.ExportKeeperURL)
			},
		},
		{
			name: "load custom server configuration",
			envVars: map[string]string{
				"SERVER_HOST": "0.0.0.0",
				"SERVER_PORT": "9090",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"REGISTRY_BACKEND":        "database",
				"DB_DRIVER":               "mysql",
				"DB_CONNECTION_STRING":    "user:password@tcp(localhost:3306)/testdb",
				"DB_MAX_OPEN_CONNECTIONS": "50",
				"DB_MAX_IDLE_CONNECTIONS": "10",
				"DB_CONN_MAX_LIFETIME":    "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, RegistryBackendDatabase, cfg.RegistryBackend)
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, "user:password@tcp(localhost:3306)/testdb", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10, cfg.DBMaxIdleConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
			},
		},
		{
			name: "load custom vault configuration",
			envVars: map[string]string{
				"REGISTRY_BLOB_URL":         "mem://",
				"REGISTRY_MAX_VERSIONS":     "5",
				"KDF_ITERATIONS":            "2000000",
				"RECOVERY_KEY_COUNT":        "3",
				"SESSION_TOKEN_TTL_SECONDS": "60",
				"SESSION_SIGNING_KEY":       "c2VjcmV0",
				"EXPORT_KEEPER_URL":         "base64key://",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mem://", cfg.RegistryBlobURL)
				assert.Equal(t, 5, cfg.RegistryMaxVersions)
				assert.Equal(t, 2_000_000, cfg.KDFIterations)
				assert.Equal(t, 3, cfg.RecoveryKeyCount)
				assert.Equal(t, time.Minute, cfg.SessionTokenTTL)
				assert.Equal(t, "c2VjcmV0", cfg.SessionSigningKey)
				assert.Equal(t, "base64key://", cfg.ExportKeeperURL)
			},
		},
		{
			name: "load custom store configuration",
			envVars: map[string]string{
				"STORE_CACHE_TTL_SECONDS": "30",
				"STORE_CACHE_CAPACITY":    "10",
				"STORE_BATCH_INTERVAL_MS": "250",
				"STORE_BATCH_DEBOUNCE_MS": "20",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 30*time.Second, cfg.StoreCacheTTL)
				assert.Equal(t, 10, cfg.StoreCacheCapacity)
				assert.Equal(t, 250*time.Millisecond, cfg.StoreBatchInterval)
				assert.Equal(t, 20*time.Millisecond, cfg.StoreBatchDebounce)
			},
		},
		{
			name: "load custom rate limit configuration",
			envVars: map[string]string{
				"RATE_LIMIT_AUTH_ENABLED":          "false",
				"RATE_LIMIT_AUTH_REQUESTS_PER_SEC": "0.5",
				"RATE_LIMIT_AUTH_BURST":            "2",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.RateLimitAuthEnabled)
				assert.Equal(t, 0.5, cfg.RateLimitAuthRequestsPerSec)
				assert.Equal(t, 2, cfg.RateLimitAuthBurst)
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			cfg := Load()

			tt.validate(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RegistryBackend:     RegistryBackendBlob,
			RegistryBlobURL:     "mem://",
			RegistryMaxVersions: 3,
			SessionTokenTTL:     time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "memory backend", mutate: func(c *Config) { c.RegistryBackend = RegistryBackendMemory }},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.RegistryBackend = "redis" },
			wantErr: "invalid REGISTRY_BACKEND",
		},
		{
			name:    "zero versions",
			mutate:  func(c *Config) { c.RegistryMaxVersions = 0 },
			wantErr: "invalid REGISTRY_MAX_VERSIONS",
		},
		{
			name:    "blob backend without url",
			mutate:  func(c *Config) { c.RegistryBlobURL = "" },
			wantErr: "REGISTRY_BLOB_URL is required",
		},
		{
			name:    "session ttl other than one hour",
			mutate:  func(c *Config) { c.SessionTokenTTL = time.Minute },
			wantErr: "invalid SESSION_TOKEN_TTL_SECONDS 60: must be 3600",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_GetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		want     string
	}{
		{logLevel: "debug", want: "debug"},
		{logLevel: "info", want: "release"},
		{logLevel: "warn", want: "release"},
		{logLevel: "error", want: "release"},
		{logLevel: "", want: "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, cfg.GetGinMode())
		})
	}
}
