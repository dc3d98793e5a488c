package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"PORT", "HOST", "STORE_DRIVER", "STORE_PATH", "STORE_BREAKER_FAILURES",
	"STORE_BREAKER_TIMEOUT", "CATALOG_DIR", "CATALOG_BUILTINS", "LOG_LEVEL",
	"LOG_DEV", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_ENABLED",
	"CORS_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allVars {
		os.Unsetenv(key)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, uint32(5), cfg.Store.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.Store.BreakerTimeout)
	assert.True(t, cfg.Catalog.Builtins)
	assert.Empty(t, cfg.Catalog.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
}

func TestLoadMatchesDefaultWithoutEnv(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	clearEnv(t)
	envVars := map[string]string{
		"PORT":                   "9000",
		"HOST":                   "127.0.0.1",
		"STORE_DRIVER":           "memory",
		"STORE_BREAKER_FAILURES": "2",
		"STORE_BREAKER_TIMEOUT":  "5s",
		"CATALOG_DIR":            "/etc/kwararru/apps",
		"CATALOG_BUILTINS":       "false",
		"LOG_LEVEL":              "debug",
		"LOG_DEV":                "true",
		"RATE_LIMIT_RPS":         "500",
		"RATE_LIMIT_BURST":       "1000",
		"RATE_LIMIT_ENABLED":     "false",
	}
	for key, value := range envVars {
		require.NoError(t, os.Setenv(key, value))
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, uint32(2), cfg.Store.BreakerFailures)
	assert.Equal(t, 5*time.Second, cfg.Store.BreakerTimeout)
	assert.Equal(t, "/etc/kwararru/apps", cfg.Catalog.Dir)
	assert.False(t, cfg.Catalog.Builtins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestStoreDriverValidation(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		path    string
		wantErr bool
	}{
		{name: "sqlite with path", driver: "sqlite", path: "/tmp/x.db"},
		{name: "memory", driver: "memory"},
		{name: "unknown driver", driver: "postgres", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			require.NoError(t, os.Setenv("STORE_DRIVER", tt.driver))
			defer os.Unsetenv("STORE_DRIVER")
			if tt.path != "" {
				require.NoError(t, os.Setenv("STORE_PATH", tt.path))
				defer os.Unsetenv("STORE_PATH")
			}

			_, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, "sqlite", LoadOrDefault().Store.Driver)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoggingConfig(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		dev       string
		wantLevel string
		wantDev   bool
	}{
		{name: "default values", wantLevel: "info"},
		{name: "debug level", level: "debug", wantLevel: "debug"},
		{name: "development mode", dev: "true", wantLevel: "info", wantDev: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.level != "" {
				require.NoError(t, os.Setenv("LOG_LEVEL", tt.level))
				defer os.Unsetenv("LOG_LEVEL")
			}
			if tt.dev != "" {
				require.NoError(t, os.Setenv("LOG_DEV", tt.dev))
				defer os.Unsetenv("LOG_DEV")
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantLevel, cfg.Logging.Level)
			assert.Equal(t, tt.wantDev, cfg.Logging.Development)
		})
	}
}
