package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Catalog   CatalogConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StoreConfig holds durable store configuration.
type StoreConfig struct {
	Driver          string        `envconfig:"STORE_DRIVER" default:"sqlite"`
	Path            string        `envconfig:"STORE_PATH" default:"/tmp/kwararru/study.db"`
	BreakerFailures uint32        `envconfig:"STORE_BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"STORE_BREAKER_TIMEOUT" default:"30s"`
}

// CatalogConfig holds manifest catalog configuration.
type CatalogConfig struct {
	Dir      string `envconfig:"CATALOG_DIR" default:""`
	Builtins bool   `envconfig:"CATALOG_BUILTINS" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds cross-origin settings for the browser shell.
type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported store driver: %q", c.Store.Driver)
	}
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required for the sqlite driver")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Store: StoreConfig{
			Driver:          "sqlite",
			Path:            "/tmp/kwararru/study.db",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Catalog: CatalogConfig{
			Builtins: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
	}
}
