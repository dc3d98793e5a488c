package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns the CORS settings the shell frontend needs.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Content-Length",
			"Accept",
			"Origin",
			"Cache-Control",
			"X-Requested-With",
		},
		MaxAge: 12 * time.Hour,
	}
}

// WithOrigins returns a copy of cfg restricted to origins. An empty list
// keeps the configured origins.
func (cfg CORSConfig) WithOrigins(origins []string) CORSConfig {
	if len(origins) == 0 {
		return cfg
	}
	cfg.AllowOrigins = append([]string(nil), origins...)
	return cfg
}

// CORS creates a CORS middleware with the provided configuration.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	allowAll := false
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			allowAll = true
		}
	}

	conf := cors.Config{
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		AllowCredentials: cfg.AllowCredentials && !allowAll,
		AllowWebSockets:  true,
		MaxAge:           cfg.MaxAge,
	}
	if allowAll {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = cfg.AllowOrigins
	}
	return cors.New(conf)
}
