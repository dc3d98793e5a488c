package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/tracing"
)

// RequestLogger logs one line per request. Server errors log at warn.
func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	log = logging.OrNop(log).Named("http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if traceID := tracing.GetTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", string(traceID)))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if status >= 500 {
			log.Warn("request failed", fields...)
			return
		}
		log.Debug("request", fields...)
	}
}
