package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kwararru/shell/internal/domain/srs"
	"github.com/kwararru/shell/internal/host"
	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	"github.com/kwararru/shell/internal/infrastructure/resilience"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	host      *host.Host
	scheduler *srs.Scheduler
	metrics   *monitoring.Metrics
	log       *logging.Logger
	started   time.Time
	now       func() time.Time
}

// NewHandlers creates a new handler set over h
func NewHandlers(h *host.Host, metrics *monitoring.Metrics, log *logging.Logger) *Handlers {
	return &Handlers{
		host:      h,
		scheduler: srs.New(),
		metrics:   metrics,
		log:       logging.OrNop(log).Named("api"),
		started:   time.Now(),
		now:       time.Now,
	}
}

// WithClock overrides the clock used for timestamps and scheduling
func (h *Handlers) WithClock(now func() time.Time) *Handlers {
	h.now = now
	h.scheduler = &srs.Scheduler{Now: now}
	return h
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "kwararru shell",
		"version": Version,
	})
}

// Health reports kernel state and whether the store answers
func (h *Handlers) Health(c *gin.Context) {
	status := http.StatusOK
	storeStatus := gin.H{"ready": true}
	if err := h.host.Ready(c.Request.Context()); err != nil {
		status = http.StatusServiceUnavailable
		storeStatus = gin.H{"ready": false, "error": err.Error()}
	}
	if breaker, ok := h.breakerState(); ok {
		storeStatus["breaker"] = breaker.String()
	}

	health := "healthy"
	if status != http.StatusOK {
		health = "degraded"
	}
	c.JSON(status, gin.H{
		"status":        health,
		"lifecycle":     h.host.Lifecycle.Stats(),
		"catalog":       h.host.Catalog.Stats(),
		"live_handlers": h.host.Directory.Len(),
		"reviews":       h.host.Reviews.Len(),
		"store":         storeStatus,
	})
}

func (h *Handlers) breakerState() (resilience.State, bool) {
	guarded, ok := h.host.Store.(interface{ State() resilience.State })
	if !ok {
		return 0, false
	}
	return guarded.State(), true
}
