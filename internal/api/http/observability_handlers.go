package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	hosterr "github.com/kwararru/shell/internal/shared/errors"
)

// MaxLogBatch bounds a single UI log upload
const MaxLogBatch = 500

// UILogEntry represents a log entry from a mounted app
type UILogEntry struct {
	AppID     string         `json:"app_id"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context"`
	Timestamp string         `json:"timestamp"`
}

// UILogStreamRequest represents a batch of logs from the shell frontend
type UILogStreamRequest struct {
	Entries []UILogEntry `json:"entries"`
}

// StreamLogs writes log entries reported by the shell frontend into the
// server log. Entries naming an app outside the catalog are skipped.
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req UILogStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, hosterr.NewInvalidRequest("invalid log request format"))
		return
	}
	if len(req.Entries) == 0 {
		h.fail(c, hosterr.NewInvalidRequest("no log entries provided"))
		return
	}
	if len(req.Entries) > MaxLogBatch {
		h.fail(c, hosterr.NewInvalidRequest("too many log entries"))
		return
	}

	processed := 0
	for _, entry := range req.Entries {
		if entry.AppID != "" && !h.host.Catalog.Has(entry.AppID) {
			continue
		}
		h.logUIEntry(entry)
		processed++
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"entries_received":  len(req.Entries),
		"entries_processed": processed,
		"timestamp":         h.now().Unix(),
	})
}

func (h *Handlers) logUIEntry(entry UILogEntry) {
	fields := make([]zap.Field, 0, len(entry.Context)+3)
	fields = append(fields,
		zap.String("source", "ui"),
		zap.String("app_id", entry.AppID),
		zap.String("ui_timestamp", entry.Timestamp),
	)

	for key, value := range entry.Context {
		switch v := value.(type) {
		case string:
			fields = append(fields, zap.String(key, v))
		case float64:
			fields = append(fields, zap.Float64(key, v))
		case bool:
			fields = append(fields, zap.Bool(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}

	log := h.log.Named("ui")
	switch entry.Level {
	case "error":
		log.Error(entry.Message, fields...)
	case "warn":
		log.Warn(entry.Message, fields...)
	case "debug", "verbose":
		log.Debug(entry.Message, fields...)
	default:
		log.Info(entry.Message, fields...)
	}
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	TotalRequests     int64   `json:"total_requests"`
	ErrorRate         float64 `json:"error_rate"`
	IntentsResolved   int64   `json:"intents_resolved"`
	IntentsUnresolved int64   `json:"intents_unresolved"`
	CardsRated        int64   `json:"cards_rated"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// MetricsSnapshot is the JSON view of the host's counters
type MetricsSnapshot struct {
	Timestamp     time.Time      `json:"timestamp"`
	Summary       MetricsSummary `json:"summary"`
	RunningApps   int            `json:"running_apps"`
	LiveHandlers  int            `json:"live_handlers"`
	OpenReviews   int            `json:"open_reviews"`
	StoreBreaker  string         `json:"store_breaker,omitempty"`
	CatalogModes  map[string]int `json:"catalog_modes"`
	CatalogLength int            `json:"catalog_manifests"`
}

// MetricsJSON returns the aggregated counters as JSON
func (h *Handlers) MetricsJSON(c *gin.Context) {
	snap := MetricsSnapshot{
		Timestamp:    h.now(),
		Summary:      h.summary(),
		RunningApps:  h.host.Lifecycle.Stats().RunningApps,
		LiveHandlers: h.host.Directory.Len(),
		OpenReviews:  h.host.Reviews.Len(),
	}
	stats := h.host.Catalog.Stats()
	snap.CatalogModes = stats.Modes
	snap.CatalogLength = stats.TotalManifests
	if state, ok := h.breakerState(); ok {
		snap.StoreBreaker = state.String()
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handlers) summary() MetricsSummary {
	out := MetricsSummary{UptimeSeconds: h.now().Sub(h.started).Seconds()}
	if h.metrics == nil {
		return out
	}

	s := h.metrics.Snapshot()
	out.TotalRequests = s.TotalRequests
	out.IntentsResolved = s.IntentsResolved
	out.IntentsUnresolved = s.IntentsUnresolved
	out.CardsRated = s.CardsRated
	if s.TotalRequests > 0 {
		out.ErrorRate = float64(s.TotalErrors) / float64(s.TotalRequests)
	}
	return out
}
