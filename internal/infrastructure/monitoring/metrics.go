package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Kernel metrics
	IntentsDispatched *prometheus.CounterVec
	AppsRunning       prometheus.Gauge
	AppLaunches       *prometheus.CounterVec
	CatalogManifests  prometheus.Gauge
	LiveHandlers      prometheus.Gauge

	// Study metrics
	ReviewsRated  *prometheus.CounterVec
	StudySessions prometheus.Counter

	// Store metrics
	StoreCalls    *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON health API
type Snapshot struct {
	TotalRequests     int64 `json:"total_requests"`
	TotalErrors       int64 `json:"total_errors"`
	IntentsResolved   int64 `json:"intents_resolved"`
	IntentsUnresolved int64 `json:"intents_unresolved"`
	CardsRated        int64 `json:"cards_rated"`
}

// NewMetrics creates a metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		IntentsDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_intents_dispatched_total",
				Help: "Intents dispatched, by resolution outcome",
			},
			[]string{"resolution"},
		),
		AppsRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_apps_running",
				Help: "Number of apps tracked by the lifecycle registry",
			},
		),
		AppLaunches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_app_launches_total",
				Help: "Total number of app launches",
			},
			[]string{"app_id"},
		),
		CatalogManifests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_catalog_manifests",
				Help: "Number of manifests in the catalog",
			},
		),
		LiveHandlers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_live_handlers",
				Help: "Number of apps with a registered live intent handler",
			},
		),

		ReviewsRated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_reviews_rated_total",
				Help: "Flashcard ratings applied, by rating",
			},
			[]string{"rating"},
		),
		StudySessions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "shell_study_sessions_total",
				Help: "Completed review sessions",
			},
		),

		StoreCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_store_calls_total",
				Help: "Durable store calls, by operation and status",
			},
			[]string{"op", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shell_store_duration_seconds",
				Help:    "Durable store call duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"op"},
		),

		WSConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shell_ws_connections",
				Help: "Number of mounted apps connected over WebSocket",
			},
		),
		WSMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shell_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	reg.MustRegister(
		m.RequestsTotal, m.RequestDuration,
		m.IntentsDispatched, m.AppsRunning, m.AppLaunches, m.CatalogManifests, m.LiveHandlers,
		m.ReviewsRated, m.StudySessions,
		m.StoreCalls, m.StoreDuration,
		m.WSConnections, m.WSMessages,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordDispatch records the outcome of an intent dispatch
func (m *Metrics) RecordDispatch(resolution string) {
	m.IntentsDispatched.WithLabelValues(resolution).Inc()

	m.mu.Lock()
	if resolution == "unresolved" {
		m.snapshot.IntentsUnresolved++
	} else {
		m.snapshot.IntentsResolved++
	}
	m.mu.Unlock()
}

// RecordLaunch records an app launch and the resulting running count
func (m *Metrics) RecordLaunch(appID string, running int) {
	m.AppLaunches.WithLabelValues(appID).Inc()
	m.AppsRunning.Set(float64(running))
}

// SetAppsRunning sets the number of running apps
func (m *Metrics) SetAppsRunning(count int) {
	m.AppsRunning.Set(float64(count))
}

// SetCatalogManifests sets the number of manifests in the catalog
func (m *Metrics) SetCatalogManifests(count int) {
	m.CatalogManifests.Set(float64(count))
}

// SetLiveHandlers sets the number of live intent handlers
func (m *Metrics) SetLiveHandlers(count int) {
	m.LiveHandlers.Set(float64(count))
}

// RecordRating records a flashcard rating
func (m *Metrics) RecordRating(rating string) {
	m.ReviewsRated.WithLabelValues(rating).Inc()

	m.mu.Lock()
	m.snapshot.CardsRated++
	m.mu.Unlock()
}

// IncStudySessions increments the completed sessions counter
func (m *Metrics) IncStudySessions() {
	m.StudySessions.Inc()
}

// RecordStoreCall records a durable store call
func (m *Metrics) RecordStoreCall(op, status string, duration time.Duration) {
	m.StoreCalls.WithLabelValues(op, status).Inc()
	m.StoreDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns a copy of the current counters
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
