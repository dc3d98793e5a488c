package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.RecordDispatch("matched")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.IntentsDispatched.WithLabelValues("matched")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.IntentsDispatched.WithLabelValues("matched")))
}

func TestSnapshotCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordDispatch("explicit")
	m.RecordDispatch("unresolved")
	m.RecordRating("good")
	m.RecordHTTPRequest("GET", "/apps", "200", 0)
	m.RecordHTTPRequest("POST", "/intents", "404", 0)

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.IntentsResolved)
	assert.Equal(t, int64(1), snap.IntentsUnresolved)
	assert.Equal(t, int64(1), snap.CardsRated)
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
}

func TestTimerRecordsStatus(t *testing.T) {
	m := NewMetrics()

	NewTimer(m, "update_deck").Stop(nil)
	NewTimer(m, "update_deck").Stop(errors.New("locked"))
	NewTimer(nil, "update_deck").Stop(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreCalls.WithLabelValues("update_deck", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreCalls.WithLabelValues("update_deck", "error")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/apps/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/apps/quiz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/apps/:id", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shell_http_requests_total")
}
