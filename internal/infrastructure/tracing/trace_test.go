package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kwararru/shell/internal/infrastructure/logging"
)

func observed() (*logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logging.Logger{Logger: zap.New(core)}, logs
}

func TestStartSpanContinuesTrace(t *testing.T) {
	tracer := New("test", nil)
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.NotEmpty(t, root.TraceID)
	assert.Empty(t, root.ParentID)

	child, ctx := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(ctx))
}

func TestCloseDrainsSpans(t *testing.T) {
	log, logs := observed()
	tracer := New("test", log)

	ok, _ := tracer.StartSpan(context.Background(), "ok")
	ok.Finish()
	tracer.Submit(ok)

	failed, _ := tracer.StartSpan(context.Background(), "failed")
	failed.SetError(errors.New("boom"))
	failed.Finish()
	tracer.Submit(failed)

	tracer.Close()
	tracer.Close()

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "ok", entries[0].ContextMap()["operation"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)

	// Dropped after close
	tracer.Submit(ok)
	assert.Len(t, logs.All(), 2)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, logs := observed()
	tracer := New("test", log)

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/apps/:id", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/apps/quiz", nil)
	req.Header.Set(HeaderTraceID, "trace-from-shell")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, TraceID("trace-from-shell"), seen)
	assert.Equal(t, "trace-from-shell", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/apps/news", nil))
	assert.NotEqual(t, "trace-from-shell", w.Header().Get(HeaderTraceID))

	tracer.Close()
	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET /apps/:id", fields["operation"])
	assert.Equal(t, "204", fields["http.status"])
	assert.Equal(t, "quiz", fields["resource.id"])
}
