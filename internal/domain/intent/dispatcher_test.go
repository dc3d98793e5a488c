package intent

import (
	"testing"

	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	"github.com/kwararru/shell/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type staticCatalog []types.AppManifest

func (c staticCatalog) List() []types.AppManifest { return c }

type launch struct {
	appID  string
	intent *types.Intent
}

type recordingLauncher struct {
	launches []launch
}

func (l *recordingLauncher) Launch(appID string, in *types.Intent) bool {
	l.launches = append(l.launches, launch{appID: appID, intent: in})
	return true
}

func testCatalog() staticCatalog {
	return staticCatalog{
		{ID: "default", IntentFilters: []types.IntentFilter{
			{Action: types.ActionView, DataType: "text/*"},
			{Action: types.ActionShare, DataType: "*/*"},
		}},
		{ID: "ai-writer", IntentFilters: []types.IntentFilter{{Action: types.ActionCreate, DataType: "text/*"}}},
		{ID: "code-helper", IntentFilters: []types.IntentFilter{{Action: types.ActionCreate, DataType: "code/*"}}},
		{ID: "voice-journal", IntentFilters: []types.IntentFilter{{Action: types.ActionCreate, DataType: "journal/*"}}},
	}
}

func newTestDispatcher() (*Dispatcher, *Directory, *recordingLauncher) {
	dir := NewDirectory()
	launcher := &recordingLauncher{}
	return NewDispatcher(testCatalog(), dir, launcher, nil), dir, launcher
}

func TestResolveByFilter(t *testing.T) {
	d, _, _ := newTestDispatcher()

	id, ok := d.Resolve(types.Intent{Action: types.ActionCreate, Type: "journal/entry"})
	require.True(t, ok)
	assert.Equal(t, "voice-journal", id)

	id, ok = d.Resolve(types.Intent{Action: types.ActionShare, Type: "image/png"})
	require.True(t, ok)
	assert.Equal(t, "default", id)
}

func TestResolveExplicitTargetNeedsLiveHandler(t *testing.T) {
	d, dir, _ := newTestDispatcher()
	in := types.Intent{Action: types.ActionCreate, Type: "code/go", TargetApp: "ai-writer"}

	// Without a live handler the target is ignored
	id, ok := d.Resolve(in)
	require.True(t, ok)
	assert.Equal(t, "code-helper", id)

	_, err := dir.Register("ai-writer", func(types.Intent) {})
	require.NoError(t, err)

	id, ok = d.Resolve(in)
	require.True(t, ok)
	assert.Equal(t, "ai-writer", id)

	// Explicit targeting bypasses filters entirely
	id, ok = d.Resolve(types.Intent{Action: types.ActionCall, TargetApp: "ai-writer"})
	require.True(t, ok)
	assert.Equal(t, "ai-writer", id)
}

func TestDispatchDeliversAndLaunches(t *testing.T) {
	d, dir, launcher := newTestDispatcher()

	var received []types.Intent
	_, err := dir.Register("voice-journal", func(in types.Intent) { received = append(received, in) })
	require.NoError(t, err)

	in := types.Intent{Action: types.ActionCreate, Type: "journal/entry", Data: "dear diary"}
	res := d.Dispatch(in)

	assert.Equal(t, Resolution{AppID: "voice-journal", Resolved: true, Delivered: true, Launched: true}, res)
	require.Len(t, received, 1)
	assert.Equal(t, "dear diary", received[0].Data)
	require.Len(t, launcher.launches, 1)
	assert.Equal(t, "voice-journal", launcher.launches[0].appID)
	assert.Equal(t, "journal/entry", launcher.launches[0].intent.Type)
}

func TestDispatchLaunchesWithoutHandler(t *testing.T) {
	d, _, launcher := newTestDispatcher()

	res := d.Dispatch(types.Intent{Action: types.ActionCreate, Type: "text/plain"})

	assert.True(t, res.Resolved)
	assert.False(t, res.Delivered)
	assert.Equal(t, "ai-writer", res.AppID)
	require.Len(t, launcher.launches, 1)
	require.NotNil(t, launcher.launches[0].intent)
}

func TestDispatchUnresolvedIsNoop(t *testing.T) {
	d, _, launcher := newTestDispatcher()
	metrics := monitoring.NewMetrics()
	d.WithMetrics(metrics)

	res := d.Dispatch(types.Intent{Action: types.ActionQuiz, Type: "test/math"})

	assert.False(t, res.Resolved)
	assert.Equal(t, "unresolved", res.Outcome())
	assert.Empty(t, launcher.launches)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.IntentsDispatched.WithLabelValues("unresolved")))
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	d, dir, launcher := newTestDispatcher()
	_, err := dir.Register("default", func(types.Intent) { panic("render failed") })
	require.NoError(t, err)

	var res Resolution
	assert.NotPanics(t, func() {
		res = d.Dispatch(types.Intent{Action: types.ActionView, Type: "text/plain"})
	})
	assert.False(t, res.Delivered)
	assert.Len(t, launcher.launches, 1)
}

func TestRoutingMissLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDispatcher(testCatalog(), NewDirectory(), &recordingLauncher{}, &logging.Logger{Logger: zap.New(core)})

	d.Dispatch(types.Intent{Action: types.ActionCall, Type: "tel"})

	entries := logs.FilterMessage("unresolved intent").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "CALL", entries[0].ContextMap()["action"])
}
