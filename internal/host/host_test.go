package host

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHost(t *testing.T, opts Options) *Host {
	t.Helper()
	h, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestNavigateLaunchesWithPendingIntent(t *testing.T) {
	h := newHost(t, Options{})

	res := h.Navigate(types.Intent{Action: types.ActionCreate, Type: "journal/entry", Data: "today"})
	require.True(t, res.Resolved)
	assert.Equal(t, "voice-journal", res.AppID)
	assert.False(t, res.Delivered)

	id, ok := h.Lifecycle.ActiveAppID()
	require.True(t, ok)
	assert.Equal(t, "voice-journal", id)

	// The app mounts after the intent arrived and picks it up
	props, release, err := h.Mount("voice-journal", func(types.Intent) {})
	require.NoError(t, err)
	defer release()

	require.NotNil(t, props.InitialIntent)
	assert.Equal(t, "today", props.InitialIntent.Data)
	assert.True(t, props.IsActive())

	// Consumed on mount
	again, err := h.Props("voice-journal")
	require.NoError(t, err)
	assert.Nil(t, again.InitialIntent)
}

func TestLiveHandlerAndExplicitTarget(t *testing.T) {
	h := newHost(t, Options{})

	var got []types.Intent
	props, release, err := h.Mount("translator", func(in types.Intent) { got = append(got, in) })
	require.NoError(t, err)

	// An explicit target with a live handler beats the filters
	res := props.OnNavigate(types.Intent{Action: types.ActionView, Type: "text/plain", TargetApp: "translator"})
	assert.True(t, res.Explicit)
	assert.True(t, res.Delivered)
	require.Len(t, got, 1)

	release()
	res = h.Navigate(types.Intent{Action: types.ActionView, Type: "text/plain", TargetApp: "translator"})
	assert.Equal(t, "default", res.AppID)
	assert.False(t, res.Explicit)
}

func TestDeliveredIntentNotReplayedOnRemount(t *testing.T) {
	h := newHost(t, Options{})

	calls := 0
	_, release, err := h.Mount("translator", func(types.Intent) { calls++ })
	require.NoError(t, err)

	res := h.Navigate(types.Intent{Action: types.ActionTranslate, Type: "text/plain", Data: "hola"})
	require.True(t, res.Delivered)
	assert.Equal(t, 1, calls)

	_, pending := h.Lifecycle.PendingIntent("translator")
	assert.False(t, pending)

	// A reconnect must not see the intent a second time
	release()
	props, release, err := h.Mount("translator", func(types.Intent) { calls++ })
	require.NoError(t, err)
	defer release()
	assert.Nil(t, props.InitialIntent)
	assert.Equal(t, 1, calls)
}

func TestLaunchWithoutIntentDropsStalePending(t *testing.T) {
	h := newHost(t, Options{})

	res := h.Navigate(types.Intent{Action: types.ActionQuiz, Type: "test/math", Data: "old"})
	require.Equal(t, "quiz", res.AppID)
	require.False(t, res.Delivered)

	h.Lifecycle.Launch("quiz", nil)

	props, release, err := h.Mount("quiz", func(types.Intent) {})
	require.NoError(t, err)
	defer release()
	assert.Nil(t, props.InitialIntent)
}

func TestIsActiveFollowsFocus(t *testing.T) {
	h := newHost(t, Options{})

	quiz, err := h.Props("quiz")
	require.NoError(t, err)
	assert.False(t, quiz.IsActive())

	h.Lifecycle.Launch("quiz", nil)
	assert.True(t, quiz.IsActive())

	h.Lifecycle.Launch("news", nil)
	assert.False(t, quiz.IsActive())
}

func TestMountUnknownApp(t *testing.T) {
	h := newHost(t, Options{})

	_, _, err := h.Mount("chess", func(types.Intent) {})
	assert.True(t, hosterr.Is(err, hosterr.ErrUnknownApp))

	_, err = h.Props("chess")
	assert.True(t, hosterr.Is(err, hosterr.ErrUnknownApp))
}

func TestEntryPointBuiltOnFirstLaunch(t *testing.T) {
	var builds atomic.Int32
	h := newHost(t, Options{Views: map[string]types.EntryPoint{
		"quiz": func() (types.AppView, error) {
			builds.Add(1)
			return "quiz view", nil
		},
	}})

	assert.Zero(t, builds.Load())

	h.Lifecycle.Launch("quiz", nil)
	h.Lifecycle.Launch("quiz", nil)
	h.Navigate(types.Intent{Action: types.ActionQuiz, Type: "test/math"})

	assert.Equal(t, int32(1), builds.Load())

	entry, ok := h.Catalog.Entry("quiz")
	require.True(t, ok)
	view, err := entry.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "quiz view", view)
}

func TestManifestDirAppendsAfterBuiltins(t *testing.T) {
	dir := t.TempDir()
	manifest := "id: journal-pro\nname: Journal Pro\nmode: journal\nintent_filters:\n  - action: CREATE\n    data_type: journal/*\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "journal.yaml"), []byte(manifest), 0o644))

	h := newHost(t, Options{ManifestDir: dir})

	assert.Equal(t, 10, h.Catalog.Len())
	// First match keeps the builtin that registered earlier
	id, ok := h.Dispatcher.Resolve(types.Intent{Action: types.ActionCreate, Type: "journal/entry"})
	require.True(t, ok)
	assert.Equal(t, "voice-journal", id)
}

func TestServicesAndMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics()
	h := newHost(t, Options{Metrics: metrics})
	ctx := context.Background()

	assert.Equal(t, 9.0, testutil.ToFloat64(metrics.CatalogManifests))

	props, release, err := h.Mount("study", func(types.Intent) {})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LiveHandlers))

	ok, err := props.Services.Permissions.Request(ctx, types.PermissionFileAccess)
	require.NoError(t, err)
	assert.True(t, ok)

	// Study does not declare the microphone
	ok, err = props.Services.Permissions.Request(ctx, types.PermissionMicrophone)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = props.Services.Store.AddDeck(ctx, types.Deck{Name: "d", Subject: "s"})
	require.NoError(t, err)
	require.NoError(t, h.Ready(ctx))

	release()
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.LiveHandlers))
}
