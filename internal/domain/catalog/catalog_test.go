package catalog

import (
	"errors"
	"sync/atomic"
	"testing"

	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifest(id, mode string, filters ...types.IntentFilter) types.AppManifest {
	return types.AppManifest{ID: id, Name: id, Mode: mode, IntentFilters: filters}
}

func TestRegisterAndGet(t *testing.T) {
	c := New(nil)

	require.NoError(t, c.Register(manifest("quiz", "quiz", filter(types.ActionQuiz, "test/*"))))

	m, ok := c.Get("quiz")
	require.True(t, ok)
	assert.Equal(t, "quiz", m.Mode)
	assert.True(t, c.Has("quiz"))

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestRegisterOverwriteKeepsSlot(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Register(manifest("a", "first")))
	require.NoError(t, c.Register(manifest("b", "second")))
	require.NoError(t, c.Register(manifest("a", "replaced")))

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "replaced", list[0].Mode)
	assert.Equal(t, "b", list[1].ID)
}

func TestRegisterRejectsMalformed(t *testing.T) {
	tests := []struct {
		name     string
		manifest types.AppManifest
	}{
		{name: "empty id", manifest: manifest("", "x")},
		{name: "slash in id", manifest: manifest("a/b", "x")},
		{name: "unknown action", manifest: manifest("a", "x", filter("JUMP", "text/*"))},
		{
			name:     "unknown permission",
			manifest: types.AppManifest{ID: "a", Permissions: []types.Permission{"TELEPATHY"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil)
			err := c.Register(tt.manifest)
			require.Error(t, err)
			assert.True(t, hosterr.Is(err, hosterr.ErrMalformedManifest))
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestGetByModeFirstRegistered(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Register(manifest("one", "study")))
	require.NoError(t, c.Register(manifest("two", "study")))

	m, ok := c.GetByMode("study")
	require.True(t, ok)
	assert.Equal(t, "one", m.ID)

	_, ok = c.GetByMode("chess")
	assert.False(t, ok)
}

func TestGetReturnsCopy(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Register(manifest("a", "x", filter(types.ActionView, "text/*"))))

	m, _ := c.Get("a")
	m.IntentFilters[0].DataType = "code/*"

	again, _ := c.Get("a")
	assert.Equal(t, "text/*", again.IntentFilters[0].DataType)
}

func TestBuiltinsRegister(t *testing.T) {
	c := New(nil)
	for _, m := range Builtins() {
		require.NoError(t, c.Register(m))
	}

	assert.Equal(t, 9, c.Len())
	assert.Equal(t, "default", c.List()[0].ID)

	stats := c.Stats()
	assert.Equal(t, 9, stats.TotalManifests)
	assert.Equal(t, 1, stats.Modes["voiceJournal"])

	journal, ok := c.Get("voice-journal")
	require.True(t, ok)
	assert.True(t, journal.HasPermission(types.PermissionMicrophone))
}

func TestLazyEntryBuildsOnce(t *testing.T) {
	var calls atomic.Int32
	m := manifest("lazy", "lazy")
	m.EntryPoint = func() (types.AppView, error) {
		calls.Add(1)
		return "view", nil
	}

	c := New(nil)
	require.NoError(t, c.Register(m))

	entry, ok := c.Entry("lazy")
	require.True(t, ok)
	assert.False(t, entry.Built())
	assert.Equal(t, int32(0), calls.Load())

	for i := 0; i < 3; i++ {
		v, err := entry.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "view", v)
	}
	assert.True(t, entry.Built())
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazyEntryErrors(t *testing.T) {
	_, err := NewLazyEntry(nil).Resolve()
	assert.ErrorIs(t, err, ErrNoEntryPoint)

	boom := errors.New("boom")
	_, err = NewLazyEntry(func() (types.AppView, error) { return nil, boom }).Resolve()
	assert.ErrorIs(t, err, boom)
}
