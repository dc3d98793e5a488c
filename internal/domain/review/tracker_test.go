package review

import (
	"context"
	"testing"
	"time"

	"github.com/kwararru/shell/internal/shared/types"
	"github.com/kwararru/shell/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerLifecycle(t *testing.T) {
	clk := &clock{now: start}
	tr := NewTracker(store.NewMemory(), WithClock(clk.Now))
	tr.now = clk.Now

	deck := types.Deck{Subject: "s", Cards: []types.Flashcard{{Front: "q", Back: "a", DueDate: start}}}
	handle, c, state, err := tr.Begin(deck)
	require.NoError(t, err)
	assert.Equal(t, PhaseShowingFront, state.Phase)

	got, ok := tr.Get(handle)
	require.True(t, ok)
	assert.Same(t, c, got)

	_, ok = tr.Get("not-a-uuid")
	assert.False(t, ok)

	assert.True(t, tr.End(handle))
	assert.False(t, tr.End(handle))
	assert.Zero(t, tr.Len())
}

func TestTrackerPrune(t *testing.T) {
	clk := &clock{now: start}
	tr := NewTracker(store.NewMemory(), WithClock(clk.Now))
	tr.now = clk.Now

	due := types.Deck{Cards: []types.Flashcard{{Front: "q", Back: "a", DueDate: start}}}
	empty := types.Deck{}

	idle, _, _, err := tr.Begin(due)
	require.NoError(t, err)
	_, _, _, err = tr.Begin(empty)
	require.NoError(t, err)

	clk.Advance(10 * time.Minute)
	fresh, _, _, err := tr.Begin(due)
	require.NoError(t, err)

	removed := tr.Prune(5 * time.Minute)
	assert.Equal(t, 2, removed)

	_, ok := tr.Get(idle)
	assert.False(t, ok)
	_, ok = tr.Get(fresh)
	assert.True(t, ok)
}

func TestTrackerKeepsCompletedSessionsReadable(t *testing.T) {
	clk := &clock{now: start}
	tr := NewTracker(store.NewMemory(), WithClock(clk.Now))
	tr.now = clk.Now

	deck := types.Deck{Subject: "s", Cards: []types.Flashcard{{Front: "q", Back: "a", DueDate: start}}}
	handle, c, _, err := tr.Begin(deck)
	require.NoError(t, err)

	_, err = c.Reveal()
	require.NoError(t, err)
	state, err := c.Rate(context.Background(), types.RatingGood)
	require.NoError(t, err)
	require.Equal(t, PhaseComplete, state.Phase)

	// Within the grace period the final state is still served
	clk.Advance(time.Minute)
	assert.Zero(t, tr.Prune(30*time.Minute))
	got, ok := tr.Get(handle)
	require.True(t, ok)
	session, ok := got.Session()
	require.True(t, ok)
	assert.NotEmpty(t, session.ID)

	clk.Advance(CompletedGrace + time.Second)
	assert.Equal(t, 1, tr.Prune(30*time.Minute))
	_, ok = tr.Get(handle)
	assert.False(t, ok)
}
