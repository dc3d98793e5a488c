package srs

import (
	"testing"
	"time"

	"github.com/kwararru/shell/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func fixed(t time.Time) *Scheduler {
	return &Scheduler{Now: func() time.Time { return t }}
}

func TestNewCard(t *testing.T) {
	card := fixed(epoch).NewCard("Q", "A")

	assert.Equal(t, 0, card.Interval)
	assert.Equal(t, 0, card.Repetitions)
	assert.Equal(t, DefaultEase, card.EaseFactor)
	assert.Equal(t, epoch, card.DueDate)
}

func TestSuccessPath(t *testing.T) {
	s := fixed(epoch)
	card := s.NewCard("Q", "A")

	card = s.ComputeNextReview(card, 4)
	assert.Equal(t, 1, card.Interval)
	assert.Equal(t, 1, card.Repetitions)
	assert.Equal(t, epoch.AddDate(0, 0, 1), card.DueDate)

	card = s.ComputeNextReview(card, 4)
	assert.Equal(t, 6, card.Interval)
	assert.Equal(t, 2, card.Repetitions)

	ease := card.EaseFactor
	card = s.ComputeNextReview(card, 4)
	assert.Equal(t, int(6*ease+0.5), card.Interval)
	assert.Equal(t, 15, card.Interval)
	assert.Equal(t, 3, card.Repetitions)
	assert.Equal(t, epoch.AddDate(0, 0, 15), card.DueDate)
}

func TestEaseAdjustment(t *testing.T) {
	tests := []struct {
		quality int
		want    float64
	}{
		{quality: 5, want: 2.6},
		{quality: 4, want: 2.5},
		{quality: 3, want: 2.36},
	}

	for _, tt := range tests {
		got := NextEase(DefaultEase, tt.quality)
		assert.InDelta(t, tt.want, got, 1e-9, "quality %d", tt.quality)
	}
}

func TestFailureResets(t *testing.T) {
	s := fixed(epoch)
	card := types.Flashcard{Front: "Q", Back: "A", Interval: 40, Repetitions: 6, EaseFactor: 2.1}

	for q := 0; q < PassQuality; q++ {
		got := s.ComputeNextReview(card, q)
		assert.Equal(t, 0, got.Repetitions)
		assert.Equal(t, 1, got.Interval)
		assert.Equal(t, 2.1, got.EaseFactor)
		assert.Equal(t, epoch.AddDate(0, 0, 1), got.DueDate)
	}
}

func TestEaseFloor(t *testing.T) {
	s := fixed(epoch)
	card := s.NewCard("Q", "A")

	for i := 0; i < 50; i++ {
		card = s.ComputeNextReview(card, 3)
		require.GreaterOrEqual(t, card.EaseFactor, MinEase)
	}
	assert.Equal(t, MinEase, card.EaseFactor)
}

func TestQualityClamped(t *testing.T) {
	s := fixed(epoch)
	card := s.NewCard("Q", "A")

	assert.Equal(t, s.ComputeNextReview(card, 5), s.ComputeNextReview(card, 9))
	assert.Equal(t, s.ComputeNextReview(card, 0), s.ComputeNextReview(card, -3))
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	s := fixed(epoch)
	card := s.NewCard("Q", "A")

	_ = s.ComputeNextReview(card, 5)
	assert.Equal(t, 0, card.Repetitions)
}

func TestDueCards(t *testing.T) {
	deck := types.Deck{Cards: []types.Flashcard{
		{Front: "past", DueDate: epoch.Add(-time.Hour)},
		{Front: "future", DueDate: epoch.Add(time.Hour)},
		{Front: "now", DueDate: epoch},
	}}

	due := fixed(epoch).DueCards(deck)
	require.Len(t, due, 2)
	assert.Equal(t, "past", due[0].Front)
	assert.Equal(t, "now", due[1].Front)
	assert.Len(t, deck.Cards, 3)

	next, ok := NextDue(deck)
	require.True(t, ok)
	assert.Equal(t, epoch.Add(-time.Hour), next)

	_, ok = NextDue(types.Deck{})
	assert.False(t, ok)
}
