package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kwararru/shell/internal/infrastructure/config"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	"github.com/kwararru/shell/internal/infrastructure/resilience"
	"github.com/kwararru/shell/internal/shared/id"
	"github.com/kwararru/shell/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func implementations(t *testing.T) map[string]Store {
	t.Helper()

	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"memory":  NewMemory(),
		"sqlite":  db,
		"guarded": NewGuarded(NewMemory(), resilience.Settings{}, nil, nil),
	}
}

func TestSessions(t *testing.T) {
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i, subject := range []string{"math", "bio", "math"} {
				sid, err := s.AddSession(ctx, types.StudySession{
					Subject:   subject,
					Duration:  10 * (i + 1),
					Timestamp: base.Add(time.Duration(i) * time.Hour),
				})
				require.NoError(t, err)
				assert.True(t, id.IsValid(sid))
			}

			all, err := s.ListSessions(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, 30, all[0].Duration)
			assert.True(t, all[0].Timestamp.Equal(base.Add(2*time.Hour)))

			limited, err := s.ListSessions(ctx, 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			math, err := s.SessionsBySubject(ctx, "math")
			require.NoError(t, err)
			require.Len(t, math, 2)
			assert.Equal(t, 30, math[0].Duration)
			assert.Equal(t, 10, math[1].Duration)
		})
	}
}

func TestQuizResults(t *testing.T) {
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.AddQuizResult(ctx, types.QuizResult{Subject: "chem", Score: 55, TotalQuestions: 20, CorrectAnswers: 11, CompletedAt: base})
			require.NoError(t, err)
			_, err = s.AddQuizResult(ctx, types.QuizResult{Subject: "art", Score: 90, TotalQuestions: 10, CorrectAnswers: 9, CompletedAt: base.Add(time.Minute)})
			require.NoError(t, err)

			all, err := s.ListQuizResults(ctx, 10)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "art", all[0].Subject)
			assert.Equal(t, 9, all[0].CorrectAnswers)

			chem, err := s.QuizResultsBySubject(ctx, "chem")
			require.NoError(t, err)
			require.Len(t, chem, 1)
			assert.Equal(t, 55, chem[0].Score)
		})
	}
}

func TestDecks(t *testing.T) {
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			deck := types.Deck{
				Name:      "Organelles",
				Subject:   "bio",
				CreatedAt: base,
				Cards: []types.Flashcard{
					{Front: "Powerhouse", Back: "Mitochondria", EaseFactor: 2.5, DueDate: base},
				},
			}

			deckID, err := s.AddDeck(ctx, deck)
			require.NoError(t, err)
			assert.Empty(t, deck.ID)

			got, err := s.GetDeck(ctx, deckID)
			require.NoError(t, err)
			assert.Equal(t, "Organelles", got.Name)
			require.Len(t, got.Cards, 1)
			assert.Equal(t, "Mitochondria", got.Cards[0].Back)
			assert.True(t, got.Cards[0].DueDate.Equal(base))
			assert.Nil(t, got.LastReviewedAt)

			reviewed := base.Add(time.Hour)
			got.LastReviewedAt = &reviewed
			got.Cards[0].Repetitions = 1
			got.Cards = append(got.Cards, types.Flashcard{Front: "Ribosome", Back: "Protein synthesis", EaseFactor: 2.5})
			require.NoError(t, s.UpdateDeck(ctx, got))

			again, err := s.GetDeck(ctx, deckID)
			require.NoError(t, err)
			require.Len(t, again.Cards, 2)
			assert.Equal(t, 1, again.Cards[0].Repetitions)
			require.NotNil(t, again.LastReviewedAt)
			assert.True(t, again.LastReviewedAt.Equal(reviewed))

			decks, err := s.ListDecks(ctx)
			require.NoError(t, err)
			assert.Len(t, decks, 1)

			require.NoError(t, s.DeleteDeck(ctx, deckID))
			require.NoError(t, s.DeleteDeck(ctx, deckID))

			_, err = s.GetDeck(ctx, deckID)
			assert.ErrorIs(t, err, ErrNotFound)

			err = s.UpdateDeck(ctx, got)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "study.db")
	ctx := context.Background()

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = db.AddSession(ctx, types.StudySession{Subject: "math", Duration: 5, Timestamp: base})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	sessions, err := db.ListSessions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestMemoryFailOn(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	deckID, err := m.AddDeck(ctx, types.Deck{Name: "d"})
	require.NoError(t, err)

	m.FailOn("update_deck", errors.New("disk full"))
	err = m.UpdateDeck(ctx, types.Deck{ID: deckID})
	assert.ErrorIs(t, err, ErrUnavailable)

	m.FailOn("update_deck", nil)
	assert.NoError(t, m.UpdateDeck(ctx, types.Deck{ID: deckID}))

	require.NoError(t, m.Close())
	_, err = m.ListDecks(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGuardedTripsBreaker(t *testing.T) {
	inner := NewMemory()
	metrics := monitoring.NewMetrics()
	g := NewGuarded(inner, resilience.Settings{
		Timeout:     time.Hour,
		ReadyToTrip: resilience.ConsecutiveFailures(2),
	}, metrics, nil)
	ctx := context.Background()

	inner.FailOn("list_sessions", errors.New("locked"))
	_, err := g.ListSessions(ctx, 0)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = g.ListSessions(ctx, 0)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, resilience.StateOpen, g.State())

	// Open breaker fails fast even for healthy operations
	inner.FailOn("list_sessions", nil)
	_, err = g.ListDecks(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.StoreCalls.WithLabelValues("list_sessions", "error")))
}

func TestGuardedIgnoresNotFound(t *testing.T) {
	g := NewGuarded(NewMemory(), resilience.Settings{ReadyToTrip: resilience.ConsecutiveFailures(1)}, nil, nil)

	_, err := g.GetDeck(context.Background(), "deck_missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, resilience.StateClosed, g.State())
}

func TestOpen(t *testing.T) {
	g, err := Open(config.StoreConfig{Driver: "memory"}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, g.Close())

	g, err = Open(config.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "s.db")}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, g.Close())

	_, err = Open(config.StoreConfig{Driver: "postgres"}, nil, nil)
	assert.Error(t, err)
}
