package store

import (
	"context"
	"errors"

	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	"github.com/kwararru/shell/internal/infrastructure/resilience"
	"github.com/kwararru/shell/internal/shared/types"
	"go.uber.org/zap"
)

// Guarded wraps a Store with a circuit breaker and call metrics. While the
// breaker is open every call fails fast with ErrUnavailable.
type Guarded struct {
	inner   Store
	breaker *resilience.Breaker
	metrics *monitoring.Metrics
}

// NewGuarded wraps inner. settings.IsFailure defaults to ignoring
// ErrNotFound so lookups of missing records never trip the breaker.
func NewGuarded(inner Store, settings resilience.Settings, metrics *monitoring.Metrics, log *logging.Logger) *Guarded {
	if settings.IsFailure == nil {
		settings.IsFailure = func(err error) bool {
			return err != nil && !errors.Is(err, ErrNotFound)
		}
	}
	if settings.OnStateChange == nil {
		log := logging.OrNop(log).Named("store")
		settings.OnStateChange = func(name string, from, to resilience.State) {
			log.Warn("store breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		}
	}

	return &Guarded{
		inner:   inner,
		breaker: resilience.New("store", settings),
		metrics: metrics,
	}
}

// State exposes the breaker state for health reporting
func (g *Guarded) State() resilience.State {
	return g.breaker.State()
}

func guard[T any](ctx context.Context, g *Guarded, op string, fn func(context.Context) (T, error)) (T, error) {
	timer := monitoring.NewTimer(g.metrics, op)
	v, err := resilience.Call(ctx, g.breaker, fn)
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		err = unavailable(op, err)
	}
	timer.Stop(err)
	return v, err
}

func guardErr(ctx context.Context, g *Guarded, op string, fn func(context.Context) error) error {
	_, err := guard(ctx, g, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (g *Guarded) AddSession(ctx context.Context, s types.StudySession) (string, error) {
	return guard(ctx, g, "add_session", func(ctx context.Context) (string, error) {
		return g.inner.AddSession(ctx, s)
	})
}

func (g *Guarded) ListSessions(ctx context.Context, limit int) ([]types.StudySession, error) {
	return guard(ctx, g, "list_sessions", func(ctx context.Context) ([]types.StudySession, error) {
		return g.inner.ListSessions(ctx, limit)
	})
}

func (g *Guarded) SessionsBySubject(ctx context.Context, subject string) ([]types.StudySession, error) {
	return guard(ctx, g, "sessions_by_subject", func(ctx context.Context) ([]types.StudySession, error) {
		return g.inner.SessionsBySubject(ctx, subject)
	})
}

func (g *Guarded) AddQuizResult(ctx context.Context, r types.QuizResult) (string, error) {
	return guard(ctx, g, "add_quiz_result", func(ctx context.Context) (string, error) {
		return g.inner.AddQuizResult(ctx, r)
	})
}

func (g *Guarded) ListQuizResults(ctx context.Context, limit int) ([]types.QuizResult, error) {
	return guard(ctx, g, "list_quiz_results", func(ctx context.Context) ([]types.QuizResult, error) {
		return g.inner.ListQuizResults(ctx, limit)
	})
}

func (g *Guarded) QuizResultsBySubject(ctx context.Context, subject string) ([]types.QuizResult, error) {
	return guard(ctx, g, "quiz_results_by_subject", func(ctx context.Context) ([]types.QuizResult, error) {
		return g.inner.QuizResultsBySubject(ctx, subject)
	})
}

func (g *Guarded) AddDeck(ctx context.Context, d types.Deck) (string, error) {
	return guard(ctx, g, "add_deck", func(ctx context.Context) (string, error) {
		return g.inner.AddDeck(ctx, d)
	})
}

func (g *Guarded) ListDecks(ctx context.Context) ([]types.Deck, error) {
	return guard(ctx, g, "list_decks", g.inner.ListDecks)
}

func (g *Guarded) GetDeck(ctx context.Context, deckID string) (types.Deck, error) {
	return guard(ctx, g, "get_deck", func(ctx context.Context) (types.Deck, error) {
		return g.inner.GetDeck(ctx, deckID)
	})
}

func (g *Guarded) UpdateDeck(ctx context.Context, d types.Deck) error {
	return guardErr(ctx, g, "update_deck", func(ctx context.Context) error {
		return g.inner.UpdateDeck(ctx, d)
	})
}

func (g *Guarded) DeleteDeck(ctx context.Context, deckID string) error {
	return guardErr(ctx, g, "delete_deck", func(ctx context.Context) error {
		return g.inner.DeleteDeck(ctx, deckID)
	})
}

func (g *Guarded) Close() error {
	return g.inner.Close()
}
