// Package store persists decks, study sessions and quiz results.
//
// Every implementation satisfies Store. Lists of sessions and quiz results
// are most recent first; a limit <= 0 returns everything. Failures of the
// backing storage are reported wrapping ErrUnavailable so callers can tell
// them apart from a missing record (ErrNotFound).
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/kwararru/shell/internal/shared/types"
)

var (
	// ErrUnavailable wraps any failure of the backing storage
	ErrUnavailable = errors.New("store unavailable")
	// ErrNotFound is returned when a record id does not exist
	ErrNotFound = errors.New("record not found")
)

// Store is the durable store contract
type Store interface {
	AddSession(ctx context.Context, s types.StudySession) (string, error)
	ListSessions(ctx context.Context, limit int) ([]types.StudySession, error)
	SessionsBySubject(ctx context.Context, subject string) ([]types.StudySession, error)

	AddQuizResult(ctx context.Context, r types.QuizResult) (string, error)
	ListQuizResults(ctx context.Context, limit int) ([]types.QuizResult, error)
	QuizResultsBySubject(ctx context.Context, subject string) ([]types.QuizResult, error)

	AddDeck(ctx context.Context, d types.Deck) (string, error)
	ListDecks(ctx context.Context) ([]types.Deck, error)
	GetDeck(ctx context.Context, id string) (types.Deck, error)
	UpdateDeck(ctx context.Context, d types.Deck) error
	DeleteDeck(ctx context.Context, id string) error

	Close() error
}

var errClosed = errors.New("store closed")

func unavailable(op string, err error) error {
	return fmt.Errorf("store %s: %w: %w", op, ErrUnavailable, err)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
