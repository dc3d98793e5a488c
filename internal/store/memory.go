package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kwararru/shell/internal/shared/id"
	"github.com/kwararru/shell/internal/shared/types"
)

// Memory is an in-process Store. Calls can be made to fail with FailOn.
type Memory struct {
	mu       sync.RWMutex
	sessions []types.StudySession
	quizzes  []types.QuizResult
	decks    map[string]types.Deck
	order    []string
	faults   map[string]error
	closed   bool
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		decks:  make(map[string]types.Deck),
		faults: make(map[string]error),
	}
}

// FailOn makes every call of op (e.g. "update_deck") fail with err wrapped
// in ErrUnavailable. A nil err clears the fault.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, op)
		return
	}
	m.faults[op] = err
}

// check must be called with mu held
func (m *Memory) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.closed {
		return unavailable(op, errClosed)
	}
	if err, ok := m.faults[op]; ok {
		return unavailable(op, err)
	}
	return nil
}

func (m *Memory) AddSession(ctx context.Context, s types.StudySession) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "add_session"); err != nil {
		return "", err
	}

	s.ID = id.NewStudySessionID().String()
	m.sessions = append(m.sessions, s)
	return s.ID, nil
}

func (m *Memory) ListSessions(ctx context.Context, limit int) ([]types.StudySession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx, "list_sessions"); err != nil {
		return nil, err
	}
	return recentSessions(m.sessions, "", limit), nil
}

func (m *Memory) SessionsBySubject(ctx context.Context, subject string) ([]types.StudySession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx, "sessions_by_subject"); err != nil {
		return nil, err
	}
	return recentSessions(m.sessions, subject, 0), nil
}

func (m *Memory) AddQuizResult(ctx context.Context, r types.QuizResult) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "add_quiz_result"); err != nil {
		return "", err
	}

	r.ID = id.NewQuizResultID().String()
	m.quizzes = append(m.quizzes, r)
	return r.ID, nil
}

func (m *Memory) ListQuizResults(ctx context.Context, limit int) ([]types.QuizResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx, "list_quiz_results"); err != nil {
		return nil, err
	}
	return recentQuizzes(m.quizzes, "", limit), nil
}

func (m *Memory) QuizResultsBySubject(ctx context.Context, subject string) ([]types.QuizResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx, "quiz_results_by_subject"); err != nil {
		return nil, err
	}
	return recentQuizzes(m.quizzes, subject, 0), nil
}

func (m *Memory) AddDeck(ctx context.Context, d types.Deck) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "add_deck"); err != nil {
		return "", err
	}

	d = d.Clone()
	d.ID = id.NewDeckID().String()
	m.decks[d.ID] = d
	m.order = append(m.order, d.ID)
	return d.ID, nil
}

func (m *Memory) ListDecks(ctx context.Context) ([]types.Deck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx, "list_decks"); err != nil {
		return nil, err
	}

	out := make([]types.Deck, 0, len(m.order))
	for _, deckID := range m.order {
		out = append(out, m.decks[deckID].Clone())
	}
	return out, nil
}

func (m *Memory) GetDeck(ctx context.Context, deckID string) (types.Deck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx, "get_deck"); err != nil {
		return types.Deck{}, err
	}

	d, ok := m.decks[deckID]
	if !ok {
		return types.Deck{}, notFound("deck", deckID)
	}
	return d.Clone(), nil
}

func (m *Memory) UpdateDeck(ctx context.Context, d types.Deck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "update_deck"); err != nil {
		return err
	}

	if _, ok := m.decks[d.ID]; !ok {
		return notFound("deck", d.ID)
	}
	m.decks[d.ID] = d.Clone()
	return nil
}

func (m *Memory) DeleteDeck(ctx context.Context, deckID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx, "delete_deck"); err != nil {
		return err
	}

	if _, ok := m.decks[deckID]; !ok {
		return nil
	}
	delete(m.decks, deckID)
	for i, existing := range m.order {
		if existing == deckID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Ties on timestamp fall back to the id, which is time ordered
func recentSessions(all []types.StudySession, subject string, limit int) []types.StudySession {
	out := make([]types.StudySession, 0, len(all))
	for _, s := range all {
		if subject == "" || s.Subject == subject {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func recentQuizzes(all []types.QuizResult, subject string, limit int) []types.QuizResult {
	out := make([]types.QuizResult, 0, len(all))
	for _, r := range all {
		if subject == "" || r.Subject == subject {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].CompletedAt.After(out[j].CompletedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
