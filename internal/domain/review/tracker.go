package review

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kwararru/shell/internal/shared/types"
)

// Tracker keeps review sessions addressable by handle between requests
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]*tracked // Protected by mu
	store    Store
	opts     []Option
	now      func() time.Time
}

// CompletedGrace is how long a finished session stays readable after its
// last access
const CompletedGrace = 5 * time.Minute

type tracked struct {
	controller *Controller
	touched    time.Time
}

// NewTracker creates a tracker whose controllers persist through store
func NewTracker(store Store, opts ...Option) *Tracker {
	return &Tracker{
		sessions: make(map[string]*tracked),
		store:    store,
		opts:     opts,
		now:      time.Now,
	}
}

// Begin creates and starts a session over deck and returns its handle
func (t *Tracker) Begin(deck types.Deck) (string, *Controller, State, error) {
	c := NewController(deck, t.store, t.opts...)
	state, err := c.Start()
	if err != nil {
		return "", nil, state, err
	}

	handle := uuid.NewString()
	t.mu.Lock()
	t.sessions[handle] = &tracked{controller: c, touched: t.now()}
	t.mu.Unlock()
	return handle, c, state, nil
}

// Get returns the session behind handle
func (t *Tracker) Get(handle string) (*Controller, bool) {
	if _, err := uuid.Parse(handle); err != nil {
		return nil, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[handle]
	if !ok {
		return nil, false
	}
	s.touched = t.now()
	return s.controller, true
}

// End forgets a session. Abandoning a session needs nothing else.
func (t *Tracker) End(handle string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.sessions[handle]
	delete(t.sessions, handle)
	return ok
}

// Len returns the number of tracked sessions
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// Prune drops sessions untouched for longer than idle, and finished
// sessions untouched for longer than CompletedGrace. Controller states are
// read without holding the tracker lock.
func (t *Tracker) Prune(idle time.Duration) int {
	t.mu.RLock()
	snapshot := make(map[string]*tracked, len(t.sessions))
	for handle, s := range t.sessions {
		snapshot[handle] = s
	}
	t.mu.RUnlock()

	done := make(map[string]bool, len(snapshot))
	for handle, s := range snapshot {
		done[handle] = s.controller.State().Phase.Done()
	}

	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for handle, s := range t.sessions {
		if snapshot[handle] != s {
			continue
		}
		age := now.Sub(s.touched)
		if age > idle || (done[handle] && age > CompletedGrace) {
			delete(t.sessions, handle)
			removed++
		}
	}
	return removed
}
