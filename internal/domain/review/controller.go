// Package review drives one pass over the due cards of a deck.
//
// Phases: not-started -> showing-front -> showing-back -> (rate) ->
// showing-front of the next card, or recording once the last card is rated,
// then complete. A deck with nothing due ends in nothing-due right away.
//
// The due set is fixed when the session starts. Every rating is written to
// the store before the controller moves on; if the write fails the
// controller stays on the same card, showing its back, and the rating can
// be retried.
package review

import (
	"context"
	"sync"
	"time"

	"github.com/kwararru/shell/internal/domain/srs"
	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
	"go.uber.org/zap"
)

// Phase is where a session stands
type Phase string

const (
	PhaseNotStarted   Phase = "not-started"
	PhaseShowingFront Phase = "showing-front"
	PhaseShowingBack  Phase = "showing-back"
	PhaseRecording    Phase = "recording"
	PhaseComplete     Phase = "complete"
	PhaseNothingDue   Phase = "nothing-due"
)

// Done reports whether the phase is terminal
func (p Phase) Done() bool {
	return p == PhaseComplete || p == PhaseNothingDue
}

// Store is the persistence a session needs
type Store interface {
	UpdateDeck(ctx context.Context, d types.Deck) error
	AddSession(ctx context.Context, s types.StudySession) (string, error)
}

// State is a snapshot of a session for callers
type State struct {
	Phase    Phase                `json:"phase"`
	DeckID   string               `json:"deck_id"`
	Index    int                  `json:"index"`
	Total    int                  `json:"total"`
	Reviewed int                  `json:"reviewed"`
	Front    string               `json:"front,omitempty"`
	Back     string               `json:"back,omitempty"`
	Session  *types.StudySession  `json:"session,omitempty"`
	Ratings  map[types.Rating]int `json:"ratings"`
}

// Controller runs a single review session. It is safe for concurrent use;
// calls are serialized.
type Controller struct {
	mu sync.Mutex

	store     Store
	scheduler *srs.Scheduler
	now       func() time.Time
	log       *logging.Logger
	metrics   *monitoring.Metrics

	deck      types.Deck
	due       []types.Flashcard
	index     int
	phase     Phase
	startedAt time.Time
	ratings   map[types.Rating]int
	session   *types.StudySession
}

// Option configures a Controller
type Option func(*Controller)

// WithClock sets the clock used for scheduling and session timing
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
		c.scheduler = &srs.Scheduler{Now: now}
	}
}

// WithLogger sets the logger
func WithLogger(log *logging.Logger) Option {
	return func(c *Controller) { c.log = logging.OrNop(log).Named("review") }
}

// WithMetrics records ratings and completed sessions
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(c *Controller) { c.metrics = metrics }
}

// NewController creates a session over deck. Nothing happens until Start.
func NewController(deck types.Deck, store Store, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		scheduler: srs.New(),
		now:       time.Now,
		log:       logging.NewNop(),
		deck:      deck.Clone(),
		phase:     PhaseNotStarted,
		ratings:   make(map[types.Rating]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start snapshots the due cards and shows the first one
func (c *Controller) Start() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseNotStarted {
		return c.state(), hosterr.NewInvalidState("review session already started")
	}

	c.startedAt = c.now()
	c.due = c.scheduler.DueCards(c.deck)
	if len(c.due) == 0 {
		c.phase = PhaseNothingDue
	} else {
		c.phase = PhaseShowingFront
	}

	c.log.Debug("review session started",
		zap.String("deck_id", c.deck.ID),
		zap.Int("due", len(c.due)))
	return c.state(), nil
}

// Reveal flips the current card to its back
func (c *Controller) Reveal() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseShowingFront {
		return c.state(), hosterr.NewInvalidState("no card front is showing")
	}
	c.phase = PhaseShowingBack
	return c.state(), nil
}

// Rate schedules the current card, persists the deck and advances. The
// in-memory deck only changes once the store accepted it.
func (c *Controller) Rate(ctx context.Context, rating types.Rating) (State, error) {
	quality, ok := rating.Quality()
	if !ok {
		return c.State(), hosterr.NewInvalidRequest("unknown rating: " + string(rating))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseShowingBack {
		return c.state(), hosterr.NewInvalidState("rate requires the card back to be showing")
	}

	current := c.due[c.index]
	updated := c.scheduler.ComputeNextReview(current, quality)

	next := c.deck.Clone()
	for i := range next.Cards {
		if next.Cards[i].SameCard(current) {
			next.Cards[i] = updated
		}
	}
	reviewedAt := c.now()
	next.LastReviewedAt = &reviewedAt

	if err := c.store.UpdateDeck(ctx, next); err != nil {
		c.log.Warn("failed to persist rating",
			zap.String("deck_id", c.deck.ID),
			zap.Int("index", c.index),
			zap.Error(err))
		return c.state(), hosterr.NewPersistenceFailure("update deck", err)
	}

	c.deck = next
	c.ratings[rating]++
	if c.metrics != nil {
		c.metrics.RecordRating(string(rating))
	}

	if c.index < len(c.due)-1 {
		c.index++
		c.phase = PhaseShowingFront
		return c.state(), nil
	}

	c.index = len(c.due)
	c.phase = PhaseRecording
	if err := c.record(ctx); err != nil {
		return c.state(), err
	}
	return c.state(), nil
}

// Finish retries appending the session record after a failed attempt
func (c *Controller) Finish(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRecording {
		return c.state(), hosterr.NewInvalidState("session is not waiting to be recorded")
	}
	if err := c.record(ctx); err != nil {
		return c.state(), err
	}
	return c.state(), nil
}

// record must be called with mu held
func (c *Controller) record(ctx context.Context) error {
	minutes := int(c.now().Sub(c.startedAt) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}

	session := types.StudySession{
		Subject:   c.deck.Subject,
		Duration:  minutes,
		Timestamp: c.now(),
	}
	sessionID, err := c.store.AddSession(ctx, session)
	if err != nil {
		c.log.Warn("failed to record study session",
			zap.String("deck_id", c.deck.ID),
			zap.Error(err))
		return hosterr.NewPersistenceFailure("add study session", err)
	}

	session.ID = sessionID
	c.session = &session
	c.phase = PhaseComplete

	c.log.Info("review session complete",
		zap.String("deck_id", c.deck.ID),
		zap.String("subject", session.Subject),
		zap.Int("cards", len(c.due)),
		zap.Int("minutes", minutes))
	if c.metrics != nil {
		c.metrics.IncStudySessions()
	}
	return nil
}

// State returns a snapshot of the session
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

// Current returns the card being reviewed
func (c *Controller) Current() (types.Flashcard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseShowingFront && c.phase != PhaseShowingBack {
		return types.Flashcard{}, false
	}
	return c.due[c.index], true
}

// Progress returns the 1-based position of the current card and the
// number of cards in the session
func (c *Controller) Progress() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos := c.index + 1
	if pos > len(c.due) {
		pos = len(c.due)
	}
	return pos, len(c.due)
}

// Deck returns the deck as last persisted by this session
func (c *Controller) Deck() types.Deck {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deck.Clone()
}

// Reviewed returns how many cards have been rated
func (c *Controller) Reviewed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reviewed()
}

// Session returns the appended study session once the pass is complete
func (c *Controller) Session() (types.StudySession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return types.StudySession{}, false
	}
	return *c.session, true
}

func (c *Controller) reviewed() int {
	n := 0
	for _, count := range c.ratings {
		n += count
	}
	return n
}

func (c *Controller) state() State {
	s := State{
		Phase:    c.phase,
		DeckID:   c.deck.ID,
		Index:    c.index,
		Total:    len(c.due),
		Reviewed: c.reviewed(),
		Ratings:  make(map[types.Rating]int, len(c.ratings)),
	}
	for r, n := range c.ratings {
		s.Ratings[r] = n
	}

	switch c.phase {
	case PhaseShowingFront:
		s.Front = c.due[c.index].Front
	case PhaseShowingBack:
		s.Front = c.due[c.index].Front
		s.Back = c.due[c.index].Back
	}

	if c.session != nil {
		session := *c.session
		s.Session = &session
	}
	return s
}
