// Package srs schedules flashcard reviews with the SM-2 family of rules.
package srs

import (
	"math"
	"time"

	"github.com/kwararru/shell/internal/shared/types"
)

const (
	// MinEase is the floor of a card's ease factor
	MinEase = 1.3
	// DefaultEase is the ease factor of a new card
	DefaultEase = 2.5
	// PassQuality is the lowest quality counted as a successful recall
	PassQuality = 3
	// MaxQuality is a perfect recall
	MaxQuality = 5
)

// Scheduler computes review schedules relative to a clock
type Scheduler struct {
	Now func() time.Time
}

// New creates a scheduler on the wall clock
func New() *Scheduler {
	return &Scheduler{Now: time.Now}
}

func (s *Scheduler) now() time.Time {
	if s == nil || s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// NewCard returns an unseen card that is due immediately
func (s *Scheduler) NewCard(front, back string) types.Flashcard {
	return types.Flashcard{
		Front:      front,
		Back:       back,
		EaseFactor: DefaultEase,
		DueDate:    s.now(),
	}
}

// ComputeNextReview applies a recall quality (0..5) to card and returns
// the rescheduled card. Qualities outside 0..5 are clamped.
//
// A failed recall (quality < 3) restarts the card at a one day interval
// and leaves the ease factor alone. A successful recall steps the interval
// 1, 6, then interval*ease, and adjusts the ease factor, never below 1.3.
func (s *Scheduler) ComputeNextReview(card types.Flashcard, quality int) types.Flashcard {
	quality = ClampQuality(quality)

	if quality < PassQuality {
		card.Repetitions = 0
		card.Interval = 1
	} else {
		switch card.Repetitions {
		case 0:
			card.Interval = 1
		case 1:
			card.Interval = 6
		default:
			card.Interval = int(math.Round(float64(card.Interval) * card.EaseFactor))
		}
		card.Repetitions++
		card.EaseFactor = NextEase(card.EaseFactor, quality)
	}

	card.DueDate = s.now().AddDate(0, 0, card.Interval)
	return card
}

// NextEase returns the ease factor after a successful recall of quality q
func NextEase(ease float64, q int) float64 {
	miss := float64(MaxQuality - q)
	return math.Max(MinEase, ease+(0.1-miss*(0.08+miss*0.02)))
}

// ClampQuality limits q to 0..5
func ClampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// IsDue reports whether card is due at the scheduler's current time
func (s *Scheduler) IsDue(card types.Flashcard) bool {
	return !card.DueDate.After(s.now())
}

// DueCards returns the cards of deck that are due now, in deck order
func (s *Scheduler) DueCards(deck types.Deck) []types.Flashcard {
	now := s.now()
	due := make([]types.Flashcard, 0, len(deck.Cards))
	for _, card := range deck.Cards {
		if !card.DueDate.After(now) {
			due = append(due, card)
		}
	}
	return due
}

// NextDue returns the earliest due date in deck
func NextDue(deck types.Deck) (time.Time, bool) {
	var next time.Time
	for i, card := range deck.Cards {
		if i == 0 || card.DueDate.Before(next) {
			next = card.DueDate
		}
	}
	return next, len(deck.Cards) > 0
}
