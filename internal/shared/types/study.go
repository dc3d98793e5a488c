package types

import "time"

// Flashcard is a card carrying its spaced-repetition state
type Flashcard struct {
	Front       string    `json:"front"`
	Back        string    `json:"back"`
	Interval    int       `json:"interval"` // days
	Repetitions int       `json:"repetitions"`
	EaseFactor  float64   `json:"ease_factor"`
	DueDate     time.Time `json:"due_date"`
}

// SameCard reports whether two cards are the same card within a deck
func (c Flashcard) SameCard(other Flashcard) bool {
	return c.Front == other.Front && c.Back == other.Back
}

// Deck is an ordered set of flashcards on one subject
type Deck struct {
	ID             string      `json:"id,omitempty"`
	Name           string      `json:"name"`
	Subject        string      `json:"subject"`
	Cards          []Flashcard `json:"cards"`
	CreatedAt      time.Time   `json:"created_at"`
	LastReviewedAt *time.Time  `json:"last_reviewed_at,omitempty"`
}

// Clone returns a deep copy of the deck
func (d Deck) Clone() Deck {
	out := d
	out.Cards = make([]Flashcard, len(d.Cards))
	copy(out.Cards, d.Cards)
	if d.LastReviewedAt != nil {
		t := *d.LastReviewedAt
		out.LastReviewedAt = &t
	}
	return out
}

// StudySession is an append-only record of a completed review pass
type StudySession struct {
	ID        string    `json:"id,omitempty"`
	Subject   string    `json:"subject"`
	Duration  int       `json:"duration"` // minutes
	Timestamp time.Time `json:"timestamp"`
}

// QuizResult is an append-only record of a completed quiz
type QuizResult struct {
	ID             string    `json:"id,omitempty"`
	Subject        string    `json:"subject"`
	Score          int       `json:"score"` // 0-100
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Rating is a reviewer's answer bucket, mapped to an SRS quality
type Rating string

const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// Quality returns the SRS quality for the rating
func (r Rating) Quality() (int, bool) {
	switch r {
	case RatingAgain:
		return 0, true
	case RatingHard:
		return 2, true
	case RatingGood:
		return 4, true
	case RatingEasy:
		return 5, true
	}
	return 0, false
}
