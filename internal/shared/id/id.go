// Package id generates identifiers for records in the durable store.
//
// Identifiers are prefixed ULIDs (deck_*, study_*, quiz_*). ULIDs sort by
// creation time, so "most recent first" listings can order by id alone.
// The generator uses monotonic entropy, which keeps ids issued within the
// same millisecond strictly increasing.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DeckID identifies a flashcard deck
type DeckID string

// StudySessionID identifies a study session record
type StudySessionID string

// QuizResultID identifies a quiz result record
type QuizResultID string

const (
	DeckPrefix         = "deck"
	StudySessionPrefix = "study"
	QuizResultPrefix   = "quiz"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(rand.Reader)
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     time.Now,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewDeckID generates a deck ID
func NewDeckID() DeckID {
	return DeckID(Default().GenerateWithPrefix(DeckPrefix))
}

// NewStudySessionID generates a study session ID
func NewStudySessionID() StudySessionID {
	return StudySessionID(Default().GenerateWithPrefix(StudySessionPrefix))
}

// NewQuizResultID generates a quiz result ID
func NewQuizResultID() QuizResultID {
	return QuizResultID(Default().GenerateWithPrefix(QuizResultPrefix))
}

func (id DeckID) String() string         { return string(id) }
func (id StudySessionID) String() string { return string(id) }
func (id QuizResultID) String() string   { return string(id) }

// IsValid checks if a prefixed id carries a valid ULID
func IsValid(prefixed string) bool {
	_, err := Parse(prefixed)
	return err == nil
}

// Parse extracts the ULID from a prefixed or bare id
func Parse(prefixed string) (ulid.ULID, error) {
	raw := prefixed
	if i := strings.LastIndexByte(prefixed, '_'); i >= 0 {
		raw = prefixed[i+1:]
	}
	return ulid.ParseStrict(raw)
}

// Timestamp extracts the creation time from an id
func Timestamp(prefixed string) (time.Time, error) {
	parsed, err := Parse(prefixed)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
