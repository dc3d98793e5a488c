package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// Payload limits
const (
	MaxIntentPayloadSize = 64 * 1024 // bytes of encoded intent data and extras
	MaxIntentDepth       = 10
)

// String length limits
const (
	MaxIDLength       = 128
	MaxNameLength     = 256
	MaxSubjectLength  = 128
	MaxCardTextLength = 4096
	MaxCardsPerDeck   = 5000
)

// SafeIDPattern allows alphanumeric, hyphens, underscores
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateJSONDepth checks that decoded JSON nests no deeper than maxDepth
func ValidateJSONDepth(data any, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data any, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("JSON nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]any:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []any:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateIntentPayload bounds the size and nesting of an intent's data
// and extras. Both are opaque to the host but still travel through it.
func ValidateIntentPayload(data any, extras map[string]any) error {
	if err := ValidateJSONDepth(data, MaxIntentDepth); err != nil {
		return fmt.Errorf("intent data: %w", err)
	}
	if err := ValidateJSONDepth(extras, MaxIntentDepth); err != nil {
		return fmt.Errorf("intent extras: %w", err)
	}

	encoded, err := sonic.Marshal(struct {
		Data   any            `json:"data"`
		Extras map[string]any `json:"extras"`
	}{data, extras})
	if err != nil {
		return fmt.Errorf("intent payload is not encodable: %w", err)
	}
	if len(encoded) > MaxIntentPayloadSize {
		return fmt.Errorf("intent payload size %d exceeds maximum %d", len(encoded), MaxIntentPayloadSize)
	}
	return nil
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}
	return nil
}

// ValidateDeck checks a deck's name, subject and card count
func ValidateDeck(name, subject string, cards int) error {
	if err := ValidateString(name, "name", 1, MaxNameLength, true); err != nil {
		return err
	}
	if err := ValidateString(subject, "subject", 1, MaxSubjectLength, true); err != nil {
		return err
	}
	if cards > MaxCardsPerDeck {
		return fmt.Errorf("deck must not exceed %d cards", MaxCardsPerDeck)
	}
	return nil
}

// ValidateCard checks both faces of a card
func ValidateCard(front, back string) error {
	if err := ValidateString(front, "card front", 1, MaxCardTextLength, true); err != nil {
		return err
	}
	return ValidateString(back, "card back", 1, MaxCardTextLength, true)
}
