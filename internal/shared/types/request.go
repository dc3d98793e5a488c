package types

import "github.com/kwararru/shell/internal/shared/utils"

// IntentRequest is the wire form of an intent
type IntentRequest struct {
	Action    string         `json:"action" binding:"required"`
	Data      any            `json:"data,omitempty"`
	Type      string         `json:"type,omitempty"`
	Extras    map[string]any `json:"extras,omitempty"`
	TargetApp string         `json:"target_app,omitempty"`
}

// Intent parses the request into an intent, rejecting oversized or
// deeply nested payloads
func (r IntentRequest) Intent() (Intent, error) {
	action, err := ParseAction(r.Action)
	if err != nil {
		return Intent{}, err
	}
	if err := utils.ValidateIntentPayload(r.Data, r.Extras); err != nil {
		return Intent{}, err
	}
	return Intent{
		Action:    action,
		Data:      r.Data,
		Type:      r.Type,
		Extras:    r.Extras,
		TargetApp: r.TargetApp,
	}, nil
}

// NewIntentRequest returns the wire form of in
func NewIntentRequest(in Intent) *IntentRequest {
	return &IntentRequest{
		Action:    string(in.Action),
		Data:      in.Data,
		Type:      in.Type,
		Extras:    in.Extras,
		TargetApp: in.TargetApp,
	}
}

// LaunchRequest carries an optional intent for a launch
type LaunchRequest struct {
	Intent *IntentRequest `json:"intent,omitempty"`
}

// CardRequest describes a new card
type CardRequest struct {
	Front string `json:"front" binding:"required"`
	Back  string `json:"back" binding:"required"`
}

// DeckRequest creates or replaces a deck
type DeckRequest struct {
	Name    string        `json:"name" binding:"required"`
	Subject string        `json:"subject" binding:"required"`
	Cards   []CardRequest `json:"cards"`
}

// RateRequest rates the current card of a review
type RateRequest struct {
	Rating Rating `json:"rating" binding:"required"`
}

// SessionRequest records a study session
type SessionRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Duration int    `json:"duration"`
}

// QuizResultRequest records a quiz result
type QuizResultRequest struct {
	Subject        string `json:"subject" binding:"required"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
}

// WSMessage represents a WebSocket message on an app stream.
//
// Inbound types: navigate, status, ping. Outbound types: mounted, intent,
// resolution, status, pong, error.
type WSMessage struct {
	Type     string         `json:"type"`
	AppID    string         `json:"app_id,omitempty"`
	Intent   *IntentRequest `json:"intent,omitempty"`
	Resolved *bool          `json:"resolved,omitempty"`
	Active   *bool          `json:"active,omitempty"`
	Error    string         `json:"error,omitempty"`
}
