package types

import (
	"fmt"
	"strings"
)

// Action is the verb of an intent
type Action string

const (
	ActionView      Action = "VIEW"
	ActionEdit      Action = "EDIT"
	ActionShare     Action = "SHARE"
	ActionCall      Action = "CALL"
	ActionMessage   Action = "MESSAGE"
	ActionCreate    Action = "CREATE"
	ActionTranslate Action = "TRANSLATE"
	ActionQuiz      Action = "QUIZ"
	ActionDebate    Action = "DEBATE"
	ActionStudy     Action = "STUDY"
	ActionNews      Action = "NEWS"
)

var actions = []Action{
	ActionView, ActionEdit, ActionShare, ActionCall, ActionMessage, ActionCreate,
	ActionTranslate, ActionQuiz, ActionDebate, ActionStudy, ActionNews,
}

// Actions lists every known intent action
func Actions() []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// Valid reports whether a is a member of the closed action set
func (a Action) Valid() bool {
	for _, known := range actions {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAction parses an action name case-insensitively
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("unknown intent action: %q", s)
	}
	return a, nil
}

// Intent is a transient routing request. It is passed by value and never stored
// beyond the pending-intent slot of the app it was delivered to.
type Intent struct {
	Action    Action         `json:"action"`
	Data      any            `json:"data,omitempty"`
	Type      string         `json:"type,omitempty"`
	Extras    map[string]any `json:"extras,omitempty"`
	TargetApp string         `json:"target_app,omitempty"`
}
