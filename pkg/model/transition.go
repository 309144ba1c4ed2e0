/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: transition.go
Description: StateTransition entity for FSM graph discovery. A transition is an
executable edge: the action and trigger element that move the UI from one state
to another. Identity is the (from, action, to) signature, which the engine
deduplicates on insert.
*/

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionType labels what kind of action a transition performs.
type ActionType string

const (
	ActionClick       ActionType = "click"
	ActionFill        ActionType = "fill"
	ActionFillForm    ActionType = "fill_form"
	ActionNavigate    ActionType = "navigate"
	ActionSubmitLogin ActionType = "submit_login"
)

// StateTransition represents an action-based edge between two UI states.
// Created only by the discovery engine; metadata may be annotated afterwards
// (conditional transition detection) but transitions are never deleted.
type StateTransition struct {
	TransitionID    string            `json:"transition_id"`
	FromStateID     string            `json:"from_state_id"`
	ToStateID       string            `json:"to_state_id"`
	ActionType      ActionType        `json:"action_type"`
	TriggerLocators ElementDescriptor `json:"trigger_locators"`
	ActionData      map[string]string `json:"action_data,omitempty"`
	SuccessRate     float64           `json:"success_rate"`
	Metadata        map[string]any    `json:"metadata,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}

// NewTransition creates a transition with a fresh id and the default
// success rate of 1.0 (reserved for future reinforcement).
func NewTransition(from, to string, action ActionType, trigger ElementDescriptor) *StateTransition {
	return &StateTransition{
		TransitionID:    uuid.NewString(),
		FromStateID:     from,
		ToStateID:       to,
		ActionType:      action,
		TriggerLocators: trigger,
		SuccessRate:     1.0,
		Timestamp:       time.Now(),
	}
}

// Signature is the dedup identity: no two transitions in a graph may share it.
func (t *StateTransition) Signature() string {
	return fmt.Sprintf("%s|%s|%s", t.FromStateID, t.ActionType, t.ToStateID)
}

// Annotate sets a metadata key, allocating the map on first use.
func (t *StateTransition) Annotate(key string, value any) {
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}
	t.Metadata[key] = value
}
