/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: recorder.go
Description: Action recorder. Captures the ordered sequence of transitions
executed during a run so a session can be saved and played back later without
re-running discovery.
*/

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// ActionRecorder accumulates executed transitions in order.
type ActionRecorder struct {
	StartedAt time.Time                `json:"started_at"`
	Actions   []*model.StateTransition `json:"actions"`
}

// NewActionRecorder creates an empty recorder.
func NewActionRecorder() *ActionRecorder {
	return &ActionRecorder{StartedAt: time.Now()}
}

// Record appends a transition to the session.
func (r *ActionRecorder) Record(t *model.StateTransition) {
	r.Actions = append(r.Actions, t)
}

// Save writes the recorded session as indented JSON.
func (r *ActionRecorder) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write recording to %s: %w", path, err)
	}
	return nil
}

// LoadRecording reads a session saved by Save.
func LoadRecording(path string) (*ActionRecorder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording from %s: %w", path, err)
	}
	var r ActionRecorder
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse recording %s: %w", path, err)
	}
	return &r, nil
}

// AttachRecorder makes the engine record every registered transition.
func (e *Engine) AttachRecorder(r *ActionRecorder) {
	e.recorder = r
}

// Playback executes the recorded actions in order against the live page.
func (e *Engine) Playback(ctx context.Context, r *ActionRecorder) error {
	for i, t := range r.Actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.executeReplayStep(ctx, t); err != nil {
			return fmt.Errorf("playback action %d (%s) failed: %w", i, t.ActionType, err)
		}
	}
	return nil
}
