/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: replay.go
Description: Graph replay. Plans a transition path from an addressable state
to a target state by walking the graph's edges backward, then executes the
path against the live application, re-running the login flow for
submit_login edges.
*/

package discovery

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// ReplayTo drives the browser to the target state by executing a planned
// transition path from the imported graph. The engine must have imported the
// graph beforehand.
func (e *Engine) ReplayTo(ctx context.Context, targetID string) error {
	target, ok := e.states[targetID]
	if !ok {
		return fmt.Errorf("unknown target state %s", targetID)
	}

	path, start, err := e.planPath(target)
	if err != nil {
		return err
	}
	e.logger.WithFields(logrus.Fields{
		"target": targetID,
		"start":  start.StateID,
		"steps":  len(path),
	}).Info("Replaying path")

	if err := e.navigateToState(ctx, start); err != nil {
		return fmt.Errorf("failed to reach start state %s: %w", start.StateID, err)
	}

	for _, t := range path {
		if err := e.executeReplayStep(ctx, t); err != nil {
			return fmt.Errorf("replay step %s -> %s failed: %w", t.FromStateID, t.ToStateID, err)
		}
	}

	if ok, err := e.VerifyOnState(ctx, target); err == nil && !ok {
		return fmt.Errorf("replay finished but page does not verify as %s", targetID)
	}
	return nil
}

// planPath walks incoming edges backward from the target until it hits a
// directly addressable state, guarding against cycles. Returns the forward
// path and its start state.
func (e *Engine) planPath(target *model.UIState) ([]*model.StateTransition, *model.UIState, error) {
	if hasDirectAddress(target) {
		return nil, target, nil
	}

	var path []*model.StateTransition
	seen := map[string]bool{target.StateID: true}
	current := target

	for {
		incoming := e.incomingEdge(current.StateID, seen)
		if incoming == nil {
			return nil, nil, fmt.Errorf("no path to state %s", target.StateID)
		}
		path = append([]*model.StateTransition{incoming}, path...)

		source, ok := e.states[incoming.FromStateID]
		if !ok {
			return nil, nil, fmt.Errorf("graph references unknown state %s", incoming.FromStateID)
		}
		if hasDirectAddress(source) {
			return path, source, nil
		}
		seen[source.StateID] = true
		current = source
	}
}

func (e *Engine) incomingEdge(stateID string, seen map[string]bool) *model.StateTransition {
	for _, t := range e.transitions {
		if t.ToStateID == stateID && !seen[t.FromStateID] {
			return t
		}
	}
	return nil
}

func (e *Engine) executeReplayStep(ctx context.Context, t *model.StateTransition) error {
	if t.ActionType == model.ActionSubmitLogin {
		return e.replayLogin(ctx, t)
	}

	el, err := e.page.Locate(ctx, t.TriggerLocators)
	if err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("trigger %s not found", t.TriggerLocators.Name)
	}

	switch t.ActionType {
	case model.ActionFill:
		if err := e.page.Fill(ctx, el, t.ActionData["value"]); err != nil {
			return err
		}
	case model.ActionFillForm:
		for name, value := range t.ActionData {
			field := model.ElementDescriptor{
				ElementType: "input",
				Name:        name,
				Locators:    map[string]string{model.LocatorName: name},
			}
			fieldEl, err := e.page.Locate(ctx, field)
			if err != nil || fieldEl == nil {
				continue
			}
			if err := e.page.Fill(ctx, fieldEl, value); err != nil {
				return err
			}
		}
		if err := e.page.Click(ctx, el); err != nil {
			return err
		}
	default:
		if err := e.page.Click(ctx, el); err != nil {
			return err
		}
	}
	e.settle(ctx)
	return nil
}

// replayLogin re-runs the credential fills before clicking the recorded
// submit trigger. Stored action data never carries real secrets, so replay
// needs live credentials from the config.
func (e *Engine) replayLogin(ctx context.Context, t *model.StateTransition) error {
	if e.cfg.Username == "" {
		return fmt.Errorf("replaying a login edge requires credentials")
	}
	from, ok := e.states[t.FromStateID]
	if !ok {
		return fmt.Errorf("login edge references unknown state %s", t.FromStateID)
	}

	if field := findCredentialField(from, usernameFieldTokens, ""); field != nil {
		if el, err := e.page.Locate(ctx, *field); err == nil && el != nil {
			if err := e.page.Fill(ctx, el, e.cfg.Username); err != nil {
				return err
			}
		}
	}
	if field := findCredentialField(from, []string{"pass"}, "password"); field != nil {
		if el, err := e.page.Locate(ctx, *field); err == nil && el != nil {
			if err := e.page.Fill(ctx, el, e.cfg.Password); err != nil {
				return err
			}
		}
	}

	el, err := e.page.Locate(ctx, t.TriggerLocators)
	if err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("login submit trigger not found")
	}
	if err := e.page.Click(ctx, el); err != nil {
		return err
	}
	e.settle(ctx)
	return nil
}
