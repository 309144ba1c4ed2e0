/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: login.go
Description: Login flow discovery. Fills credential fields one at a time,
capturing intermediate form states as conditional fill transitions, then
submits and records the submit_login edge to the authenticated state.
*/

package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/aria-state-mapper/pkg/model"
)

const redactedValue = "********"

// usernameFieldTokens match common username/email input names.
var usernameFieldTokens = []string{"user", "email", "login", "account"}

// DiscoverLoginFlow drives the login form with the configured credentials.
// Each fill that visibly changes the page yields a conditional fill
// transition; the final submit always yields a submit_login transition, which
// may be a self-loop when authentication fails. Returns the state the flow
// landed on.
func (e *Engine) DiscoverLoginFlow(ctx context.Context, loginState *model.UIState) (*model.UIState, error) {
	if e.cfg.Username == "" {
		return nil, fmt.Errorf("login flow requires credentials")
	}
	e.logger.WithField("state_id", loginState.StateID).Info("Discovering login flow")

	current := loginState

	userField := findCredentialField(loginState, usernameFieldTokens, "")
	if userField != nil {
		next, err := e.fillCredential(ctx, current, *userField, e.cfg.Username, e.cfg.Username)
		if err != nil {
			return nil, fmt.Errorf("username fill failed: %w", err)
		}
		if next != nil {
			current = next
		}
	}

	passField := findCredentialField(loginState, []string{"pass"}, "password")
	if passField != nil {
		next, err := e.fillCredential(ctx, current, *passField, e.cfg.Password, redactedValue)
		if err != nil {
			return nil, fmt.Errorf("password fill failed: %w", err)
		}
		if next != nil {
			current = next
		}
	}

	submit := findSubmitDescriptor(loginState)
	if submit == nil {
		return nil, fmt.Errorf("no login submit element on state %s", loginState.StateID)
	}

	el, err := e.page.Locate(ctx, *submit)
	if err != nil || el == nil {
		return nil, fmt.Errorf("login submit element not resolvable")
	}
	if err := e.page.Click(ctx, el); err != nil {
		return nil, fmt.Errorf("login submit click failed: %w", err)
	}
	e.settle(ctx)

	landed, _, err := e.CaptureState(ctx)
	if err != nil {
		return nil, err
	}

	// submit_login is recorded even as a self-loop: a failed login is a real
	// edge of the application's state machine.
	e.RegisterTransition(current.StateID, landed.StateID, model.ActionSubmitLogin, *submit, nil)
	e.logger.WithFields(logrus.Fields{
		"from": current.StateID,
		"to":   landed.StateID,
	}).Info("Login flow recorded")
	return landed, nil
}

// fillCredential fills one field and captures the result. A fill transition is
// recorded only when the page state actually changed; an unchanged page means
// the fill was inert and no edge exists.
func (e *Engine) fillCredential(
	ctx context.Context,
	from *model.UIState,
	field model.ElementDescriptor,
	value, recordedValue string,
) (*model.UIState, error) {
	el, err := e.page.Locate(ctx, field)
	if err != nil {
		return nil, err
	}
	if el == nil {
		e.logger.WithField("field", field.Name).Debug("Credential field not found")
		return nil, nil
	}
	if err := e.page.Fill(ctx, el, value); err != nil {
		return nil, err
	}
	e.settle(ctx)

	landed, _, err := e.CaptureState(ctx)
	if err != nil {
		return nil, err
	}
	if landed.StateID == from.StateID {
		return landed, nil
	}

	t := e.RegisterTransition(from.StateID, landed.StateID, model.ActionFill, field,
		map[string]string{"value": recordedValue})
	if t != nil {
		t.Annotate("conditional", true)
	}
	return landed, nil
}

// findCredentialField picks an input descriptor whose name matches the tokens
// or whose underlying type matches typeHint.
func findCredentialField(state *model.UIState, tokens []string, typeHint string) *model.ElementDescriptor {
	for i, d := range state.ElementDescriptors {
		if d.ElementType != "input" {
			continue
		}
		lower := strings.ToLower(d.Name)
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				return &state.ElementDescriptors[i]
			}
		}
		if typeHint != "" && strings.Contains(lower, typeHint) {
			return &state.ElementDescriptors[i]
		}
	}
	return nil
}

func findSubmitDescriptor(state *model.UIState) *model.ElementDescriptor {
	for i, d := range state.ElementDescriptors {
		if d.ElementType != "button" {
			continue
		}
		lower := strings.ToLower(d.Name)
		if strings.Contains(lower, "login") || strings.Contains(lower, "log in") ||
			strings.Contains(lower, "sign in") || strings.Contains(lower, "submit") {
			return &state.ElementDescriptors[i]
		}
	}
	// Fall back to any button on the form.
	for i, d := range state.ElementDescriptors {
		if d.ElementType == "button" {
			return &state.ElementDescriptors[i]
		}
	}
	return nil
}
