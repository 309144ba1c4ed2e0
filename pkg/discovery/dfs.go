/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dfs.go
Description: Depth-first exploration. From each state: submit discovered forms,
follow safe navigation links, then press safe buttons, recursing into every
newly reached state until depth or state budget is exhausted.
*/

package discovery

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// ExploreDFS explores depth-first from the given state. Ephemeral states
// (errors, transient forms, loading screens) are recorded but not expanded.
func (e *Engine) ExploreDFS(ctx context.Context, state *model.UIState, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if state == nil || e.visited[state.StateID] {
		return nil
	}
	if depth > e.cfg.MaxDepth {
		e.logger.WithField("state_id", state.StateID).Debug("Depth budget reached")
		return nil
	}
	// The budget caps how many states get explored, not how many get
	// discovered: states reached past the cap still enter the model as
	// unexplored nodes.
	if len(e.visited) >= e.cfg.MaxStates {
		e.logger.WithField("max_states", e.cfg.MaxStates).Info("Explored-state budget reached, stopping exploration")
		return nil
	}
	if isEphemeral(state) {
		e.logger.WithFields(logrus.Fields{
			"state_id":   state.StateID,
			"state_type": state.StateType,
		}).Debug("Skipping ephemeral state")
		return nil
	}

	e.visited[state.StateID] = true
	state.Visited = true
	state.Depth = depth
	e.logger.WithFields(logrus.Fields{
		"state_id": state.StateID,
		"depth":    depth,
	}).Info("Exploring state")

	// Recovery failures abort this branch only: the error stays local so
	// sibling candidates of ancestor states are still attempted.
	if err := e.ensureOnState(ctx, state); err != nil {
		e.logger.WithError(err).WithField("state_id", state.StateID).Warn("Could not reach state, abandoning branch")
		return nil
	}

	// Forms first: they tend to unlock states links cannot reach.
	if forms, err := e.FormCandidates(ctx); err == nil {
		for _, form := range forms {
			landed, err := e.submitForm(ctx, state, form)
			if err != nil {
				e.logger.WithError(err).Debug("Form submission failed")
			}
			if err := e.returnTo(ctx, state, landed); err != nil {
				e.logger.WithError(err).WithField("state_id", state.StateID).Warn("Could not return to state, abandoning branch")
				return nil
			}
		}
	}

	links := e.SafeLinks(state)
	if len(links) > maxLinksPerState {
		links = links[:maxLinksPerState]
	}
	for _, link := range links {
		landed, err := e.ExecuteTransition(ctx, state, model.ActionClick, link.Descriptor, nil)
		if err != nil {
			e.logger.WithError(err).WithField("link", link.Descriptor.Name).Debug("Link click failed")
			continue
		}
		if landed != nil && landed.StateID != state.StateID {
			if err := e.ExploreDFS(ctx, landed, depth+1); err != nil {
				return err
			}
		}
		if err := e.returnTo(ctx, state, landed); err != nil {
			e.logger.WithError(err).WithField("state_id", state.StateID).Warn("Could not return to state, abandoning branch")
			return nil
		}
	}

	buttons := e.SafeButtons(state)
	if len(buttons) > maxButtonsPerState {
		buttons = buttons[:maxButtonsPerState]
	}
	for _, button := range buttons {
		landed, err := e.ExecuteTransition(ctx, state, model.ActionClick, button, nil)
		if err != nil {
			e.logger.WithError(err).WithField("button", button.Name).Debug("Button click failed")
			continue
		}
		if landed != nil && landed.StateID != state.StateID {
			if err := e.ExploreDFS(ctx, landed, depth+1); err != nil {
				return err
			}
		}
		if err := e.returnTo(ctx, state, landed); err != nil {
			e.logger.WithError(err).WithField("state_id", state.StateID).Warn("Could not return to state, abandoning branch")
			return nil
		}
	}

	return nil
}

// ensureOnState verifies the browser sits on the expected state and navigates
// directly to its source URL when it does not.
func (e *Engine) ensureOnState(ctx context.Context, state *model.UIState) error {
	ok, err := e.VerifyOnState(ctx, state)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return e.navigateToState(ctx, state)
}

// returnTo moves the browser back to the anchor state after a side excursion.
// History back is tried first; direct navigation is the fallback.
func (e *Engine) returnTo(ctx context.Context, anchor, landed *model.UIState) error {
	if landed != nil && landed.StateID == anchor.StateID {
		return nil
	}
	if err := e.page.GoBack(ctx); err == nil {
		e.settle(ctx)
		if ok, err := e.VerifyOnState(ctx, anchor); err == nil && ok {
			return nil
		}
	}
	return e.navigateToState(ctx, anchor)
}

// navigateToState drives the browser to a state's recorded source URL, or its
// URL pattern appended to the base URL when no source was recorded.
func (e *Engine) navigateToState(ctx context.Context, state *model.UIState) error {
	url := stateURL(e.cfg.BaseURL, state)
	if err := e.page.Navigate(ctx, url); err != nil {
		return err
	}
	e.settle(ctx)
	return nil
}

// VerifyOnState runs the cheap verification pre-checks against the live page:
// URL pattern, then required landmarks and interactive count via a fresh
// snapshot when the pattern alone is inconclusive.
func (e *Engine) VerifyOnState(ctx context.Context, state *model.UIState) (bool, error) {
	url, err := e.page.CurrentURL(ctx)
	if err != nil {
		return false, err
	}
	v := state.VerificationLogic
	if v.URLPattern != "" && fingerprintPatternOf(url) != v.URLPattern {
		return false, nil
	}
	if len(v.RequiredLandmarks) == 0 && v.MinInteractive == 0 {
		return true, nil
	}

	fp, err := e.CaptureFingerprint(ctx)
	if err != nil {
		return false, err
	}
	for _, landmark := range v.RequiredLandmarks {
		if !fp.HasLandmark(landmark) {
			return false, nil
		}
	}
	if fp.Semantic != nil && fp.Semantic.InteractiveCount < v.MinInteractive {
		return false, nil
	}
	return true, nil
}

func isEphemeral(state *model.UIState) bool {
	switch state.StateType {
	case "error", "form", "loading":
		return true
	}
	return false
}
