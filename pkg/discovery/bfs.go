/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: bfs.go
Description: Breadth-first exploration. Maintains a worklist of unexplored
states; each state's candidate actions are exhausted before the frontier
advances, giving even coverage of shallow states under a tight budget.
*/

package discovery

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// ExploreBFS explores breadth-first from the given state until the state
// budget or worklist is exhausted.
func (e *Engine) ExploreBFS(ctx context.Context, start *model.UIState) error {
	if start == nil {
		return nil
	}
	queue := []*model.UIState{start}
	depth := map[string]int{start.StateID: 0}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		state := queue[0]
		queue = queue[1:]

		if e.visited[state.StateID] || isEphemeral(state) {
			continue
		}
		if depth[state.StateID] > e.cfg.MaxDepth {
			continue
		}
		if len(e.visited) >= e.cfg.MaxStates {
			e.logger.WithField("max_states", e.cfg.MaxStates).Info("Explored-state budget reached, stopping exploration")
			return nil
		}

		// When re-navigation fails, continue from wherever the browser
		// actually landed instead of dropping the frontier entry.
		if err := e.ensureOnState(ctx, state); err != nil {
			landed, _, capErr := e.CaptureState(ctx)
			if capErr != nil || landed == nil || isEphemeral(landed) {
				e.logger.WithError(err).WithField("state_id", state.StateID).Warn("Could not reach state, skipping")
				continue
			}
			if landed.StateID != state.StateID {
				e.logger.WithFields(logrus.Fields{
					"expected": state.StateID,
					"actual":   landed.StateID,
				}).Info("Continuing from the state the browser landed on")
				if _, seen := depth[landed.StateID]; !seen {
					depth[landed.StateID] = depth[state.StateID]
				}
				state = landed
			}
		}

		e.visited[state.StateID] = true
		state.Visited = true
		state.Depth = depth[state.StateID]
		e.logger.WithFields(logrus.Fields{
			"state_id": state.StateID,
			"depth":    state.Depth,
			"frontier": len(queue),
		}).Info("Exploring state")

		discovered := e.expandState(ctx, state)
		for _, next := range discovered {
			if _, seen := depth[next.StateID]; seen {
				continue
			}
			depth[next.StateID] = depth[state.StateID] + 1
			queue = append(queue, next)
		}
	}
	return nil
}

// expandState runs every candidate action from the state, returning the
// distinct states reached. The browser returns to the anchor after each
// action except the very last, leaving it positioned at a frontier state
// instead of wasting a navigation the next dequeue would undo.
func (e *Engine) expandState(ctx context.Context, state *model.UIState) []*model.UIState {
	var actions []func() (*model.UIState, error)

	if forms, err := e.FormCandidates(ctx); err == nil {
		for _, form := range forms {
			actions = append(actions, func() (*model.UIState, error) {
				return e.submitForm(ctx, state, form)
			})
		}
	}

	links := e.SafeLinks(state)
	if len(links) > maxLinksPerState {
		links = links[:maxLinksPerState]
	}
	for _, link := range links {
		actions = append(actions, func() (*model.UIState, error) {
			return e.ExecuteTransition(ctx, state, model.ActionClick, link.Descriptor, nil)
		})
	}

	buttons := e.SafeButtons(state)
	if len(buttons) > maxButtonsPerState {
		buttons = buttons[:maxButtonsPerState]
	}
	for _, button := range buttons {
		actions = append(actions, func() (*model.UIState, error) {
			return e.ExecuteTransition(ctx, state, model.ActionClick, button, nil)
		})
	}

	var discovered []*model.UIState
	for i, run := range actions {
		landed, err := run()
		if err != nil {
			e.logger.WithError(err).WithField("state_id", state.StateID).Debug("Candidate action failed")
		}
		if landed != nil && landed.StateID != state.StateID {
			discovered = append(discovered, landed)
		}
		if i == len(actions)-1 {
			break
		}
		if err := e.returnTo(ctx, state, landed); err != nil {
			e.logger.WithError(err).WithField("state_id", state.StateID).Warn("Could not return to state, abandoning remaining candidates")
			return discovered
		}
	}
	return discovered
}
