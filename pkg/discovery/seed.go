/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: seed.go
Description: Seed map verification. Re-visits every state of an imported graph
against the live application and grades each as unchanged, modified, removed,
or unreachable, refreshing modified fingerprints in place.
*/

package discovery

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// Seed verification grades.
const (
	SeedUnchanged   = "unchanged"
	SeedModified    = "modified"
	SeedRemoved     = "removed"
	SeedUnreachable = "unreachable"
)

// Similarity bounds for seed grading. A seed scoring under the modified floor
// no longer describes any live state.
const (
	seedUnchangedFloor = 0.95
	seedModifiedFloor  = 0.75
)

// SeedResult reports the verification outcome of one seeded state.
type SeedResult struct {
	StateID    string  `json:"state_id"`
	Status     string  `json:"status"`
	Similarity float64 `json:"similarity,omitempty"`
}

// LoadSeed reads a seed map (a previously exported graph) from disk.
func LoadSeed(path string) (*Graph, error) {
	return LoadGraph(path)
}

// VerifySeeds re-visits every imported state and grades it against the live
// page. Modified states get their fingerprint and descriptors refreshed;
// removed and unreachable states stay in the model but are marked in the
// report so downstream consumers can prune them.
func (e *Engine) VerifySeeds(ctx context.Context) error {
	states := e.States()
	if len(states) == 0 {
		return nil
	}
	e.logger.WithField("seed_states", len(states)).Info("Verifying seed map")

	for _, state := range states {
		if err := ctx.Err(); err != nil {
			return err
		}
		result := e.verifySeed(ctx, state)
		e.seedReport = append(e.seedReport, result)
		e.logger.WithFields(logrus.Fields{
			"state_id":   result.StateID,
			"status":     result.Status,
			"similarity": result.Similarity,
		}).Info("Seed verified")
		if e.events != nil {
			e.events.LogSeedResult(result.StateID, result.Status, result.Similarity)
		}
	}
	return nil
}

func (e *Engine) verifySeed(ctx context.Context, state *model.UIState) SeedResult {
	if err := e.reachSeed(ctx, state); err != nil {
		return SeedResult{StateID: state.StateID, Status: SeedUnreachable}
	}

	fp, err := e.CaptureFingerprint(ctx)
	if err != nil {
		return SeedResult{StateID: state.StateID, Status: SeedUnreachable}
	}

	score := e.comparer.CalculateSimilarity(fp, state.Fingerprint)
	switch {
	case score >= seedUnchangedFloor:
		state.Visited = true
		return SeedResult{StateID: state.StateID, Status: SeedUnchanged, Similarity: score}
	case score >= seedModifiedFloor:
		state.Fingerprint = fp
		state.VerificationLogic = model.DeriveVerification(fp)
		state.MergeDescriptors(descriptorsFromFingerprint(fp))
		state.Visited = true
		return SeedResult{StateID: state.StateID, Status: SeedModified, Similarity: score}
	default:
		return SeedResult{StateID: state.StateID, Status: SeedRemoved, Similarity: score}
	}
}

// reachSeed navigates to a seeded state: by its recorded source URL or URL
// pattern when one exists, otherwise by replaying an incoming transition from
// an already reachable state.
func (e *Engine) reachSeed(ctx context.Context, state *model.UIState) error {
	if hasDirectAddress(state) {
		return e.navigateToState(ctx, state)
	}

	for _, t := range e.transitions {
		if t.ToStateID != state.StateID || t.FromStateID == state.StateID {
			continue
		}
		source, ok := e.states[t.FromStateID]
		if !ok || !hasDirectAddress(source) {
			continue
		}
		if err := e.navigateToState(ctx, source); err != nil {
			continue
		}
		el, err := e.page.Locate(ctx, t.TriggerLocators)
		if err != nil || el == nil {
			continue
		}
		if err := e.page.Click(ctx, el); err != nil {
			continue
		}
		e.settle(ctx)
		return nil
	}
	return fmt.Errorf("no route to seeded state %s", state.StateID)
}

func hasDirectAddress(state *model.UIState) bool {
	if state.Metadata != nil {
		if src, ok := state.Metadata["source_url"].(string); ok && src != "" {
			return true
		}
	}
	return state.VerificationLogic.URLPattern != ""
}
