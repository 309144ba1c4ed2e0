/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: state.go
Description: UIState entity for FSM graph discovery. A state is a verifiable UI
condition (a vertex in MBT terms), identified by state_id and carried by its
multi-dimensional fingerprint. Includes verification logic for cheap pre-checks
and exploration bookkeeping.
*/

package model

import (
	"time"

	"github.com/kleascm/aria-state-mapper/pkg/fingerprint"
)

// UIState represents a discrete, verifiable UI state.
// Identity is the state_id: two UIState values with the same id are the same
// vertex. States are created when no known state matches a captured
// fingerprint, mutated in place on weaker re-matches, and never destroyed.
type UIState struct {
	StateID            string                  `json:"state_id"`
	StateType          string                  `json:"state_type"`
	Fingerprint        *fingerprint.Fingerprint `json:"fingerprint"`
	VerificationLogic  VerificationLogic       `json:"verification_logic"`
	ElementDescriptors []ElementDescriptor     `json:"element_descriptors"`
	DiscoveredAt       time.Time               `json:"discovered_at"`
	Metadata           map[string]any          `json:"metadata,omitempty"`
	Visited            bool                    `json:"visited"`
	Depth              int                     `json:"depth"`
}

// VerificationLogic holds the cheap pre-checks used to confirm the browser is
// on this state without running a full fingerprint comparison.
type VerificationLogic struct {
	URLPattern        string   `json:"url_pattern"`
	RequiredLandmarks []string `json:"required_landmarks,omitempty"`
	MinInteractive    int      `json:"min_interactive"`
	StructureHash     string   `json:"structure_hash,omitempty"`
	Title             string   `json:"title,omitempty"`
}

// NewUIState builds a state from a classification and fingerprint, deriving
// its verification logic from the fingerprint.
func NewUIState(stateID, stateType string, fp *fingerprint.Fingerprint) *UIState {
	return &UIState{
		StateID:            stateID,
		StateType:          stateType,
		Fingerprint:        fp,
		VerificationLogic:  DeriveVerification(fp),
		ElementDescriptors: []ElementDescriptor{},
		DiscoveredAt:       time.Now(),
	}
}

// DeriveVerification extracts the pre-check record from a fingerprint.
func DeriveVerification(fp *fingerprint.Fingerprint) VerificationLogic {
	v := VerificationLogic{}
	if fp == nil {
		return v
	}
	v.URLPattern = fp.URLPattern
	v.Title = fp.Title
	if fp.Semantic != nil {
		v.RequiredLandmarks = fp.Semantic.LandmarkRoles
		v.MinInteractive = fp.Semantic.InteractiveCount
		v.StructureHash = fp.Semantic.StructureHash
	}
	return v
}

// MergeDescriptors unions newly observed element descriptors into the state.
// Descriptors are keyed by their locator signature so re-visits never
// duplicate entries.
func (s *UIState) MergeDescriptors(descriptors []ElementDescriptor) {
	seen := make(map[string]struct{}, len(s.ElementDescriptors))
	for _, d := range s.ElementDescriptors {
		seen[d.Signature()] = struct{}{}
	}
	for _, d := range descriptors {
		if !d.HasLocator() {
			continue
		}
		sig := d.Signature()
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		s.ElementDescriptors = append(s.ElementDescriptors, d)
	}
}
