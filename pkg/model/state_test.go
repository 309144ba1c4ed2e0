/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: state_test.go
Description: Tests for UIState construction, verification derivation, element
descriptor merging, and transition identity.
*/

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/aria-state-mapper/pkg/a11y"
	"github.com/kleascm/aria-state-mapper/pkg/fingerprint"
	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// TestDeriveVerification tests that the pre-check record mirrors the fingerprint
func TestDeriveVerification(t *testing.T) {
	tree := &a11y.Node{Role: "RootWebArea", Children: []*a11y.Node{
		{Role: "navigation", Name: "Main", Children: []*a11y.Node{
			{Role: "link", Name: "Home", Value: "/"},
		}},
		{Role: "main"},
	}}
	fp := fingerprint.Create(tree, "https://app.test/settings", "Settings", "Settings")

	v := model.DeriveVerification(fp)
	assert.Equal(t, "settings", v.URLPattern)
	assert.Equal(t, "Settings", v.Title)
	assert.Contains(t, v.RequiredLandmarks, "navigation")
	assert.Contains(t, v.RequiredLandmarks, "main")
	assert.Equal(t, 1, v.MinInteractive)
	assert.NotEmpty(t, v.StructureHash)
}

// TestDeriveVerificationNilFingerprint tests the zero record for nil input
func TestDeriveVerificationNilFingerprint(t *testing.T) {
	v := model.DeriveVerification(nil)
	assert.Equal(t, model.VerificationLogic{}, v)
}

// TestNewUIState tests construction defaults
func TestNewUIState(t *testing.T) {
	fp := fingerprint.Create(nil, "https://app.test/reports", "Reports", "")
	state := model.NewUIState("V_REPORTS", "page", fp)

	assert.Equal(t, "V_REPORTS", state.StateID)
	assert.Equal(t, "page", state.StateType)
	assert.Same(t, fp, state.Fingerprint)
	assert.Equal(t, "reports", state.VerificationLogic.URLPattern)
	assert.Empty(t, state.ElementDescriptors)
	assert.False(t, state.Visited)
	assert.False(t, state.DiscoveredAt.IsZero())
}

// TestMergeDescriptors tests signature-keyed union with locator filtering
func TestMergeDescriptors(t *testing.T) {
	state := model.NewUIState("V_PAGE", "page", nil)

	save := model.ElementDescriptor{
		ElementType: "button",
		Name:        "Save",
		Locators:    map[string]string{model.LocatorText: "Save"},
	}
	orphan := model.ElementDescriptor{ElementType: "button", Name: "No Locators"}

	state.MergeDescriptors([]model.ElementDescriptor{save, orphan})
	require.Len(t, state.ElementDescriptors, 1, "descriptors without locators are unusable")

	// Re-merging the same descriptor never duplicates it.
	state.MergeDescriptors([]model.ElementDescriptor{save})
	assert.Len(t, state.ElementDescriptors, 1)

	other := model.ElementDescriptor{
		ElementType: "link",
		Name:        "Help",
		Locators:    map[string]string{model.LocatorText: "Help", model.LocatorHref: "/help"},
	}
	state.MergeDescriptors([]model.ElementDescriptor{other})
	assert.Len(t, state.ElementDescriptors, 2)
}

// TestDescriptorSignature tests that the signature is stable under locator
// map ordering and distinguishes differing locator sets
func TestDescriptorSignature(t *testing.T) {
	a := model.ElementDescriptor{
		ElementType: "link",
		Locators:    map[string]string{model.LocatorText: "Docs", model.LocatorHref: "/docs"},
	}
	b := model.ElementDescriptor{
		ElementType: "link",
		Locators:    map[string]string{model.LocatorHref: "/docs", model.LocatorText: "Docs"},
	}
	c := model.ElementDescriptor{
		ElementType: "link",
		Locators:    map[string]string{model.LocatorText: "Docs"},
	}

	assert.Equal(t, a.Signature(), b.Signature())
	assert.NotEqual(t, a.Signature(), c.Signature())

	bare := model.ElementDescriptor{ElementType: "button", Name: "Save"}
	assert.Equal(t, "button|Save", bare.Signature())
	assert.False(t, bare.HasLocator())
}

// TestTransitionSignatureAndAnnotate tests edge identity and metadata notes
func TestTransitionSignatureAndAnnotate(t *testing.T) {
	trigger := model.ElementDescriptor{
		ElementType: "button",
		Name:        "Submit",
		Locators:    map[string]string{model.LocatorText: "Submit"},
	}
	tr := model.NewTransition("V_FORM", "V_DONE", model.ActionClick, trigger)

	assert.NotEmpty(t, tr.TransitionID)
	assert.Equal(t, "V_FORM|click|V_DONE", tr.Signature())
	assert.Equal(t, 1.0, tr.SuccessRate)

	tr.Annotate("conditional", true)
	assert.Equal(t, true, tr.Metadata["conditional"])
}
