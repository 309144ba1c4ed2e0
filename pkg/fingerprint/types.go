/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Typed fingerprint records for UI state identification. Defines the
five weighted fingerprint dimensions (semantic, functional, structural, content,
style) as explicit structures so every consumer relies on documented optional
fields instead of implicit map-key presence checks.
*/

package fingerprint

import "github.com/kleascm/aria-state-mapper/pkg/a11y"

// Dimension weights for the similarity hierarchy. They sum to 1.0; the
// comparer renormalizes over the dimensions that actually carry data.
const (
	WeightSemantic   = 0.60
	WeightFunctional = 0.25
	WeightStructural = 0.10
	WeightContent    = 0.04
	WeightStyle      = 0.01
)

// Fingerprint is a multi-dimensional signature of a UI screen.
// It is a value type: two fingerprints with the same content are the same
// screen for matching purposes, identity lives on UIState.
type Fingerprint struct {
	// Semantic identity (60%): accessibility tree summary. Nil when the
	// snapshot could not be captured (degraded fingerprint).
	Semantic *SemanticFingerprint `json:"accessibility_tree,omitempty"`

	// Functional identity (25%): categorized actionable elements.
	Actionable *ActionableElements `json:"actionable_elements,omitempty"`

	// Structural identity (10%): normalized URL pattern and route params.
	URLPattern  string         `json:"url_pattern"`
	RouteParams map[string]any `json:"route_params,omitempty"`

	// Content identity (4%): title and first heading.
	Title       string `json:"title,omitempty"`
	MainHeading string `json:"main_heading,omitempty"`

	// Style identity (1%, optional): DOM-level structure hash. Compared
	// only when both sides carry it.
	DOMHash string `json:"dom_structure_hash,omitempty"`
}

// SemanticFingerprint summarizes the accessibility tree.
type SemanticFingerprint struct {
	StructureHash    string              `json:"structure_hash"`
	LandmarkRoles    []string            `json:"landmark_roles"`
	InteractiveCount int                 `json:"interactive_count"`
	HeadingHierarchy []string            `json:"heading_hierarchy"`
	KeyLandmarks     map[string]Landmark `json:"key_landmarks"`
	AriaStates       *AriaStateSummary   `json:"aria_states,omitempty"`
}

// Landmark is a named navigation/main/search region with its role path.
type Landmark struct {
	Role string `json:"role"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// AriaStateSummary captures dynamic ARIA conditions of the page.
type AriaStateSummary struct {
	ExpandedElements  []StateIndicator `json:"expanded_elements"`
	SelectedElements  []StateIndicator `json:"selected_elements"`
	CheckedElements   []StateIndicator `json:"checked_elements"`
	DisabledCount     int              `json:"disabled_count"`
	CurrentIndicators []StateIndicator `json:"current_indicators"`
}

// StateIndicator is a single element carrying a dynamic ARIA state.
type StateIndicator struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Value bool   `json:"value"`
}

// ActionableElements is the functional identity bucket: every element the
// engine could act on, categorized by kind.
type ActionableElements struct {
	Buttons    []Element `json:"buttons"`
	Links      []Element `json:"links"`
	Inputs     []Element `json:"inputs"`
	TotalCount int       `json:"total_count"`
}

// Element is one actionable element with its suggested locator strategy.
type Element struct {
	Role            string     `json:"role"`
	Name            string     `json:"name"`
	Href            string     `json:"href,omitempty"`
	States          NodeStates `json:"aria_states"`
	LocatorStrategy string     `json:"locator_strategy"`
}

// NodeStates mirrors the ARIA state attributes of a single node. Pointer
// fields distinguish "attribute absent" from "attribute false".
type NodeStates struct {
	Expanded *bool  `json:"expanded,omitempty"`
	Selected *bool  `json:"selected,omitempty"`
	Checked  *bool  `json:"checked,omitempty"`
	Disabled *bool  `json:"disabled,omitempty"`
	Pressed  *bool  `json:"pressed,omitempty"`
	Current  string `json:"current,omitempty"`
}

// Landmarks returns the semantic landmark roles, or nil on a degraded
// fingerprint. Safe on a nil receiver path.
func (f *Fingerprint) Landmarks() []string {
	if f == nil || f.Semantic == nil {
		return nil
	}
	return f.Semantic.LandmarkRoles
}

// HasLandmark reports whether the given landmark role is present.
func (f *Fingerprint) HasLandmark(role string) bool {
	for _, l := range f.Landmarks() {
		if l == role {
			return true
		}
	}
	return false
}

// Buttons returns the button bucket, empty on a degraded fingerprint.
func (f *Fingerprint) Buttons() []Element {
	if f == nil || f.Actionable == nil {
		return nil
	}
	return f.Actionable.Buttons
}

// Links returns the link bucket, empty on a degraded fingerprint.
func (f *Fingerprint) Links() []Element {
	if f == nil || f.Actionable == nil {
		return nil
	}
	return f.Actionable.Links
}

// Inputs returns the input bucket, empty on a degraded fingerprint.
func (f *Fingerprint) Inputs() []Element {
	if f == nil || f.Actionable == nil {
		return nil
	}
	return f.Actionable.Inputs
}

func nodeStates(n *a11y.Node) NodeStates {
	return NodeStates{
		Expanded: n.Expanded,
		Selected: n.Selected,
		Checked:  n.Checked,
		Disabled: n.Disabled,
		Pressed:  n.Pressed,
		Current:  n.Current,
	}
}
