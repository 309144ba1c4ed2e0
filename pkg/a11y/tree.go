/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tree.go
Description: Accessibility tree node model. Platform-agnostic representation of
a captured accessibility snapshot (role, accessible name, ARIA states, children)
consumed by the extractors and the state fingerprinter.
*/

package a11y

// Node is a single node of a captured accessibility tree.
// ARIA state attributes use pointers so that "attribute absent" is
// distinguishable from "attribute false" - the fingerprinter relies on
// that distinction when summarizing dynamic state.
type Node struct {
	Role     string  `json:"role"`
	Name     string  `json:"name,omitempty"`
	Level    int     `json:"level,omitempty"`
	Value    string  `json:"value,omitempty"` // link target for role=link
	Expanded *bool   `json:"expanded,omitempty"`
	Selected *bool   `json:"selected,omitempty"`
	Checked  *bool   `json:"checked,omitempty"`
	Disabled *bool   `json:"disabled,omitempty"`
	Pressed  *bool   `json:"pressed,omitempty"`
	Current  string  `json:"current,omitempty"` // aria-current: "page", "step", "true", ...
	Children []*Node `json:"children,omitempty"`
}

// Heading is a single entry of the heading hierarchy.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// IsDisabled reports whether the node carries aria-disabled=true.
func (n *Node) IsDisabled() bool {
	return n != nil && n.Disabled != nil && *n.Disabled
}
