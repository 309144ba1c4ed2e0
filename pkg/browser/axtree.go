/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: axtree.go
Description: Converts the flat AXNode list returned by the CDP Accessibility
domain into the tree model consumed by the fingerprinter. Ignored nodes are
elided with their children promoted, and ARIA state properties are lifted
onto the node.
*/

package browser

import (
	"encoding/json"
	"strings"

	"github.com/chromedp/cdproto/accessibility"

	"github.com/kleascm/aria-state-mapper/pkg/a11y"
)

// BuildAXTree assembles an accessibility tree from CDP's flat node list.
// Returns nil when the list has no usable root.
func BuildAXTree(nodes []*accessibility.Node) *a11y.Node {
	if len(nodes) == 0 {
		return nil
	}

	index := make(map[accessibility.NodeID]*accessibility.Node, len(nodes))
	for _, n := range nodes {
		index[n.NodeID] = n
	}

	// The root is the node without a parent; CDP puts it first.
	var root *accessibility.Node
	for _, n := range nodes {
		if n.ParentID == "" {
			root = n
			break
		}
	}
	if root == nil {
		root = nodes[0]
	}

	built := buildNode(root, index, 0)
	if built == nil {
		// Root was ignored: wrap the promoted children.
		built = &a11y.Node{Role: "root"}
		for _, childID := range root.ChildIDs {
			if child, ok := index[childID]; ok {
				appendChild(built, buildNode(child, index, 1))
			}
		}
	}
	return built
}

// buildNode converts one AXNode. Ignored nodes return nil and callers promote
// their children. Depth is bounded defensively; the fingerprinter re-bounds
// its own walks.
func buildNode(axNode *accessibility.Node, index map[accessibility.NodeID]*accessibility.Node, depth int) *a11y.Node {
	if axNode == nil || depth > 64 {
		return nil
	}

	if axNode.Ignored {
		promoted := &a11y.Node{Role: "generic"}
		for _, childID := range axNode.ChildIDs {
			if child, ok := index[childID]; ok {
				appendChild(promoted, buildNode(child, index, depth+1))
			}
		}
		if len(promoted.Children) == 1 {
			return promoted.Children[0]
		}
		if len(promoted.Children) == 0 {
			return nil
		}
		return promoted
	}

	node := &a11y.Node{
		Role: axString(axNode.Role),
		Name: axString(axNode.Name),
	}
	if node.Role == "" {
		node.Role = "generic"
	}

	for _, prop := range axNode.Properties {
		if prop == nil || prop.Value == nil {
			continue
		}
		switch string(prop.Name) {
		case "level":
			node.Level = axInt(prop.Value)
		case "expanded":
			node.Expanded = axBoolPtr(prop.Value)
		case "selected":
			node.Selected = axBoolPtr(prop.Value)
		case "checked":
			node.Checked = axBoolPtr(prop.Value)
		case "disabled":
			node.Disabled = axBoolPtr(prop.Value)
		case "pressed":
			node.Pressed = axBoolPtr(prop.Value)
		case "current":
			node.Current = axCurrent(prop.Value)
		case "url":
			node.Value = axString(prop.Value)
		}
	}

	for _, childID := range axNode.ChildIDs {
		if child, ok := index[childID]; ok {
			appendChild(node, buildNode(child, index, depth+1))
		}
	}
	return node
}

func appendChild(parent, child *a11y.Node) {
	if child != nil {
		parent.Children = append(parent.Children, child)
	}
}

func axString(v *accessibility.Value) string {
	if v == nil || len(v.Value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(v.Value), &s); err == nil {
		return s
	}
	return strings.Trim(string(v.Value), `"`)
}

func axInt(v *accessibility.Value) int {
	if v == nil || len(v.Value) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal([]byte(v.Value), &f); err == nil {
		return int(f)
	}
	return 0
}

// axBoolPtr interprets boolean-ish AX values ("true", true, "mixed").
func axBoolPtr(v *accessibility.Value) *bool {
	if v == nil || len(v.Value) == 0 {
		return nil
	}
	raw := []byte(v.Value)
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		val := s == "true" || s == "mixed"
		return &val
	}
	return nil
}

// axCurrent normalizes aria-current values: "false" and false mean absent.
func axCurrent(v *accessibility.Value) string {
	if v == nil || len(v.Value) == 0 {
		return ""
	}
	raw := []byte(v.Value)
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return "true"
		}
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "false" {
		return s
	}
	return ""
}
