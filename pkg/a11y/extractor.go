/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: extractor.go
Description: Pure extraction functions over accessibility trees. Provides
topology hashing, landmark extraction, interactive element counting, and
heading extraction. All walks are bounded to depth 10 so malformed or cyclic
input degrades to partial results instead of faulting.
*/

package a11y

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// maxWalkDepth bounds every recursive tree walk.
const maxWalkDepth = 10

// nameTruncateLen limits how much of the accessible name participates in the
// structure hash, so copy edits don't change topology identity.
const nameTruncateLen = 20

// landmarkRoles is the fixed set of ARIA landmark roles.
var landmarkRoles = map[string]struct{}{
	"banner":        {},
	"navigation":    {},
	"main":          {},
	"contentinfo":   {},
	"complementary": {},
	"search":        {},
	"form":          {},
	"region":        {},
}

// interactiveRoles is the fixed set of roles counted as interactive.
var interactiveRoles = map[string]struct{}{
	"button":     {},
	"link":       {},
	"textbox":    {},
	"combobox":   {},
	"checkbox":   {},
	"radio":      {},
	"searchbox":  {},
	"spinbutton": {},
	"menuitem":   {},
}

// IsLandmarkRole reports whether role is one of the fixed ARIA landmark roles.
func IsLandmarkRole(role string) bool {
	_, ok := landmarkRoles[role]
	return ok
}

// IsInteractiveRole reports whether role is counted as interactive.
func IsInteractiveRole(role string) bool {
	_, ok := interactiveRoles[role]
	return ok
}

// HashTreeStructure generates a stable hash of the tree topology.
// The hash covers roles and truncated names only, so full text changes and
// attribute churn do not change state identity.
func HashTreeStructure(tree *Node) string {
	if tree == nil {
		return ""
	}
	var sb strings.Builder
	writeTopology(&sb, tree, 0)
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])[:16]
}

func writeTopology(sb *strings.Builder, node *Node, depth int) {
	if node == nil || depth > maxWalkDepth {
		return
	}
	name := node.Name
	if len(name) > nameTruncateLen {
		name = name[:nameTruncateLen]
	}
	fmt.Fprintf(sb, "(%s|%s", node.Role, name)
	for _, child := range node.Children {
		writeTopology(sb, child, depth+1)
	}
	sb.WriteString(")")
}

// ExtractLandmarks collects every landmark role present in the tree, in
// document order. Duplicates are kept - two navigation regions are a
// different page shape than one.
func ExtractLandmarks(tree *Node) []string {
	var landmarks []string
	walk(tree, 0, func(n *Node) {
		if IsLandmarkRole(n.Role) {
			landmarks = append(landmarks, n.Role)
		}
	})
	return landmarks
}

// CountInteractive counts interactive elements in the tree.
func CountInteractive(tree *Node) int {
	count := 0
	walk(tree, 0, func(n *Node) {
		if IsInteractiveRole(n.Role) {
			count++
		}
	})
	return count
}

// ExtractHeadings collects heading nodes with a level and a non-empty name.
func ExtractHeadings(tree *Node) []Heading {
	var headings []Heading
	walk(tree, 0, func(n *Node) {
		if n.Role == "heading" && n.Name != "" {
			headings = append(headings, Heading{Level: n.Level, Text: n.Name})
		}
	})
	return headings
}

// walk visits every node depth-first up to maxWalkDepth. Absent input
// yields no visits, never a fault.
func walk(node *Node, depth int, visit func(*Node)) {
	if node == nil || depth > maxWalkDepth {
		return
	}
	visit(node)
	for _, child := range node.Children {
		walk(child, depth+1, visit)
	}
}

// WalkWithPath visits every node with the role path from the root (root role
// first, the node's own role excluded). Used by the fingerprinter to record
// landmark paths.
func WalkWithPath(node *Node, visit func(n *Node, path []string)) {
	walkPath(node, 0, nil, visit)
}

func walkPath(node *Node, depth int, path []string, visit func(*Node, []string)) {
	if node == nil || depth > maxWalkDepth {
		return
	}
	visit(node, path)
	childPath := append(path[:len(path):len(path)], node.Role)
	for _, child := range node.Children {
		walkPath(child, depth+1, childPath, visit)
	}
}
