/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fingerprinter.go
Description: State fingerprint generation. Composes accessibility extraction,
URL normalization, and content capture into the multi-dimensional fingerprint
used for fuzzy state matching. Deterministic and side-effect-free; absent
accessibility data degrades to a minimal URL/title fingerprint.
*/

package fingerprint

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kleascm/aria-state-mapper/pkg/a11y"
)

// RootPattern is the sentinel URL pattern for an empty path.
const RootPattern = "root"

// Create generates a fingerprint from a captured accessibility tree and page
// properties. A nil tree yields the degraded fingerprint: URL pattern, route
// params, title, and heading only, with an empty actionable bucket.
func Create(tree *a11y.Node, pageURL, title, mainHeading string) *Fingerprint {
	fp := &Fingerprint{
		URLPattern:  ExtractURLPattern(pageURL),
		RouteParams: ExtractRouteParams(pageURL),
		Title:       title,
		MainHeading: mainHeading,
	}
	if tree == nil {
		fp.Actionable = &ActionableElements{
			Buttons: []Element{},
			Links:   []Element{},
			Inputs:  []Element{},
		}
		return fp
	}
	fp.Semantic = extractSemantic(tree)
	fp.Actionable = extractActionable(tree)
	return fp
}

// ExtractURLPattern normalizes a URL into a stable pattern. For SPAs the
// fragment is preferred over the path, a leading hash-bang is stripped, and
// slashes are trimmed. An empty result yields the "root" sentinel.
// Normalization is idempotent: a pattern fed back in comes out unchanged.
func ExtractURLPattern(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return RootPattern
	}

	path := parsed.Fragment
	if path == "" {
		path = parsed.Path
	}
	// The fragment may carry its own query; the pattern keeps only the path part.
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "!")
	path = strings.Trim(path, "/")

	if path == "" {
		return RootPattern
	}
	return path
}

// ExtractRouteParams collects query parameters from the URL and, for SPAs,
// from the query portion of the fragment. Single-value lists are flattened
// to scalars.
func ExtractRouteParams(rawURL string) map[string]any {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return map[string]any{}
	}

	params := map[string]any{}
	mergeQuery(params, parsed.Query())

	if frag := parsed.Fragment; frag != "" {
		if i := strings.Index(frag, "?"); i >= 0 {
			if values, err := url.ParseQuery(frag[i+1:]); err == nil {
				mergeQuery(params, values)
			}
		}
	}
	return params
}

func mergeQuery(dst map[string]any, values url.Values) {
	for key, list := range values {
		if len(list) == 1 {
			dst[key] = list[0]
		} else {
			dst[key] = list
		}
	}
}

func extractSemantic(tree *a11y.Node) *SemanticFingerprint {
	headings := a11y.ExtractHeadings(tree)
	hierarchy := make([]string, 0, len(headings))
	for _, h := range headings {
		hierarchy = append(hierarchy, fmt.Sprintf("h%d: %s", h.Level, h.Text))
	}

	return &SemanticFingerprint{
		StructureHash:    a11y.HashTreeStructure(tree),
		LandmarkRoles:    a11y.ExtractLandmarks(tree),
		InteractiveCount: a11y.CountInteractive(tree),
		HeadingHierarchy: hierarchy,
		KeyLandmarks:     extractKeyLandmarks(tree),
		AriaStates:       extractAriaStates(tree),
	}
}

// extractKeyLandmarks records named navigation regions plus the main content
// and search areas with their role paths. These anchors survive heavy DOM
// churn and are the strongest cross-visit signal.
func extractKeyLandmarks(tree *a11y.Node) map[string]Landmark {
	landmarks := map[string]Landmark{}
	navCount := 0
	a11y.WalkWithPath(tree, func(n *a11y.Node, path []string) {
		switch {
		case n.Role == "navigation" && n.Name != "":
			key := fmt.Sprintf("nav_%d", navCount)
			navCount++
			landmarks[key] = Landmark{Role: n.Role, Name: n.Name, Path: joinPath(path, n.Role)}
		case n.Role == "main":
			landmarks["main_content"] = Landmark{Role: n.Role, Name: n.Name, Path: joinPath(path, n.Role)}
		case n.Role == "search":
			landmarks["search"] = Landmark{Role: n.Role, Name: n.Name, Path: joinPath(path, n.Role)}
		}
	})
	return landmarks
}

func joinPath(path []string, role string) string {
	return strings.Join(append(append([]string{}, path...), role), " > ")
}

func extractAriaStates(tree *a11y.Node) *AriaStateSummary {
	summary := &AriaStateSummary{
		ExpandedElements:  []StateIndicator{},
		SelectedElements:  []StateIndicator{},
		CheckedElements:   []StateIndicator{},
		CurrentIndicators: []StateIndicator{},
	}
	a11y.WalkWithPath(tree, func(n *a11y.Node, path []string) {
		if n.Expanded != nil {
			summary.ExpandedElements = append(summary.ExpandedElements, StateIndicator{
				Role: n.Role, Name: n.Name, Path: joinPath(path, n.Role), Value: *n.Expanded,
			})
		}
		if n.Selected != nil {
			summary.SelectedElements = append(summary.SelectedElements, StateIndicator{
				Role: n.Role, Name: n.Name, Value: *n.Selected,
			})
		}
		if n.Checked != nil {
			summary.CheckedElements = append(summary.CheckedElements, StateIndicator{
				Role: n.Role, Name: n.Name, Value: *n.Checked,
			})
		}
		if n.IsDisabled() {
			summary.DisabledCount++
		}
		if n.Current != "" {
			summary.CurrentIndicators = append(summary.CurrentIndicators, StateIndicator{
				Role: n.Role, Name: n.Name, Value: true,
			})
		}
	})
	return summary
}

// extractActionable categorizes every actionable element in the tree. The
// locator strategy strings follow the role+name convention the element
// locator resolves first.
func extractActionable(tree *a11y.Node) *ActionableElements {
	actions := &ActionableElements{
		Buttons: []Element{},
		Links:   []Element{},
		Inputs:  []Element{},
	}
	a11y.WalkWithPath(tree, func(n *a11y.Node, _ []string) {
		switch n.Role {
		case "button":
			actions.Buttons = append(actions.Buttons, Element{
				Role:            n.Role,
				Name:            n.Name,
				States:          nodeStates(n),
				LocatorStrategy: fmt.Sprintf("getByRole('button', { name: %q })", n.Name),
			})
		case "link":
			actions.Links = append(actions.Links, Element{
				Role:            n.Role,
				Name:            n.Name,
				Href:            n.Value,
				States:          nodeStates(n),
				LocatorStrategy: fmt.Sprintf("getByRole('link', { name: %q })", n.Name),
			})
		case "textbox", "combobox", "searchbox", "spinbutton":
			strategy := fmt.Sprintf("getByRole(%q)", n.Role)
			if n.Name != "" {
				strategy = fmt.Sprintf("getByLabel(%q)", n.Name)
			}
			actions.Inputs = append(actions.Inputs, Element{
				Role:            n.Role,
				Name:            n.Name,
				States:          nodeStates(n),
				LocatorStrategy: strategy,
			})
		}
	})
	actions.TotalCount = len(actions.Buttons) + len(actions.Links) + len(actions.Inputs)
	return actions
}
