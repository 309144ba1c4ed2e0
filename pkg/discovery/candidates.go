/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: candidates.go
Description: Candidate action selection for exploration. Picks safe links from
navigation containers, safe buttons from an allow-list, and form candidates
with synthetic fill values. Destructive-sounding elements are excluded.
*/

package discovery

import (
	"context"
	"strings"

	"github.com/kleascm/aria-state-mapper/pkg/a11y"
	"github.com/kleascm/aria-state-mapper/pkg/browser"
	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// unsafeTokens name actions that may mutate or destroy application data.
var unsafeTokens = []string{"delete", "remove", "destroy", "drop"}

// defaultSafeButtonPatterns are tried when the config supplies none.
var defaultSafeButtonPatterns = []string{
	"view", "show", "open", "details", "expand", "next", "previous",
	"filter", "search", "refresh", "cancel", "close",
}

// LinkCandidate is one link worth following from a state.
type LinkCandidate struct {
	Descriptor model.ElementDescriptor
	Href       string
}

// SafeLinks returns deduplicated link candidates from the current page,
// preferring links inside navigation and tablist containers of the last
// captured accessibility tree. Falls back to all links when no navigation
// container carries any.
func (e *Engine) SafeLinks(state *model.UIState) []LinkCandidate {
	if e.lastTree == nil {
		return nil
	}

	var navLinks, allLinks []*linkNode
	collectLinks(e.lastTree, false, 0, &navLinks, &allLinks)

	links := navLinks
	if len(links) == 0 {
		links = allLinks
	}

	seen := map[string]struct{}{}
	var out []LinkCandidate
	for _, ln := range links {
		if ln.name == "" || !isSafeName(ln.name) {
			continue
		}
		if isExternalHref(ln.href) {
			continue
		}
		key := ln.href + "|" + ln.name
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		d := model.ElementDescriptor{
			ElementType: "link",
			Name:        ln.name,
			Locators: map[string]string{
				model.LocatorRole: "link:" + ln.name,
				model.LocatorText: ln.name,
			},
		}
		if ln.href != "" {
			d.Locators[model.LocatorHref] = ln.href
		}
		out = append(out, LinkCandidate{Descriptor: d, Href: ln.href})
	}
	return out
}

type linkNode struct {
	name string
	href string
}

// Containers whose links are considered primary navigation.
func isNavContainer(role string) bool {
	return role == "navigation" || role == "tablist" || role == "menubar"
}

func collectLinks(node *a11y.Node, inNav bool, depth int, navLinks, allLinks *[]*linkNode) {
	if node == nil || depth > 10 {
		return
	}
	if inNav || isNavContainer(node.Role) {
		inNav = true
	}
	if node.Role == "link" && !node.IsDisabled() {
		ln := &linkNode{name: node.Name, href: node.Value}
		*allLinks = append(*allLinks, ln)
		if inNav {
			*navLinks = append(*navLinks, ln)
		}
	}
	for _, child := range node.Children {
		collectLinks(child, inNav, depth+1, navLinks, allLinks)
	}
}

// SafeButtons returns button descriptors from the state whose names match a
// safe pattern and carry no destructive token.
func (e *Engine) SafeButtons(state *model.UIState) []model.ElementDescriptor {
	patterns := e.cfg.SafeButtonPatterns
	if len(patterns) == 0 {
		patterns = defaultSafeButtonPatterns
	}

	var out []model.ElementDescriptor
	for _, d := range state.ElementDescriptors {
		if d.ElementType != "button" || d.Name == "" {
			continue
		}
		if !isSafeName(d.Name) {
			continue
		}
		if !matchesAnyPattern(d.Name, patterns) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FormCandidate pairs a discovered form with synthetic fill values keyed by
// field name.
type FormCandidate struct {
	Form   browser.FormCandidate
	Values map[string]string
}

// FormCandidates parses the current DOM for fillable forms and assigns
// synthetic values per field type.
func (e *Engine) FormCandidates(ctx context.Context) ([]FormCandidate, error) {
	html, err := e.page.DOM(ctx)
	if err != nil {
		return nil, err
	}

	var out []FormCandidate
	for _, form := range browser.ExtractForms(html) {
		values := map[string]string{}
		for _, field := range form.Fields {
			values[field.Name] = syntheticValue(field)
		}
		if len(values) == 0 {
			continue
		}
		out = append(out, FormCandidate{Form: form, Values: values})
	}
	return out, nil
}

func syntheticValue(field browser.FormField) string {
	switch field.Type {
	case "email":
		return "test@example.com"
	case "password":
		return "password123"
	case "number":
		return "42"
	case "tel":
		return "5551234567"
	case "url":
		return "https://example.com"
	default:
		return "test_value"
	}
}

// redactSecrets replaces password-like values before they are stored in
// transition action data.
func redactSecrets(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for name, value := range fields {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "password") || strings.Contains(lower, "secret") || strings.Contains(lower, "token") {
			out[name] = "********"
			continue
		}
		out[name] = value
	}
	return out
}

func isSafeName(name string) bool {
	lower := strings.ToLower(name)
	for _, token := range unsafeTokens {
		if strings.Contains(lower, token) {
			return false
		}
	}
	return true
}

func matchesAnyPattern(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func isExternalHref(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:")
}
