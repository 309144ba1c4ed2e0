/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: descriptor.go
Description: Element descriptor value type. Carries a priority-ordered map of
locator strategies for re-finding an element across visits, plus a display
name. A descriptor without at least one locator is unusable and is discarded
by its consumers.
*/

package model

import (
	"sort"
	"strings"
)

// Locator strategy keys, in resolution priority order.
const (
	LocatorTestID      = "test_id"
	LocatorRole        = "role" // value is "role:accessible name"
	LocatorText        = "text"
	LocatorHref        = "href"
	LocatorPlaceholder = "placeholder"
	LocatorName        = "name" // name attribute
)

// LocatorPriority is the order in which locator strategies are attempted.
var LocatorPriority = []string{
	LocatorTestID,
	LocatorRole,
	LocatorText,
	LocatorHref,
	LocatorPlaceholder,
	LocatorName,
}

// ElementDescriptor describes one actionable element and how to find it again.
type ElementDescriptor struct {
	ElementType string            `json:"element_type"`
	Locators    map[string]string `json:"locators"`
	Name        string            `json:"name"`
}

// HasLocator reports whether the descriptor carries at least one locator.
func (d ElementDescriptor) HasLocator() bool {
	return len(d.Locators) > 0
}

// Signature is a stable string over the sorted locator map, used both for
// descriptor dedup on states and as the trigger identity proxy in conditional
// transition detection.
func (d ElementDescriptor) Signature() string {
	if len(d.Locators) == 0 {
		return d.ElementType + "|" + d.Name
	}
	keys := make([]string, 0, len(d.Locators))
	for k := range d.Locators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(d.ElementType)
	for _, k := range keys {
		sb.WriteString("|")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(d.Locators[k])
	}
	return sb.String()
}
