/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: classifier.go
Description: Deterministic state classification. Assigns a human-readable
state type and stable identifier to a fingerprint by evaluating a fixed,
priority-ordered rule table. Pure and total - arbitrary input always produces
a classification, never a fault.
*/

package discovery

import (
	"strings"

	"github.com/kleascm/aria-state-mapper/pkg/fingerprint"
)

// UnknownID is the identifier sentinel for an empty normalization result.
const UnknownID = "UNKNOWN"

// classifierRule evaluates one classification predicate. Returning ok=false
// falls through to the next rule.
type classifierRule struct {
	name string
	eval func(c *classifierContext) (stateType, stateID string, ok bool)
}

// classifierContext precomputes the fingerprint facts the rules share.
type classifierContext struct {
	fp         *fingerprint.Fingerprint
	urlPattern string
	urlLower   string
	titleLower string
}

// classifierRules is the fixed priority order. First match wins.
var classifierRules = []classifierRule{
	{"error", classifyError},
	{"modal", classifyModal},
	{"loading", classifyLoading},
	{"logged-in", classifyLoggedIn},
	{"login-form", classifyLoginForm},
	{"dashboard", classifyDashboard},
	{"list", classifyList},
	{"success", classifySuccess},
	{"default", classifyDefault},
}

// ClassifyState assigns (state_type, state_id) to a fingerprint. The default
// rule always matches, so classification is total.
func ClassifyState(fp *fingerprint.Fingerprint) (string, string) {
	if fp == nil {
		fp = &fingerprint.Fingerprint{}
	}
	ctx := &classifierContext{
		fp:         fp,
		urlPattern: fp.URLPattern,
		urlLower:   strings.ToLower(fp.URLPattern),
		titleLower: strings.ToLower(fp.Title),
	}
	for _, rule := range classifierRules {
		if stateType, stateID, ok := rule.eval(ctx); ok {
			return stateType, stateID
		}
	}
	// Unreachable: classifyDefault always matches.
	return "page", UnknownID
}

// classifyError flags alert landmarks and "error" tokens. An error banner on
// a login page is still a login page, so that combination falls through.
func classifyError(c *classifierContext) (string, string, bool) {
	hasError := c.fp.HasLandmark("alert") ||
		strings.Contains(c.urlLower, "error") ||
		strings.Contains(c.titleLower, "error")
	if !hasError {
		return "", "", false
	}
	if c.hasFormLandmark() && c.hasLoginButton() {
		return "", "", false
	}
	if strings.Contains(c.urlLower, "login") || strings.Contains(c.titleLower, "login") {
		return "error", "V_LOGIN_FORM_ERROR", true
	}
	return "error", "V_ERROR_" + NormalizeName(c.urlPattern), true
}

func classifyModal(c *classifierContext) (string, string, bool) {
	if !c.hasActionableRole("dialog") {
		return "", "", false
	}
	return "modal", "V_MODAL_" + NormalizeName(c.urlPattern), true
}

func classifyLoading(c *classifierContext) (string, string, bool) {
	loading := strings.Contains(c.urlLower, "loading")
	if !loading {
		for _, btn := range c.fp.Buttons() {
			if btn.States.Disabled != nil && *btn.States.Disabled &&
				strings.Contains(strings.ToLower(btn.Name), "load") {
				loading = true
				break
			}
		}
	}
	if !loading {
		return "", "", false
	}
	return "loading", "V_LOADING_" + NormalizeName(c.urlPattern), true
}

// classifyLoggedIn derives type and id from the URL once a logout control and
// a navigation landmark prove an authenticated session.
func classifyLoggedIn(c *classifierContext) (string, string, bool) {
	if !c.hasLogout() || !c.fp.HasLandmark("navigation") {
		return "", "", false
	}
	if strings.Contains(c.urlLower, "overview") || strings.Contains(c.titleLower, "overview") {
		return "dashboard", "V_OVERVIEW_PAGE", true
	}
	stateID := "V_" + NormalizeName(c.urlPattern)
	switch {
	case strings.Contains(c.urlLower, "admin"):
		return "admin", stateID, true
	case strings.Contains(c.urlLower, "list") || c.hasActionableRole("table"):
		return "list", stateID, true
	default:
		return "page", stateID, true
	}
}

func classifyLoginForm(c *classifierContext) (string, string, bool) {
	onLoginPage := c.hasFormLandmark() ||
		strings.Contains(c.urlLower, "login") ||
		strings.Contains(c.titleLower, "login")
	if onLoginPage && c.hasLoginButton() && !c.hasLogout() {
		return "form", "V_LOGIN_FORM_EMPTY", true
	}
	return "", "", false
}

func classifyDashboard(c *classifierContext) (string, string, bool) {
	if !c.fp.HasLandmark("main") {
		return "", "", false
	}
	if strings.Contains(c.urlLower, "dashboard") ||
		strings.Contains(c.titleLower, "dashboard") ||
		strings.Contains(c.urlLower, "overview") {
		return "dashboard", "V_DASHBOARD_LOADED", true
	}
	return "", "", false
}

func classifyList(c *classifierContext) (string, string, bool) {
	if c.fp.HasLandmark("navigation") && c.hasActionableRole("table") {
		return "list", "V_LIST_" + NormalizeName(c.urlPattern), true
	}
	return "", "", false
}

func classifySuccess(c *classifierContext) (string, string, bool) {
	if c.fp.HasLandmark("status") {
		return "success", "V_SUCCESS_" + NormalizeName(c.urlPattern), true
	}
	return "", "", false
}

func classifyDefault(c *classifierContext) (string, string, bool) {
	return "page", "V_" + NormalizeName(c.urlPattern), true
}

var loginButtonNames = map[string]struct{}{
	"login": {}, "log in": {}, "sign in": {},
}

var logoutNames = map[string]struct{}{
	"logout": {}, "log out": {}, "sign out": {},
}

func (c *classifierContext) hasLoginButton() bool {
	for _, btn := range c.fp.Buttons() {
		if _, ok := loginButtonNames[strings.ToLower(btn.Name)]; ok {
			return true
		}
	}
	return false
}

func (c *classifierContext) hasLogout() bool {
	for _, btn := range c.fp.Buttons() {
		if _, ok := logoutNames[strings.ToLower(btn.Name)]; ok {
			return true
		}
	}
	for _, link := range c.fp.Links() {
		if _, ok := logoutNames[strings.ToLower(link.Name)]; ok {
			return true
		}
	}
	return false
}

func (c *classifierContext) hasFormLandmark() bool {
	return c.fp.HasLandmark("form")
}

func (c *classifierContext) hasActionableRole(role string) bool {
	for _, el := range c.fp.Buttons() {
		if el.Role == role {
			return true
		}
	}
	for _, el := range c.fp.Links() {
		if el.Role == role {
			return true
		}
	}
	for _, el := range c.fp.Inputs() {
		if el.Role == role {
			return true
		}
	}
	return false
}

// NormalizeName turns a URL pattern into a stable identifier fragment:
// path separators and punctuation become underscores, the result is trimmed
// and uppercased. An empty result yields the UNKNOWN sentinel.
func NormalizeName(text string) string {
	replacer := strings.NewReplacer("/", "_", "#", "_", "!", "_", "-", "_", ".", "_")
	normalized := replacer.Replace(text)
	normalized = strings.Trim(normalized, "_")
	normalized = strings.ToUpper(normalized)
	if normalized == "" {
		return UnknownID
	}
	return normalized
}
