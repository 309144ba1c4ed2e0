/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: classifier_test.go
Description: Tests for deterministic state classification. Exercises every
rule of the priority table, the login/error fallthrough, totality on arbitrary
input, and identifier normalization.
*/

package discovery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kleascm/aria-state-mapper/pkg/discovery"
	"github.com/kleascm/aria-state-mapper/pkg/fingerprint"
)

func fpWith(urlPattern, title string, landmarks []string, buttons, links []fingerprint.Element) *fingerprint.Fingerprint {
	return &fingerprint.Fingerprint{
		Semantic: &fingerprint.SemanticFingerprint{
			LandmarkRoles: landmarks,
		},
		Actionable: &fingerprint.ActionableElements{
			Buttons:    buttons,
			Links:      links,
			Inputs:     []fingerprint.Element{},
			TotalCount: len(buttons) + len(links),
		},
		URLPattern: urlPattern,
		Title:      title,
	}
}

func named(names ...string) []fingerprint.Element {
	out := make([]fingerprint.Element, 0, len(names))
	for _, n := range names {
		out = append(out, fingerprint.Element{Role: "button", Name: n})
	}
	return out
}

// TestClassifyTotality tests that arbitrary input always classifies
func TestClassifyTotality(t *testing.T) {
	stateType, stateID := discovery.ClassifyState(nil)
	assert.Equal(t, "page", stateType)
	assert.Equal(t, "V_"+discovery.UnknownID, stateID)

	stateType, stateID = discovery.ClassifyState(&fingerprint.Fingerprint{})
	assert.Equal(t, "page", stateType)
	assert.Equal(t, "V_"+discovery.UnknownID, stateID)
}

// TestClassifyError tests the error rule and its login variant
func TestClassifyError(t *testing.T) {
	stateType, stateID := discovery.ClassifyState(fpWith("error/500", "Server Error", []string{"alert"}, nil, nil))
	assert.Equal(t, "error", stateType)
	assert.Equal(t, "V_ERROR_ERROR_500", stateID)

	stateType, stateID = discovery.ClassifyState(fpWith("login", "Login Error", []string{"alert"}, nil, nil))
	assert.Equal(t, "error", stateType)
	assert.Equal(t, "V_LOGIN_FORM_ERROR", stateID)
}

// TestErrorOnLoginFormFallsThrough tests that an error banner on a live login
// form still classifies as the login form
func TestErrorOnLoginFormFallsThrough(t *testing.T) {
	fp := fpWith("login", "Login Error", []string{"form", "alert"}, named("Login"), nil)
	stateType, stateID := discovery.ClassifyState(fp)
	assert.Equal(t, "form", stateType)
	assert.Equal(t, "V_LOGIN_FORM_EMPTY", stateID)
}

// TestClassifyModal tests dialog detection
func TestClassifyModal(t *testing.T) {
	buttons := []fingerprint.Element{{Role: "dialog", Name: "Confirm"}}
	stateType, stateID := discovery.ClassifyState(fpWith("items", "Items", []string{"main"}, buttons, nil))
	assert.Equal(t, "modal", stateType)
	assert.Equal(t, "V_MODAL_ITEMS", stateID)
}

// TestClassifyLoading tests loading detection by URL and by disabled button
func TestClassifyLoading(t *testing.T) {
	stateType, _ := discovery.ClassifyState(fpWith("loading", "", nil, nil, nil))
	assert.Equal(t, "loading", stateType)

	disabled := true
	buttons := []fingerprint.Element{{Role: "button", Name: "Loading...", States: fingerprint.NodeStates{Disabled: &disabled}}}
	stateType, _ = discovery.ClassifyState(fpWith("items", "Items", nil, buttons, nil))
	assert.Equal(t, "loading", stateType)
}

// TestClassifyLoggedIn tests authenticated session detection and its subtypes
func TestClassifyLoggedIn(t *testing.T) {
	stateType, stateID := discovery.ClassifyState(fpWith("overview", "Overview", []string{"navigation"}, named("Logout"), nil))
	assert.Equal(t, "dashboard", stateType)
	assert.Equal(t, "V_OVERVIEW_PAGE", stateID)

	stateType, stateID = discovery.ClassifyState(fpWith("admin/users", "Users", []string{"navigation"}, named("Sign Out"), nil))
	assert.Equal(t, "admin", stateType)
	assert.Equal(t, "V_ADMIN_USERS", stateID)

	stateType, _ = discovery.ClassifyState(fpWith("items/list", "Items", []string{"navigation"}, named("Logout"), nil))
	assert.Equal(t, "list", stateType)

	stateType, stateID = discovery.ClassifyState(fpWith("profile", "Profile", []string{"navigation"}, named("Logout"), nil))
	assert.Equal(t, "page", stateType)
	assert.Equal(t, "V_PROFILE", stateID)
}

// TestClassifyLoginForm tests login form detection
func TestClassifyLoginForm(t *testing.T) {
	stateType, stateID := discovery.ClassifyState(fpWith("login", "Sign In", nil, named("Sign In"), nil))
	assert.Equal(t, "form", stateType)
	assert.Equal(t, "V_LOGIN_FORM_EMPTY", stateID)

	// A login button next to a logout control is not a login form.
	stateType, _ = discovery.ClassifyState(fpWith("login", "Sign In", []string{"navigation"}, named("Login", "Logout"), nil))
	assert.NotEqual(t, "form", stateType)
}

// TestClassifyDashboard tests dashboard detection without a logout control
func TestClassifyDashboard(t *testing.T) {
	stateType, stateID := discovery.ClassifyState(fpWith("dashboard", "Dashboard", []string{"main"}, nil, nil))
	assert.Equal(t, "dashboard", stateType)
	assert.Equal(t, "V_DASHBOARD_LOADED", stateID)
}

// TestClassifyList tests table-driven list detection
func TestClassifyList(t *testing.T) {
	buttons := []fingerprint.Element{{Role: "table", Name: "Results"}}
	stateType, stateID := discovery.ClassifyState(fpWith("items", "Items", []string{"navigation"}, buttons, nil))
	assert.Equal(t, "list", stateType)
	assert.Equal(t, "V_LIST_ITEMS", stateID)
}

// TestClassifySuccess tests status landmark detection
func TestClassifySuccess(t *testing.T) {
	stateType, stateID := discovery.ClassifyState(fpWith("checkout/done", "Done", []string{"status"}, nil, nil))
	assert.Equal(t, "success", stateType)
	assert.Equal(t, "V_SUCCESS_CHECKOUT_DONE", stateID)
}

// TestClassifyDefault tests the catch-all rule
func TestClassifyDefault(t *testing.T) {
	stateType, stateID := discovery.ClassifyState(fpWith("some/page", "Some Page", nil, nil, nil))
	assert.Equal(t, "page", stateType)
	assert.Equal(t, "V_SOME_PAGE", stateID)
}

// TestNormalizeName tests identifier normalization
func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ADMIN_USERS", discovery.NormalizeName("admin/users"))
	assert.Equal(t, "MY_PAGE_HTML", discovery.NormalizeName("my-page.html"))
	assert.Equal(t, "INBOX", discovery.NormalizeName("#!/inbox/"))
	assert.Equal(t, discovery.UnknownID, discovery.NormalizeName(""))
	assert.Equal(t, discovery.UnknownID, discovery.NormalizeName("///"))
}
