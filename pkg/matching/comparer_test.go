/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: comparer_test.go
Description: Tests for weighted fuzzy state comparison. Covers identity,
symmetry, dimension renormalization, degraded fingerprints, threshold
behavior, and best-match lookup.
*/

package matching_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/aria-state-mapper/pkg/fingerprint"
	"github.com/kleascm/aria-state-mapper/pkg/matching"
	"github.com/kleascm/aria-state-mapper/pkg/model"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func elements(names ...string) []fingerprint.Element {
	out := make([]fingerprint.Element, 0, len(names))
	for _, n := range names {
		out = append(out, fingerprint.Element{Name: n})
	}
	return out
}

func dashboardFingerprint() *fingerprint.Fingerprint {
	buttons := elements("Refresh", "Export")
	links := elements("Home", "Settings")
	return &fingerprint.Fingerprint{
		Semantic: &fingerprint.SemanticFingerprint{
			StructureHash:    "abc123",
			LandmarkRoles:    []string{"banner", "navigation", "main"},
			InteractiveCount: 4,
			HeadingHierarchy: []string{"h1: Dashboard"},
		},
		Actionable: &fingerprint.ActionableElements{
			Buttons:    buttons,
			Links:      links,
			Inputs:     []fingerprint.Element{},
			TotalCount: len(buttons) + len(links),
		},
		URLPattern:  "dashboard",
		Title:       "Dashboard",
		MainHeading: "Dashboard",
		DOMHash:     "dom-v1",
	}
}

// TestIdentitySimilarity tests that a fingerprint compared to itself scores 1.0
func TestIdentitySimilarity(t *testing.T) {
	c := matching.NewComparer(quietLogger())
	fp := dashboardFingerprint()
	assert.InDelta(t, 1.0, c.CalculateSimilarity(fp, fp), 1e-9)
}

// TestIdentitySimilarityDegraded tests identity for a minimal fingerprint:
// dimensions absent on both sides drop out instead of dragging the score down
func TestIdentitySimilarityDegraded(t *testing.T) {
	c := matching.NewComparer(quietLogger())
	fp := fingerprint.Create(nil, "https://app.example.com/login", "Login", "")
	assert.InDelta(t, 1.0, c.CalculateSimilarity(fp, fp), 1e-9)
}

// TestSimilaritySymmetry tests that argument order does not matter
func TestSimilaritySymmetry(t *testing.T) {
	c := matching.NewComparer(quietLogger())
	a := dashboardFingerprint()
	b := dashboardFingerprint()
	b.Title = "Dashboard v2"
	b.Actionable.Buttons = elements("Refresh")
	b.Actionable.TotalCount = 3

	assert.InDelta(t, c.CalculateSimilarity(a, b), c.CalculateSimilarity(b, a), 1e-9)
}

// TestNilFingerprint tests the nil edge case
func TestNilFingerprint(t *testing.T) {
	c := matching.NewComparer(quietLogger())
	assert.Equal(t, 0.0, c.CalculateSimilarity(nil, dashboardFingerprint()))
	assert.Equal(t, 0.0, c.CalculateSimilarity(dashboardFingerprint(), nil))
}

// TestLostTreeIsNotSamePage tests that a fingerprint that lost its whole
// accessibility tree scores far below the match threshold against the full one
func TestLostTreeIsNotSamePage(t *testing.T) {
	c := matching.NewComparer(quietLogger())
	full := dashboardFingerprint()
	degraded := fingerprint.Create(nil, "https://app.example.com/dashboard", "Dashboard", "Dashboard")

	score := c.CalculateSimilarity(full, degraded)
	assert.Less(t, score, matching.WeakMatch)
}

// TestCosmeticDriftStaysStrong tests that title and style churn alone cannot
// break a match when structure and behavior are intact
func TestCosmeticDriftStaysStrong(t *testing.T) {
	c := matching.NewComparer(quietLogger())
	a := dashboardFingerprint()
	b := dashboardFingerprint()
	b.Title = "Dashboard - updated"
	b.DOMHash = "dom-v2"

	score := c.CalculateSimilarity(a, b)
	assert.GreaterOrEqual(t, score, matching.StrongMatch)
}

// TestActionDriftLandsInModifiedBand tests that element churn on an otherwise
// identical page scores in the modified band: matched, but not strongly
func TestActionDriftLandsInModifiedBand(t *testing.T) {
	c := matching.NewComparer(quietLogger())
	a := dashboardFingerprint()
	a.Actionable.Buttons = elements("Save", "Cancel", "Export")
	a.Actionable.Links = elements("Home", "Settings")
	a.Actionable.TotalCount = 5

	b := dashboardFingerprint()
	b.Actionable.Buttons = elements("Save")
	b.Actionable.Links = elements("Home")
	b.Actionable.TotalCount = 2
	b.Title = "Dashboard v2"
	b.MainHeading = "Dashboard v2"
	b.DOMHash = ""
	a.DOMHash = ""

	score := c.CalculateSimilarity(a, b)
	assert.GreaterOrEqual(t, score, matching.MatchThreshold)
	assert.Less(t, score, matching.StrongMatch)
}

// TestDifferentPagesStayBelowThreshold tests that two genuinely different
// pages never cross the match threshold
func TestDifferentPagesStayBelowThreshold(t *testing.T) {
	c := matching.NewComparer(quietLogger())

	admin := dashboardFingerprint()
	admin.URLPattern = "admin/users"
	admin.Semantic.LandmarkRoles = []string{"banner", "navigation", "main"}
	admin.Semantic.HeadingHierarchy = []string{"h1: User Management"}
	admin.Actionable.Buttons = elements("Add User", "Export")
	admin.Actionable.Links = elements("Home", "Roles")
	admin.Actionable.TotalCount = 4
	admin.Title = "Admin - Users"
	admin.MainHeading = "User Management"

	login := dashboardFingerprint()
	login.URLPattern = "login"
	login.Semantic.LandmarkRoles = []string{"main", "form"}
	login.Semantic.InteractiveCount = 3
	login.Semantic.HeadingHierarchy = []string{"h1: Sign In"}
	login.Actionable.Buttons = elements("Login")
	login.Actionable.Links = elements("Forgot password?")
	login.Actionable.Inputs = elements("Username", "Password")
	login.Actionable.TotalCount = 4
	login.Title = "Sign In"
	login.MainHeading = "Sign In"

	score := c.CalculateSimilarity(admin, login)
	assert.Less(t, score, matching.MatchThreshold)
}

// TestURLPatternPartialCredit tests positional path segment matching
func TestURLPatternPartialCredit(t *testing.T) {
	c := matching.NewComparer(quietLogger())
	a := &fingerprint.Fingerprint{URLPattern: "admin/users"}
	b := &fingerprint.Fingerprint{URLPattern: "admin/roles"}

	// Structural is the only populated dimension, so the score is the raw
	// segment ratio.
	assert.InDelta(t, 0.5, c.CalculateSimilarity(a, b), 1e-9)
}

// TestFindMatchingState tests best-match lookup with threshold filtering
func TestFindMatchingState(t *testing.T) {
	c := matching.NewComparer(quietLogger())

	dashboard := model.NewUIState("V_DASHBOARD_LOADED", "dashboard", dashboardFingerprint())
	other := dashboardFingerprint()
	other.URLPattern = "reports"
	other.Semantic.HeadingHierarchy = []string{"h1: Reports"}
	other.Title = "Reports"
	other.MainHeading = "Reports"
	reports := model.NewUIState("V_REPORTS", "page", other)

	candidate := dashboardFingerprint()
	candidate.DOMHash = "dom-v2" // cosmetic drift only

	match, score := c.FindMatchingState(candidate, []*model.UIState{reports, dashboard}, matching.MatchThreshold)
	require.NotNil(t, match)
	assert.Equal(t, "V_DASHBOARD_LOADED", match.StateID)
	assert.GreaterOrEqual(t, score, matching.MatchThreshold)

	// A fingerprint unlike any known state matches nothing.
	stranger := fingerprint.Create(nil, "https://app.example.com/totally/new", "New", "")
	match, score = c.FindMatchingState(stranger, []*model.UIState{reports, dashboard}, matching.MatchThreshold)
	assert.Nil(t, match)
	assert.Zero(t, score)
}
