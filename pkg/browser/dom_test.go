/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dom_test.go
Description: Tests for the goquery-based DOM helpers: first-heading extraction,
tag-topology hashing, link href harvesting, and form discovery.
*/

package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/aria-state-mapper/pkg/browser"
	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// TestFirstHeading tests extraction of the first h1 text
func TestFirstHeading(t *testing.T) {
	html := `<html><body>
		<h2>Subtitle</h2>
		<h1>  Dashboard  </h1>
		<h1>Second</h1>
	</body></html>`
	assert.Equal(t, "Dashboard", browser.FirstHeading(html))
}

// TestFirstHeadingAbsent tests the empty result for pages without an h1
func TestFirstHeadingAbsent(t *testing.T) {
	assert.Equal(t, "", browser.FirstHeading("<html><body><p>no heading</p></body></html>"))
	assert.Equal(t, "", browser.FirstHeading(""))
}

// TestDOMStructureHashIgnoresTextAndAttributes tests that the hash tracks tag
// topology only
func TestDOMStructureHashIgnoresTextAndAttributes(t *testing.T) {
	a := `<html><body><div class="light"><p>hello</p><p>world</p></div></body></html>`
	b := `<html><body><div class="dark theme"><p>goodbye</p><p>moon</p></div></body></html>`
	c := `<html><body><div><p>hello</p></div></body></html>`

	hashA := browser.DOMStructureHash(a)
	hashB := browser.DOMStructureHash(b)
	hashC := browser.DOMStructureHash(c)

	require.NotEmpty(t, hashA)
	assert.Len(t, hashA, 16)
	assert.Equal(t, hashA, hashB, "styling and text changes must not move the hash")
	assert.NotEqual(t, hashA, hashC, "structural changes must move the hash")
}

// TestDOMStructureHashEmptyBody tests that an empty document hashes to ""
func TestDOMStructureHashEmptyBody(t *testing.T) {
	assert.Equal(t, "", browser.DOMStructureHash(""))
	assert.Equal(t, "", browser.DOMStructureHash("<html><body></body></html>"))
}

// TestLinkHrefs tests text-to-href harvesting with first-wins dedup
func TestLinkHrefs(t *testing.T) {
	html := `<html><body>
		<a href="/products">Products</a>
		<a href="/about"> About </a>
		<a href="/products-v2">Products</a>
		<a href="/unnamed"></a>
		<a>No href</a>
	</body></html>`

	hrefs := browser.LinkHrefs(html)
	assert.Equal(t, map[string]string{
		"Products": "/products",
		"About":    "/about",
	}, hrefs)
}

// TestExtractForms tests form discovery with field filtering and submit
// descriptor construction
func TestExtractForms(t *testing.T) {
	html := `<html><body>
		<form name="login">
			<input type="text" name="username" placeholder="Your name">
			<input type="password" name="password">
			<input type="hidden" name="csrf_token" value="abc">
			<button type="submit" data-testid="login-btn" name="do_login">Sign In</button>
		</form>
	</body></html>`

	forms := browser.ExtractForms(html)
	require.Len(t, forms, 1)

	form := forms[0]
	assert.Equal(t, "login", form.Name)
	require.Len(t, form.Fields, 2, "hidden inputs are not fillable")
	assert.Equal(t, "username", form.Fields[0].Name)
	assert.Equal(t, "text", form.Fields[0].Type)
	assert.Equal(t, "Your name", form.Fields[0].Placeholder)
	assert.Equal(t, "password", form.Fields[1].Type)

	require.True(t, form.Submit.HasLocator())
	assert.Equal(t, "Sign In", form.Submit.Name)
	assert.Equal(t, "login-btn", form.Submit.Locators[model.LocatorTestID])
	assert.Equal(t, "button:Sign In", form.Submit.Locators[model.LocatorRole])
	assert.Equal(t, "Sign In", form.Submit.Locators[model.LocatorText])
	assert.Equal(t, "do_login", form.Submit.Locators[model.LocatorName])
}

// TestExtractFormsUntypedInputs tests the text default for untyped controls
func TestExtractFormsUntypedInputs(t *testing.T) {
	html := `<html><body>
		<form id="feedback">
			<input name="subject">
			<textarea name="body"></textarea>
			<input type="submit" value="Send">
		</form>
	</body></html>`

	forms := browser.ExtractForms(html)
	require.Len(t, forms, 1)
	assert.Equal(t, "feedback", forms[0].Name)
	require.Len(t, forms[0].Fields, 2)
	assert.Equal(t, "text", forms[0].Fields[0].Type)
	assert.Equal(t, "text", forms[0].Fields[1].Type)
	assert.Equal(t, "Send", forms[0].Submit.Name)
}

// TestExtractFormsSkipsEmpty tests that forms with nothing fillable and no
// submit are dropped
func TestExtractFormsSkipsEmpty(t *testing.T) {
	html := `<html><body>
		<form><input type="hidden" name="token"></form>
		<p>no forms here</p>
	</body></html>`
	assert.Empty(t, browser.ExtractForms(html))
	assert.Empty(t, browser.ExtractForms("<html><body></body></html>"))
}

// TestExtractFormsAnonymousName tests the positional fallback name
func TestExtractFormsAnonymousName(t *testing.T) {
	html := `<html><body>
		<form><input type="text" name="q"><button>Go</button></form>
	</body></html>`
	forms := browser.ExtractForms(html)
	require.Len(t, forms, 1)
	assert.Equal(t, "form_0", forms[0].Name)
}
