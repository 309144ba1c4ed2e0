/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Browser automation interfaces for UI state discovery. Defines
PageController, the single boundary between the discovery engine and a real
browser, plus the element handle and page state types exchanged across it.
*/

package browser

import (
	"context"
	"time"

	"github.com/kleascm/aria-state-mapper/pkg/a11y"
	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// Element is an opaque handle to a located page element. The controller that
// produced it knows how to act on it.
type Element struct {
	Selector string // CSS selector or XPath expression
	ByXPath  bool
	Strategy string // locator strategy key that resolved it
}

// PageState is the stabilization signal polled before fingerprint capture.
type PageState struct {
	IsLoading bool // derived from aria-busy / document readiness
	HasErrors bool // derived from role=alert presence
}

// PageController abstracts browser automation for one mutable browsing
// context. All navigation shares one page: callers must not issue two
// in-flight actions concurrently.
type PageController interface {
	// Start launches the browser session. Failure here is the only fatal
	// error in a discovery run.
	Start(ctx context.Context) error
	Stop() error

	Navigate(ctx context.Context, url string) error
	// WaitSettled blocks until in-flight network activity quiesces or the
	// timeout elapses (in which case it returns an error and the caller
	// falls back to a fixed sleep).
	WaitSettled(ctx context.Context, timeout time.Duration) error
	GoBack(ctx context.Context) error

	// CaptureSnapshot returns the accessibility tree of the current page,
	// or an error when capture is impossible (callers degrade to a
	// minimal fingerprint).
	CaptureSnapshot(ctx context.Context) (*a11y.Node, error)
	GetPageState(ctx context.Context) (PageState, error)

	// Locate resolves a descriptor through its locator priority chain.
	// Returns (nil, nil) when no strategy resolves to an element.
	Locate(ctx context.Context, descriptor model.ElementDescriptor) (*Element, error)
	Click(ctx context.Context, el *Element) error
	Fill(ctx context.Context, el *Element, value string) error
	ElementText(ctx context.Context, el *Element) (string, error)
	ElementAttributes(ctx context.Context, el *Element) (map[string]string, error)

	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	FirstHeading(ctx context.Context) (string, error)
	// DOM returns the current page HTML, used for DOM-level hashing and
	// form discovery.
	DOM(ctx context.Context) (string, error)
}
