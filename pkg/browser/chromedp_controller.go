/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: chromedp_controller.go
Description: PageController implementation using chromedp. Provides headless
Chrome automation with network-settlement tracking, accessibility tree capture
via the CDP Accessibility domain, and priority-chain element location for
robust UI state discovery.
*/

package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/accessibility"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/kleascm/aria-state-mapper/pkg/a11y"
	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// Config holds browser session options.
type Config struct {
	Headless bool
	Timeout  time.Duration // per-action timeout
}

// DefaultConfig returns the standard discovery browser configuration.
func DefaultConfig() Config {
	return Config{
		Headless: true,
		Timeout:  10 * time.Second,
	}
}

// ChromeDPController implements PageController using chromedp.
// One controller drives one page; it is not safe for concurrent actions.
type ChromeDPController struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	alloc  context.CancelFunc

	// Network settlement tracking
	netMu        sync.Mutex
	pending      int
	lastActivity time.Time
}

var _ PageController = (*ChromeDPController)(nil)

// NewChromeDPController creates an unstarted controller.
func NewChromeDPController(cfg Config) *ChromeDPController {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &ChromeDPController{cfg: cfg}
}

// Start launches the headless browser and attaches network event listeners
// used for settlement detection.
func (c *ChromeDPController) Start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	c.ctx = browserCtx
	c.cancel = browserCancel
	c.alloc = allocCancel
	c.lastActivity = time.Now()

	chromedp.ListenTarget(c.ctx, func(ev interface{}) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			c.netMu.Lock()
			c.pending++
			c.lastActivity = time.Now()
			c.netMu.Unlock()
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			c.netMu.Lock()
			if c.pending > 0 {
				c.pending--
			}
			c.lastActivity = time.Now()
			c.netMu.Unlock()
		}
	})

	if err := chromedp.Run(c.ctx, network.Enable()); err != nil {
		return fmt.Errorf("failed to start browser session: %w", err)
	}
	return nil
}

// Stop closes the browser.
func (c *ChromeDPController) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if c.alloc != nil {
		c.alloc()
	}
	return nil
}

func (c *ChromeDPController) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.run(chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// WaitSettled polls the network counters until no request has been in flight
// for a quiet window, or the timeout elapses.
func (c *ChromeDPController) WaitSettled(ctx context.Context, timeout time.Duration) error {
	const quietWindow = 500 * time.Millisecond
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.netMu.Lock()
		pending := c.pending
		idle := time.Since(c.lastActivity)
		c.netMu.Unlock()

		if pending == 0 && idle >= quietWindow {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("network did not settle within %s", timeout)
}

func (c *ChromeDPController) GoBack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.run(chromedp.NavigateBack()); err != nil {
		return fmt.Errorf("history back failed: %w", err)
	}
	return nil
}

// CaptureSnapshot fetches the full accessibility tree and enriches link nodes
// with hrefs harvested from the DOM (the AX tree does not expose targets).
func (c *ChromeDPController) CaptureSnapshot(ctx context.Context) (*a11y.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var axNodes []*accessibility.Node
	err := c.run(chromedp.ActionFunc(func(actionCtx context.Context) error {
		if err := accessibility.Enable().Do(actionCtx); err != nil {
			return err
		}
		nodes, err := accessibility.GetFullAXTree().Do(actionCtx)
		if err != nil {
			return err
		}
		axNodes = nodes
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("accessibility snapshot failed: %w", err)
	}

	tree := BuildAXTree(axNodes)
	if tree == nil {
		return nil, fmt.Errorf("accessibility snapshot empty")
	}

	if html, err := c.DOM(ctx); err == nil {
		enrichLinkTargets(tree, LinkHrefs(html), 0)
	}
	return tree, nil
}

func enrichLinkTargets(node *a11y.Node, hrefs map[string]string, depth int) {
	if node == nil || depth > 10 {
		return
	}
	if node.Role == "link" && node.Value == "" {
		if href, ok := hrefs[node.Name]; ok {
			node.Value = href
		}
	}
	for _, child := range node.Children {
		enrichLinkTargets(child, hrefs, depth+1)
	}
}

func (c *ChromeDPController) GetPageState(ctx context.Context) (PageState, error) {
	if err := ctx.Err(); err != nil {
		return PageState{}, err
	}
	var state struct {
		IsLoading bool `json:"is_loading"`
		HasErrors bool `json:"has_errors"`
	}
	const js = `({
		is_loading: document.readyState !== "complete" || !!document.querySelector('[aria-busy="true"]'),
		has_errors: !!document.querySelector('[role="alert"]')
	})`
	if err := c.run(chromedp.Evaluate(js, &state)); err != nil {
		return PageState{}, fmt.Errorf("page state probe failed: %w", err)
	}
	return PageState{IsLoading: state.IsLoading, HasErrors: state.HasErrors}, nil
}

// Locate resolves a descriptor by trying each locator strategy in priority
// order and returning the first that matches at least one element.
// Returns (nil, nil) when nothing resolves.
func (c *ChromeDPController) Locate(ctx context.Context, descriptor model.ElementDescriptor) (*Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, strategy := range model.LocatorPriority {
		value, ok := descriptor.Locators[strategy]
		if !ok || value == "" {
			continue
		}
		el := buildSelector(strategy, value)
		if el == nil {
			continue
		}
		count, err := c.countMatches(el)
		if err != nil {
			continue
		}
		if count > 0 {
			el.Strategy = strategy
			return el, nil
		}
	}
	return nil, nil
}

func (c *ChromeDPController) countMatches(el *Element) (int, error) {
	var count int
	expr := fmt.Sprintf(
		`document.evaluate(%q, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null).snapshotLength`,
		el.Selector,
	)
	if !el.ByXPath {
		expr = fmt.Sprintf(`document.querySelectorAll(%q).length`, el.Selector)
	}
	if err := c.run(chromedp.Evaluate(expr, &count)); err != nil {
		return 0, err
	}
	return count, nil
}

func buildSelector(strategy, value string) *Element {
	switch strategy {
	case model.LocatorTestID:
		return &Element{Selector: fmt.Sprintf(`[data-testid=%q]`, value)}
	case model.LocatorRole:
		role, name := splitRoleValue(value)
		return roleSelector(role, name)
	case model.LocatorText:
		return &Element{
			Selector: fmt.Sprintf(
				`//a[contains(normalize-space(), %s)] | //button[contains(normalize-space(), %s)]`,
				xpathLiteral(value), xpathLiteral(value)),
			ByXPath: true,
		}
	case model.LocatorHref:
		return &Element{Selector: fmt.Sprintf(`a[href*=%q]`, value)}
	case model.LocatorPlaceholder:
		return &Element{Selector: fmt.Sprintf(`[placeholder=%q]`, value)}
	case model.LocatorName:
		return &Element{Selector: fmt.Sprintf(`[name=%q]`, value)}
	default:
		return nil
	}
}

func splitRoleValue(value string) (role, name string) {
	parts := strings.SplitN(value, ":", 2)
	role = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		name = strings.TrimSpace(parts[1])
	}
	return role, name
}

func roleSelector(role, name string) *Element {
	lit := xpathLiteral(name)
	switch role {
	case "button":
		if name == "" {
			return &Element{Selector: `//button | //input[@type="submit"] | //*[@role="button"]`, ByXPath: true}
		}
		return &Element{
			Selector: fmt.Sprintf(
				`//button[normalize-space()=%s] | //input[@type="submit" and @value=%s] | //*[@role="button" and (normalize-space()=%s or @aria-label=%s)]`,
				lit, lit, lit, lit),
			ByXPath: true,
		}
	case "link":
		if name == "" {
			return &Element{Selector: `//a | //*[@role="link"]`, ByXPath: true}
		}
		return &Element{
			Selector: fmt.Sprintf(
				`//a[normalize-space()=%s] | //*[@role="link" and normalize-space()=%s]`,
				lit, lit),
			ByXPath: true,
		}
	case "textbox", "searchbox", "combobox", "spinbutton":
		if name == "" {
			return &Element{Selector: `//input[not(@type="submit") and not(@type="button")] | //textarea`, ByXPath: true}
		}
		return &Element{
			Selector: fmt.Sprintf(
				`//input[@aria-label=%s or @name=%s or @placeholder=%s] | //textarea[@aria-label=%s or @name=%s] | //*[@role=%s and @aria-label=%s]`,
				lit, lit, lit, lit, lit, xpathLiteral(role), lit),
			ByXPath: true,
		}
	default:
		if name == "" {
			return &Element{Selector: fmt.Sprintf(`[role=%q]`, role)}
		}
		return &Element{
			Selector: fmt.Sprintf(`//*[@role=%s and (normalize-space()=%s or @aria-label=%s)]`,
				xpathLiteral(role), lit, lit),
			ByXPath: true,
		}
	}
}

// xpathLiteral quotes a string for use in an XPath expression, handling
// embedded quotes via concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if part != "" {
			quoted = append(quoted, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

func (c *ChromeDPController) Click(ctx context.Context, el *Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("click on nil element")
	}
	if err := c.run(chromedp.Click(el.Selector, c.queryOption(el))); err != nil {
		return fmt.Errorf("click failed on %s: %w", el.Selector, err)
	}
	return nil
}

func (c *ChromeDPController) Fill(ctx context.Context, el *Element, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if el == nil {
		return fmt.Errorf("fill on nil element")
	}
	opt := c.queryOption(el)
	if err := c.run(chromedp.Clear(el.Selector, opt), chromedp.SendKeys(el.Selector, value, opt)); err != nil {
		return fmt.Errorf("fill failed on %s: %w", el.Selector, err)
	}
	return nil
}

func (c *ChromeDPController) ElementText(ctx context.Context, el *Element) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var text string
	if err := c.run(chromedp.Text(el.Selector, &text, c.queryOption(el))); err != nil {
		return "", fmt.Errorf("text read failed on %s: %w", el.Selector, err)
	}
	return strings.TrimSpace(text), nil
}

func (c *ChromeDPController) ElementAttributes(ctx context.Context, el *Element) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	attrs := map[string]string{}
	if err := c.run(chromedp.Attributes(el.Selector, &attrs, c.queryOption(el))); err != nil {
		return nil, fmt.Errorf("attribute read failed on %s: %w", el.Selector, err)
	}
	return attrs, nil
}

func (c *ChromeDPController) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var url string
	if err := c.run(chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("location read failed: %w", err)
	}
	return url, nil
}

func (c *ChromeDPController) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var title string
	if err := c.run(chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("title read failed: %w", err)
	}
	return title, nil
}

func (c *ChromeDPController) FirstHeading(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var heading string
	const js = `(function() { var h = document.querySelector('h1'); return h ? h.textContent.trim() : ''; })()`
	if err := c.run(chromedp.Evaluate(js, &heading)); err != nil {
		return "", fmt.Errorf("heading read failed: %w", err)
	}
	return heading, nil
}

func (c *ChromeDPController) DOM(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var html string
	if err := c.run(chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("DOM read failed: %w", err)
	}
	return html, nil
}

func (c *ChromeDPController) queryOption(el *Element) chromedp.QueryOption {
	if el.ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// run executes chromedp actions against the browser context with the
// per-action timeout applied.
func (c *ChromeDPController) run(actions ...chromedp.Action) error {
	if c.ctx == nil {
		return fmt.Errorf("browser session not started")
	}
	runCtx, cancel := context.WithTimeout(c.ctx, c.cfg.Timeout)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}
