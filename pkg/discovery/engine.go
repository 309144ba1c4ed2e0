/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: State discovery engine core. Owns the growing FSM model (states,
transitions), captures fuzzy fingerprints from the live page, deduplicates
states through weighted similarity matching, and records executed transitions
with conditional-edge detection.
*/

package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/aria-state-mapper/pkg/a11y"
	"github.com/kleascm/aria-state-mapper/pkg/browser"
	"github.com/kleascm/aria-state-mapper/pkg/fingerprint"
	"github.com/kleascm/aria-state-mapper/pkg/matching"
	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// Strategy selects the exploration order.
type Strategy string

const (
	StrategyDFS Strategy = "dfs"
	StrategyBFS Strategy = "bfs"
)

// Exploration limits applied when Config leaves them zero.
const (
	defaultMaxStates     = 100
	defaultMaxDepth      = 10
	defaultActionTimeout = 10 * time.Second
)

// How many candidate elements are attempted per state during exploration.
const (
	maxLinksPerState   = 10
	maxButtonsPerState = 5
)

// Config holds the discovery run parameters.
type Config struct {
	BaseURL            string
	Username           string
	Password           string
	Strategy           Strategy
	MaxStates          int
	MaxDepth           int
	ActionTimeout      time.Duration
	SafeButtonPatterns []string
	SeedPath           string
	SkipLoginDiscovery bool
}

func (c *Config) applyDefaults() {
	if c.MaxStates <= 0 {
		c.MaxStates = defaultMaxStates
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = defaultMaxDepth
	}
	if c.ActionTimeout <= 0 {
		c.ActionTimeout = defaultActionTimeout
	}
	if c.Strategy == "" {
		c.Strategy = StrategyDFS
	}
}

// Engine drives a PageController to reconstruct the application's UI state
// machine. Not safe for concurrent use; one engine maps one session.
type Engine struct {
	cfg      Config
	page     browser.PageController
	comparer *matching.Comparer
	logger   *logrus.Logger

	states         map[string]*model.UIState
	order          []string // insertion order of state ids, for stable export
	transitions    []*model.StateTransition
	transitionSigs map[string]struct{}
	visited        map[string]bool

	// Last captured accessibility tree; candidate selection scopes safe links
	// to navigation containers found here.
	lastTree *a11y.Node

	seedReport []SeedResult
	recorder   *ActionRecorder
	events     EventSink
}

// EventSink receives structured discovery events as they happen. The logging
// package's session logger satisfies it.
type EventSink interface {
	LogStateDiscovered(stateID, stateType string, totalStates int)
	LogTransition(from, to, action string, conditional bool)
	LogSeedResult(stateID, status string, similarity float64)
}

// AttachEvents makes the engine emit discovery events to the sink.
func (e *Engine) AttachEvents(sink EventSink) {
	e.events = sink
}

// NewEngine wires a discovery engine onto a page controller.
func NewEngine(cfg Config, page browser.PageController, logger *logrus.Logger) *Engine {
	cfg.applyDefaults()
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		cfg:            cfg,
		page:           page,
		comparer:       matching.NewComparer(logger),
		logger:         logger,
		states:         map[string]*model.UIState{},
		transitionSigs: map[string]struct{}{},
		visited:        map[string]bool{},
	}
}

// States returns the discovered states in insertion order.
func (e *Engine) States() []*model.UIState {
	out := make([]*model.UIState, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.states[id])
	}
	return out
}

// Transitions returns all recorded transitions.
func (e *Engine) Transitions() []*model.StateTransition {
	return e.transitions
}

// State looks up a state by id.
func (e *Engine) State(id string) (*model.UIState, bool) {
	s, ok := e.states[id]
	return s, ok
}

// Run performs a full discovery pass: initial capture, optional login flow
// discovery, optional seed verification, then strategy-driven exploration.
// The produced graph is returned even when exploration aborts partway.
func (e *Engine) Run(ctx context.Context) (*Graph, error) {
	if e.cfg.BaseURL == "" {
		return nil, fmt.Errorf("discovery requires a base URL")
	}

	if e.cfg.SeedPath != "" {
		seed, err := LoadSeed(e.cfg.SeedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed map: %w", err)
		}
		e.ImportGraph(seed)
	}

	if err := e.page.Navigate(ctx, e.cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", e.cfg.BaseURL, err)
	}
	e.settle(ctx)

	initial, _, err := e.CaptureState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture initial state: %w", err)
	}
	e.logger.WithFields(logrus.Fields{
		"state_id":   initial.StateID,
		"state_type": initial.StateType,
	}).Info("Initial state captured")

	current := initial
	if !e.cfg.SkipLoginDiscovery && isLoginForm(initial) && e.cfg.Username != "" {
		landed, err := e.DiscoverLoginFlow(ctx, initial)
		if err != nil {
			e.logger.WithError(err).Warn("Login flow discovery failed")
		} else if landed != nil {
			current = landed
		}
	}

	// Seeds are graded only after the login flow so auth-gated seeded states
	// are compared against their real pages, not a login wall.
	if e.cfg.SeedPath != "" {
		if err := e.VerifySeeds(ctx); err != nil {
			e.logger.WithError(err).Warn("Seed verification aborted")
		}
	}

	switch e.cfg.Strategy {
	case StrategyBFS:
		err = e.ExploreBFS(ctx, current)
	default:
		err = e.ExploreDFS(ctx, current, 0)
	}
	if err != nil {
		e.logger.WithError(err).Warn("Exploration ended early")
	}

	return e.ExportGraph(), nil
}

// CaptureFingerprint waits for the page to stabilize, then builds a
// fingerprint from the accessibility tree, URL, title, heading, and DOM
// structure. The captured tree is retained for candidate selection.
func (e *Engine) CaptureFingerprint(ctx context.Context) (*fingerprint.Fingerprint, error) {
	const (
		stabilizeAttempts = 10
		stabilizeInterval = 300 * time.Millisecond
	)
	for i := 0; i < stabilizeAttempts; i++ {
		state, err := e.page.GetPageState(ctx)
		if err != nil || !state.IsLoading {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(stabilizeInterval):
		}
	}

	tree, err := e.page.CaptureSnapshot(ctx)
	if err != nil {
		e.logger.WithError(err).Warn("Accessibility snapshot failed, degrading to URL fingerprint")
		tree = nil
	}
	e.lastTree = tree

	pageURL, err := e.page.CurrentURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current URL: %w", err)
	}
	title, _ := e.page.Title(ctx)
	heading, _ := e.page.FirstHeading(ctx)

	fp := fingerprint.Create(tree, pageURL, title, heading)
	if html, err := e.page.DOM(ctx); err == nil {
		fp.DOMHash = browser.DOMStructureHash(html)
	}
	return fp, nil
}

// CaptureState captures a fingerprint and resolves it against known states.
// A strong match returns the existing state untouched; a modified-grade match
// (above the match threshold but below the strong threshold) refreshes the
// stored fingerprint and merges element descriptors. Otherwise a new state is
// registered. The boolean reports whether the state is new.
func (e *Engine) CaptureState(ctx context.Context) (*model.UIState, bool, error) {
	fp, err := e.CaptureFingerprint(ctx)
	if err != nil {
		return nil, false, err
	}

	match, score := e.comparer.FindMatchingState(fp, e.States(), matching.MatchThreshold)
	if match != nil {
		if score < matching.StrongMatch {
			e.logger.WithFields(logrus.Fields{
				"state_id":   match.StateID,
				"similarity": score,
			}).Info("State drifted, refreshing fingerprint")
			match.Fingerprint = fp
			match.VerificationLogic = model.DeriveVerification(fp)
			match.MergeDescriptors(descriptorsFromFingerprint(fp))
		}
		return match, false, nil
	}

	stateType, stateID := ClassifyState(fp)
	stateID = e.uniqueStateID(stateID)

	state := model.NewUIState(stateID, stateType, fp)
	state.MergeDescriptors(descriptorsFromFingerprint(fp))
	state.Metadata = map[string]any{}
	if url, err := e.page.CurrentURL(ctx); err == nil {
		state.Metadata["source_url"] = url
	}

	e.addState(state)
	e.logger.WithFields(logrus.Fields{
		"state_id":   state.StateID,
		"state_type": state.StateType,
		"total":      len(e.states),
	}).Info("New state discovered")
	if e.events != nil {
		e.events.LogStateDiscovered(state.StateID, state.StateType, len(e.states))
	}
	return state, true, nil
}

func (e *Engine) addState(state *model.UIState) {
	e.states[state.StateID] = state
	e.order = append(e.order, state.StateID)
}

// uniqueStateID suffixes the classifier's id until it is unique in the model.
// Distinct states may legitimately classify to the same base id.
func (e *Engine) uniqueStateID(base string) string {
	if _, taken := e.states[base]; !taken {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if _, taken := e.states[candidate]; !taken {
			return candidate
		}
	}
}

// RegisterTransition records an edge, deduplicating on the (from, action, to)
// signature. When an existing edge shares the source, action, and trigger but
// lands on a different state, both edges are annotated as conditional.
func (e *Engine) RegisterTransition(
	from, to string,
	action model.ActionType,
	trigger model.ElementDescriptor,
	data map[string]string,
) *model.StateTransition {
	t := model.NewTransition(from, to, action, trigger)
	t.ActionData = data

	if _, dup := e.transitionSigs[t.Signature()]; dup {
		return nil
	}

	for _, existing := range e.transitions {
		if existing.FromStateID == from &&
			existing.ActionType == action &&
			existing.ToStateID != to &&
			existing.TriggerLocators.Signature() == trigger.Signature() {
			existing.Annotate("conditional", true)
			t.Annotate("conditional", true)
			e.logger.WithFields(logrus.Fields{
				"from":     from,
				"targets":  []string{existing.ToStateID, to},
				"action":   string(action),
			}).Info("Conditional transition detected")
		}
	}

	e.transitionSigs[t.Signature()] = struct{}{}
	e.transitions = append(e.transitions, t)
	if e.recorder != nil {
		e.recorder.Record(t)
	}
	if e.events != nil {
		_, conditional := t.Metadata["conditional"]
		e.events.LogTransition(from, to, string(action), conditional)
	}
	return t
}

// ExecuteTransition performs one action from a known state and captures where
// it landed. A trigger that no longer resolves is skipped silently (nil, nil).
// Landing on the same state records nothing.
func (e *Engine) ExecuteTransition(
	ctx context.Context,
	from *model.UIState,
	action model.ActionType,
	descriptor model.ElementDescriptor,
	data map[string]string,
) (*model.UIState, error) {
	el, err := e.page.Locate(ctx, descriptor)
	if err != nil {
		return nil, fmt.Errorf("locator resolution failed for %s: %w", descriptor.Name, err)
	}
	if el == nil {
		e.logger.WithField("element", descriptor.Name).Debug("Trigger not found on page, skipping")
		return nil, nil
	}

	switch action {
	case model.ActionFill:
		if err := e.page.Fill(ctx, el, data["value"]); err != nil {
			return nil, err
		}
	default:
		if err := e.page.Click(ctx, el); err != nil {
			return nil, err
		}
	}
	e.settle(ctx)

	landed, _, err := e.CaptureState(ctx)
	if err != nil {
		return nil, err
	}
	if landed.StateID == from.StateID {
		return landed, nil
	}

	e.RegisterTransition(from.StateID, landed.StateID, action, descriptor, data)
	return landed, nil
}

// settle waits for network quiet; on timeout falls back to a fixed pause so
// slow pages still get a chance to render.
func (e *Engine) settle(ctx context.Context) {
	if err := e.page.WaitSettled(ctx, e.cfg.ActionTimeout); err != nil {
		e.logger.WithError(err).Debug("Settlement timed out, using fallback delay")
		select {
		case <-ctx.Done():
		case <-time.After(1 * time.Second):
		}
	}
}

// descriptorsFromFingerprint converts actionable elements into locatable
// descriptors. Elements without any usable locator are dropped by the merge.
func descriptorsFromFingerprint(fp *fingerprint.Fingerprint) []model.ElementDescriptor {
	var out []model.ElementDescriptor
	appendElements := func(elementType string, elements []fingerprint.Element) {
		for _, el := range elements {
			d := model.ElementDescriptor{
				ElementType: elementType,
				Name:        el.Name,
				Locators:    map[string]string{},
			}
			if el.Name != "" {
				d.Locators[model.LocatorRole] = el.Role + ":" + el.Name
				d.Locators[model.LocatorText] = el.Name
			}
			if el.Href != "" {
				d.Locators[model.LocatorHref] = el.Href
			}
			out = append(out, d)
		}
	}
	appendElements("button", fp.Buttons())
	appendElements("link", fp.Links())
	appendElements("input", fp.Inputs())
	return out
}

// submitForm fills every field of a form candidate and submits it, recording
// a fill_form transition with secrets redacted from the action data.
func (e *Engine) submitForm(ctx context.Context, from *model.UIState, form FormCandidate) (*model.UIState, error) {
	for _, field := range form.Form.Fields {
		d := model.ElementDescriptor{
			ElementType: "input",
			Name:        field.Name,
			Locators:    map[string]string{model.LocatorName: field.Name},
		}
		if field.Placeholder != "" {
			d.Locators[model.LocatorPlaceholder] = field.Placeholder
		}
		el, err := e.page.Locate(ctx, d)
		if err != nil || el == nil {
			continue
		}
		if err := e.page.Fill(ctx, el, form.Values[field.Name]); err != nil {
			e.logger.WithError(err).WithField("field", field.Name).Debug("Field fill failed")
		}
	}

	if !form.Form.Submit.HasLocator() {
		return nil, nil
	}
	return e.ExecuteTransition(ctx, from, model.ActionFillForm, form.Form.Submit, redactSecrets(form.Values))
}

// stateURL resolves the address used to reach a state directly.
func stateURL(baseURL string, state *model.UIState) string {
	if state.Metadata != nil {
		if src, ok := state.Metadata["source_url"].(string); ok && src != "" {
			return src
		}
	}
	pattern := state.VerificationLogic.URLPattern
	if pattern == "" || pattern == fingerprint.RootPattern {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + pattern
}

func fingerprintPatternOf(rawURL string) string {
	return fingerprint.ExtractURLPattern(rawURL)
}

func isLoginForm(state *model.UIState) bool {
	return strings.HasPrefix(state.StateID, "V_LOGIN_FORM")
}
