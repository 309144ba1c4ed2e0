/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: comparer.go
Description: Weighted fuzzy state comparison. Combines per-dimension similarity
scores (semantic, functional, structural, content, style) into one weighted
score and exposes best-match lookup against the known state set. This is what
lets the discovery engine treat two superficially different DOM snapshots as
the same logical state.
*/

package matching

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/aria-state-mapper/pkg/fingerprint"
	"github.com/kleascm/aria-state-mapper/pkg/model"
)

// Similarity thresholds.
const (
	MatchThreshold = 0.80 // at or above: same state
	StrongMatch    = 0.90 // very confident match
	WeakMatch      = 0.70 // possible match, informational only
)

// Weights configures the top-level dimension weighting hierarchy.
type Weights struct {
	Semantic   float64
	Functional float64
	Structural float64
	Content    float64
	Style      float64
}

// DefaultWeights is the resilience hierarchy: semantic identity dominates,
// style barely matters.
func DefaultWeights() Weights {
	return Weights{
		Semantic:   fingerprint.WeightSemantic,
		Functional: fingerprint.WeightFunctional,
		Structural: fingerprint.WeightStructural,
		Content:    fingerprint.WeightContent,
		Style:      fingerprint.WeightStyle,
	}
}

// Comparer scores fingerprint pairs using weighted multi-dimensional
// similarity.
type Comparer struct {
	weights Weights
	logger  *logrus.Logger
}

// NewComparer creates a comparer with the default weight hierarchy.
func NewComparer(logger *logrus.Logger) *Comparer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Comparer{weights: DefaultWeights(), logger: logger}
}

// NewComparerWithWeights creates a comparer with custom dimension weights.
func NewComparerWithWeights(weights Weights, logger *logrus.Logger) *Comparer {
	c := NewComparer(logger)
	c.weights = weights
	return c
}

// CalculateSimilarity computes the weighted similarity between two
// fingerprints. A dimension with no data on either side contributes no
// signal: it is excluded and the remaining weights renormalized. The
// semantic and functional dimensions score 0.0 when exactly one side is
// absent - a page that lost its whole accessibility tree is not the same
// page. Symmetric in its arguments.
func (c *Comparer) CalculateSimilarity(a, b *fingerprint.Fingerprint) float64 {
	if a == nil || b == nil {
		return 0.0
	}

	type dimension struct {
		score  float64
		weight float64
	}
	var dims []dimension

	if a.Semantic != nil || b.Semantic != nil {
		dims = append(dims, dimension{compareSemantic(a.Semantic, b.Semantic), c.weights.Semantic})
	}
	aFunc, bFunc := hasActions(a), hasActions(b)
	if aFunc || bFunc {
		dims = append(dims, dimension{compareActionable(a.Actionable, b.Actionable, aFunc, bFunc), c.weights.Functional})
	}
	if a.URLPattern != "" || b.URLPattern != "" {
		dims = append(dims, dimension{compareURLPatterns(a.URLPattern, b.URLPattern), c.weights.Structural})
	}
	if a.Title != "" || b.Title != "" || a.MainHeading != "" || b.MainHeading != "" {
		dims = append(dims, dimension{compareContent(a.Title, b.Title, a.MainHeading, b.MainHeading), c.weights.Content})
	}
	if a.DOMHash != "" && b.DOMHash != "" {
		score := 0.0
		if a.DOMHash == b.DOMHash {
			score = 1.0
		}
		dims = append(dims, dimension{score, c.weights.Style})
	}

	totalWeight := 0.0
	weightedSum := 0.0
	for _, d := range dims {
		totalWeight += d.weight
		weightedSum += d.score * d.weight
	}
	if totalWeight == 0 {
		return 0.0
	}
	score := weightedSum / totalWeight

	c.logger.WithFields(logrus.Fields{
		"url_a":    a.URLPattern,
		"url_b":    b.URLPattern,
		"weighted": score,
	}).Debug("Similarity calculated")

	return score
}

// FindMatchingState scans the known states and returns the strictly
// highest-scoring state at or above the threshold, or nil. Ties keep the
// first state found.
func (c *Comparer) FindMatchingState(
	candidate *fingerprint.Fingerprint,
	knownStates []*model.UIState,
	threshold float64,
) (*model.UIState, float64) {
	var bestMatch *model.UIState
	bestScore := 0.0

	for _, state := range knownStates {
		score := c.CalculateSimilarity(candidate, state.Fingerprint)
		if score >= threshold && score > bestScore {
			bestMatch = state
			bestScore = score
		}
	}

	if bestMatch != nil {
		c.logger.WithFields(logrus.Fields{
			"state_id":   bestMatch.StateID,
			"similarity": bestScore,
		}).Info("Found matching state")
	}

	return bestMatch, bestScore
}

func hasActions(fp *fingerprint.Fingerprint) bool {
	return fp.Actionable != nil && fp.Actionable.TotalCount > 0
}

// compareSemantic blends landmark, interactive-count, heading, key-landmark,
// and ARIA-state similarity. Sub-dimensions absent on both sides drop out and
// the remaining weights renormalize.
func compareSemantic(a, b *fingerprint.SemanticFingerprint) float64 {
	if a == nil || b == nil {
		return 0.0
	}

	type sub struct {
		score  float64
		weight float64
	}
	var subs []sub

	// Landmark roles are the most stable signal.
	if len(a.LandmarkRoles) > 0 || len(b.LandmarkRoles) > 0 {
		subs = append(subs, sub{Jaccard(a.LandmarkRoles, b.LandmarkRoles), 0.40})
	}

	// Interactive count with a ±20%-of-max tolerance band.
	if a.InteractiveCount > 0 || b.InteractiveCount > 0 {
		countA, countB := float64(a.InteractiveCount), float64(b.InteractiveCount)
		maxCount := countA
		if countB > maxCount {
			maxCount = countB
		}
		band := maxCount * 0.2
		if band < 1 {
			band = 1
		}
		diff := countA - countB
		if diff < 0 {
			diff = -diff
		}
		score := 1.0 - diff/band
		if score < 0 {
			score = 0
		}
		subs = append(subs, sub{score, 0.20})
	}

	// Headings are stable content: exact match or half credit.
	if len(a.HeadingHierarchy) > 0 || len(b.HeadingHierarchy) > 0 {
		score := 0.5
		if equalStrings(a.HeadingHierarchy, b.HeadingHierarchy) {
			score = 1.0
		}
		subs = append(subs, sub{score, 0.20})
	}

	// Key landmark names.
	keysA, keysB := landmarkKeys(a.KeyLandmarks), landmarkKeys(b.KeyLandmarks)
	if len(keysA) > 0 || len(keysB) > 0 {
		subs = append(subs, sub{Jaccard(keysA, keysB), 0.10})
	}

	// ARIA dynamic-state closeness.
	subs = append(subs, sub{compareAriaStates(a.AriaStates, b.AriaStates), 0.10})

	if len(subs) == 0 {
		return 0.5 // neutral: nothing confirms or denies
	}
	totalWeight := 0.0
	weightedSum := 0.0
	for _, s := range subs {
		totalWeight += s.weight
		weightedSum += s.score * s.weight
	}
	return weightedSum / totalWeight
}

// compareAriaStates compares expanded/selected/disabled bucket counts by
// relative difference. Absent summaries mean no dynamic state, which is a
// perfect match.
func compareAriaStates(a, b *fingerprint.AriaStateSummary) float64 {
	if a == nil || b == nil {
		return 1.0
	}

	var scores []float64
	buckets := [][2]int{
		{len(a.ExpandedElements), len(b.ExpandedElements)},
		{len(a.SelectedElements), len(b.SelectedElements)},
		{a.DisabledCount, b.DisabledCount},
	}
	for _, bucket := range buckets {
		countA, countB := bucket[0], bucket[1]
		if countA == 0 && countB == 0 {
			continue
		}
		maxCount := countA
		if countB > maxCount {
			maxCount = countB
		}
		diff := countA - countB
		if diff < 0 {
			diff = -diff
		}
		scores = append(scores, 1.0-float64(diff)/float64(maxCount))
	}

	if len(scores) == 0 {
		return 1.0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// compareActionable compares categorized actionable elements by name-based
// Jaccard per category: buttons 40%, links 40%, inputs 20%.
func compareActionable(a, b *fingerprint.ActionableElements, aPresent, bPresent bool) float64 {
	if !aPresent || !bPresent {
		return 0.0
	}

	type sub struct {
		score  float64
		weight float64
	}
	var subs []sub

	if len(a.Buttons) > 0 || len(b.Buttons) > 0 {
		subs = append(subs, sub{compareElementLists(a.Buttons, b.Buttons), 0.40})
	}
	if len(a.Links) > 0 || len(b.Links) > 0 {
		subs = append(subs, sub{compareElementLists(a.Links, b.Links), 0.40})
	}
	if len(a.Inputs) > 0 || len(b.Inputs) > 0 {
		subs = append(subs, sub{compareElementLists(a.Inputs, b.Inputs), 0.20})
	}

	if len(subs) == 0 {
		return 0.5
	}
	totalWeight := 0.0
	weightedSum := 0.0
	for _, s := range subs {
		totalWeight += s.weight
		weightedSum += s.score * s.weight
	}
	return weightedSum / totalWeight
}

// compareElementLists matches element lists by accessible name, tolerant of
// reordering and count drift.
func compareElementLists(a, b []fingerprint.Element) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	return Jaccard(elementNames(a), elementNames(b))
}

// compareURLPatterns scores exact matches 1.0, otherwise counts positionally
// aligned path segments against the longer segment count.
func compareURLPatterns(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	partsA := splitPattern(a)
	partsB := splitPattern(b)
	matches := 0
	for i := 0; i < len(partsA) && i < len(partsB); i++ {
		if partsA[i] == partsB[i] {
			matches++
		}
	}
	maxParts := len(partsA)
	if len(partsB) > maxParts {
		maxParts = len(partsB)
	}
	if maxParts == 0 {
		return 0.0
	}
	return float64(matches) / float64(maxParts)
}

// compareContent weighs title exact-match 70% and heading exact-match 30%.
// No content on either side is no penalty.
func compareContent(titleA, titleB, headingA, headingB string) float64 {
	type sub struct {
		score  float64
		weight float64
	}
	var subs []sub

	if titleA != "" || titleB != "" {
		score := 0.0
		if titleA == titleB {
			score = 1.0
		}
		subs = append(subs, sub{score, 0.70})
	}
	if headingA != "" || headingB != "" {
		score := 0.0
		if headingA == headingB {
			score = 1.0
		}
		subs = append(subs, sub{score, 0.30})
	}

	if len(subs) == 0 {
		return 1.0
	}
	totalWeight := 0.0
	weightedSum := 0.0
	for _, s := range subs {
		totalWeight += s.weight
		weightedSum += s.score * s.weight
	}
	return weightedSum / totalWeight
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func landmarkKeys(landmarks map[string]fingerprint.Landmark) []string {
	keys := make([]string, 0, len(landmarks))
	for k := range landmarks {
		keys = append(keys, k)
	}
	return keys
}

func elementNames(elements []fingerprint.Element) []string {
	names := make([]string, 0, len(elements))
	for _, e := range elements {
		names = append(names, e.Name)
	}
	return names
}

func splitPattern(pattern string) []string {
	return strings.Split(pattern, "/")
}
