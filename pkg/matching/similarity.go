/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: similarity.go
Description: Generic similarity primitives for fuzzy state matching. Provides
Jaccard set similarity, sequence-ratio text similarity, tolerance-banded
numeric similarity, and list similarity. Every primitive is total on its
domain and returns a score in [0, 1].
*/

package matching

import (
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Jaccard computes |A∩B| / |A∪B| over two string sets given as slices
// (duplicates collapse). Two empty sets are identical (1.0); exactly one
// empty set shares nothing (0.0).
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}
	intersection := 0
	for item := range setA {
		if _, ok := setB[item]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// TextSimilarity computes a normalized sequence ratio between two strings.
// Equal strings score 1.0; an empty string against a non-empty one scores 0.0.
func TextSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	matcher := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return matcher.Ratio()
}

// NumericSimilarity compares two numbers with a relative tolerance band.
// Equal values score 1.0; the score falls off linearly as the relative
// difference approaches tolerance and is 0.0 beyond it.
func NumericSimilarity(a, b, tolerance float64) float64 {
	if a == b {
		return 1.0
	}
	maxVal := math.Max(math.Abs(a), math.Abs(b))
	if maxVal == 0 {
		return 1.0
	}
	relDiff := math.Abs(a-b) / maxVal
	if relDiff > tolerance {
		return 0.0
	}
	return 1.0 - relDiff/tolerance
}

// ListSimilarity compares two lists as sets via Jaccard. Order is ignored.
func ListSimilarity(a, b []string) float64 {
	return Jaccard(a, b)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
