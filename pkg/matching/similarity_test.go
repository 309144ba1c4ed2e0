/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: similarity_test.go
Description: Tests for the similarity primitives: Jaccard set overlap, text
sequence similarity, and tolerance-banded numeric closeness.
*/

package matching_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kleascm/aria-state-mapper/pkg/matching"
)

// TestJaccard tests set overlap scoring including empty-set edge cases
func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, matching.Jaccard(nil, nil), "both empty is a perfect match")
	assert.Equal(t, 0.0, matching.Jaccard([]string{"a"}, nil), "one empty is no match")
	assert.Equal(t, 1.0, matching.Jaccard([]string{"a", "b"}, []string{"b", "a"}), "order independent")
	assert.InDelta(t, 1.0/3.0, matching.Jaccard([]string{"a", "b"}, []string{"b", "c"}), 1e-9)
	assert.Equal(t, 1.0, matching.Jaccard([]string{"a", "a"}, []string{"a"}), "duplicates collapse")
}

// TestTextSimilarity tests sequence-ratio text comparison
func TestTextSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, matching.TextSimilarity("dashboard", "dashboard"))
	assert.Equal(t, 1.0, matching.TextSimilarity("", ""))
	assert.Equal(t, 0.0, matching.TextSimilarity("abc", "xyz"))

	score := matching.TextSimilarity("dashboard", "dashboards")
	assert.Greater(t, score, 0.9)
	assert.Less(t, score, 1.0)
}

// TestNumericSimilarity tests tolerance-banded numeric closeness
func TestNumericSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, matching.NumericSimilarity(10, 10, 0.2))
	assert.Equal(t, 1.0, matching.NumericSimilarity(0, 0, 0.2))
	assert.InDelta(t, 1.0-(1.0/11.0)/0.5, matching.NumericSimilarity(10, 11, 0.5), 1e-9)
	assert.Equal(t, 0.0, matching.NumericSimilarity(10, 20, 0.2), "beyond the tolerance band")
}

// TestListSimilarity tests that list comparison is set-based
func TestListSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, matching.ListSimilarity([]string{"x", "y"}, []string{"y", "x"}))
	assert.Equal(t, 0.0, matching.ListSimilarity([]string{"x"}, []string{"y"}))
}
