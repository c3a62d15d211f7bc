// Package matcher scores approximate equality between free-text names.
//
// Cross-border remittances carry frequent transliteration variants
// ("Mohammad Ahmad" vs "Mohammed Ahmed") and reordered given/family names
// ("Ahmad Mohammad" vs "Mohammad Ahmad"). Two complementary metrics cover
// both: a character-level edit-distance ratio and a token-sort ratio that
// compares the names with their tokens in sorted order. The similarity is
// the higher of the two.
package matcher

import (
	"math"
	"sort"
	"strings"
)

// Normalize lowercases a name, trims it, and collapses internal
// whitespace runs to a single space.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Similarity returns an integer similarity in [0,100] between two names.
// Inputs are normalized before comparison. Deterministic: identical
// inputs always yield identical scores.
func Similarity(a, b string) int {
	na := Normalize(a)
	nb := Normalize(b)

	ratio := levenshteinRatio(na, nb)
	tokenRatio := levenshteinRatio(sortTokens(na), sortTokens(nb))

	if tokenRatio > ratio {
		return tokenRatio
	}
	return ratio
}

// sortTokens rebuilds a normalized name with its tokens in sorted order.
func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// levenshteinRatio converts edit distance into a 0-100 similarity score.
// Two empty strings are identical, scoring 100.
func levenshteinRatio(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 100
	}

	dist := levenshtein(ra, rb)
	return int(math.Round(100 * float64(longest-dist) / float64(longest)))
}

// levenshtein computes the edit distance between two rune slices using
// the two-row dynamic programming formulation.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost

			min := deletion
			if insertion < min {
				min = insertion
			}
			if substitution < min {
				min = substitution
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
