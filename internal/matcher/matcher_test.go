package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "mohammad ahmad", Normalize("  Mohammad   Ahmad "))
	assert.Equal(t, "ali hassan", Normalize("ALI\tHASSAN"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "", Normalize(""))
}

func TestSimilarityIdentical(t *testing.T) {
	assert.Equal(t, 100, Similarity("Mohammad Ahmad", "Mohammad Ahmad"))
	assert.Equal(t, 100, Similarity("mohammad ahmad", "  MOHAMMAD   AHMAD "))
}

func TestSimilarityReorderedTokens(t *testing.T) {
	// The token-sort ratio catches swapped given/family names.
	assert.Equal(t, 100, Similarity("Ahmad Mohammad", "Mohammad Ahmad"))
}

func TestSimilarityTransliterationVariants(t *testing.T) {
	assert.GreaterOrEqual(t, Similarity("Mohammad Ahmad", "Mohammed Ahmed"), 85)
	assert.GreaterOrEqual(t, Similarity("Muhammed Ahmad", "Muhammad Ahmad"), 85)
	assert.GreaterOrEqual(t, Similarity("Viktor Petrov", "Victor Petrov"), 85)
}

func TestSimilarityDissimilarNames(t *testing.T) {
	assert.Less(t, Similarity("Maria Garcia", "Mohammad Ahmad"), 85)
	assert.Less(t, Similarity("John Smith", "Viktor Petrov"), 85)
}

func TestSimilarityEmptyInputs(t *testing.T) {
	assert.Equal(t, 100, Similarity("", ""))
	assert.Equal(t, 100, Similarity("  ", ""))
	assert.Equal(t, 0, Similarity("", "Ali Hassan"))
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"a", "zzzzzzzzzz"},
		{"Mohammad Ahmad", "x"},
		{"short", "a much longer name entirely"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
	}
}

func TestSimilarityDeterministic(t *testing.T) {
	first := Similarity("Mohammad Ahmad", "Mohammed Ahmed")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Similarity("Mohammad Ahmad", "Mohammed Ahmed"))
	}
}
