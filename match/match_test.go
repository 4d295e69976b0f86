package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatioIdentical(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("capital of France", "capital of France"))
	assert.Equal(t, 1.0, Ratio("", ""))
}

func TestRatioDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
	assert.Equal(t, 0.0, Ratio("abc", ""))
}

func TestRatioKnownValues(t *testing.T) {
	// "bcd" is the longest matching block: 2*3/8
	assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-9)

	// "itt" + "n" match: 2*4/13
	assert.InDelta(t, 0.6153846, Ratio("kitten", "sitting"), 1e-6)
}

func TestRatioSymmetricOrderSensitivity(t *testing.T) {
	// Ratcliff/Obershelp is not guaranteed symmetric in general, but for
	// these short strings both directions land well above the threshold
	a, b := "what is the capital", "whats the capital"
	assert.GreaterOrEqual(t, Ratio(a, b), DefaultThreshold)
	assert.GreaterOrEqual(t, Ratio(b, a), DefaultThreshold)
}

func TestRatioUnicode(t *testing.T) {
	// Rune-based, not byte-based: multibyte characters count once
	assert.Equal(t, 1.0, Ratio("où est la gare", "où est la gare"))
	assert.Greater(t, Ratio("où est la gare", "où est la gares"), 0.9)
}

func TestBestMatchExact(t *testing.T) {
	candidates := []string{"capital of France", "capital of Spain", "largest ocean"}

	got, ok := BestMatch("capital of France", candidates, 0.6)
	assert.True(t, ok)
	assert.Equal(t, "capital of France", got)
}

func TestBestMatchSingleCharEdit(t *testing.T) {
	candidates := []string{"capital of France", "capital of Spain", "largest ocean"}

	got, ok := BestMatch("capitol of France", candidates, 0.6)
	assert.True(t, ok)
	assert.Equal(t, "capital of France", got)
}

func TestBestMatchBelowThreshold(t *testing.T) {
	candidates := []string{"capital of France", "largest ocean"}

	// Nothing close enough: report no match, not the nearest candidate
	_, ok := BestMatch("how do magnets work", candidates, 0.6)
	assert.False(t, ok)
}

func TestBestMatchThresholdBoundary(t *testing.T) {
	candidates := []string{"abcd"}

	// Ratio("abcd","bcde") == 0.75 exactly: at-threshold matches, above misses
	_, ok := BestMatch("bcde", candidates, 0.75)
	assert.True(t, ok, "score equal to cutoff should match")

	_, ok = BestMatch("bcde", candidates, 0.76)
	assert.False(t, ok, "score below cutoff should not match")
}

func TestBestMatchTieFirstSeenWins(t *testing.T) {
	// Both candidates score identically against the query; the earlier
	// one in the slice must win, every time.
	candidates := []string{"abcx", "abcy"}

	for i := 0; i < 10; i++ {
		got, ok := BestMatch("abcz", candidates, 0.5)
		assert.True(t, ok)
		assert.Equal(t, "abcx", got)
	}
}

func TestBestMatchEmptyCandidates(t *testing.T) {
	_, ok := BestMatch("anything", nil, 0.6)
	assert.False(t, ok)

	_, ok = BestMatch("anything", []string{}, 0.6)
	assert.False(t, ok)
}

func TestBestMatchZeroCutoffUsesDefault(t *testing.T) {
	candidates := []string{"completely unrelated text"}

	_, ok := BestMatch("zq", candidates, 0)
	assert.False(t, ok, "zero cutoff falls back to the default threshold")
}

func TestBestMatchPruningMatchesBruteForce(t *testing.T) {
	query := "how tall is the eiffel tower"
	candidates := []string{
		"how tall is the eiffel tower",
		"how old is the eiffel tower",
		"what is the eiffel tower",
		"tallest building in paris",
		"capital of France",
		"x",
		"",
	}

	// Brute force: no pruning
	bruteBest, bruteScore := "", 0.0
	for _, c := range candidates {
		if s := Ratio(query, c); s > bruteScore {
			bruteBest, bruteScore = c, s
		}
	}

	got, ok := BestMatch(query, candidates, 0.6)
	assert.True(t, ok)
	assert.Equal(t, bruteBest, got)
	assert.GreaterOrEqual(t, bruteScore, 0.6)
}
