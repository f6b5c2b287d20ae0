package fts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex() *Index {
	return New(Config{MinWordLength: 2, IndexPositions: true, PhraseBoostAlpha: 0.75})
}

func TestTokenize(t *testing.T) {
	toks := tokenize("The Quick-Brown Fox, jumps! a", 2)
	assert.Equal(t, []string{"the", "quick", "brown", "fox", "jumps"}, toks)
}

func TestSearchFindsMatchingDocs(t *testing.T) {
	idx := newTestIndex()
	idx.Index(1, "the quick brown fox")
	idx.Index(2, "a lazy dog sleeps")

	results := idx.Search("quick fox")
	require.Len(t, results, 1)
	assert.Equal(t, uint32(1), results[0].DocID)
}

func TestPhraseBoostRatioExceedsThreshold(t *testing.T) {
	idx := newTestIndex()
	// Doc A repeats the exact phrase "quick brown fox" four times; doc B
	// contains the phrase once. Both share the same single-token
	// background frequency otherwise, isolating the phrase-boost effect.
	idx.Index(1, "quick brown fox quick brown fox quick brown fox quick brown fox")
	idx.Index(2, "quick brown fox")

	results := idx.Search("quick brown fox")
	require.Len(t, results, 2)

	scores := map[uint32]float64{results[0].DocID: results[0].Score, results[1].DocID: results[1].Score}
	ratio := scores[1] / scores[2]
	assert.Greater(t, ratio, 1.5, "doc with 4 phrase occurrences should score >1.5x the doc with 1")
}

func TestSearchPhraseRequiresConsecutiveOrder(t *testing.T) {
	idx := newTestIndex()
	idx.Index(1, "brown quick fox")  // words present, wrong order
	idx.Index(2, "quick brown fox")  // exact phrase

	results := idx.SearchPhrase("quick brown fox")
	require.Len(t, results, 1)
	assert.Equal(t, uint32(2), results[0].DocID)
}

func TestRemoveClearsPostings(t *testing.T) {
	idx := newTestIndex()
	idx.Index(1, "hello world")
	idx.Remove(1)

	assert.Empty(t, idx.Search("hello"))
}

func TestReindexReplacesPriorContent(t *testing.T) {
	idx := newTestIndex()
	idx.Index(1, "alpha beta")
	idx.Index(1, "gamma delta")

	assert.Empty(t, idx.Search("alpha"))
	require.Len(t, idx.Search("gamma"), 1)
}
