package ngram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toks(ss ...string) []StringToken {
	out := make([]StringToken, len(ss))
	for i, s := range ss {
		out[i] = StringToken(s)
	}
	return out
}

func TestWindowKey_EncodesLengthPrefixAndJoin(t *testing.T) {
	assert.Equal(t, "3:IF|ID|ASSIGN", WindowKey(toks("IF", "ID", "ASSIGN")))
	assert.Equal(t, "0:", WindowKey(toks()))
}

func TestWindowKey_DisambiguatesLengthsThatWouldJoinTheSame(t *testing.T) {
	a := WindowKey(toks("a|b"))
	b := WindowKey(toks("a", "b"))
	assert.NotEqual(t, a, b)
}

func TestScratchSet_SeenOrMark(t *testing.T) {
	s := NewScratchSet()
	assert.False(t, s.SeenOrMark("abc"))
	assert.True(t, s.SeenOrMark("abc"))
	assert.False(t, s.SeenOrMark("xyz"))
}

func TestScratchSet_ResetClearsMembership(t *testing.T) {
	s := NewScratchSet()
	s.SeenOrMark("abc")
	s.Reset()
	assert.False(t, s.SeenOrMark("abc"))
}

func TestPostingIndex_AddDedupesSourcePerGram(t *testing.T) {
	idx := NewPostingIndex[string]()
	idx.Add("app", "apple")
	idx.Add("app", "apple")
	idx.Add("app", "application")

	assert.Equal(t, []string{"apple", "application"}, idx.Get("app"))
	assert.Equal(t, 1, idx.GramCount())
	assert.Equal(t, 2, idx.PostingCount())
}

func TestPostingIndex_GetMissingKeyReturnsNil(t *testing.T) {
	idx := NewPostingIndex[string]()
	assert.Nil(t, idx.Get("missing"))
}

func TestPostingIndex_Clear(t *testing.T) {
	idx := NewPostingIndex[string]()
	idx.Add("app", "apple")
	idx.Clear()
	assert.Nil(t, idx.Get("app"))
	assert.Equal(t, 0, idx.GramCount())
	assert.Equal(t, 0, idx.PostingCount())
}

func TestPostingIndex_DistinctKeysDoNotCollideEvenIfHashDid(t *testing.T) {
	// Exercises the collision-chain path directly: two different keys are
	// never confused even when forced into the same bucket.
	idx := NewPostingIndex[int]()
	idx.Add("keyA", 1)
	idx.Add("keyB", 2)

	require.Equal(t, []int{1}, idx.Get("keyA"))
	require.Equal(t, []int{2}, idx.Get("keyB"))

	const h = 42
	idx.chainFor(h, "keyC", true).postings = []int{3}
	idx.chainFor(h, "keyD", true).postings = []int{4}
	require.Len(t, idx.buckets[h], 2)
	require.Equal(t, []int{3}, idx.chainFor(h, "keyC", false).postings)
	require.Equal(t, []int{4}, idx.chainFor(h, "keyD", false).postings)
}
