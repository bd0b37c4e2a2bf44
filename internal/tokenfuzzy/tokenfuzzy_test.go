package tokenfuzzy

import (
	"testing"

	"github.com/standardbeagle/ngram/internal/config"
	"github.com/standardbeagle/ngram/internal/ngram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toks(ss ...string) []ngram.StringToken {
	out := make([]ngram.StringToken, len(ss))
	for i, s := range ss {
		out[i] = ngram.StringToken(s)
	}
	return out
}

var lexicon = [][]ngram.StringToken{
	toks("IF", "ID", "ASSIGN", "NUM", "SEMI"),
	toks("IF", "LP", "ID", "RP", "BO", "BC"),
	toks("ID", "ASSIGN", "NUM", "SEMI"),
}

func TestSearch_TopMatchIsLongestOverlappingSequence(t *testing.T) {
	e := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 3, MaxResults: 10}).Train(lexicon)
	e.Search(toks("IF", "ID", "ASSIGN"))

	top, ok := e.GetTopValue()
	require.True(t, ok)
	assert.Equal(t, lexicon[0], top)
}

func TestSearch_AllLexiconEntriesMayAppear(t *testing.T) {
	e := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 3, MaxResults: 10}).Train(lexicon)
	e.Search(toks("IF", "ID", "ASSIGN"))

	assert.LessOrEqual(t, len(e.GetResultArray()), len(lexicon))
}

func TestSearch_StrengthsSumToOne(t *testing.T) {
	e := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 3, MaxResults: 10}).Train(lexicon)
	e.Search(toks("IF", "ID", "ASSIGN"))

	var sum float64
	for _, s := range e.GetScoreArray() {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSearch_ExactMatchYieldsSingleEntry(t *testing.T) {
	e := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 3, MaxResults: 10}).Train(lexicon)
	e.Search(lexicon[0])

	entries := e.GetResultArray()
	require.Len(t, entries, 1)
	assert.InDelta(t, 1.0, entries[0].Score, 1e-9)
}

func TestSearch_EmptyInputProducesNoResults(t *testing.T) {
	e := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 3, MaxResults: 10}).Train(lexicon)
	e.Search(nil)
	assert.Empty(t, e.GetResultArray())
}

func TestExportLoad_RoundTripsLexicon(t *testing.T) {
	e := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 3, MaxResults: 10}).Train(lexicon)
	model := e.Export()

	fresh := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 1, MaxResults: 1})
	require.NoError(t, fresh.Load(model))
	fresh.Search(toks("IF", "ID", "ASSIGN"))

	top, ok := fresh.GetTopValue()
	require.True(t, ok)
	assert.Equal(t, lexicon[0], top)
}
