package tokenpredict

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

func repeat(seq []ngram.StringToken, n int) [][]ngram.StringToken {
	out := make([][]ngram.StringToken, n)
	for i := range out {
		out[i] = seq
	}
	return out
}

func TestPredict_BlendsOrdersIntoObservedRatio(t *testing.T) {
	corpus := append(
		repeat(toks("IF", "ID", "ASSIGN", "NUM", "SEMI"), 3),
		toks("IF", "ID", "ASSIGN", "STR", "SEMI"),
	)
	e := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 4, MaxResults: 10}).Train(corpus)
	e.Predict(toks("IF", "ID", "ASSIGN"))

	top, ok := e.GetTopValue()
	require.True(t, ok)
	assert.Equal(t, ngram.StringToken("NUM"), top)

	values := e.GetValueArray()
	scores := e.GetScoreArray()
	probByToken := make(map[ngram.StringToken]float64)
	for i, v := range values {
		probByToken[v] = scores[i]
	}
	assert.InDelta(t, 0.75, probByToken["NUM"], 1e-9)
	assert.InDelta(t, 0.25, probByToken["STR"], 1e-9)
}

func TestTrain_ContextTotalEqualsSumOfCounts(t *testing.T) {
	corpus := append(
		repeat(toks("IF", "ID", "ASSIGN", "NUM", "SEMI"), 3),
		toks("IF", "ID", "ASSIGN", "STR", "SEMI"),
	)
	e := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 4, MaxResults: 10}).Train(corpus)

	for ctx, entry := range e.contextTable {
		sum := 0
		for _, c := range entry.Counts {
			sum += c
		}
		assert.Equal(t, entry.Total, sum, "context %q", ctx)
	}
}

func TestPredict_EmptyPrefixYieldsNoResults(t *testing.T) {
	e := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 4, MaxResults: 10}).
		Train([][]ngram.StringToken{toks("IF", "ID")})
	e.Predict(nil)
	assert.Empty(t, e.GetResultArray())
}

func TestExportLoad_RoundTripsContextTable(t *testing.T) {
	corpus := repeat(toks("IF", "ID", "ASSIGN", "NUM", "SEMI"), 2)
	e := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 4, MaxResults: 10}).Train(corpus)
	model := e.Export()

	fresh := New[ngram.StringToken](config.EngineConfig{NMin: 1, NMax: 1, MaxResults: 1})
	require.NoError(t, fresh.Load(model))
	fresh.Predict(toks("IF", "ID", "ASSIGN"))

	top, ok := fresh.GetTopValue()
	require.True(t, ok)
	assert.Equal(t, ngram.StringToken("NUM"), top)
}
