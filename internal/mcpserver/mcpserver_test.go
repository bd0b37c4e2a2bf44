package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func call(t *testing.T, s *Server, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error), args interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)

	result, err := handler(context.Background(), &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestServer_TrainThenSearchStringFuzzy(t *testing.T) {
	s := New("ngram-test", "0.0.1")

	out := call(t, s, s.handleTrain, trainParams{
		Kind:   string(KindStringFuzzy),
		Name:   "lexicon",
		Corpus: []string{"hello", "help", "held"},
	})
	require.Equal(t, true, out["success"])

	out = call(t, s, s.handleSearch, queryParams{
		Kind:  string(KindStringFuzzy),
		Name:  "lexicon",
		Query: "hello",
	})
	values, ok := out["values"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, values)
	require.Equal(t, "hello", values[0])
}

func TestServer_TrainThenPredictStringPredict(t *testing.T) {
	s := New("ngram-test", "0.0.1")

	call(t, s, s.handleTrain, trainParams{
		Kind:   string(KindStringPredict),
		Name:   "text",
		Corpus: []string{"abcabcabc"},
	})

	out := call(t, s, s.handlePredict, queryParams{
		Kind:  string(KindStringPredict),
		Name:  "text",
		Query: "ab",
	})
	values, ok := out["values"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, values)
	require.Equal(t, "c", values[0])
}

func TestServer_TrainThenSearchTokenFuzzy(t *testing.T) {
	s := New("ngram-test", "0.0.1")

	call(t, s, s.handleTrain, trainParams{
		Kind:   string(KindTokenFuzzy),
		Name:   "lines",
		Corpus: []string{"if id assign num semi", "if id assign str semi"},
	})

	out := call(t, s, s.handleSearch, queryParams{
		Kind:  string(KindTokenFuzzy),
		Name:  "lines",
		Query: "if id assign num semi",
	})
	values, ok := out["values"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, values)
}

func TestServer_UnknownInstanceNameReturnsErrorResult(t *testing.T) {
	s := New("ngram-test", "0.0.1")

	raw, err := json.Marshal(queryParams{Kind: string(KindStringFuzzy), Name: "missing", Query: "x"})
	require.NoError(t, err)
	result, err := s.handleSearch(context.Background(), &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}})
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestServer_ExportReflectsTrainedEngineKind(t *testing.T) {
	s := New("ngram-test", "0.0.1")

	call(t, s, s.handleTrain, trainParams{
		Kind:   string(KindStringFuzzy),
		Name:   "lexicon",
		Corpus: []string{"alpha", "beta"},
	})

	out := call(t, s, s.handleExport, exportParams{Kind: string(KindStringFuzzy), Name: "lexicon"})
	require.Equal(t, "NgramStringFuzzy", out["Type"])
}
