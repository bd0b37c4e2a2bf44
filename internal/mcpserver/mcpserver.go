// Package mcpserver exposes the four engines over MCP, adapted from the
// teacher's tool-registration pattern (mcp.NewServer + AddTool per tool,
// JSON request/response bodies). Unlike the teacher's single code-search
// index, a Server here owns a name-keyed registry of independently trained
// engine instances, one per (kind, name) pair, so a caller can keep several
// trained lexicons or corpora alive side by side.
//
// The teacher's SearchParams carries a large legacy field-aliasing
// UnmarshalJSON (output/max/filter/flags and a dozen more names all meaning
// the same parameter, kept for backward compatibility with old clients).
// Nothing here has old clients to stay compatible with, so parameters are
// plain JSON structs decoded the ordinary way.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/ngram/internal/config"
	"github.com/standardbeagle/ngram/internal/ngram"
	"github.com/standardbeagle/ngram/internal/stringfuzzy"
	"github.com/standardbeagle/ngram/internal/stringpredict"
	"github.com/standardbeagle/ngram/internal/tokenfuzzy"
	"github.com/standardbeagle/ngram/internal/tokenpredict"
)

// Kind names one of the four engine families, as used in tool arguments.
type Kind string

const (
	KindStringFuzzy   Kind = "string_fuzzy"
	KindStringPredict Kind = "string_predict"
	KindTokenFuzzy    Kind = "token_fuzzy"
	KindTokenPredict  Kind = "token_predict"
)

// Server holds a name-keyed registry of trained engines and exposes them as
// MCP tools.
type Server struct {
	server *mcp.Server

	mu             sync.Mutex
	stringFuzzies  map[string]*stringfuzzy.Engine
	stringPredicts map[string]*stringpredict.Engine
	tokenFuzzies   map[string]*tokenfuzzy.Engine[ngram.StringToken]
	tokenPredicts  map[string]*tokenpredict.Engine[ngram.StringToken]
}

// New builds a Server and registers every tool. name/version populate
// mcp.Implementation, matching the teacher's NewServer call.
func New(name, version string) *Server {
	s := &Server{
		server:         mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		stringFuzzies:  make(map[string]*stringfuzzy.Engine),
		stringPredicts: make(map[string]*stringpredict.Engine),
		tokenFuzzies:   make(map[string]*tokenfuzzy.Engine[ngram.StringToken]),
		tokenPredicts:  make(map[string]*tokenpredict.Engine[ngram.StringToken]),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying *mcp.Server for the caller to run over
// whatever transport it chooses (stdio, etc).
func (s *Server) MCPServer() *mcp.Server { return s.server }

// Run serves over stdio until ctx is cancelled, matching the teacher's
// server.Run(ctx, &mcp.StdioTransport{}) call.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func words(s string) []ngram.StringToken {
	fields := strings.Fields(s)
	out := make([]ngram.StringToken, len(fields))
	for i, f := range fields {
		out[i] = ngram.StringToken(f)
	}
	return out
}

func tokenSeqToStrings(seq []ngram.StringToken) []string {
	out := make([]string, len(seq))
	for i, t := range seq {
		out[i] = string(t)
	}
	return out
}

func engineConfigFor(kind Kind) config.EngineConfig {
	switch kind {
	case KindStringFuzzy:
		return config.StringFuzzyDefaults()
	case KindStringPredict:
		return config.StringPredictDefaults()
	case KindTokenFuzzy:
		return config.TokenFuzzyDefaults()
	case KindTokenPredict:
		return config.TokenPredictDefaults()
	default:
		return config.StringFuzzyDefaults()
	}
}

// trainParams is the shared shape for ngram_train: which engine, what it's
// called, and the corpus to train on. Corpus is always text; token-kind
// engines split it on whitespace.
type trainParams struct {
	Kind   string   `json:"kind"`
	Name   string   `json:"name"`
	Corpus []string `json:"corpus"`
}

type queryParams struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Query string `json:"query"`
}

type exportParams struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "ngram_train",
		Description: "Train (or retrain) a named engine instance from a text corpus.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"kind":   {Type: "string", Description: "string_fuzzy, string_predict, token_fuzzy, or token_predict"},
				"name":   {Type: "string", Description: "Identifier for this engine instance"},
				"corpus": {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Training strings"},
			},
			Required: []string{"kind", "name", "corpus"},
		},
	}, s.handleTrain)

	s.server.AddTool(&mcp.Tool{
		Name:        "ngram_search",
		Description: "Run a fuzzy search query against a trained string_fuzzy or token_fuzzy instance.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"kind":  {Type: "string", Description: "string_fuzzy or token_fuzzy"},
				"name":  {Type: "string", Description: "Engine instance identifier"},
				"query": {Type: "string", Description: "Query string"},
			},
			Required: []string{"kind", "name", "query"},
		},
	}, s.handleSearch)

	s.server.AddTool(&mcp.Tool{
		Name:        "ngram_predict",
		Description: "Run a next-symbol prediction query against a trained string_predict or token_predict instance.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"kind":  {Type: "string", Description: "string_predict or token_predict"},
				"name":  {Type: "string", Description: "Engine instance identifier"},
				"query": {Type: "string", Description: "Prefix/context string"},
			},
			Required: []string{"kind", "name", "query"},
		},
	}, s.handlePredict)

	s.server.AddTool(&mcp.Tool{
		Name:        "ngram_export",
		Description: "Export the trained model of a named engine instance as JSON.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"kind": {Type: "string", Description: "Engine kind"},
				"name": {Type: "string", Description: "Engine instance identifier"},
			},
			Required: []string{"kind", "name"},
		},
	}, s.handleExport)
}

func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(content)}}}, nil
}

func errorResult(operation string, err error) (*mcp.CallToolResult, error) {
	result, marshalErr := jsonResult(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	result.IsError = true
	return result, nil
}

func (s *Server) handleTrain(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p trainParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("ngram_train", fmt.Errorf("invalid parameters: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch Kind(p.Kind) {
	case KindStringFuzzy:
		e := stringfuzzy.New(engineConfigFor(KindStringFuzzy))
		e.Train(p.Corpus)
		s.stringFuzzies[p.Name] = e
	case KindStringPredict:
		e := stringpredict.New(engineConfigFor(KindStringPredict))
		e.Train(p.Corpus)
		s.stringPredicts[p.Name] = e
	case KindTokenFuzzy:
		e := tokenfuzzy.New[ngram.StringToken](engineConfigFor(KindTokenFuzzy))
		seqs := make([][]ngram.StringToken, len(p.Corpus))
		for i, c := range p.Corpus {
			seqs[i] = words(c)
		}
		e.Train(seqs)
		s.tokenFuzzies[p.Name] = e
	case KindTokenPredict:
		e := tokenpredict.New[ngram.StringToken](engineConfigFor(KindTokenPredict))
		seqs := make([][]ngram.StringToken, len(p.Corpus))
		for i, c := range p.Corpus {
			seqs[i] = words(c)
		}
		e.Train(seqs)
		s.tokenPredicts[p.Name] = e
	default:
		return errorResult("ngram_train", fmt.Errorf("unknown kind %q", p.Kind))
	}

	return jsonResult(map[string]interface{}{"success": true, "kind": p.Kind, "name": p.Name, "trained": len(p.Corpus)})
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p queryParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("ngram_search", fmt.Errorf("invalid parameters: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch Kind(p.Kind) {
	case KindStringFuzzy:
		e, ok := s.stringFuzzies[p.Name]
		if !ok {
			return errorResult("ngram_search", fmt.Errorf("no string_fuzzy instance named %q", p.Name))
		}
		e.Search(p.Query)
		return jsonResult(map[string]interface{}{
			"values": e.GetValueArray(),
			"scores": e.GetScoreArray(),
		})
	case KindTokenFuzzy:
		e, ok := s.tokenFuzzies[p.Name]
		if !ok {
			return errorResult("ngram_search", fmt.Errorf("no token_fuzzy instance named %q", p.Name))
		}
		e.Search(words(p.Query))
		values := e.GetValueArray()
		out := make([][]string, len(values))
		for i, v := range values {
			out[i] = tokenSeqToStrings(v)
		}
		return jsonResult(map[string]interface{}{
			"values": out,
			"scores": e.GetScoreArray(),
		})
	default:
		return errorResult("ngram_search", fmt.Errorf("kind %q does not support search", p.Kind))
	}
}

func (s *Server) handlePredict(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p queryParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("ngram_predict", fmt.Errorf("invalid parameters: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch Kind(p.Kind) {
	case KindStringPredict:
		e, ok := s.stringPredicts[p.Name]
		if !ok {
			return errorResult("ngram_predict", fmt.Errorf("no string_predict instance named %q", p.Name))
		}
		e.Predict(p.Query)
		values := e.GetValueArray()
		out := make([]string, len(values))
		for i, b := range values {
			out[i] = string(b)
		}
		return jsonResult(map[string]interface{}{
			"values": out,
			"scores": e.GetScoreArray(),
		})
	case KindTokenPredict:
		e, ok := s.tokenPredicts[p.Name]
		if !ok {
			return errorResult("ngram_predict", fmt.Errorf("no token_predict instance named %q", p.Name))
		}
		e.Predict(words(p.Query))
		values := e.GetValueArray()
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = string(v)
		}
		return jsonResult(map[string]interface{}{
			"values": out,
			"scores": e.GetScoreArray(),
		})
	default:
		return errorResult("ngram_predict", fmt.Errorf("kind %q does not support predict", p.Kind))
	}
}

func (s *Server) handleExport(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p exportParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("ngram_export", fmt.Errorf("invalid parameters: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch Kind(p.Kind) {
	case KindStringFuzzy:
		e, ok := s.stringFuzzies[p.Name]
		if !ok {
			return errorResult("ngram_export", fmt.Errorf("no string_fuzzy instance named %q", p.Name))
		}
		return jsonResult(e.Export())
	case KindStringPredict:
		e, ok := s.stringPredicts[p.Name]
		if !ok {
			return errorResult("ngram_export", fmt.Errorf("no string_predict instance named %q", p.Name))
		}
		return jsonResult(e.Export())
	case KindTokenFuzzy:
		e, ok := s.tokenFuzzies[p.Name]
		if !ok {
			return errorResult("ngram_export", fmt.Errorf("no token_fuzzy instance named %q", p.Name))
		}
		return jsonResult(e.Export())
	case KindTokenPredict:
		e, ok := s.tokenPredicts[p.Name]
		if !ok {
			return errorResult("ngram_export", fmt.Errorf("no token_predict instance named %q", p.Name))
		}
		return jsonResult(e.Export())
	default:
		return errorResult("ngram_export", fmt.Errorf("unknown kind %q", p.Kind))
	}
}
