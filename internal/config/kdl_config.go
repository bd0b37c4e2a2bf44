package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads a .ngram.kdl file from projectRoot. It returns (nil, nil)
// when no such file exists, so callers fall back to DefaultCLIConfig.
func LoadKDL(projectRoot string) (*CLIConfig, error) {
	kdlPath := filepath.Join(projectRoot, ".ngram.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .ngram.kdl: %w", err)
	}

	return parseKDL(string(content))
}

// parseKDL parses the body of a .ngram.kdl file. Expected shape:
//
//	string_fuzzy { n_min 3; n_max 5; max_results 10; case_sensitive false }
//	string_predict { n_min 1; n_max 25; max_results 10; case_sensitive true }
//	token_fuzzy { n_min 3; n_max 5; max_results 10 }
//	token_predict { n_min 3; n_max 25; max_results 10 }
//	corpus {
//	    glob "**/*.go"
//	    glob "**/*.md"
//	}
//	watch_debounce_ms 250
func parseKDL(content string) (*CLIConfig, error) {
	cfg := DefaultCLIConfig()
	cfg.CorpusGlobs = nil

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "string_fuzzy":
			assignEngineSection(n, &cfg.StringFuzzy)
		case "string_predict":
			assignEngineSection(n, &cfg.StringPredict)
		case "token_fuzzy":
			assignEngineSection(n, &cfg.TokenFuzzy)
		case "token_predict":
			assignEngineSection(n, &cfg.TokenPredict)
		case "corpus":
			for _, cn := range n.Children {
				if nodeName(cn) == "glob" {
					if s, ok := firstStringArg(cn); ok {
						cfg.CorpusGlobs = append(cfg.CorpusGlobs, s)
					}
				}
			}
			cfg.CorpusGlobs = append(cfg.CorpusGlobs, collectStringArgs(n)...)
		case "watch_debounce_ms":
			if v, ok := firstIntArg(n); ok {
				cfg.WatchDebounceMs = v
			}
		}
	}

	cfg.Clamp()
	return cfg, nil
}

// assignEngineSection reads n_min/n_max/max_results/case_sensitive children
// of n into ec, leaving fields not present in the file at their prior
// (default) value.
func assignEngineSection(n *document.Node, ec *EngineConfig) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "n_min":
			if v, ok := firstIntArg(cn); ok {
				ec.NMin = v
			}
		case "n_max":
			if v, ok := firstIntArg(cn); ok {
				ec.NMax = v
			}
		case "max_results":
			if v, ok := firstIntArg(cn); ok {
				ec.MaxResults = v
			}
		case "case_sensitive":
			if v, ok := firstBoolArg(cn); ok {
				ec.CaseSensitive = v
			}
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs gathers plain string arguments passed directly on a
// node (e.g. `corpus "**/*.go" "**/*.md"`), as an alternative to the nested
// `glob` child form handled in parseKDL.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
