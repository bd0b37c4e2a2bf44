// Command ngram is the CLI front end over the four engines, adapted from
// the teacher's cmd/lci entry point: an urfave/cli/v2 app with one
// subcommand per operation, a shared project-root/config flag, and a
// stdio-transport MCP serve mode.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/ngram/internal/config"
	"github.com/standardbeagle/ngram/internal/corpus"
	"github.com/standardbeagle/ngram/internal/mcpserver"
	"github.com/standardbeagle/ngram/internal/ngram"
	"github.com/standardbeagle/ngram/internal/stringfuzzy"
	"github.com/standardbeagle/ngram/internal/stringpredict"
	"github.com/standardbeagle/ngram/internal/tokenfuzzy"
	"github.com/standardbeagle/ngram/internal/tokenizer"
	"github.com/standardbeagle/ngram/internal/tokenpredict"
	"github.com/standardbeagle/ngram/internal/watch"
)

var Version = "0.1.0"

func loadCLIConfig(c *cli.Context) (*config.CLIConfig, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	cfg, err := config.LoadKDL(root)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultCLIConfig()
	}
	if globs := c.StringSlice("include"); len(globs) > 0 {
		cfg.CorpusGlobs = globs
	}
	if err := config.NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func words(s string) []ngram.StringToken {
	fields := strings.Fields(s)
	out := make([]ngram.StringToken, len(fields))
	for i, f := range fields {
		out[i] = ngram.StringToken(f)
	}
	return out
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stringFuzzyCommand(c *cli.Context) error {
	cfg, err := loadCLIConfig(c)
	if err != nil {
		return err
	}
	files, err := corpus.Load(c.Context, c.String("root"), cfg.CorpusGlobs)
	if err != nil {
		return err
	}
	e := stringfuzzy.New(cfg.StringFuzzy)
	e.Train(corpus.Strings(files))
	e.Search(c.Args().First())
	return printJSON(map[string]interface{}{
		"values": e.GetValueArray(),
		"scores": e.GetScoreArray(),
	})
}

func stringPredictCommand(c *cli.Context) error {
	cfg, err := loadCLIConfig(c)
	if err != nil {
		return err
	}
	files, err := corpus.Load(c.Context, c.String("root"), cfg.CorpusGlobs)
	if err != nil {
		return err
	}
	e := stringpredict.New(cfg.StringPredict)
	e.Train(corpus.Strings(files))
	e.Predict(c.Args().First())
	values := e.GetValueArray()
	out := make([]string, len(values))
	for i, b := range values {
		out[i] = string(b)
	}
	return printJSON(map[string]interface{}{
		"values": out,
		"scores": e.GetScoreArray(),
	})
}

func tokenFuzzyCommand(c *cli.Context) error {
	cfg, err := loadCLIConfig(c)
	if err != nil {
		return err
	}
	files, err := corpus.Load(c.Context, c.String("root"), cfg.CorpusGlobs)
	if err != nil {
		return err
	}
	e := tokenfuzzy.New[ngram.StringToken](cfg.TokenFuzzy)
	seqs := make([][]ngram.StringToken, len(files))
	for i, f := range files {
		seqs[i] = words(f.Content)
	}
	e.Train(seqs)
	e.Search(words(c.Args().First()))
	values := e.GetValueArray()
	out := make([][]string, len(values))
	for i, v := range values {
		s := make([]string, len(v))
		for j, t := range v {
			s[j] = string(t)
		}
		out[i] = s
	}
	return printJSON(map[string]interface{}{
		"values": out,
		"scores": e.GetScoreArray(),
	})
}

func tokenPredictCommand(c *cli.Context) error {
	cfg, err := loadCLIConfig(c)
	if err != nil {
		return err
	}
	files, err := corpus.Load(c.Context, c.String("root"), cfg.CorpusGlobs)
	if err != nil {
		return err
	}
	e := tokenpredict.New[ngram.StringToken](cfg.TokenPredict)
	seqs := make([][]ngram.StringToken, len(files))
	for i, f := range files {
		seqs[i] = words(f.Content)
	}
	e.Train(seqs)
	e.Predict(words(c.Args().First()))
	values := e.GetValueArray()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return printJSON(map[string]interface{}{
		"values": out,
		"scores": e.GetScoreArray(),
	})
}

func tokenizeCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("tokenize requires a file path argument")
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tok, err := tokenizer.NewGoTokenizer()
	if err != nil {
		return err
	}
	defer tok.Close()

	tokens := tok.Tokenize(src)
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.String()
	}
	return printJSON(out)
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadCLIConfig(c)
	if err != nil {
		return err
	}
	root := c.String("root")
	if root == "" {
		root = "."
	}

	e := stringfuzzy.New(cfg.StringFuzzy)
	retrain := func() {
		files, err := corpus.Load(c.Context, root, cfg.CorpusGlobs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "watch: retrain failed: %v\n", err)
			return
		}
		e.Train(corpus.Strings(files))
		fmt.Fprintf(os.Stderr, "watch: retrained on %d files\n", len(files))
	}
	retrain()

	w, err := watch.New(time.Duration(cfg.WatchDebounceMs)*time.Millisecond, nil)
	if err != nil {
		return err
	}
	defer w.Close()
	w.Retrain = retrain
	if err := w.Add(root); err != nil {
		return err
	}
	w.Start()

	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()
	return nil
}

func serveMCPCommand(c *cli.Context) error {
	s := mcpserver.New("ngram-mcp-server", Version)
	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return s.Run(ctx)
}

func main() {
	app := &cli.App{
		Name:    "ngram",
		Usage:   "Fuzzy match and next-symbol prediction over strings and tokens",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Project root to load corpus from", Value: "."},
			&cli.StringSliceFlag{Name: "include", Usage: "Corpus glob patterns (overrides .ngram.kdl)"},
		},
		Commands: []*cli.Command{
			{Name: "string-fuzzy", Usage: "Fuzzy-search a query string against the corpus lexicon", Action: stringFuzzyCommand},
			{Name: "string-predict", Usage: "Predict the next character following a prefix", Action: stringPredictCommand},
			{Name: "token-fuzzy", Usage: "Fuzzy-search a query token sequence against the corpus", Action: tokenFuzzyCommand},
			{Name: "token-predict", Usage: "Predict the next token following a context", Action: tokenPredictCommand},
			{Name: "tokenize", Usage: "Tokenize a Go source file with tree-sitter", Action: tokenizeCommand},
			{Name: "watch", Usage: "Watch the corpus root and retrain StringFuzzy on change", Action: watchCommand},
			{Name: "serve-mcp", Usage: "Serve the four engines over MCP via stdio", Action: serveMCPCommand},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ngram: %v\n", err)
		os.Exit(1)
	}
}
