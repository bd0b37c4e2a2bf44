// Package tokenizer turns Go source into a token sequence suitable for the
// token-oriented engines, by walking a tree-sitter parse tree. Tokenization
// is a caller concern relative to the core engines (they accept
// pre-tokenized sequences); this package is the one concrete demo source
// wired into the CLI's `tokenize` subcommand.
package tokenizer

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/standardbeagle/ngram/internal/ngram"
)

// Token is a leaf tree-sitter node projected down to its syntax kind and
// text. Kind+Text gives a stable String() projection so Token satisfies
// ngram.Token without token engines needing to know about tree-sitter.
type Token struct {
	Kind string
	Text string
}

// String implements ngram.Token.
func (t Token) String() string { return t.Kind + ":" + t.Text }

var _ ngram.Token = Token{}

// GoTokenizer walks Go source with tree-sitter-go and emits leaf tokens.
type GoTokenizer struct {
	parser *tree_sitter.Parser
}

// NewGoTokenizer constructs a tokenizer bound to the Go grammar.
func NewGoTokenizer() (*GoTokenizer, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_go.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, err
	}
	return &GoTokenizer{parser: parser}, nil
}

// Tokenize parses src and returns every leaf node as a Token, in source
// order.
func (t *GoTokenizer) Tokenize(src []byte) []Token {
	tree := t.parser.Parse(src, nil)
	defer tree.Close()

	var tokens []Token
	collectLeaves(tree.RootNode(), src, &tokens)
	return tokens
}

// Close releases the underlying tree-sitter parser.
func (t *GoTokenizer) Close() {
	t.parser.Close()
}

func collectLeaves(node *tree_sitter.Node, src []byte, out *[]Token) {
	if node == nil {
		return
	}
	count := node.ChildCount()
	if count == 0 {
		text := string(src[node.StartByte():node.EndByte()])
		if text == "" {
			return
		}
		*out = append(*out, Token{Kind: node.Kind(), Text: text})
		return
	}
	for i := uint(0); i < count; i++ {
		collectLeaves(node.Child(i), src, out)
	}
}
