package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_EmitsLeafTokensInSourceOrder(t *testing.T) {
	tok, err := NewGoTokenizer()
	require.NoError(t, err)
	defer tok.Close()

	src := []byte("package main\n\nfunc main() {}\n")
	tokens := tok.Tokenize(src)

	require.NotEmpty(t, tokens)
	assert.Equal(t, "package", tokens[0].Text)
	assert.Equal(t, "main", tokens[1].Text)
}

func TestToken_StringProjectionCombinesKindAndText(t *testing.T) {
	tr := Token{Kind: "identifier", Text: "foo"}
	assert.Equal(t, "identifier:foo", tr.String())
}
