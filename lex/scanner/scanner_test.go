package scanner

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/lex"
	"github.com/npillmayer/tabgen/lex/charset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Token rules: 0 = "if", 1 = identifier, 2 = number, 3 = white space
func keywordTables() Tables {
	nb := lex.NewNFABuilder()
	nb.AddRule(0, nb.Literal("if"), 0, 0)
	nb.AddRule(0, nb.Plus(nb.Class(charset.Span('a', 'z'))), 1, 1)
	nb.AddRule(0, nb.Plus(nb.Class(charset.Span('0', '9'))), 2, 2)
	nb.AddRule(0, nb.Plus(nb.Class(charset.Of(" \t"))), 3, 3)
	return FromDFA(lex.CreateDfa(nb.Build()))
}

func TestLongestMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.scanner")
	defer teardown()
	//
	tok, err := NewTableTokenizer(keywordTables(), 0, "if iffy 42", Skip(3))
	require.NoError(t, err)
	expected := []DefaultToken{
		MakeDefaultToken(0, "if", tabgen.Span{0, 2}),
		MakeDefaultToken(1, "iffy", tabgen.Span{3, 7}),
		MakeDefaultToken(2, "42", tabgen.Span{8, 10}),
	}
	for _, e := range expected {
		assert.Equal(t, e, tok.NextToken())
	}
	eof := tok.NextToken()
	assert.Equal(t, EOF, eof.TokType())
	assert.Equal(t, tabgen.Span{10, 10}, eof.Span())
	assert.Equal(t, EOF, tok.NextToken().TokType())
}

func TestUnmatchedInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.scanner")
	defer teardown()
	//
	tok, err := NewTableTokenizer(keywordTables(), 0, "a?ä1")
	require.NoError(t, err)
	var errs []error
	tok.SetErrorHandler(func(e error) { errs = append(errs, e) })
	assert.Equal(t, "a", tok.NextToken().Lexeme())
	one := tok.NextToken()
	assert.Equal(t, "1", one.Lexeme())
	assert.Equal(t, tabgen.Span{4, 5}, one.Span())
	assert.Equal(t, EOF, tok.NextToken().TokType())
	assert.Len(t, errs, 2)
}

func TestNoStartRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.scanner")
	defer teardown()
	//
	_, err := NewTableTokenizer(keywordTables(), 7, "")
	assert.Error(t, err)
}

func TestDefaultToken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.scanner")
	defer teardown()
	//
	tok := MakeDefaultToken(2, "42", tabgen.Span{0, 2})
	tok.Val = 42
	assert.Equal(t, `<2|"42">`, tok.String())
	assert.Equal(t, 42, tok.Value())
	assert.Equal(t, "<EOF>", MakeDefaultToken(EOF, "", tabgen.Span{}).String())
}
