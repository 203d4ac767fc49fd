package lexmach

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/lex/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ID tabgen.TokType = iota + 1
	NUM
	STRING
)

const (
	NIL tabgen.TokType = iota + 10
	T
	LPAREN
	RPAREN
	PLUS
)

func rules() []Rule {
	return []Rule{
		Literal("nil", NIL),
		Literal("t", T),
		Literal("(", LPAREN),
		Literal(")", RPAREN),
		Literal("+", PLUS),
		{Pattern: `//[^\n]*\n?`, Skip: true},
		{Pattern: `\"[^"]*\"`, Type: STRING},
		{Pattern: `[a-z][a-z0-9]*`, Type: ID},
		{Pattern: `[1-9][0-9]*`, Type: NUM},
		{Pattern: `( |\,|\t|\n|\r)+`, Skip: true},
	}
}

func types(tokens []tabgen.Token) []tabgen.TokType {
	var tt []tabgen.TokType
	for _, t := range tokens {
		tt = append(tt, t.TokType())
	}
	return tt
}

func TestOracle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.scanner")
	defer teardown()
	//
	oracle, err := New(rules()...)
	require.NoError(t, err)
	expected := map[string][]tabgen.TokType{
		"1":                {NUM},
		"nil t nilly":      {NIL, T, ID},
		"(x1+12)":          {LPAREN, ID, PLUS, NUM, RPAREN},
		`f("a b") // call`: {ID, LPAREN, STRING, RPAREN},
		"1,22,333":         {NUM, NUM, NUM},
		"tt // t\n t":      {ID, T},
		"":                 nil,
	}
	for input, tt := range expected {
		tokens, err := oracle.Tokenize(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, tt, types(tokens), "input %q", input)
		for _, token := range tokens {
			assert.Equal(t, token.Lexeme(), input[token.Span().From():token.Span().To()])
		}
	}
}

func TestScannerEOF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.scanner")
	defer teardown()
	//
	oracle, err := New(rules()...)
	require.NoError(t, err)
	sc, err := oracle.Scanner("nil  ")
	require.NoError(t, err)
	assert.Equal(t, NIL, sc.NextToken().TokType())
	eof := sc.NextToken()
	assert.Equal(t, scanner.EOF, eof.TokType())
	assert.Equal(t, tabgen.Span{5, 5}, eof.Span())
}

func TestUnmatchedInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.scanner")
	defer teardown()
	//
	oracle, err := New(Rule{Pattern: `[a-z]+`, Type: ID})
	require.NoError(t, err)
	sc, err := oracle.Scanner("ab%cd")
	require.NoError(t, err)
	var errs []error
	sc.SetErrorHandler(func(e error) { errs = append(errs, e) })
	assert.Equal(t, "ab", sc.NextToken().Lexeme())
	assert.Equal(t, "cd", sc.NextToken().Lexeme())
	assert.Equal(t, scanner.EOF, sc.NextToken().TokType())
	assert.Len(t, errs, 1)
	tokens, err := oracle.Tokenize("ab%cd")
	assert.Error(t, err)
	assert.Len(t, tokens, 2)
}

func TestNoRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.scanner")
	defer teardown()
	//
	_, err := New()
	assert.Error(t, err)
}
