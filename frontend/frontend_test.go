package frontend

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/lex"
	"github.com/npillmayer/tabgen/lex/scanner"
	"github.com/npillmayer/tabgen/lr"
	"github.com/npillmayer/tabgen/lr/lalr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const expressions = `
Expr   = Term { ( "+" | "-" ) Term } .
Term   = number | "(" Expr ")" .
number = digit { digit } .
digit  = "0" … "9" .
white  = " " | "\t" | "\n" .
`

func load(t *testing.T, src string, starts ...string) (*Result, *tabgen.Collector, error) {
	diag := &tabgen.Collector{}
	r, err := Load("test.ebnf", strings.NewReader(src), diag, starts...)
	for _, d := range diag.Entries {
		t.Logf("%v", d)
	}
	return r, diag, err
}

func TestTokenRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.frontend")
	defer teardown()
	//
	r, diag, err := load(t, expressions)
	require.NoError(t, err)
	assert.Equal(t, 0, diag.ErrorCount())
	names := make([]string, len(r.Tokens))
	for i, tok := range r.Tokens {
		names[i] = tok.Name
	}
	assert.Equal(t, []string{"+", "-", "(", ")", "number", "white"}, names)
	assert.True(t, r.Tokens[0].Literal)
	assert.False(t, r.Tokens[4].Literal)
	assert.Equal(t, []tabgen.TokType{5}, r.SkipRules())
	rule, ok := r.Rule(lr.T("number"))
	assert.True(t, ok)
	assert.Equal(t, 4, rule)
	_, ok = r.Rule(lr.T("digit"))
	assert.False(t, ok, "digit is expanded inline")
}

func TestDerivedNonTerminals(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.frontend")
	defer teardown()
	//
	r, _, err := load(t, expressions)
	require.NoError(t, err)
	g := r.Grammar
	require.NotNil(t, g)
	assert.Equal(t, []lr.Segment{lr.InitialSegment("Expr")}, g.InitialSegments())
	assert.Len(t, g.ProductionsFor(lr.N("Expr~1")), 2) // repetition: ε and left recursion
	assert.Len(t, g.ProductionsFor(lr.N("Expr~2")), 2) // group: "+" | "-"
	assert.Len(t, g.ProductionsFor(lr.N("Term")), 2)
	rec := g.ProductionsFor(lr.N("Expr~1"))[1]
	assert.Equal(t, lr.N("Expr~1"), rec.Item(0))
	assert.Equal(t, lr.N("Expr~2"), rec.Item(1))
	assert.Equal(t, lr.N("Term"), rec.Item(2))
	p := g.ProductionsFor(lr.N("Term"))[1]
	assert.Equal(t, 3, g.Location(p).FromLine)
}

func TestOptions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.frontend")
	defer teardown()
	//
	r, _, err := load(t, `S = [ "a" ] "b" [ "c" "d" ] .`)
	require.NoError(t, err)
	g := r.Grammar
	S := g.ProductionsFor(lr.N("S"))
	require.Len(t, S, 1)
	assert.Equal(t, 3, S[0].Len())
	assert.Equal(t, lr.T("a").AsOptional(), S[0].Item(0))
	assert.Equal(t, lr.N("S~1").AsOptional(), S[0].Item(2))
	assert.Len(t, g.ProductionsFor(lr.T("a").AsOptional()), 2)
}

func TestKeywordPriority(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.frontend")
	defer teardown()
	//
	r, _, err := load(t, `
Stmt   = "if" ident .
ident  = letter { letter } .
letter = "a" … "z" .
blank  = " " .
`)
	require.NoError(t, err)
	dfa := lex.CreateDfa(r.NFA)
	rule, length, ok := dfa.Match(0, "if")
	assert.True(t, ok)
	assert.Equal(t, 0, rule)
	assert.Equal(t, 2, length)
	rule, length, _ = dfa.Match(0, "iffy")
	assert.Equal(t, 1, rule)
	assert.Equal(t, 4, length)
}

func TestLoadErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.frontend")
	defer teardown()
	//
	for src, msg := range map[string]string{
		"S = a .\na = \"x\" a .":     "recursive lexical production a",
		`S = "a" … "z" .`:            "character range",
		"S = a .\na = S .":           "refers to syntactic production S",
		"S = b .":                    "undefined lexical production b",
		"S = A .":                    "has no productions",
		"S = a .\na = \"z\" … \"a\" .": "empty range",
	} {
		_, diag, err := load(t, src)
		assert.True(t, errors.Is(err, ErrInvalidGrammar), "%q: %v", src, err)
		assert.True(t, diag.Contains(msg), "%q should report %q", src, msg)
	}
	_, diag, err := load(t, `S = "a" `)
	assert.True(t, errors.Is(err, ErrInvalidGrammar))
	assert.Equal(t, 1, diag.ErrorCount())
	_, _, err = load(t, `S = "a" .`, "T")
	assert.Error(t, err)
}

func TestRecursionLocation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.frontend")
	defer teardown()
	//
	_, diag, _ := load(t, "S = a .\na = \"x\" a .")
	require.Equal(t, 1, diag.ErrorCount())
	assert.Equal(t, tabgen.At(2, 9), diag.Entries[0].Location)
}

func TestScannerOnly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.frontend")
	defer teardown()
	//
	r, _, err := load(t, "num = \"0\" … \"9\" { \"0\" … \"9\" } .\nws = \" \" .")
	require.NoError(t, err)
	assert.Nil(t, r.Grammar)
	require.Len(t, r.Tokens, 2)
	assert.Empty(t, r.SkipRules())
}

func TestParseWithLoadedGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.frontend")
	defer teardown()
	//
	r, _, err := load(t, expressions)
	require.NoError(t, err)
	pg := lr.ConstructGraph(r.Grammar, lr.NewSegmentSetProvider(r.Grammar))
	pg, err = lr.NewParseGraphOptimiser(nil).Run(pg)
	require.NoError(t, err)
	at := lr.BuildActionTable(pg)
	assert.False(t, at.HasConflicts())
	start, ok := at.StartRow(lr.InitialSegment("Expr"))
	require.True(t, ok)
	tables := scanner.FromDFA(lex.CreateDfa(r.NFA))
	column := func(tt tabgen.TokType) (int, bool) {
		if tt == scanner.EOF {
			return at.Column(lr.EOF)
		}
		return at.Column(r.Tokens[tt].Terminal)
	}
	for input, accept := range map[string]bool{
		"1 + (23 - 4)": true, "7": true, "((1))-2": true,
		"1 +": false, "()": false, "1 2": false,
	} {
		tok, err := scanner.NewTableTokenizer(tables, 0, input, scanner.Skip(r.SkipRules()...))
		require.NoError(t, err)
		accepted, _ := lalr.NewParser(at, column).Parse(start, tok)
		assert.Equal(t, accept, accepted, "input %q", input)
	}
}
