package lr

import (
	"bytes"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A → "(" A ")" | "a"
func makeParenGrammar(t *testing.T) *Grammar {
	b := NewGrammarBuilder("Parens")
	b.LHS("A").T("(").N("A").T(")").End()
	b.LHS("A").T("a").End()
	g, err := b.Grammar()
	require.NoError(t, err)
	return g
}

// Sum     = Sum "+" Product | Product
// Product = Product "*" Factor | Factor
// Factor  = "(" Sum ")" | "n"
func makeExpressionGrammar(t *testing.T) *Grammar {
	b := NewGrammarBuilder("Expressions")
	b.LHS("Sum").N("Sum").T("+").N("Product").End()
	b.LHS("Sum").N("Product").End()
	b.LHS("Product").N("Product").T("*").N("Factor").End()
	b.LHS("Product").N("Factor").End()
	b.LHS("Factor").T("(").N("Sum").T(")").End()
	b.LHS("Factor").T("n").End()
	g, err := b.Grammar()
	require.NoError(t, err)
	return g
}

// tokens splits a string of single-character terminals.
func tokens(s string) []Segment {
	var r []Segment
	for _, c := range s {
		r = append(r, T(string(c)))
	}
	return r
}

// recognize runs an LR automaton on a sequence of terminals.
func recognize(at *ActionTable, S Segment, input []Segment) bool {
	row, ok := at.StartRow(S)
	if !ok {
		return false
	}
	stack := []int{row}
	input = append(append([]Segment(nil), input...), EOF)
	for pos := 0; ; {
		c, ok := at.Column(input[pos])
		if !ok {
			return false
		}
		switch kind, arg := DecodeAction(at.Value(stack[len(stack)-1], c)); kind {
		case Accept:
			return input[pos] == EOF
		case Shift:
			stack = append(stack, arg)
			pos++
		case Reduce:
			n, col := at.ProductionInfo(arg)
			stack = stack[:len(stack)-n]
			k, to := DecodeAction(at.Value(stack[len(stack)-1], col))
			if k != Shift {
				return false
			}
			stack = append(stack, to)
		default:
			return false
		}
	}
}

func findItem(pg *ParseGraph, prod, dot int) (graph.State, int) {
	for _, s := range pg.Graph().States() {
		iset := pg.Items(s)
		for i, item := range iset.Items() {
			if item.Prod.Index() == prod && item.Dot == dot {
				return s, i
			}
		}
	}
	return graph.NoState, -1
}

func TestParenGraph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lr")
	defer teardown()
	//
	g := makeParenGrammar(t)
	pg := ConstructGraph(g, NewSegmentSetProvider(g))
	pg.Dump()
	assert.Equal(t, 6, pg.Graph().StateCount())
	assert.Equal(t, map[Segment]graph.State{InitialSegment("A"): 0}, pg.InitialSegments())
	assert.Equal(t, 3, pg.Items(0).Len()) // <A> → • A, and both A-productions
	s, i := findItem(pg, 2, 1)           // A → "a" •
	require.NotEqual(t, graph.NoState, s)
	assert.True(t, pg.Items(s).Lookahead(i).Equal(NewSegmentSet(T(")"), EOF)), pg.Items(s).Lookahead(i))
	s, i = findItem(pg, 0, 1) // <A> → A •
	require.NotEqual(t, graph.NoState, s)
	assert.True(t, pg.Items(s).Lookahead(i).Equal(NewSegmentSet(EOF)))
	assert.True(t, pg.Accepts(s))
	to, ok := pg.Goto(0, T("("))
	assert.True(t, ok)
	again, _ := pg.Goto(to, T("("))
	assert.Equal(t, to, again)
	_, ok = pg.Goto(0, T(")"))
	assert.False(t, ok)
	assert.Panics(t, func() { pg.Items(0).Lookahead(3) })
	assert.Panics(t, func() { pg.Items(0).Item(-1) })
	assert.True(t, strings.Contains(pg.String(), `A → "(" • A ")"`), pg.String())
}

func TestLookaheadFixedPoint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lr")
	defer teardown()
	//
	for _, g := range []*Grammar{makeParenGrammar(t), makeExpressionGrammar(t), makeTrivialGrammar(t)} {
		ssp := NewSegmentSetProvider(g)
		pg := ConstructGraph(g, ssp)
		for _, s := range pg.Graph().States() {
			iset := pg.Items(s)
			for i, item := range iset.Items() {
				la := iset.Lookahead(i)
				assert.False(t, la.IsEmpty(), "state %d item %v has no lookahead", s, item)
				X, ok := item.Next()
				if !ok {
					continue
				}
				to, ok := pg.Goto(s, X)
				require.True(t, ok)
				next, _ := item.NextItem()
				j := pg.Items(to).Index(next)
				require.GreaterOrEqual(t, j, 0)
				assert.True(t, la.IsSubsetOf(pg.Items(to).Lookahead(j)))
				assert.False(t, pg.Items(to).AddLookahead(j, la), "propagation incomplete")
				if X.IsTerminal() {
					continue
				}
				f := ssp.FollowAfter(item.Prod, item.Dot+1)
				for _, p := range g.ProductionsFor(X) {
					k := iset.Index(ParseItem{Prod: p})
					require.GreaterOrEqual(t, k, 0)
					assert.True(t, withoutEpsilon(f).IsSubsetOf(iset.Lookahead(k)))
					if f.Contains(Epsilon) {
						assert.True(t, la.IsSubsetOf(iset.Lookahead(k)))
					}
				}
			}
		}
	}
}

func TestGraphExport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lr")
	defer teardown()
	//
	g := makeParenGrammar(t)
	pg := ConstructGraph(g, NewSegmentSetProvider(g))
	var dot bytes.Buffer
	require.NoError(t, pg.ToGraphViz(&dot))
	assert.True(t, strings.HasPrefix(dot.String(), "digraph"))
	at := BuildActionTable(pg)
	var html bytes.Buffer
	require.NoError(t, ActionTableAsHTML(at, &html))
	assert.Contains(t, html.String(), "&#34;(&#34;")
	assert.Contains(t, html.String(), "acc")
}

// S = "a" T | "s" ;  T = "b" T | "t" ;  start symbols S and T
func makeTwoStartGrammar(t *testing.T) *Grammar {
	b := NewGrammarBuilder("TwoStarts")
	b.LHS("S").T("a").N("T").End()
	b.LHS("S").T("s").End()
	b.LHS("T").T("b").N("T").End()
	b.LHS("T").T("t").End()
	g, err := b.Start("S", "T").Grammar()
	require.NoError(t, err)
	return g
}

func TestMultipleStartSymbols(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lr")
	defer teardown()
	//
	g := makeTwoStartGrammar(t)
	require.Equal(t, []Segment{InitialSegment("S"), InitialSegment("T")}, g.InitialSegments())
	pg := ConstructGraph(g, NewSegmentSetProvider(g))
	assert.Len(t, pg.InitialSegments(), 2)
	inputs := map[Segment]map[string]bool{
		InitialSegment("S"): {"s": true, "at": true, "abbt": true, "t": false, "bt": false, "a": false},
		InitialSegment("T"): {"t": true, "bt": true, "bbt": true, "s": false, "at": false, "b": false},
	}
	for _, optimise := range []bool{false, true} {
		opt := NewParseGraphOptimiser(nil)
		opt.Optimise = optimise
		result, err := opt.Run(pg)
		require.NoError(t, err)
		at := BuildActionTable(result)
		assert.False(t, at.HasConflicts())
		for S, cases := range inputs {
			for input, accept := range cases {
				assert.Equal(t, accept, recognize(at, S, tokens(input)),
					"optimise=%v, start %v, input %q", optimise, S, input)
			}
		}
	}
}

func TestOptimiserParens(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lr")
	defer teardown()
	//
	g := makeParenGrammar(t)
	pg := ConstructGraph(g, NewSegmentSetProvider(g))
	diag := &tabgen.Collector{}
	opt, err := NewParseGraphOptimiser(diag).Run(pg)
	require.NoError(t, err)
	assert.Equal(t, 0, diag.ErrorCount())
	assert.Equal(t, 6, pg.Graph().StateCount(), "input graph must not change")
	assert.Equal(t, 5, opt.Graph().StateCount()) // A → "a" • has been inlined
	s, _ := findItem(opt, 2, 1)
	assert.Equal(t, graph.NoState, s)
	plain, optimised := BuildActionTable(pg), BuildActionTable(opt)
	assert.False(t, plain.HasConflicts())
	assert.False(t, optimised.HasConflicts())
	A := InitialSegment("A")
	for input, accept := range map[string]bool{
		"a": true, "(a)": true, "((a))": true,
		"": false, "(": false, "(a": false, "a)": false, "()": false, "aa": false,
	} {
		assert.Equal(t, accept, recognize(plain, A, tokens(input)), "plain %q", input)
		assert.Equal(t, accept, recognize(optimised, A, tokens(input)), "optimised %q", input)
	}
}

func TestOptimiserExpressions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lr")
	defer teardown()
	//
	g := makeExpressionGrammar(t)
	pg := ConstructGraph(g, NewSegmentSetProvider(g))
	assert.Equal(t, 12, pg.Graph().StateCount())
	opt, err := NewParseGraphOptimiser(nil).Run(pg)
	require.NoError(t, err)
	assert.Equal(t, 10, opt.Graph().StateCount())
	plain, optimised := BuildActionTable(pg), BuildActionTable(opt)
	assert.Equal(t, plain.Columns(), optimised.Columns())
	assert.Equal(t, 3, plain.GotoColumns())
	S := InitialSegment("Sum")
	for input, accept := range map[string]bool{
		"n": true, "n+n": true, "n+n*n": true, "(n+n)*n": true, "((n))": true, "n*(n+n)*n": true,
		"": false, "n+": false, "+n": false, "()": false, "n(n)": false, "(n+n": false, "n**n": false,
	} {
		assert.Equal(t, accept, recognize(plain, S, tokens(input)), "plain %q", input)
		assert.Equal(t, accept, recognize(optimised, S, tokens(input)), "optimised %q", input)
	}
}

func TestShiftReduceResolution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("DanglingElse")
	b.LHS("S").T("if").N("S").End()
	b.LHS("S").T("if").N("S").T("else").N("S").End()
	b.LHS("S").T("x").End()
	g, err := b.Grammar()
	require.NoError(t, err)
	pg := ConstructGraph(g, NewSegmentSetProvider(g))
	assert.True(t, BuildActionTable(pg).HasConflicts())
	diag := &tabgen.Collector{}
	opt, err := NewParseGraphOptimiser(diag).Run(pg)
	require.NoError(t, err)
	assert.Len(t, diag.Entries, 0)
	at := BuildActionTable(opt)
	assert.False(t, at.HasConflicts())
	input := []Segment{T("if"), T("if"), T("x"), T("else"), T("x")}
	assert.True(t, recognize(at, InitialSegment("S"), input))
}

func TestReduceReduceConflict(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("Ambiguous")
	b.LHS("S").N("A").End()
	b.LHS("S").N("B").End()
	b.LHS("A").T("x").End()
	b.LHS("B").T("x").At(tabgen.At(4, 1)).End()
	g, err := b.Grammar()
	require.NoError(t, err)
	pg := ConstructGraph(g, NewSegmentSetProvider(g))
	for _, optimise := range []bool{false, true} {
		diag := &tabgen.Collector{}
		opt := NewParseGraphOptimiser(diag)
		opt.Optimise = optimise
		result, err := opt.Run(pg)
		require.NoError(t, err)
		require.Equal(t, 1, diag.ErrorCount())
		assert.True(t, diag.Contains("reduce-reduce conflict"))
		assert.Equal(t, 4, diag.Entries[0].Location.FromLine)
		at := BuildActionTable(result)
		assert.True(t, at.HasConflicts())
		s, _ := findItem(result, 3, 1) // A → "x" •
		row := -1
		for r := 0; r < at.RowCount(); r++ {
			if at.State(r) == s {
				row = r
			}
		}
		require.GreaterOrEqual(t, row, 0)
		eof, _ := at.Column(EOF)
		first, second := at.Values(row, eof)
		assert.Equal(t, ReduceAction(3), first)
		assert.Equal(t, ReduceAction(4), second)
	}
}

func TestAcceptOptimizedAway(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lr")
	defer teardown()
	//
	g := makeParenGrammar(t)
	pg := ConstructGraph(g, NewSegmentSetProvider(g))
	b := pg.copyBuilder()
	for _, s := range b.States() {
		if pg.Accepts(s) {
			b.DeleteState(s)
		}
	}
	broken := &ParseGraph{grammar: g, g: b.Build(), initial: pg.initial}
	diag := &tabgen.Collector{}
	_, err := NewParseGraphOptimiser(diag).Run(broken)
	assert.Equal(t, ErrAcceptOptimizedAway, err)
	assert.True(t, diag.Contains("all accept actions optimized away"))
}

func TestItemSets(t *testing.T) {
	p := NewProduction(N("A"), T("a"), N("B"))
	p.index = 1
	q := NewProduction(N("B"), T("b"))
	q.index = 2
	iset := newParseItemSet([]ParseItem{{q, 0}, {p, 1}, {p, 0}, {q, 0}})
	require.Equal(t, 3, iset.Len())
	assert.Equal(t, ParseItem{p, 0}, iset.Item(0))
	assert.Equal(t, 2, iset.Index(ParseItem{q, 0}))
	assert.Equal(t, -1, iset.Index(ParseItem{q, 1}))
	assert.True(t, iset.AddLookahead(0, NewSegmentSet(T("x"))))
	assert.False(t, iset.AddLookahead(0, NewSegmentSet(T("x"))))
	assert.True(t, iset.AddLookahead(0, NewSegmentSet(T("y"))))
	assert.Equal(t, 2, iset.Lookahead(0).Len())
	next, ok := iset.Item(1).NextItem()
	assert.True(t, ok)
	assert.True(t, next.IsComplete())
	_, ok = next.NextItem()
	assert.False(t, ok)
	X, ok := iset.Item(0).Next()
	assert.True(t, ok)
	assert.Equal(t, T("a"), X)
	assert.Equal(t, `A → • "a" B`, iset.Item(0).String())
	assert.Equal(t, `A → "a" • B`, iset.Item(1).String())
	assert.Panics(t, func() { iset.AddLookahead(3, NewSegmentSet()) })
}
