package lr

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/npillmayer/tabgen/graph"
)

// ItemGraph is the graph type of LALR(1) item graphs. States are labeled with
// item sets, transitions with grammar segments.
type ItemGraph = graph.Graph[*ParseItemSet, Segment]

// ParseGraph is the LALR(1) item graph of a grammar: the characteristic finite
// state machine of LR(0) item sets, with a lookahead set for every item.
type ParseGraph struct {
	grammar *Grammar
	g       *ItemGraph
	initial map[Segment]graph.State
}

// construction holds the state of ConstructGraph.
type construction struct {
	grammar *Grammar
	b       *graph.Builder[*ParseItemSet, Segment]
	memo    *treemap.Map // closure items → state
	queue   *linkedlistqueue.Queue
}

func itemsComparator(a, b interface{}) int {
	return compareItemSlices(a.([]ParseItem), b.([]ParseItem))
}

// ConstructGraph builds the LALR(1) item graph for a grammar.
//
// There is one start state per initial segment, holding the closure of
// <S> → • S. Further states are the closures of goto kernels, discovered
// breadth first, with next symbols in segment order. Lookaheads are propagated
// to a fixed point afterwards; the initial items are seeded with {#eof}.
func ConstructGraph(g *Grammar, ssp *SegmentSetProvider) *ParseGraph {
	c := &construction{
		grammar: g,
		b:       graph.NewBuilder[*ParseItemSet, Segment](),
		memo:    treemap.NewWith(itemsComparator),
		queue:   linkedlistqueue.New(),
	}
	pg := &ParseGraph{grammar: g, initial: make(map[Segment]graph.State)}
	for _, S := range g.InitialSegments() {
		kernel := []ParseItem{{Prod: g.InitialProduction(S)}}
		pg.initial[S] = c.state(kernel, true)
	}
	for !c.queue.Empty() {
		v, _ := c.queue.Dequeue()
		s := v.(graph.State)
		kernels := make(map[Segment][]ParseItem)
		var symbols []Segment
		for _, item := range c.b.Label(s).items {
			X, ok := item.Next()
			if !ok {
				continue
			}
			if _, seen := kernels[X]; !seen {
				symbols = append(symbols, X)
			}
			next, _ := item.NextItem()
			kernels[X] = append(kernels[X], next)
		}
		sort.Slice(symbols, func(i, j int) bool { return symbols[i].Compare(symbols[j]) < 0 })
		for _, X := range symbols {
			t := c.state(kernels[X], false)
			c.b.AddTransition(s, t, X)
		}
	}
	tracer().Infof("item graph for %s has %d states", g.Name, c.b.StateCount())
	c.propagate(pg, ssp)
	pg.g = c.b.Build()
	return pg
}

// state returns the state for the closure of a kernel, creating it if necessary.
func (c *construction) state(kernel []ParseItem, isStart bool) graph.State {
	iset := newParseItemSet(c.closure(kernel))
	if s, found := c.memo.Get(iset.items); found {
		return s.(graph.State)
	}
	s := c.b.NewState(isStart, iset)
	c.memo.Put(iset.items, s)
	c.queue.Enqueue(s)
	return s
}

func (c *construction) closure(kernel []ParseItem) []ParseItem {
	items := append([]ParseItem(nil), kernel...)
	expanded := make(map[Segment]bool)
	for k := 0; k < len(items); k++ {
		A, ok := items[k].Next()
		if !ok || A.IsTerminal() || expanded[A] {
			continue
		}
		expanded[A] = true
		for _, p := range c.grammar.ProductionsFor(A) {
			items = append(items, ParseItem{Prod: p})
		}
	}
	return items
}

type itemRef struct {
	s graph.State
	i int
}

// propagate computes lookaheads by a worklist over (state, item) pairs. A pair is
// re-enqueued only if its lookahead set grew, so propagation terminates.
func (c *construction) propagate(pg *ParseGraph, ssp *SegmentSetProvider) {
	worklist := linkedlistqueue.New()
	for _, s := range c.b.States() {
		for i := range c.b.Label(s).items {
			worklist.Enqueue(itemRef{s, i})
		}
	}
	eof := NewSegmentSet(EOF)
	for S, s := range pg.initial {
		iset := c.b.Label(s)
		iset.AddLookahead(iset.Index(ParseItem{Prod: c.grammar.InitialProduction(S)}), eof)
	}
	steps := 0
	for !worklist.Empty() {
		v, _ := worklist.Dequeue()
		ref := v.(itemRef)
		steps++
		iset := c.b.Label(ref.s)
		item, la := iset.Item(ref.i), iset.Lookahead(ref.i)
		X, ok := item.Next()
		if !ok {
			continue
		}
		next, _ := item.NextItem()
		if t, ok := gotoState(c.b.Graph, ref.s, X); ok && !la.IsEmpty() {
			tset := c.b.Label(t)
			j := tset.Index(next)
			if tset.AddLookahead(j, la) {
				worklist.Enqueue(itemRef{t, j})
			}
		}
		if X.IsTerminal() {
			continue
		}
		f := ssp.FollowAfter(item.Prod, item.Dot+1)
		push := withoutEpsilon(f)
		if f.Contains(Epsilon) {
			push = push.Union(la)
		}
		if push.IsEmpty() {
			continue
		}
		for _, p := range c.grammar.ProductionsFor(X) {
			j := iset.Index(ParseItem{Prod: p})
			if iset.AddLookahead(j, push) {
				worklist.Enqueue(itemRef{ref.s, j})
			}
		}
	}
	tracer().Debugf("lookahead propagation finished after %d steps", steps)
}

func gotoState(g *ItemGraph, s graph.State, X Segment) (graph.State, bool) {
	for _, t := range g.Out(s) {
		if l, _ := g.TransitionLabel(t); l == X {
			return g.To(t), true
		}
	}
	return graph.NoState, false
}

// Grammar returns the grammar of the parse graph.
func (pg *ParseGraph) Grammar() *Grammar {
	return pg.grammar
}

// Graph returns the underlying graph.
func (pg *ParseGraph) Graph() *ItemGraph {
	return pg.g
}

// InitialSegments maps every initial segment to its start state.
func (pg *ParseGraph) InitialSegments() map[Segment]graph.State {
	return pg.initial
}

// Goto returns the target of the transition from s labeled X.
func (pg *ParseGraph) Goto(s graph.State, X Segment) (graph.State, bool) {
	return gotoState(pg.g, s, X)
}

// Items returns the item set of state s.
func (pg *ParseGraph) Items(s graph.State) *ParseItemSet {
	return pg.g.Label(s)
}

// Accepts is true if state s contains a completed initial item with lookahead #eof.
func (pg *ParseGraph) Accepts(s graph.State) bool {
	iset := pg.g.Label(s)
	for i, item := range iset.items {
		if item.Prod.target.IsInitial() && item.IsComplete() && iset.lookaheads[i].Contains(EOF) {
			return true
		}
	}
	return false
}

// Dump traces the states of the graph.
func (pg *ParseGraph) Dump() {
	tracer().Debugf("--- item graph %s --------------------", pg.grammar.Name)
	for _, line := range strings.Split(pg.String(), "\n") {
		tracer().Debugf("%s", line)
	}
	tracer().Debugf("------------------------------------")
}

func (pg *ParseGraph) String() string {
	var b strings.Builder
	for _, s := range pg.g.States() {
		fmt.Fprintf(&b, "state %d", s)
		if pg.g.IsStart(s) {
			b.WriteString(" (start)")
		}
		b.WriteString(":\n")
		for _, line := range strings.Split(pg.g.Label(s).String(), "\n") {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		for _, t := range pg.g.Out(s) {
			X, _ := pg.g.TransitionLabel(t)
			fmt.Fprintf(&b, "    -%v-> %d\n", X, pg.g.To(t))
		}
	}
	return b.String()
}

// ToGraphViz exports the parse graph to Graphviz's Dot format.
func (pg *ParseGraph) ToGraphViz(w io.Writer) error {
	return graph.ToGraphViz(w, pg.g,
		func(s graph.State, iset *ParseItemSet) string {
			return fmt.Sprintf("%d\n%v", s, iset)
		},
		func(X Segment) string {
			return X.String()
		})
}

// copyBuilder creates a builder for a copy of the graph. State handles of the
// copy equal those of the original, item sets are cloned.
func (pg *ParseGraph) copyBuilder() *graph.Builder[*ParseItemSet, Segment] {
	b := graph.NewBuilder[*ParseItemSet, Segment]()
	for i := 0; i < pg.g.HandleLimit(); i++ {
		s := graph.State(i)
		b.NewState(pg.g.IsStart(s), pg.g.Label(s).clone())
	}
	for _, t := range pg.g.Transitions() {
		X, _ := pg.g.TransitionLabel(t)
		b.AddTransition(pg.g.From(t), pg.g.To(t), X)
	}
	for i := 0; i < pg.g.HandleLimit(); i++ {
		if s := graph.State(i); pg.g.IsDeleted(s) {
			b.DeleteState(s)
		}
	}
	return b
}
