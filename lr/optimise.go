package lr

import (
	"errors"

	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/graph"
)

// ErrAcceptOptimizedAway is returned if no state of an optimised parse graph
// accepts its input any more.
var ErrAcceptOptimizedAway = errors.New("all accept actions optimized away")

// ParseGraphOptimiser post-processes parse graphs and checks them for conflicts.
//
// With Optimise set, the optimiser
//
// ■ inlines trivial unit reductions A → X: a transition s -X-> t into a state t
// holding nothing but the completed item A → X • is rewired to the (transitive)
// goto target of A from s,
//
// ■ strips lookaheads of completed items which have a shift from the same state
// (shift-reduce conflicts resolve in favour of shift, silently),
//
// ■ strips goto transitions which no reduction can ever take, and
//
// ■ removes states unreachable from every start state.
//
// Reduce-reduce conflicts are reported as errors in any case.
type ParseGraphOptimiser struct {
	Optimise bool
	diag     tabgen.Diagnostics
}

// NewParseGraphOptimiser creates an optimiser which reports conflicts to diag.
// Optimisation is enabled by default.
func NewParseGraphOptimiser(diag tabgen.Diagnostics) *ParseGraphOptimiser {
	return &ParseGraphOptimiser{Optimise: true, diag: diag}
}

// Run optimises a copy of a parse graph and checks it for conflicts. The input
// graph is left untouched. Run returns ErrAcceptOptimizedAway if no state of the
// resulting graph accepts.
func (opt *ParseGraphOptimiser) Run(pg *ParseGraph) (*ParseGraph, error) {
	result := pg
	if opt.Optimise {
		b := pg.copyBuilder()
		inlineUnitReductions(b)
		stripShiftedLookaheads(b)
		stripUnusedGotos(b)
		pruneUnreachable(b)
		result = &ParseGraph{grammar: pg.grammar, g: b.Build(), initial: pg.initial}
		tracer().Infof("optimised item graph has %d states (from %d)",
			result.g.StateCount(), pg.g.StateCount())
	}
	opt.reportConflicts(result)
	for _, s := range result.g.States() {
		if result.Accepts(s) {
			return result, nil
		}
	}
	tabgen.Errorf(opt.diag, tabgen.Location{}, "grammar %s: %v", pg.grammar.Name, ErrAcceptOptimizedAway)
	return result, ErrAcceptOptimizedAway
}

type itemBuilder = graph.Builder[*ParseItemSet, Segment]

// unitReduction returns the target A of a state consisting of a single completed
// unit production A → X.
func unitReduction(b *itemBuilder, t graph.State) (Segment, bool) {
	iset := b.Label(t)
	if iset.Len() != 1 {
		return Segment{}, false
	}
	item := iset.Item(0)
	if !item.IsComplete() || !item.Prod.IsUnit() || item.Prod.target.IsInitial() {
		return Segment{}, false
	}
	return item.Prod.target, true
}

func inlineUnitReductions(b *itemBuilder) {
	type rewire struct {
		t  graph.Transition
		to graph.State
	}
	var rewires []rewire
	for _, tr := range b.Transitions() { // targets are computed before mutation
		s, X := b.From(tr), mustLabel(b, tr)
		to, seen := b.To(tr), map[Segment]bool{X: true}
		for {
			A, ok := unitReduction(b, to)
			if !ok || seen[A] {
				break
			}
			seen[A] = true
			next, ok := gotoState(b.Graph, s, A)
			if !ok {
				break
			}
			to = next
		}
		if to != b.To(tr) {
			rewires = append(rewires, rewire{tr, to})
		}
	}
	for _, r := range rewires {
		s, X := b.From(r.t), mustLabel(b, r.t)
		tracer().Debugf("inline unit reduction: %d -%v-> %d becomes %d -%v-> %d", s, X, b.To(r.t), s, X, r.to)
		b.DeleteTransition(r.t)
		b.AddTransition(s, r.to, X)
	}
}

func mustLabel(b *itemBuilder, t graph.Transition) Segment {
	X, _ := b.TransitionLabel(t)
	return X
}

func stripShiftedLookaheads(b *itemBuilder) {
	for _, s := range b.States() {
		var shifts []Segment
		for _, t := range b.Out(s) {
			if X := mustLabel(b, t); X.IsTerminal() {
				shifts = append(shifts, X)
			}
		}
		if len(shifts) == 0 {
			continue
		}
		shifted := NewSegmentSet(shifts...)
		iset := b.Label(s)
		for i, item := range iset.items {
			if item.IsComplete() {
				iset.setLookahead(i, iset.lookaheads[i].Subtract(shifted))
			}
		}
	}
}

// stripUnusedGotos deletes goto transitions s -A-> t for which no reachable
// reduction of A leads back to s. For every completed item A → γ • with a
// non-empty lookahead, states |γ| steps back are the origins of A-gotos.
func stripUnusedGotos(b *itemBuilder) {
	type gotoKey struct {
		s graph.State
		A Segment
	}
	used := make(map[gotoKey]bool)
	reachable := graph.Reachable(b.Graph, b.StartStates()...)
	for _, s := range b.States() {
		if !reachable.Has(int(s)) {
			continue
		}
		iset := b.Label(s)
		for i, item := range iset.items {
			if !item.IsComplete() || item.Prod.target.IsInitial() || iset.lookaheads[i].IsEmpty() {
				continue
			}
			for _, q := range backtrack(b, s, item.Prod.Len()) {
				used[gotoKey{q, item.Prod.target}] = true
			}
		}
	}
	for _, t := range b.Transitions() {
		X := mustLabel(b, t)
		if !X.IsTerminal() && !used[gotoKey{b.From(t), X}] {
			tracer().Debugf("goto %d -%v-> %d is never taken", b.From(t), X, b.To(t))
			b.DeleteTransition(t)
		}
	}
}

func backtrack(b *itemBuilder, s graph.State, steps int) []graph.State {
	current := map[graph.State]bool{s: true}
	for ; steps > 0; steps-- {
		prev := make(map[graph.State]bool)
		for q := range current {
			for _, t := range b.In(q) {
				prev[b.From(t)] = true
			}
		}
		current = prev
	}
	r := make([]graph.State, 0, len(current))
	for q := range current {
		r = append(r, q)
	}
	return r
}

func pruneUnreachable(b *itemBuilder) {
	reachable := graph.Reachable(b.Graph, b.StartStates()...)
	for _, s := range b.States() {
		if !reachable.Has(int(s)) {
			b.DeleteState(s)
		}
	}
}

// --- Conflicts -------------------------------------------------------------

// reportConflicts reports reduce-reduce conflicts. The production declared first
// wins the conflict.
func (opt *ParseGraphOptimiser) reportConflicts(pg *ParseGraph) {
	for _, s := range pg.g.States() {
		for _, c := range reduceConflicts(pg.g.Label(s)) {
			tabgen.Errorf(opt.diag, pg.grammar.Location(c.loser.Prod),
				"reduce-reduce conflict in state %d on %v: %v wins over %v",
				s, c.on, c.winner.Prod, c.loser.Prod)
		}
	}
}

type conflict struct {
	on            SegmentSet
	winner, loser ParseItem
}

func reduceConflicts(iset *ParseItemSet) []conflict {
	var conflicts []conflict
	for i, a := range iset.items { // items are sorted by production index
		if !a.IsComplete() {
			continue
		}
		for j := i + 1; j < len(iset.items); j++ {
			b := iset.items[j]
			if !b.IsComplete() {
				continue
			}
			if common := iset.lookaheads[i].Intersect(iset.lookaheads[j]); !common.IsEmpty() {
				conflicts = append(conflicts, conflict{on: common, winner: a, loser: b})
			}
		}
	}
	return conflicts
}
