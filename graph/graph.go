/*
Package graph implements a generic directed multigraph with labeled states and
labeled transitions. It is the common substrate for scanner automata (NFA, DFA)
and for the LALR(1) parse graph.

States and transitions are lightweight integer handles into an arena owned by the
graph. A Builder is the only way to mutate a graph; once the builder hands out
the finished graph with Build(), the graph is read-only and safe for concurrent
readers.

Deletion is soft: deleting a state cascades to all its incident transitions, and
deleted states and transitions are excluded from every enumeration, but their
handles remain valid. Using a deleted state for mutation, or a handle which has
never been issued, is a programming error and panics.

Transitions may be unlabeled (epsilon transitions), which is what NFAs need.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package graph

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/tools/container/intsets"
)

// tracer traces with key 'tabgen.graph'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen.graph")
}

// State is a handle for a state of a graph.
type State int

// Transition is a handle for a transition of a graph.
type Transition int

// NoState is returned where a state is required but none exists.
const NoState State = -1

type stateRecord[S any] struct {
	label   S
	start   bool
	deleted bool
	in, out []Transition // may contain deleted transitions, filtered on access
}

type transitionRecord[T any] struct {
	from, to State
	label    T
	epsilon  bool
	deleted  bool
}

// Graph is a directed multigraph with state labels of type S and transition labels
// of type T.
type Graph[S, T any] struct {
	states      []stateRecord[S]
	transitions []transitionRecord[T]
	live        int // number of non-deleted states
	frozen      bool
}

// --- Builder ---------------------------------------------------------------

// Builder is the sole mutator of a graph. It offers all the read operations of
// the graph under construction as well.
//
// Builders are not thread-safe.
type Builder[S, T any] struct {
	*Graph[S, T]
}

// NewBuilder creates a builder for an empty graph.
func NewBuilder[S, T any]() *Builder[S, T] {
	return &Builder[S, T]{Graph: &Graph[S, T]{}}
}

func (b *Builder[S, T]) mutable() {
	if b.frozen {
		panic("graph: attempt to modify a graph after Build()")
	}
}

// NewState adds a state to the graph.
func (b *Builder[S, T]) NewState(isStart bool, label S) State {
	b.mutable()
	b.states = append(b.states, stateRecord[S]{label: label, start: isStart})
	b.live++
	return State(len(b.states) - 1)
}

// SetLabel replaces the label of a state.
func (b *Builder[S, T]) SetLabel(s State, label S) {
	b.mutable()
	b.liveState(s).label = label
}

// AddTransition adds a labeled transition from one state to another.
func (b *Builder[S, T]) AddTransition(from, to State, label T) Transition {
	return b.addTransition(from, to, label, false)
}

// AddEpsilon adds an unlabeled transition from one state to another.
func (b *Builder[S, T]) AddEpsilon(from, to State) Transition {
	var none T
	return b.addTransition(from, to, none, true)
}

func (b *Builder[S, T]) addTransition(from, to State, label T, epsilon bool) Transition {
	b.mutable()
	src, dest := b.liveState(from), b.liveState(to)
	t := Transition(len(b.transitions))
	b.transitions = append(b.transitions, transitionRecord[T]{
		from:    from,
		to:      to,
		label:   label,
		epsilon: epsilon,
	})
	src.out = append(src.out, t)
	dest.in = append(dest.in, t)
	return t
}

// DeleteState deletes a state together with all its incident transitions.
func (b *Builder[S, T]) DeleteState(s State) {
	b.mutable()
	rec := b.liveState(s)
	for _, t := range rec.out {
		b.transitions[t].deleted = true
	}
	for _, t := range rec.in {
		b.transitions[t].deleted = true
	}
	rec.deleted = true
	rec.in, rec.out = nil, nil
	b.live--
	tracer().Debugf("deleted state %d", s)
}

// DeleteTransition deletes a single transition. Deleting a transition twice is a
// no-op.
func (b *Builder[S, T]) DeleteTransition(t Transition) {
	b.mutable()
	b.transition(t).deleted = true
}

// Build finishes construction and returns the graph. The builder may not be used
// for mutation afterwards.
func (b *Builder[S, T]) Build() *Graph[S, T] {
	b.mutable()
	b.frozen = true
	for i := range b.states { // drop deleted adjacency entries once and for all
		rec := &b.states[i]
		rec.in = b.filter(rec.in)
		rec.out = b.filter(rec.out)
	}
	tracer().Debugf("built graph with %d states and %d transitions", b.live, len(b.Transitions()))
	return b.Graph
}

// --- Read access -----------------------------------------------------------

func (g *Graph[S, T]) state(s State) *stateRecord[S] {
	if s < 0 || int(s) >= len(g.states) {
		panic(fmt.Sprintf("graph: state handle %d out of range", s))
	}
	return &g.states[s]
}

func (g *Graph[S, T]) liveState(s State) *stateRecord[S] {
	rec := g.state(s)
	if rec.deleted {
		panic(fmt.Sprintf("graph: use of deleted state %d", s))
	}
	return rec
}

func (g *Graph[S, T]) transition(t Transition) *transitionRecord[T] {
	if t < 0 || int(t) >= len(g.transitions) {
		panic(fmt.Sprintf("graph: transition handle %d out of range", t))
	}
	return &g.transitions[t]
}

func (g *Graph[S, T]) filter(ts []Transition) []Transition {
	var r []Transition
	for _, t := range ts {
		if !g.transitions[t].deleted {
			r = append(r, t)
		}
	}
	return r
}

// StateCount returns the number of non-deleted states.
func (g *Graph[S, T]) StateCount() int {
	return g.live
}

// HandleLimit returns an upper bound for state handles ever issued. Clients may
// use it to size arrays indexed by state.
func (g *Graph[S, T]) HandleLimit() int {
	return len(g.states)
}

// States returns all non-deleted states in order of creation.
func (g *Graph[S, T]) States() []State {
	r := make([]State, 0, g.live)
	for i := range g.states {
		if !g.states[i].deleted {
			r = append(r, State(i))
		}
	}
	return r
}

// StartStates returns all non-deleted start states in order of creation.
func (g *Graph[S, T]) StartStates() []State {
	var r []State
	for i := range g.states {
		if !g.states[i].deleted && g.states[i].start {
			r = append(r, State(i))
		}
	}
	return r
}

// Label returns the label of a state. It is legal to ask deleted states.
func (g *Graph[S, T]) Label(s State) S {
	return g.state(s).label
}

// IsStart is true for start states.
func (g *Graph[S, T]) IsStart(s State) bool {
	return g.state(s).start
}

// IsDeleted is true for deleted states.
func (g *Graph[S, T]) IsDeleted(s State) bool {
	return g.state(s).deleted
}

// Transitions returns all non-deleted transitions in order of creation.
func (g *Graph[S, T]) Transitions() []Transition {
	var r []Transition
	for i := range g.transitions {
		if !g.transitions[i].deleted {
			r = append(r, Transition(i))
		}
	}
	return r
}

// From returns the source state of a transition.
func (g *Graph[S, T]) From(t Transition) State {
	return g.transition(t).from
}

// To returns the target state of a transition.
func (g *Graph[S, T]) To(t Transition) State {
	return g.transition(t).to
}

// TransitionLabel returns the label of a transition. For epsilon transitions it
// returns false.
func (g *Graph[S, T]) TransitionLabel(t Transition) (T, bool) {
	rec := g.transition(t)
	return rec.label, !rec.epsilon
}

// IsEpsilon is true for unlabeled transitions.
func (g *Graph[S, T]) IsEpsilon(t Transition) bool {
	return g.transition(t).epsilon
}

// IsTransitionDeleted is true for deleted transitions.
func (g *Graph[S, T]) IsTransitionDeleted(t Transition) bool {
	return g.transition(t).deleted
}

// In returns the non-deleted transitions ending in s.
func (g *Graph[S, T]) In(s State) []Transition {
	return g.filter(g.state(s).in)
}

// Out returns the non-deleted transitions starting at s.
func (g *Graph[S, T]) Out(s State) []Transition {
	return g.filter(g.state(s).out)
}

// Reachable returns the set of states reachable from a set of states, including
// the states themselves. Deleted states and transitions are not followed.
func Reachable[S, T any](g *Graph[S, T], from ...State) *intsets.Sparse {
	var seen intsets.Sparse
	stack := make([]State, 0, len(from))
	for _, s := range from {
		if !g.IsDeleted(s) && seen.Insert(int(s)) {
			stack = append(stack, s)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range g.Out(s) {
			to := g.To(t)
			if !g.IsDeleted(to) && seen.Insert(int(to)) {
				stack = append(stack, to)
			}
		}
	}
	return &seen
}
