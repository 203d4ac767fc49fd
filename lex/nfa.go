package lex

import (
	"fmt"

	"github.com/npillmayer/tabgen/graph"
	"github.com/npillmayer/tabgen/lex/charset"
)

// NoRule marks the absence of a start rule or token rule.
const NoRule = -1

// NodeData is the state label of scanner automata.
type NodeData struct {
	StartRule int // start condition this state starts, or NoRule
	EndRule   int // token rule accepted in this state, or NoRule
	Priority  int // lower priority wins if several token rules accept
}

// Plain is the label of states which neither start nor accept.
var Plain = NodeData{StartRule: NoRule, EndRule: NoRule}

// StartNode returns a label for a start state of a start rule.
func StartNode(startRule int) NodeData {
	return NodeData{StartRule: startRule, EndRule: NoRule}
}

// AcceptNode returns a label for an accepting state of a token rule.
func AcceptNode(rule, priority int) NodeData {
	return NodeData{StartRule: NoRule, EndRule: rule, Priority: priority}
}

// IsStart is true if d carries a start rule.
func (d NodeData) IsStart() bool {
	return d.StartRule != NoRule
}

// IsAccept is true if d carries a token rule.
func (d NodeData) IsAccept() bool {
	return d.EndRule != NoRule
}

func (d NodeData) String() string {
	s := ""
	if d.IsStart() {
		s = fmt.Sprintf("start %d", d.StartRule)
	}
	if d.IsAccept() {
		if s != "" {
			s += ", "
		}
		s += fmt.Sprintf("accept %d/%d", d.EndRule, d.Priority)
	}
	return s
}

// Automaton is the graph type for NFAs and DFAs.
type Automaton = graph.Graph[NodeData, charset.Set]

// --- Thompson construction -------------------------------------------------

// Fragment is a partial NFA with a single entry and a single exit state.
type Fragment struct {
	In, Out graph.State
}

// NFABuilder builds scanner NFAs from fragments. Every token rule is added with
// AddRule, which connects a fragment to a fresh start state and a fresh accepting
// state.
type NFABuilder struct {
	b *graph.Builder[NodeData, charset.Set]
}

// NewNFABuilder creates a builder for an empty NFA.
func NewNFABuilder() *NFABuilder {
	return &NFABuilder{b: graph.NewBuilder[NodeData, charset.Set]()}
}

func (nb *NFABuilder) state() graph.State {
	return nb.b.NewState(false, Plain)
}

// Empty returns a fragment matching the empty string.
func (nb *NFABuilder) Empty() Fragment {
	s := nb.state()
	return Fragment{In: s, Out: s}
}

// Class returns a fragment matching a single rune of a set.
func (nb *NFABuilder) Class(set charset.Set) Fragment {
	f := Fragment{In: nb.state(), Out: nb.state()}
	if !set.IsEmpty() {
		nb.b.AddTransition(f.In, f.Out, set)
	}
	return f
}

// Literal returns a fragment matching a string.
func (nb *NFABuilder) Literal(s string) Fragment {
	var frags []Fragment
	for _, r := range s {
		frags = append(frags, nb.Class(charset.Single(r)))
	}
	return nb.Concat(frags...)
}

// Concat returns a fragment matching the concatenation of fragments.
func (nb *NFABuilder) Concat(frags ...Fragment) Fragment {
	if len(frags) == 0 {
		return nb.Empty()
	}
	for i := 1; i < len(frags); i++ {
		nb.b.AddEpsilon(frags[i-1].Out, frags[i].In)
	}
	return Fragment{In: frags[0].In, Out: frags[len(frags)-1].Out}
}

// Alt returns a fragment matching any of a number of fragments.
func (nb *NFABuilder) Alt(frags ...Fragment) Fragment {
	f := Fragment{In: nb.state(), Out: nb.state()}
	for _, g := range frags {
		nb.b.AddEpsilon(f.In, g.In)
		nb.b.AddEpsilon(g.Out, f.Out)
	}
	return f
}

// Star returns a fragment matching zero or more repetitions of a fragment.
func (nb *NFABuilder) Star(g Fragment) Fragment {
	return nb.Optional(nb.Plus(g))
}

// Plus returns a fragment matching one or more repetitions of a fragment.
func (nb *NFABuilder) Plus(g Fragment) Fragment {
	f := Fragment{In: nb.state(), Out: nb.state()}
	nb.b.AddEpsilon(f.In, g.In)
	nb.b.AddEpsilon(g.Out, g.In)
	nb.b.AddEpsilon(g.Out, f.Out)
	return f
}

// Optional returns a fragment matching a fragment or the empty string.
func (nb *NFABuilder) Optional(g Fragment) Fragment {
	f := Fragment{In: nb.state(), Out: nb.state()}
	nb.b.AddEpsilon(f.In, g.In)
	nb.b.AddEpsilon(g.Out, f.Out)
	nb.b.AddEpsilon(f.In, f.Out)
	return f
}

// AddRule connects a fragment to a start state for startRule and to an accepting
// state for token rule rule.
func (nb *NFABuilder) AddRule(startRule int, f Fragment, rule, priority int) {
	if startRule == NoRule || rule == NoRule {
		panic("lex: AddRule requires a start rule and a token rule")
	}
	start := nb.b.NewState(true, StartNode(startRule))
	accept := nb.b.NewState(false, AcceptNode(rule, priority))
	nb.b.AddEpsilon(start, f.In)
	nb.b.AddEpsilon(f.Out, accept)
	tracer().Debugf("token rule %d (priority %d) for start rule %d", rule, priority, startRule)
}

// Build returns the NFA.
func (nb *NFABuilder) Build() *Automaton {
	return nb.b.Build()
}
