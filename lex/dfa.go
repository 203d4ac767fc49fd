package lex

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/npillmayer/tabgen/graph"
	"github.com/npillmayer/tabgen/lex/charset"
)

// DFA is a minimal deterministic scanner automaton together with its alphabet.
// A DFA is read-only and may be used concurrently.
type DFA struct {
	graph    *Automaton
	alphabet []charset.Set
	bounds   []rune // sorted lower bounds of all class ranges
	classOf  []int  // class of the range starting at bounds[i]
	starts   map[int]graph.State
	rules    []int // start rules in order of their start states
}

// CreateDfa creates a minimal DFA for an NFA.
func CreateDfa(nfa *Automaton) *DFA {
	alphabet := ExtractAlphabet(nfa)
	dfa, starts := subsetConstruction(nfa, alphabet, startGroups(nfa))
	rev, groups := subsetConstructionR(dfa, alphabet, starts)
	dfa, starts = subsetConstruction(rev, alphabet, groups)
	tracer().Infof("minimal DFA has %d states and %d classes", dfa.StateCount(), len(alphabet))
	return newDFA(dfa, alphabet, starts)
}

// NewDFA wraps a deterministic automaton over an alphabet. Start rules are taken
// from the labels of start states.
func NewDFA(a *Automaton, alphabet []charset.Set) *DFA {
	var starts []ruleStart
	for _, s := range a.StartStates() {
		starts = append(starts, ruleStart{a.Label(s).StartRule, s})
	}
	return newDFA(a, alphabet, starts)
}

func newDFA(a *Automaton, alphabet []charset.Set, starts []ruleStart) *DFA {
	d := &DFA{graph: a, alphabet: alphabet, starts: make(map[int]graph.State)}
	for c, class := range alphabet {
		for _, r := range class.Ranges() {
			d.bounds = append(d.bounds, r.From)
			d.classOf = append(d.classOf, c)
		}
	}
	sort.Sort(byBound{d})
	for _, st := range starts {
		if _, ok := d.starts[st.rule]; !ok {
			d.starts[st.rule] = st.state
			d.rules = append(d.rules, st.rule)
		}
	}
	return d
}

type byBound struct{ d *DFA }

func (b byBound) Len() int           { return len(b.d.bounds) }
func (b byBound) Less(i, j int) bool { return b.d.bounds[i] < b.d.bounds[j] }
func (b byBound) Swap(i, j int) {
	b.d.bounds[i], b.d.bounds[j] = b.d.bounds[j], b.d.bounds[i]
	b.d.classOf[i], b.d.classOf[j] = b.d.classOf[j], b.d.classOf[i]
}

// Graph returns the underlying automaton.
func (d *DFA) Graph() *Automaton {
	return d.graph
}

// Alphabet returns the character classes, sorted by their lowest rune.
func (d *DFA) Alphabet() []charset.Set {
	return d.alphabet
}

// ClassMap returns the lower bounds of all class ranges in increasing order,
// together with the class of every range. As classes jointly exhaust the character
// domain, the class of a rune r is the class of the last range starting at or
// before r.
func (d *DFA) ClassMap() (bounds []rune, classes []int) {
	return d.bounds, d.classOf
}

// Class returns the alphabet class of a rune, or -1 if r is not a valid rune.
func (d *DFA) Class(r rune) int {
	i := sort.Search(len(d.bounds), func(i int) bool { return d.bounds[i] > r }) - 1
	if i < 0 {
		return -1
	}
	return d.classOf[i]
}

// StartRules returns the start rules of the DFA.
func (d *DFA) StartRules() []int {
	return d.rules
}

// Start returns the start state for a start rule.
func (d *DFA) Start(startRule int) (graph.State, bool) {
	s, ok := d.starts[startRule]
	return s, ok
}

// Step returns the successor of a state for a rune.
func (d *DFA) Step(s graph.State, r rune) (graph.State, bool) {
	for _, t := range d.graph.Out(s) {
		if label, ok := d.graph.TransitionLabel(t); ok && label.Contains(r) {
			return d.graph.To(t), true
		}
	}
	return graph.NoState, false
}

// Target returns the successor of a state for an alphabet class.
func (d *DFA) Target(s graph.State, class int) (graph.State, bool) {
	return d.Step(s, d.alphabet[class].Min())
}

// Accept returns the token rule accepted in a state.
func (d *DFA) Accept(s graph.State) (int, bool) {
	l := d.graph.Label(s)
	return l.EndRule, l.IsAccept()
}

// Match runs the DFA for a start rule on input and returns the token rule and the
// byte length of the longest accepted prefix.
func (d *DFA) Match(startRule int, input string) (rule int, length int, ok bool) {
	s, found := d.Start(startRule)
	if !found {
		return NoRule, 0, false
	}
	rule = NoRule
	if r, acc := d.Accept(s); acc {
		rule, ok = r, true
	}
	for i := 0; i < len(input); {
		c, w := utf8.DecodeRuneInString(input[i:])
		i += w
		if s, found = d.Step(s, c); !found {
			break
		}
		if r, acc := d.Accept(s); acc {
			rule, length, ok = r, i, true
		}
	}
	return
}

// Dump traces the DFA.
func (d *DFA) Dump() {
	tracer().Debugf("--- DFA with %d states ---------------------", d.graph.StateCount())
	for _, s := range d.graph.States() {
		tracer().Debugf("state %d [%v]", s, d.graph.Label(s))
		for _, t := range d.graph.Out(s) {
			label, _ := d.graph.TransitionLabel(t)
			tracer().Debugf("    --%v--> %d", label, d.graph.To(t))
		}
	}
}

func (d *DFA) String() string {
	return fmt.Sprintf("DFA(%d states, %d classes)", d.graph.StateCount(), len(d.alphabet))
}
