package lex

import (
	"math/rand"
	"testing"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tabgen/graph"
	"github.com/npillmayer/tabgen/lex/charset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nfaMatch simulates an NFA and returns the longest match, resolving accepting
// states by priority.
func nfaMatch(nfa *Automaton, startRule int, input string) (int, int, bool) {
	var starts []graph.State
	for _, s := range nfa.StartStates() {
		if nfa.Label(s).StartRule == startRule {
			starts = append(starts, s)
		}
	}
	current := epsilonClosure(nfa, starts)
	rule, length, ok := NoRule, 0, false
	accept := func(set stateSet, pos int) {
		if d := mergeForward(nfa, set); d.IsAccept() {
			rule, length, ok = d.EndRule, pos, true
		}
	}
	accept(current, 0)
	for i := 0; i < len(input) && !current.IsEmpty(); {
		c, w := utf8.DecodeRuneInString(input[i:])
		i += w
		var next []graph.State
		for _, s := range current.Items() {
			for _, t := range nfa.Out(s) {
				if l, isLabeled := nfa.TransitionLabel(t); isLabeled && l.Contains(c) {
					next = append(next, nfa.To(t))
				}
			}
		}
		current = epsilonClosure(nfa, next)
		accept(current, i)
	}
	return rule, length, ok
}

// keywordScanner: rule 0 = "if", rule 1 = [a-z]+, rule 2 = [0-9]+
func keywordScanner() *Automaton {
	nb := NewNFABuilder()
	nb.AddRule(0, nb.Literal("if"), 0, 0)
	nb.AddRule(0, nb.Plus(nb.Class(charset.Span('a', 'z'))), 1, 1)
	nb.AddRule(0, nb.Plus(nb.Class(charset.Span('0', '9'))), 2, 2)
	return nb.Build()
}

func abbScanner() *Automaton {
	nb := NewNFABuilder()
	ab := nb.Star(nb.Alt(nb.Literal("a"), nb.Literal("b")))
	nb.AddRule(0, nb.Concat(ab, nb.Literal("abb")), 7, 0)
	return nb.Build()
}

func TestAlphabetSoundness(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lex")
	defer teardown()
	//
	nfa := keywordScanner()
	classes := ExtractAlphabet(nfa)
	// {i}, {f}, [a-z]\{i,f} split into 3 ranges but one class, [0-9], rest
	assert.Len(t, classes, 5)
	all := charset.Set{}
	for i, c := range classes {
		for j := i + 1; j < len(classes); j++ {
			assert.False(t, c.Overlaps(classes[j]), "classes %v and %v overlap", c, classes[j])
		}
		if i > 0 {
			assert.Less(t, classes[i-1].Min(), c.Min())
		}
		all = all.Union(c)
	}
	assert.True(t, all.Equal(charset.Universal))
	for _, tr := range nfa.Transitions() {
		label, ok := nfa.TransitionLabel(tr)
		if !ok {
			continue
		}
		u := charset.Set{}
		for _, c := range classes {
			if label.Overlaps(c) {
				assert.True(t, label.Covers(c), "class %v straddles label %v", c, label)
				u = u.Union(c)
			}
		}
		assert.True(t, u.Equal(label))
	}
}

func TestMinimalKeywordDFA(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lex")
	defer teardown()
	//
	dfa := CreateDfa(keywordScanner())
	dfa.Dump()
	// start, after "i", after "if", identifier, number
	assert.Equal(t, 5, dfa.Graph().StateCount())
	for input, expected := range map[string]int{"if": 0, "i": 1, "iff": 1, "x": 1, "42": 2} {
		rule, length, ok := dfa.Match(0, input)
		require.True(t, ok, input)
		assert.Equal(t, expected, rule, input)
		assert.Equal(t, len(input), length, input)
	}
	rule, length, ok := dfa.Match(0, "if(")
	assert.True(t, ok)
	assert.Equal(t, 0, rule)
	assert.Equal(t, 2, length)
	_, _, ok = dfa.Match(0, "+")
	assert.False(t, ok)
}

func TestMinimalAbbDFA(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lex")
	defer teardown()
	//
	dfa := CreateDfa(abbScanner())
	assert.Equal(t, 4, dfa.Graph().StateCount())
	assert.Equal(t, 3, len(dfa.Alphabet()))
	assert.Equal(t, dfa.Class('a'), dfa.Class('a'))
	assert.NotEqual(t, dfa.Class('a'), dfa.Class('b'))
	assert.Equal(t, dfa.Class('c'), dfa.Class('世'))
	rule, length, ok := dfa.Match(0, "babbabb")
	assert.True(t, ok)
	assert.Equal(t, 7, rule)
	assert.Equal(t, 7, length)
}

func TestDeterminism(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lex")
	defer teardown()
	//
	for _, nfa := range []*Automaton{keywordScanner(), abbScanner()} {
		dfa := CreateDfa(nfa)
		g := dfa.Graph()
		for _, s := range g.States() {
			for _, class := range dfa.Alphabet() {
				n := 0
				for _, tr := range g.Out(s) {
					assert.False(t, g.IsEpsilon(tr))
					if l, _ := g.TransitionLabel(tr); l.Contains(class.Min()) {
						n++
					}
				}
				assert.LessOrEqual(t, n, 1, "state %d has %d transitions for class %v", s, n, class)
			}
		}
	}
}

func TestDFAEquivalence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lex")
	defer teardown()
	//
	rnd := rand.New(rand.NewSource(5))
	letters := []rune("abfi09x+")
	for _, nfa := range []*Automaton{keywordScanner(), abbScanner()} {
		dfa := CreateDfa(nfa)
		for i := 0; i < 500; i++ {
			word := make([]rune, rnd.Intn(8))
			for j := range word {
				word[j] = letters[rnd.Intn(len(letters))]
			}
			input := string(word)
			r1, l1, ok1 := nfaMatch(nfa, 0, input)
			r2, l2, ok2 := dfa.Match(0, input)
			if r1 != r2 || l1 != l2 || ok1 != ok2 {
				t.Fatalf("%q: NFA says (%d,%d,%v), DFA says (%d,%d,%v)", input, r1, l1, ok1, r2, l2, ok2)
			}
		}
	}
}

// multiStartScanner has four start rules. Start rules 0 and 2 have identical
// languages, start rule 1 overlaps with both, start rule 3 has no match at all
// for inputs starting with 'c'.
func multiStartScanner() *Automaton {
	nb := NewNFABuilder()
	nb.AddRule(0, nb.Literal("a"), 0, 0)
	nb.AddRule(1, nb.Literal("a"), 0, 0)
	nb.AddRule(1, nb.Class(charset.Single('b')), 1, 1)
	nb.AddRule(1, nb.Plus(nb.Class(charset.Span('a', 'c'))), 2, 2)
	nb.AddRule(2, nb.Literal("a"), 0, 0)
	nb.AddRule(3, nb.Literal("ab"), 3, 3)
	nb.AddRule(3, nb.Plus(nb.Class(charset.Span('a', 'b'))), 4, 4)
	return nb.Build()
}

func TestMultipleStartRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lex")
	defer teardown()
	//
	nfa := multiStartScanner()
	dfa := CreateDfa(nfa)
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, dfa.StartRules())
	s0, ok0 := dfa.Start(0)
	s2, ok2 := dfa.Start(2)
	require.True(t, ok0)
	require.True(t, ok2)
	assert.Equal(t, s0, s2, "start rules with equal languages share a start state")
	for start, expected := range map[int]int{0: 0, 1: 0, 2: 0, 3: 4} {
		rule, length, ok := dfa.Match(start, "a")
		assert.True(t, ok, "start rule %d", start)
		assert.Equal(t, expected, rule, "start rule %d", start)
		assert.Equal(t, 1, length, "start rule %d", start)
	}
	rule, length, ok := dfa.Match(1, "abc")
	assert.Equal(t, []interface{}{2, 3, true}, []interface{}{rule, length, ok})
	rule, length, ok = dfa.Match(3, "ab")
	assert.Equal(t, []interface{}{3, 2, true}, []interface{}{rule, length, ok})
	_, _, ok = dfa.Match(3, "c")
	assert.False(t, ok)
	rnd := rand.New(rand.NewSource(7))
	letters := []rune("abcd")
	for i := 0; i < 500; i++ {
		word := make([]rune, rnd.Intn(6))
		for j := range word {
			word[j] = letters[rnd.Intn(len(letters))]
		}
		input := string(word)
		for start := 0; start < 4; start++ {
			r1, l1, ok1 := nfaMatch(nfa, start, input)
			r2, l2, ok2 := dfa.Match(start, input)
			if r1 != r2 || l1 != l2 || ok1 != ok2 {
				t.Fatalf("start %d, %q: NFA says (%d,%d,%v), DFA says (%d,%d,%v)",
					start, input, r1, l1, ok1, r2, l2, ok2)
			}
		}
	}
}

func TestSubsetConstructionLabels(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lex")
	defer teardown()
	//
	nb := NewNFABuilder()
	nb.AddRule(0, nb.Literal("ab"), 1, 5)
	nb.AddRule(0, nb.Literal("ab"), 2, 3) // same language, lower priority value wins
	nfa := nb.Build()
	alphabet := ExtractAlphabet(nfa)
	dfa := SubsetConstruction(nfa, alphabet)
	require.Len(t, dfa.StartStates(), 1)
	assert.Equal(t, 0, dfa.Label(dfa.StartStates()[0]).StartRule)
	assert.Equal(t, 3, dfa.StateCount())
	minimal := CreateDfa(nfa)
	rule, _, ok := minimal.Match(0, "ab")
	assert.True(t, ok)
	assert.Equal(t, 2, rule)
	r := SubsetConstructionR(dfa, alphabet)
	accepting := 0
	for _, s := range r.States() {
		if r.Label(s).IsAccept() {
			accepting++
		}
	}
	assert.Equal(t, 1, accepting)
}

func TestEmptyMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.lex")
	defer teardown()
	//
	nb := NewNFABuilder()
	nb.AddRule(0, nb.Star(nb.Literal("a")), 0, 0)
	dfa := CreateDfa(nb.Build())
	assert.Equal(t, 1, dfa.Graph().StateCount())
	rule, length, ok := dfa.Match(0, "aaab")
	assert.True(t, ok)
	assert.Equal(t, 0, rule)
	assert.Equal(t, 3, length)
}
