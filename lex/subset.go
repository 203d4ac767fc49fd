package lex

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/npillmayer/tabgen/graph"
	"github.com/npillmayer/tabgen/lex/charset"
	"github.com/npillmayer/tabgen/orderedset"
)

// stateSet is a canonical set of states of the source automaton of a subset
// construction.
type stateSet = orderedset.Set[graph.State]

func stateSetComparator(a, b interface{}) int {
	return a.(stateSet).Compare(b.(stateSet))
}

// subsets memoizes the states of a subset construction by their state sets and
// keeps the work list of state sets still to explore.
type subsets struct {
	b     *graph.Builder[NodeData, charset.Set]
	memo  *treemap.Map           // stateSet → graph.State
	queue *linkedlistqueue.Queue // of stateSet
}

func newSubsets() *subsets {
	return &subsets{
		b:     graph.NewBuilder[NodeData, charset.Set](),
		memo:  treemap.NewWith(stateSetComparator),
		queue: linkedlistqueue.New(),
	}
}

// state returns the state for a set, creating it with a label if necessary.
func (ss *subsets) state(set stateSet, isStart bool, label func() NodeData) graph.State {
	if s, found := ss.memo.Get(set); found {
		return s.(graph.State)
	}
	s := ss.b.NewState(isStart, label())
	ss.memo.Put(set, s)
	ss.queue.Enqueue(set)
	return s
}

func (ss *subsets) next() (stateSet, graph.State, bool) {
	x, ok := ss.queue.Dequeue()
	if !ok {
		return stateSet{}, graph.NoState, false
	}
	s, _ := ss.memo.Get(x)
	return x.(stateSet), s.(graph.State), true
}

// edges collects transition labels per state pair while a state is explored.
type edges struct {
	order  []graph.State
	labels map[graph.State]charset.Set
}

func (e *edges) add(s graph.State, class charset.Set) {
	if e.labels == nil {
		e.labels = make(map[graph.State]charset.Set)
	}
	l, ok := e.labels[s]
	if !ok {
		e.order = append(e.order, s)
	}
	e.labels[s] = l.Union(class)
}

// --- Forward ---------------------------------------------------------------

// SubsetConstruction determinizes an automaton over an alphabet of disjoint
// classes.
//
// There is one start state per distinct start rule, representing the epsilon
// closure of all start states carrying that start rule. Start rules with equal
// closures share a start state, which is labeled with the first of them. States are memoized by
// their canonical set of source states. Labels are merged: the token rule of a
// state is the one with the lowest priority of all accepting members (the first
// one in set order on ties), and its start rule is the first start marker found
// in set order.
//
// The resulting automaton is deterministic and partial, i.e. there is no dead
// state. For every pair of states there is at most one transition, labeled with
// the union of all classes leading from one to the other.
func SubsetConstruction(a *Automaton, alphabet []charset.Set) *Automaton {
	dfa, _ := subsetConstruction(a, alphabet, startGroups(a))
	return dfa
}

// startGroup is a set of states of a source automaton which together form the
// start of a start rule.
type startGroup struct {
	rule   int
	states []graph.State
}

// ruleStart maps a start rule to its start state. Several start rules may share
// a start state, so this mapping is kept apart from state labels.
type ruleStart struct {
	rule  int
	state graph.State
}

func subsetConstruction(a *Automaton, alphabet []charset.Set, groups []startGroup) (*Automaton, []ruleStart) {
	ss := newSubsets()
	labelOf := func(set stateSet) func() NodeData {
		return func() NodeData { return mergeForward(a, set) }
	}
	starts := make([]ruleStart, 0, len(groups))
	for _, group := range groups {
		set := epsilonClosure(a, group.states)
		starts = append(starts, ruleStart{group.rule, ss.state(set, true, labelOf(set))})
	}
	for {
		set, from, ok := ss.next()
		if !ok {
			break
		}
		var out edges
		for _, class := range alphabet {
			target := epsilonClosure(a, move(a, set, class))
			if target.IsEmpty() {
				continue
			}
			out.add(ss.state(target, false, labelOf(target)), class)
		}
		for _, to := range out.order {
			ss.b.AddTransition(from, to, out.labels[to])
		}
	}
	dfa := ss.b.Build()
	tracer().Debugf("subset construction: %d states → %d states", a.StateCount(), dfa.StateCount())
	return dfa, starts
}

// startGroups groups the start states of an automaton by start rule, in order of
// first appearance.
func startGroups(a *Automaton) []startGroup {
	var groups []startGroup
	index := make(map[int]int)
	for _, s := range a.StartStates() {
		rule := a.Label(s).StartRule
		i, ok := index[rule]
		if !ok {
			i = len(groups)
			index[rule] = i
			groups = append(groups, startGroup{rule: rule})
		}
		groups[i].states = append(groups[i].states, s)
	}
	return groups
}

func mergeForward(a *Automaton, set stateSet) NodeData {
	d := Plain
	for _, s := range set.Items() {
		l := a.Label(s)
		if l.IsAccept() && (!d.IsAccept() || l.Priority < d.Priority) {
			d.EndRule, d.Priority = l.EndRule, l.Priority
		}
		if !d.IsStart() && l.IsStart() {
			d.StartRule = l.StartRule
		}
	}
	return d
}

// epsilonClosure returns all states reachable from a set of states by epsilon
// transitions only, including the states themselves.
func epsilonClosure(a *Automaton, states []graph.State) stateSet {
	seen := make(map[graph.State]bool, len(states))
	stack := make([]graph.State, 0, len(states))
	for _, s := range states {
		if !seen[s] {
			seen[s] = true
			stack = append(stack, s)
		}
	}
	closure := make([]graph.State, 0, len(states))
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		closure = append(closure, s)
		for _, t := range a.Out(s) {
			if a.IsEpsilon(t) && !seen[a.To(t)] {
				seen[a.To(t)] = true
				stack = append(stack, a.To(t))
			}
		}
	}
	return orderedset.Of(closure...)
}

// move returns the targets of all transitions from a set of states whose label
// contains a class. As classes never straddle a label boundary, it is sufficient
// to test the lowest rune of the class.
func move(a *Automaton, set stateSet, class charset.Set) []graph.State {
	var targets []graph.State
	r := class.Min()
	for _, s := range set.Items() {
		for _, t := range a.Out(s) {
			if label, ok := a.TransitionLabel(t); ok && label.Contains(r) {
				targets = append(targets, a.To(t))
			}
		}
	}
	return targets
}

// --- Reverse ---------------------------------------------------------------

// SubsetConstructionR determinizes the reverse of a deterministic automaton, but
// keeps the resulting transitions in the orientation of the input automaton.
//
// The initial sets are the accepting states of the input, one set per token rule.
// They carry their token rule and its priority, and are the only accepting states
// of the result. From every set, the predecessor set for every class is computed;
// no epsilon step is needed, as the input is deterministic. The start rule of
// every set is the first start marker found in set order, and sets containing a
// start state of the input become start states of the result.
//
// Determinizing the result again with SubsetConstruction yields the minimal
// automaton.
func SubsetConstructionR(a *Automaton, alphabet []charset.Set) *Automaton {
	var starts []ruleStart
	for _, s := range a.StartStates() {
		starts = append(starts, ruleStart{a.Label(s).StartRule, s})
	}
	r, _ := subsetConstructionR(a, alphabet, starts)
	return r
}

// subsetConstructionR additionally returns the start groups for determinizing the
// result: for every start rule, the sets containing the rule's start state in a.
// A start rule whose start state is in no set gets an empty group.
func subsetConstructionR(a *Automaton, alphabet []charset.Set, starts []ruleStart) (*Automaton, []startGroup) {
	ss := newSubsets()
	labelOf := func(set stateSet, accept NodeData) func() NodeData {
		return func() NodeData {
			d := accept
			for _, s := range set.Items() {
				if l := a.Label(s); l.IsStart() {
					d.StartRule = l.StartRule
					break
				}
			}
			return d
		}
	}
	for _, group := range acceptGroups(a) {
		set := orderedset.Of(group...)
		accept := a.Label(group[0])
		ss.state(set, containsStart(a, set), labelOf(set, AcceptNode(accept.EndRule, accept.Priority)))
	}
	for {
		set, to, ok := ss.next()
		if !ok {
			break
		}
		var in edges
		for _, class := range alphabet {
			pred := orderedset.Of(predecessors(a, set, class)...)
			if pred.IsEmpty() {
				continue
			}
			in.add(ss.state(pred, containsStart(a, pred), labelOf(pred, Plain)), class)
		}
		for _, from := range in.order {
			ss.b.AddTransition(from, to, in.labels[from])
		}
	}
	r := ss.b.Build()
	groups := make([]startGroup, len(starts))
	for i, st := range starts {
		groups[i].rule = st.rule
	}
	ss.memo.Each(func(key, value interface{}) {
		set := key.(stateSet)
		for i, st := range starts {
			if set.Contains(st.state) {
				groups[i].states = append(groups[i].states, value.(graph.State))
			}
		}
	})
	tracer().Debugf("reverse subset construction: %d states → %d states", a.StateCount(), r.StateCount())
	return r, groups
}

// acceptGroups groups the accepting states of an automaton by token rule, in order
// of first appearance.
func acceptGroups(a *Automaton) [][]graph.State {
	var groups [][]graph.State
	index := make(map[int]int)
	for _, s := range a.States() {
		l := a.Label(s)
		if !l.IsAccept() {
			continue
		}
		i, ok := index[l.EndRule]
		if !ok {
			i = len(groups)
			index[l.EndRule] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], s)
	}
	return groups
}

func containsStart(a *Automaton, set stateSet) bool {
	for _, s := range set.Items() {
		if a.IsStart(s) {
			return true
		}
	}
	return false
}

func predecessors(a *Automaton, set stateSet, class charset.Set) []graph.State {
	var preds []graph.State
	r := class.Min()
	for _, s := range set.Items() {
		for _, t := range a.In(s) {
			if label, ok := a.TransitionLabel(t); ok && label.Contains(r) {
				preds = append(preds, a.From(t))
			}
		}
	}
	return preds
}
