package generator

import (
	"fmt"
	"sort"

	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/blob"
	"github.com/npillmayer/tabgen/graph"
	"github.com/npillmayer/tabgen/lex"
	"github.com/npillmayer/tabgen/lex/scanner"
)

// ScannerTables are compact tables of a minimal scanner DFA. ScannerTables
// implement scanner.Tables.
type ScannerTables struct {
	Blob     *blob.CompressedBlob
	DFA      *lex.DFA // nil for tables read from a blob
	bounds   []int    // lower bounds of class ranges
	classOf  []int    // class of range
	nclasses int
	starts   map[int]int // start rule → state
	rules    []int       // start rules in order
	accept   []int       // accepted rule+1 per state
	flat     []int
	values   []int
}

var _ scanner.Tables = (*ScannerTables)(nil)

// GenerateScanner creates scanner tables for an NFA.
func GenerateScanner(nfa *lex.Automaton, settings tabgen.Settings, diag tabgen.Diagnostics) (*ScannerTables, error) {
	if len(nfa.StartStates()) == 0 {
		tabgen.Errorf(diag, tabgen.Location{}, "scanner has no start states")
		return nil, fmt.Errorf("scanner has no token rules")
	}
	dfa := lex.CreateDfa(nfa)
	st := &ScannerTables{
		DFA:      dfa,
		nclasses: len(dfa.Alphabet()),
		starts:   make(map[int]int),
	}
	bounds, classes := dfa.ClassMap()
	for i, b := range bounds {
		st.bounds = append(st.bounds, int(b))
		st.classOf = append(st.classOf, classes[i])
	}
	g := dfa.Graph()
	states := g.States()
	rowOf := make(map[graph.State]int, len(states))
	for r, s := range states {
		rowOf[s] = r
	}
	for _, rule := range dfa.StartRules() {
		s, _ := dfa.Start(rule)
		st.starts[rule] = rowOf[s]
		st.rules = append(st.rules, rule)
	}
	rows := make([][]int, len(states))
	st.accept = make([]int, len(states))
	for r, s := range states {
		rows[r] = make([]int, st.nclasses)
		for c := range rows[r] {
			if t, ok := dfa.Target(s, c); ok {
				rows[r][c] = rowOf[t] + 1
			}
		}
		if rule, ok := dfa.Accept(s); ok {
			st.accept[r] = rule + 1
		}
	}
	var err error
	if st.flat, st.values, err = flatten(rows, make([]int, len(rows))); err != nil {
		return nil, err
	}
	if st.Blob, err = pack(settings, st.encode()); err != nil {
		return nil, err
	}
	tracer().Infof("scanner tables: %d states, %d classes, %v", len(states), st.nclasses, st.Blob)
	return st, nil
}

// StateCount returns the number of DFA states.
func (st *ScannerTables) StateCount() int {
	return len(st.accept)
}

// ClassCount returns the number of character classes.
func (st *ScannerTables) ClassCount() int {
	return st.nclasses
}

// Lookup returns the raw cell for a state and a character class: the target
// state plus one, or 0.
func (st *ScannerTables) Lookup(state, class int) int {
	return lookup(st.flat, st.values, state, class)
}

// Class is part of interface scanner.Tables.
func (st *ScannerTables) Class(r rune) int {
	i := sort.Search(len(st.bounds), func(i int) bool { return st.bounds[i] > int(r) }) - 1
	if i < 0 {
		return -1
	}
	return st.classOf[i]
}

// Next is part of interface scanner.Tables.
func (st *ScannerTables) Next(state, class int) int {
	if state < 0 || class < 0 || class >= st.nclasses {
		return -1
	}
	return st.Lookup(state, class) - 1
}

// Accept is part of interface scanner.Tables.
func (st *ScannerTables) Accept(state int) int {
	return st.accept[state] - 1
}

// Start is part of interface scanner.Tables.
func (st *ScannerTables) Start(startRule int) (int, bool) {
	s, ok := st.starts[startRule]
	return s, ok
}

func (st *ScannerTables) encode() []int {
	data := []int{len(st.bounds)}
	for i, b := range st.bounds {
		data = append(data, b, st.classOf[i])
	}
	data = append(data, st.nclasses, len(st.accept), len(st.rules))
	for _, rule := range st.rules {
		data = append(data, rule, st.starts[rule])
	}
	data = append(data, st.accept...)
	data = append(data, st.flat...)
	data = append(data, len(st.values))
	return append(data, st.values...)
}

// ScannerTablesFromBlob decodes scanner tables from a blob.
func ScannerTablesFromBlob(b *blob.CompressedBlob) (*ScannerTables, error) {
	data, err := b.Decompress()
	if err != nil {
		return nil, err
	}
	r := &reader{data: data}
	st := &ScannerTables{Blob: b, starts: make(map[int]int)}
	n := r.next()
	for i := 0; i < n && r.err == nil; i++ {
		st.bounds = append(st.bounds, r.next())
		st.classOf = append(st.classOf, r.next())
	}
	st.nclasses = r.next()
	nstates := r.next()
	nstarts := r.next()
	for i := 0; i < nstarts && r.err == nil; i++ {
		rule := r.next()
		st.starts[rule] = r.next()
		st.rules = append(st.rules, rule)
	}
	st.accept = r.slice(nstates)
	st.flat = r.slice(nstates)
	st.values = r.slice(r.next())
	if err := r.done(); err != nil {
		return nil, err
	}
	if err := checkFlat(st.flat, st.values, st.nclasses); err != nil {
		return nil, err
	}
	return st, nil
}
