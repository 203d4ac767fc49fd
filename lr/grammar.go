package lr

import (
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tabgen"
)

// Errors for grammar construction.
var (
	ErrUndefinedSymbol = errors.New("undefined non-terminal")
	ErrNoProductions   = errors.New("grammar has no productions")
)

// Grammar is a context-free grammar, augmented with one initial production
// <S> → S for every start symbol S. Productions are numbered in order of
// declaration, augmented productions first.
//
// A Grammar is immutable once built and may be used concurrently.
type Grammar struct {
	Name         string
	productions  []*Production
	byTarget     map[Segment][]*Production
	initial      []Segment // augmented start symbols, in order of declaration
	terminals    []Segment // sorted, including EOF
	nonterminals []Segment // sorted, excluding initial segments
	locations    map[*Production]tabgen.Location
}

// Productions returns all productions in order of declaration.
func (g *Grammar) Productions() []*Production {
	return g.productions
}

// Production returns the production with index i.
func (g *Grammar) Production(i int) *Production {
	if i < 0 || i >= len(g.productions) {
		panic(fmt.Sprintf("lr: production index %d out of range", i))
	}
	return g.productions[i]
}

// ProductionsFor returns the productions with target A, in order of declaration.
func (g *Grammar) ProductionsFor(A Segment) []*Production {
	return g.byTarget[A]
}

// InitialSegments returns the augmented start symbols, in order of declaration.
func (g *Grammar) InitialSegments() []Segment {
	return g.initial
}

// InitialProduction returns the production <S> → S for an initial segment.
func (g *Grammar) InitialProduction(initial Segment) *Production {
	if ps := g.byTarget[initial]; len(ps) > 0 {
		return ps[0]
	}
	return nil
}

// Terminals returns all terminals of the grammar in segment order, including EOF.
func (g *Grammar) Terminals() []Segment {
	return g.terminals
}

// NonTerminals returns all non-terminals in segment order, excluding the
// augmented start symbols.
func (g *Grammar) NonTerminals() []Segment {
	return g.nonterminals
}

// Location returns the source location of a production, if known.
func (g *Grammar) Location(p *Production) tabgen.Location {
	return g.locations[p]
}

// Dump traces all productions.
func (g *Grammar) Dump() {
	tracer().Debugf("--- grammar %s ---------------------", g.Name)
	for _, p := range g.productions {
		tracer().Debugf("%3d: %v", p.index, p)
	}
	tracer().Debugf("------------------------------------")
}

// --- Grammar builder -------------------------------------------------------

// GrammarBuilder is a helper to construct grammars. Use it like this:
//
//     b := lr.NewGrammarBuilder("G")
//     b.LHS("S").N("A").T("a").End()   // S  → A "a"
//     b.LHS("A").T("b").Opt("B").End() // A  → "b" B?
//     b.LHS("A").Epsilon()             // A  → ε
//     b.LHS("B").T("c").End()          // B  → "c"
//     g, err := b.Grammar()
//
// The first left hand side is the start symbol, unless clients call Start(…).
type GrammarBuilder struct {
	name      string
	rules     []*Production
	locations map[*Production]tabgen.Location
	starts    []string
	diag      tabgen.Diagnostics
}

// NewGrammarBuilder creates a builder for a grammar.
func NewGrammarBuilder(name string) *GrammarBuilder {
	return &GrammarBuilder{
		name:      name,
		locations: make(map[*Production]tabgen.Location),
	}
}

// ReportTo sets the receiver of grammar diagnostics.
func (gb *GrammarBuilder) ReportTo(diag tabgen.Diagnostics) *GrammarBuilder {
	gb.diag = diag
	return gb
}

// Start sets the start symbols. Every start symbol gets its own initial state in
// the parse graph.
func (gb *GrammarBuilder) Start(names ...string) *GrammarBuilder {
	gb.starts = append(gb.starts, names...)
	return gb
}

// LHS starts a production for non-terminal name.
func (gb *GrammarBuilder) LHS(name string) *RuleBuilder {
	return &RuleBuilder{gb: gb, target: N(name)}
}

// Add adds a production. Clients normally use LHS(…) instead.
func (gb *GrammarBuilder) Add(p *Production, at tabgen.Location) {
	gb.rules = append(gb.rules, p)
	if !at.IsUnknown() {
		gb.locations[p] = at
	}
}

// RuleBuilder builds the right hand side of a production.
type RuleBuilder struct {
	gb     *GrammarBuilder
	target Segment
	items  []Segment
	at     tabgen.Location
}

// N appends a non-terminal.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.items = append(rb.items, N(name))
	return rb
}

// T appends a terminal.
func (rb *RuleBuilder) T(name string) *RuleBuilder {
	rb.items = append(rb.items, T(name))
	return rb
}

// Opt appends an optional non-terminal.
func (rb *RuleBuilder) Opt(name string) *RuleBuilder {
	rb.items = append(rb.items, N(name).AsOptional())
	return rb
}

// OptT appends an optional terminal.
func (rb *RuleBuilder) OptT(name string) *RuleBuilder {
	rb.items = append(rb.items, T(name).AsOptional())
	return rb
}

// Seg appends arbitrary segments.
func (rb *RuleBuilder) Seg(segs ...Segment) *RuleBuilder {
	rb.items = append(rb.items, segs...)
	return rb
}

// At sets the source location of the production.
func (rb *RuleBuilder) At(loc tabgen.Location) *RuleBuilder {
	rb.at = loc
	return rb
}

// End finishes the production.
func (rb *RuleBuilder) End() *Production {
	p := NewProduction(rb.target, rb.items...)
	rb.gb.Add(p, rb.at)
	return p
}

// Epsilon finishes the production as an epsilon production.
func (rb *RuleBuilder) Epsilon() *Production {
	rb.items = nil
	return rb.End()
}

// Grammar creates the grammar.
//
// Duplicate productions are reported as warnings and dropped. Non-terminals without
// productions are reported as errors, and Grammar returns ErrUndefinedSymbol.
// Non-terminals unreachable from every start symbol are reported as warnings.
// For every optional segment A?, productions A? → A and A? → ε are derived.
func (gb *GrammarBuilder) Grammar() (*Grammar, error) {
	if len(gb.rules) == 0 {
		return nil, ErrNoProductions
	}
	g := &Grammar{
		Name:      gb.name,
		byTarget:  make(map[Segment][]*Production),
		locations: make(map[*Production]tabgen.Location),
	}
	starts := gb.starts
	if len(starts) == 0 {
		starts = []string{gb.rules[0].target.name}
	}
	add := func(p *Production, at tabgen.Location) {
		p.index = len(g.productions)
		g.productions = append(g.productions, p)
		g.byTarget[p.target] = append(g.byTarget[p.target], p)
		if !at.IsUnknown() {
			g.locations[p] = at
		}
	}
	for _, name := range starts {
		S := InitialSegment(name)
		if _, dup := g.byTarget[S]; dup {
			continue
		}
		g.initial = append(g.initial, S)
		add(NewProduction(S, N(name)), tabgen.Location{})
	}
	var optionals []Segment
	seenOpt := make(map[Segment]bool)
	for _, p := range gb.rules {
		at := gb.locations[p]
		if q := g.find(p); q != nil {
			tabgen.Warnf(gb.diag, at, "duplicate production %v (first declared at %v), ignored", p, g.locations[q])
			continue
		}
		p = NewProduction(p.target, p.items...) // builders may be re-used, keep indices private
		add(p, at)
		for _, s := range p.items {
			if s.IsOptional() && !seenOpt[s] {
				seenOpt[s] = true
				optionals = append(optionals, s)
			}
		}
	}
	for _, opt := range optionals {
		if len(g.byTarget[opt]) > 0 {
			continue // defined explicitly
		}
		add(NewProduction(opt, opt.Base()), tabgen.Location{})
		add(NewProduction(opt), tabgen.Location{})
	}
	g.collectSymbols()
	err := g.checkDefined(gb.diag)
	g.checkReachable(gb.diag)
	if tracer().GetTraceLevel() >= tracing.LevelDebug {
		g.Dump()
	}
	return g, err
}

func (g *Grammar) find(p *Production) *Production {
	for _, q := range g.byTarget[p.target] {
		if q.Equal(p) {
			return q
		}
	}
	return nil
}

func (g *Grammar) collectSymbols() {
	terms := map[Segment]bool{EOF: true}
	nonterms := make(map[Segment]bool)
	for _, p := range g.productions {
		if !p.target.IsInitial() {
			nonterms[p.target] = true
		}
		for _, s := range p.items {
			if s.IsTerminal() {
				terms[s] = true
			} else {
				nonterms[s] = true
			}
		}
	}
	g.terminals = sortedSegments(terms)
	g.nonterminals = sortedSegments(nonterms)
}

func sortedSegments(m map[Segment]bool) []Segment {
	r := make([]Segment, 0, len(m))
	for s := range m {
		r = append(r, s)
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Compare(r[j]) < 0 })
	return r
}

func (g *Grammar) checkDefined(diag tabgen.Diagnostics) error {
	var err error
	for _, A := range g.nonterminals {
		if len(g.byTarget[A]) > 0 {
			continue
		}
		at := tabgen.Location{}
		for _, p := range g.productions { // find first use
			for _, s := range p.items {
				if s == A && at.IsUnknown() {
					at = g.locations[p]
				}
			}
		}
		tabgen.Errorf(diag, at, "non-terminal %v has no productions", A)
		err = fmt.Errorf("%v: %w", A, ErrUndefinedSymbol)
	}
	return err
}

func (g *Grammar) checkReachable(diag tabgen.Diagnostics) {
	reached := make(map[Segment]bool)
	var stack []Segment
	for _, S := range g.initial {
		reached[S] = true
		stack = append(stack, S)
	}
	for len(stack) > 0 {
		A := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.byTarget[A] {
			for _, s := range p.items {
				if !s.IsTerminal() && !reached[s] {
					reached[s] = true
					stack = append(stack, s)
				}
			}
		}
	}
	for _, A := range g.nonterminals {
		if !reached[A] {
			at := tabgen.Location{}
			if ps := g.byTarget[A]; len(ps) > 0 {
				at = g.locations[ps[0]]
			}
			tabgen.Warnf(diag, at, "non-terminal %v is unreachable from start symbols", A)
		}
	}
}
