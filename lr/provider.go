package lr

// SegmentSetProvider computes FIRST and FOLLOW sets for a grammar. FIRST sets
// contain the Epsilon sentinel for nullable symbols.
//
// Sets are computed on creation by fixed-point iteration; iteration stops after
// the first full pass in which no set changes. A provider is read-only afterwards.
type SegmentSetProvider struct {
	g        *Grammar
	first    map[Segment]SegmentSet
	follow   map[Segment]SegmentSet
	nullable map[Segment]bool
}

// NewSegmentSetProvider analyses a grammar.
func NewSegmentSetProvider(g *Grammar) *SegmentSetProvider {
	ssp := &SegmentSetProvider{
		g:        g,
		first:    make(map[Segment]SegmentSet),
		follow:   make(map[Segment]SegmentSet),
		nullable: make(map[Segment]bool),
	}
	ssp.computeFirst()
	ssp.computeFollow()
	return ssp
}

// Grammar returns the analysed grammar.
func (ssp *SegmentSetProvider) Grammar() *Grammar {
	return ssp.g
}

func (ssp *SegmentSetProvider) targets() []Segment {
	targets := append([]Segment(nil), ssp.g.initial...)
	return append(targets, ssp.g.nonterminals...)
}

func (ssp *SegmentSetProvider) computeFirst() {
	for _, A := range ssp.targets() {
		ssp.first[A] = NewSegmentSet()
	}
	passes := 0
	for changed := true; changed; passes++ {
		changed = false
		for _, p := range ssp.g.productions {
			f := ssp.FirstOf(p.items)
			old := ssp.first[p.target]
			if u := old.Union(f); u.Len() != old.Len() {
				ssp.first[p.target] = u
				changed = true
			}
			if f.Contains(Epsilon) && !ssp.nullable[p.target] {
				ssp.nullable[p.target] = true
				changed = true
			}
		}
	}
	tracer().Debugf("FIRST sets stable after %d passes", passes)
}

func (ssp *SegmentSetProvider) computeFollow() {
	for _, A := range ssp.targets() {
		ssp.follow[A] = NewSegmentSet()
	}
	for _, S := range ssp.g.initial {
		ssp.follow[S] = NewSegmentSet(EOF)
	}
	passes := 0
	for changed := true; changed; passes++ {
		changed = false
		for _, p := range ssp.g.productions {
			for i, B := range p.items {
				if B.IsTerminal() {
					continue
				}
				f := ssp.FollowAfter(p, i+1)
				add := withoutEpsilon(f)
				if f.Contains(Epsilon) {
					add = add.Union(ssp.follow[p.target])
				}
				old := ssp.follow[B]
				if u := old.Union(add); u.Len() != old.Len() {
					ssp.follow[B] = u
					changed = true
				}
			}
		}
	}
	tracer().Debugf("FOLLOW sets stable after %d passes", passes)
}

// First returns FIRST(s). For terminals, this is {s}.
func (ssp *SegmentSetProvider) First(s Segment) SegmentSet {
	if s.IsTerminal() {
		return NewSegmentSet(s)
	}
	return ssp.first[s]
}

// FirstOf returns FIRST of a sequence of segments. It contains Epsilon if every
// segment of the sequence is nullable, in particular for the empty sequence.
func (ssp *SegmentSetProvider) FirstOf(segments []Segment) SegmentSet {
	result := NewSegmentSet()
	for _, s := range segments {
		if s.IsEpsilon() {
			continue
		}
		result = result.Union(withoutEpsilon(ssp.First(s)))
		if !ssp.Nullable(s) {
			return result
		}
	}
	return result.Add(Epsilon)
}

// FollowAfter returns FIRST of the items of p behind position pos. It contains
// Epsilon if the suffix is nullable.
func (ssp *SegmentSetProvider) FollowAfter(p *Production, pos int) SegmentSet {
	if pos < 0 || pos > len(p.items) {
		panic("lr: FollowAfter position out of range")
	}
	return ssp.FirstOf(p.items[pos:])
}

// Follow returns FOLLOW(A) for a non-terminal A.
func (ssp *SegmentSetProvider) Follow(A Segment) SegmentSet {
	return ssp.follow[A]
}

// Nullable is true if a segment derives the empty string.
func (ssp *SegmentSetProvider) Nullable(s Segment) bool {
	if s.IsEpsilon() {
		return true
	}
	return ssp.nullable[s]
}
