/*
Package compact merges many integer table rows into a single array.

Rows of transition tables (DFA rows for scanners, action/goto rows for parsers) are
often sparse and share long runs of equal values. Combine overlaps rows at their
boundaries: if one row ends with a run of value v and another row starts with a run
of v, the second row may start inside the first one's trailing run. Finding the
optimal arrangement is NP-hard (it is a variant of the shortest common superstring
problem); Combine uses a greedy heuristic tuned for sparse rows:

■ fragments with identical content are merged into one multi-origin fragment

■ every fragment gets a start tag (value and length of its leading run) and an end
tag (value and length of its trailing run)

■ tags are sorted by run value, then by descending run length

■ end tags and start tags with equal values are paired greedily, overlapping the
two fragments by min(endLen, startLen)

■ the remaining chains of fragments are concatenated

Every origin row may be read back from the combined fragment:

    off, _ := frag.GetOffset(origin)
    frag.Values()[off+i] == row[i]    // for skip ≤ i < len(row)

Clients may declare a leading don't-care region of a row, if they can prove that the
row's first K cells are never read ("skip"). Offsets may then become negative; the
combined fragment's Skip() tells how many cells a client has to reserve in front of
the values to make every offset non-negative.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package compact

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tabgen.compact'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen.compact")
}

// ErrOriginCollision is returned if two fragments to be merged claim the same origin.
// This indicates a broken invariant in the caller and must abort table construction.
var ErrOriginCollision = errors.New("origin ID collision while merging table fragments")

// TableFragment is one or more combined integer rows, together with a lookup
// table for the offset of every origin row.
type TableFragment struct {
	values  []int
	offsets map[int]int // origin → offset into values
	origins []int       // in order of insertion
}

// NewFragment creates a fragment for a single row. The first skip cells of the row
// are declared don't-care and will not be stored.
func NewFragment(origin int, row []int, skip int) *TableFragment {
	if skip < 0 || skip > len(row) {
		panic(fmt.Sprintf("skip count %d out of range for row of length %d", skip, len(row)))
	}
	return &TableFragment{
		values:  append([]int(nil), row[skip:]...),
		offsets: map[int]int{origin: -skip},
		origins: []int{origin},
	}
}

// Values returns the combined values. Clients must not modify the slice.
func (f *TableFragment) Values() []int {
	return f.values
}

// Len returns the number of combined values.
func (f *TableFragment) Len() int {
	return len(f.values)
}

// GetOffset returns the offset of an origin row within the fragment.
func (f *TableFragment) GetOffset(origin int) (int, bool) {
	off, ok := f.offsets[origin]
	return off, ok
}

// Origins returns all origins contained in this fragment, in order of insertion.
func (f *TableFragment) Origins() []int {
	return append([]int(nil), f.origins...)
}

// Skip returns the number of don't-care cells a client has to reserve in front of
// Values() to make every origin offset non-negative.
func (f *TableFragment) Skip() int {
	skip := 0
	for _, off := range f.offsets {
		if -off > skip {
			skip = -off
		}
	}
	return skip
}

func (f *TableFragment) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, v := range f.values {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteString("] ")
	for i, o := range f.origins {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%d@%d", o, f.offsets[o])
	}
	return b.String()
}

// absorb copies the origins of g into f, shifted by delta.
func (f *TableFragment) absorb(g *TableFragment, delta int) error {
	for _, o := range g.origins {
		if _, exists := f.offsets[o]; exists {
			return fmt.Errorf("origin %d: %w", o, ErrOriginCollision)
		}
		f.offsets[o] = g.offsets[o] + delta
		f.origins = append(f.origins, o)
	}
	return nil
}

// --- Combining fragments ---------------------------------------------------

// tag describes a boundary run of a fragment.
type tag struct {
	frag  int // index into the de-duplicated fragment list
	value int
	len   int
}

// Combine merges fragments into a single fragment, overlapping equal runs at
// fragment boundaries. Input fragments are not modified.
//
// Combine returns ErrOriginCollision (wrapped) if an origin occurs in more than
// one fragment.
func Combine(frags []*TableFragment) (*TableFragment, error) {
	if len(frags) == 0 {
		return &TableFragment{offsets: map[int]int{}}, nil
	}
	unique, err := mergeIdentical(frags)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("combining %d fragments, %d unique", len(frags), len(unique))
	var starts, ends []tag
	var empty []int
	for i, f := range unique {
		if len(f.values) == 0 {
			empty = append(empty, i)
			continue
		}
		starts = append(starts, tag{frag: i, value: f.values[0], len: leadingRun(f.values)})
		ends = append(ends, tag{frag: i, value: f.values[len(f.values)-1], len: trailingRun(f.values)})
	}
	sortTags(starts)
	sortTags(ends)
	n := len(unique)
	next, prev := make([]int, n), make([]int, n)
	overlap := make([]int, n) // overlap of fragment i with its predecessor
	chain := make([]int, n)   // union-find over chains
	for i := range unique {
		next[i], prev[i], chain[i] = -1, -1, i
	}
	find := func(i int) int {
		for chain[i] != i {
			chain[i] = chain[chain[i]]
			i = chain[i]
		}
		return i
	}
	// Greedy pairing: for every end tag, take the longest free start tag with the
	// same value which does not close a cycle.
	s := 0
	for _, e := range ends {
		for s < len(starts) && starts[s].value < e.value {
			s++
		}
		for k := s; k < len(starts) && starts[k].value == e.value; k++ {
			st := starts[k]
			if st.frag < 0 || prev[st.frag] >= 0 || find(st.frag) == find(e.frag) {
				continue
			}
			next[e.frag], prev[st.frag] = st.frag, e.frag
			overlap[st.frag] = min(e.len, st.len)
			chain[find(st.frag)] = find(e.frag)
			starts[k].frag = -1 // consumed
			tracer().Debugf("overlapping fragment %d with %d by %d", e.frag, st.frag, overlap[st.frag])
			break
		}
	}
	// Concatenate chains, in order of their heads.
	result := &TableFragment{offsets: map[int]int{}}
	chains := arraylist.New()
	for i := range unique {
		if prev[i] < 0 && len(unique[i].values) > 0 {
			chains.Add(i)
		}
	}
	it := chains.Iterator()
	for it.Next() {
		for i := it.Value().(int); i >= 0; i = next[i] {
			pos := len(result.values) - overlap[i]
			result.values = append(result.values, unique[i].values[overlap[i]:]...)
			if err := result.absorb(unique[i], pos); err != nil {
				return nil, err
			}
		}
	}
	for _, i := range empty { // nothing will ever be read from empty fragments
		if err := result.absorb(unique[i], 0); err != nil {
			return nil, err
		}
	}
	tracer().Infof("combined %d fragments into %d cells", len(frags), len(result.values))
	return result, nil
}

// mergeIdentical merges fragments with equal content into multi-origin fragments.
func mergeIdentical(frags []*TableFragment) ([]*TableFragment, error) {
	byContent := make(map[string]*TableFragment, len(frags))
	unique := make([]*TableFragment, 0, len(frags))
	seen := make(map[int]bool)
	for _, f := range frags {
		for _, o := range f.origins {
			if seen[o] {
				return nil, fmt.Errorf("origin %d: %w", o, ErrOriginCollision)
			}
			seen[o] = true
		}
		key := contentKey(f.values)
		if u, ok := byContent[key]; ok {
			if err := u.absorb(f, 0); err != nil {
				return nil, err
			}
			continue
		}
		u := &TableFragment{
			values:  f.values,
			offsets: make(map[int]int, len(f.offsets)),
		}
		if err := u.absorb(f, 0); err != nil {
			return nil, err
		}
		byContent[key] = u
		unique = append(unique, u)
	}
	return unique, nil
}

func contentKey(values []int) string {
	var b strings.Builder
	for _, v := range values {
		fmt.Fprintf(&b, "%d,", v)
	}
	return b.String()
}

func sortTags(tags []tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].value != tags[j].value {
			return tags[i].value < tags[j].value
		}
		return tags[i].len > tags[j].len
	})
}

func leadingRun(values []int) int {
	n := 1
	for n < len(values) && values[n] == values[0] {
		n++
	}
	return n
}

func trailingRun(values []int) int {
	last := len(values) - 1
	n := 1
	for n <= last && values[last-n] == values[last] {
		n++
	}
	return n
}
