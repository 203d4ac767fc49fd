package lr

import (
	"fmt"
	"sort"
	"strings"
)

// ParseItem is an LR(0) item: a production with a dot position.
type ParseItem struct {
	Prod *Production
	Dot  int
}

// Next returns the segment right of the dot, if any.
func (i ParseItem) Next() (Segment, bool) {
	if i.Dot >= len(i.Prod.items) {
		return Segment{}, false
	}
	return i.Prod.items[i.Dot], true
}

// NextItem returns the item with the dot advanced by one position.
func (i ParseItem) NextItem() (ParseItem, bool) {
	if i.Dot >= len(i.Prod.items) {
		return i, false
	}
	return ParseItem{Prod: i.Prod, Dot: i.Dot + 1}, true
}

// IsComplete is true if the dot is behind the last item of the production.
func (i ParseItem) IsComplete() bool {
	return i.Dot >= len(i.Prod.items)
}

// Compare orders items by production index, then by dot position.
func (i ParseItem) Compare(o ParseItem) int {
	if i.Prod.index != o.Prod.index {
		return i.Prod.index - o.Prod.index
	}
	return i.Dot - o.Dot
}

func (i ParseItem) String() string {
	var b strings.Builder
	b.WriteString(i.Prod.target.String())
	b.WriteString(" →")
	for k, s := range i.Prod.items {
		if k == i.Dot {
			b.WriteString(" •")
		}
		b.WriteString(" ")
		b.WriteString(s.String())
	}
	if i.IsComplete() {
		b.WriteString(" •")
	}
	return b.String()
}

func compareItemSlices(a, b []ParseItem) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if c := a[k].Compare(b[k]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// --- Item sets -------------------------------------------------------------

// ParseItemSet is the label of a state of a parse graph: a canonical sorted set
// of LR(0) items, each with a set of lookahead segments. Items are fixed, while
// lookaheads only grow.
type ParseItemSet struct {
	items      []ParseItem
	lookaheads []SegmentSet
}

func newParseItemSet(items []ParseItem) *ParseItemSet {
	sorted := append([]ParseItem(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Compare(sorted[j]) < 0 })
	k := 0
	for i := range sorted {
		if i == 0 || sorted[i].Compare(sorted[k-1]) != 0 {
			sorted[k] = sorted[i]
			k++
		}
	}
	sorted = sorted[:k]
	iset := &ParseItemSet{items: sorted, lookaheads: make([]SegmentSet, len(sorted))}
	for i := range iset.lookaheads {
		iset.lookaheads[i] = NewSegmentSet()
	}
	return iset
}

func (iset *ParseItemSet) clone() *ParseItemSet {
	return &ParseItemSet{
		items:      iset.items,
		lookaheads: append([]SegmentSet(nil), iset.lookaheads...),
	}
}

// Len returns the number of items.
func (iset *ParseItemSet) Len() int {
	return len(iset.items)
}

// Item returns the i-th item.
func (iset *ParseItemSet) Item(i int) ParseItem {
	iset.check(i)
	return iset.items[i]
}

// Items returns all items. Clients must not modify the slice.
func (iset *ParseItemSet) Items() []ParseItem {
	return iset.items
}

// Lookahead returns the lookahead set of the i-th item.
func (iset *ParseItemSet) Lookahead(i int) SegmentSet {
	iset.check(i)
	return iset.lookaheads[i]
}

// AddLookahead unions a set of segments into the lookahead set of the i-th item.
// It returns true if the lookahead set changed.
func (iset *ParseItemSet) AddLookahead(i int, la SegmentSet) bool {
	iset.check(i)
	old := iset.lookaheads[i]
	u := old.Union(la)
	if u.Len() == old.Len() {
		return false
	}
	iset.lookaheads[i] = u
	return true
}

func (iset *ParseItemSet) setLookahead(i int, la SegmentSet) {
	iset.check(i)
	iset.lookaheads[i] = la
}

// Index returns the position of an item, or -1.
func (iset *ParseItemSet) Index(item ParseItem) int {
	k := sort.Search(len(iset.items), func(j int) bool { return iset.items[j].Compare(item) >= 0 })
	if k < len(iset.items) && iset.items[k].Compare(item) == 0 {
		return k
	}
	return -1
}

func (iset *ParseItemSet) check(i int) {
	if i < 0 || i >= len(iset.items) {
		panic(fmt.Sprintf("lr: item index %d out of range [0…%d)", i, len(iset.items)))
	}
}

func (iset *ParseItemSet) String() string {
	var b strings.Builder
	for i, item := range iset.items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(item.String())
		if !iset.lookaheads[i].IsEmpty() {
			b.WriteString("  ")
			b.WriteString(iset.lookaheads[i].String())
		}
	}
	return b.String()
}
