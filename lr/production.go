package lr

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/cnf/structhash"
)

// Production is a grammar rule: a target segment and a sequence of segments.
// Productions are immutable; their structural hash is computed once on creation.
type Production struct {
	target Segment
	items  []Segment
	index  int // declaration order within a grammar, -1 if not part of a grammar
	hash   uint64
}

// hashKey is the structure hashed for productions. structhash considers
// exported fields only.
type hashKey struct {
	Target string
	Flags  uint8
	Items  []string
}

// NewProduction creates a production target → items. Epsilon segments in items
// are dropped, i.e. an epsilon production has no items.
func NewProduction(target Segment, items ...Segment) *Production {
	if target.IsTerminal() {
		panic("lr: production target must not be a terminal: " + target.String())
	}
	p := &Production{target: target, index: -1}
	key := hashKey{Target: target.name, Flags: uint8(target.flags)}
	for _, s := range items {
		if s.IsEpsilon() {
			continue
		}
		p.items = append(p.items, s)
		key.Items = append(key.Items, strconv.Itoa(int(s.flags))+":"+s.name)
	}
	h := structhash.Md5(key, 1)
	p.hash = binary.BigEndian.Uint64(h[:8])
	return p
}

// Target returns the left hand side of p.
func (p *Production) Target() Segment {
	return p.target
}

// Items returns the right hand side of p. Clients must not modify the slice.
func (p *Production) Items() []Segment {
	return p.items
}

// Len returns the number of items of p.
func (p *Production) Len() int {
	return len(p.items)
}

// Item returns the i-th item of p.
func (p *Production) Item(i int) Segment {
	return p.items[i]
}

// Index returns the position of p within its grammar, in order of declaration.
// Augmented start productions come first.
func (p *Production) Index() int {
	return p.index
}

// Hash returns the structural hash of p.
func (p *Production) Hash() uint64 {
	return p.hash
}

// Equal compares productions structurally.
func (p *Production) Equal(o *Production) bool {
	if p == o {
		return true
	}
	if p.hash != o.hash || p.target != o.target || len(p.items) != len(o.items) {
		return false
	}
	for i, s := range p.items {
		if s != o.items[i] {
			return false
		}
	}
	return true
}

// IsUnit is true for productions A → X with a single item.
func (p *Production) IsUnit() bool {
	return len(p.items) == 1
}

func (p *Production) String() string {
	var b strings.Builder
	b.WriteString(p.target.String())
	b.WriteString(" →")
	if len(p.items) == 0 {
		b.WriteString(" ε")
	}
	for _, s := range p.items {
		b.WriteString(" ")
		b.WriteString(s.String())
	}
	return b.String()
}
