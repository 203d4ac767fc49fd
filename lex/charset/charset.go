/*
Package charset implements canonical sets of character ranges.

A Set is a strictly increasing sequence of disjoint [From,To] rune ranges. Ranges
are merged on construction if they overlap or touch, thus any two neighbouring
ranges of a set are separated by at least one rune not in the set. This makes
sets canonical: equal sets have equal representations.

Sets are immutable values. Operations return one of their operands unchanged if it
already is the result, without allocating.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package charset

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Range is a closed interval of runes.
type Range struct {
	From, To rune
}

func (r Range) String() string {
	if r.From == r.To {
		return runeString(r.From)
	}
	return runeString(r.From) + "-" + runeString(r.To)
}

// Set is a canonical set of rune ranges. The zero value is the empty set.
type Set struct {
	ranges []Range
}

// Universal is the set of all runes.
var Universal = Set{ranges: []Range{{0, unicode.MaxRune}}}

// New creates a canonical set from arbitrary ranges. Ranges with From > To are
// ignored.
func New(ranges ...Range) Set {
	rs := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.From <= r.To {
			rs = append(rs, r)
		}
	}
	if len(rs) == 0 {
		return Set{}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].From < rs[j].From })
	out := rs[:1]
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.From <= last.To+1 {
			if r.To > last.To {
				last.To = r.To
			}
			continue
		}
		out = append(out, r)
	}
	return Set{ranges: out}
}

// Single creates a set containing a single rune.
func Single(r rune) Set {
	return Set{ranges: []Range{{r, r}}}
}

// Span creates a set containing the runes from…to.
func Span(from, to rune) Set {
	return New(Range{from, to})
}

// Of creates a set of the runes of a string.
func Of(s string) Set {
	var rs []Range
	for _, r := range s {
		rs = append(rs, Range{r, r})
	}
	return New(rs...)
}

// Ranges returns the ranges of s. Clients must not modify the slice.
func (s Set) Ranges() []Range {
	return s.ranges
}

// IsEmpty is true for the empty set.
func (s Set) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Min returns the lowest rune of s. It panics for empty sets.
func (s Set) Min() rune {
	if len(s.ranges) == 0 {
		panic("charset: Min() of empty set")
	}
	return s.ranges[0].From
}

// Size returns the number of runes in s.
func (s Set) Size() int {
	n := 0
	for _, r := range s.ranges {
		n += int(r.To-r.From) + 1
	}
	return n
}

// Contains is true if r is a member of s.
func (s Set) Contains(r rune) bool {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].To >= r })
	return i < len(s.ranges) && s.ranges[i].From <= r
}

// Covers is true if o is a subset of s.
func (s Set) Covers(o Set) bool {
	i := 0
	for _, r := range o.ranges {
		for i < len(s.ranges) && s.ranges[i].To < r.From {
			i++
		}
		if i == len(s.ranges) || s.ranges[i].From > r.From || s.ranges[i].To < r.To {
			return false
		}
	}
	return true
}

// Overlaps is true if s and o have at least one rune in common.
func (s Set) Overlaps(o Set) bool {
	i, j := 0, 0
	for i < len(s.ranges) && j < len(o.ranges) {
		a, b := s.ranges[i], o.ranges[j]
		switch {
		case a.To < b.From:
			i++
		case b.To < a.From:
			j++
		default:
			return true
		}
	}
	return false
}

// Union returns s ∪ o.
func (s Set) Union(o Set) Set {
	if s.Covers(o) {
		return s
	}
	if o.Covers(s) {
		return o
	}
	rs := make([]Range, 0, len(s.ranges)+len(o.ranges))
	rs = append(rs, s.ranges...)
	rs = append(rs, o.ranges...)
	return New(rs...)
}

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set {
	if o.Covers(s) {
		return s
	}
	if s.Covers(o) {
		return o
	}
	var rs []Range
	i, j := 0, 0
	for i < len(s.ranges) && j < len(o.ranges) {
		a, b := s.ranges[i], o.ranges[j]
		from, to := max(a.From, b.From), min(a.To, b.To)
		if from <= to {
			rs = append(rs, Range{from, to})
		}
		if a.To < b.To {
			i++
		} else {
			j++
		}
	}
	return Set{ranges: rs}
}

// Complement returns Universal \ s.
func (s Set) Complement() Set {
	var rs []Range
	next := rune(0)
	for _, r := range s.ranges {
		if r.From > next {
			rs = append(rs, Range{next, r.From - 1})
		}
		next = r.To + 1
	}
	if next <= unicode.MaxRune {
		rs = append(rs, Range{next, unicode.MaxRune})
	}
	return Set{ranges: rs}
}

// Subtract returns s \ o.
func (s Set) Subtract(o Set) Set {
	if !s.Overlaps(o) {
		return s
	}
	return s.Intersect(o.Complement())
}

// Equal is true if s and o contain the same runes.
func (s Set) Equal(o Set) bool {
	return s.Compare(o) == 0
}

// Compare orders sets lexicographically by their ranges.
func (s Set) Compare(o Set) int {
	for i := 0; i < len(s.ranges) && i < len(o.ranges); i++ {
		a, b := s.ranges[i], o.ranges[i]
		if a.From != b.From {
			return int(a.From - b.From)
		}
		if a.To != b.To {
			return int(a.To - b.To)
		}
	}
	return len(s.ranges) - len(o.ranges)
}

func (s Set) String() string {
	if s.Equal(Universal) {
		return "ANY"
	}
	var b strings.Builder
	b.WriteString("[")
	for _, r := range s.ranges {
		b.WriteString(r.String())
	}
	b.WriteString("]")
	return b.String()
}

func runeString(r rune) string {
	switch {
	case r == '-' || r == '[' || r == ']' || r == '\\':
		return `\` + string(r)
	case unicode.IsPrint(r) && r != ' ':
		return string(r)
	case r <= 0xffff:
		return fmt.Sprintf(`\u%04x`, r)
	}
	return fmt.Sprintf(`\U%08x`, r)
}
