/*
Package orderedset implements canonical sorted sets.

Set is a special purpose set type, suitable mainly for implementing algorithms
around scanners, parsers, etc. These kinds of algorithms are often more
straightforward to describe as set constructions and operations, and often need
sets as keys for memoization.

A Set is a sorted, de-duplicated slice. Membership tests use binary search, set
operations are merge-style. Sets are values and are never modified in place;
operations return either a fresh set or, if one operand already is the result, that
very operand without allocating.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package orderedset

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Comparator returns a negative number for a < b, 0 for a == b and a positive
// number for a > b.
type Comparator[T any] func(a, b T) int

// Set is a canonical sorted set. The zero value is an empty set, but cannot
// receive elements; use New or Of to create sets.
type Set[T any] struct {
	items []T
	cmp   Comparator[T]
}

// New creates a set of items, ordered by cmp.
func New[T any](cmp Comparator[T], items ...T) Set[T] {
	if cmp == nil {
		panic("orderedset.New called without comparator")
	}
	s := Set[T]{cmp: cmp}
	if len(items) == 0 {
		return s
	}
	sorted := append([]T(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return cmp(sorted[i], sorted[j]) < 0 })
	s.items = sorted[:1]
	for _, x := range sorted[1:] {
		if cmp(s.items[len(s.items)-1], x) != 0 {
			s.items = append(s.items, x)
		}
	}
	return s
}

// Compare is a Comparator for ordered types.
func Compare[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Of creates a set of items of an ordered type.
func Of[T constraints.Ordered](items ...T) Set[T] {
	return New(Compare[T], items...)
}

// Len returns the number of elements.
func (s Set[T]) Len() int {
	return len(s.items)
}

// IsEmpty is true for empty sets.
func (s Set[T]) IsEmpty() bool {
	return len(s.items) == 0
}

// At returns the i-th smallest element.
func (s Set[T]) At(i int) T {
	return s.items[i]
}

// Items returns the elements in order. Clients must not modify the slice.
func (s Set[T]) Items() []T {
	return s.items
}

func (s Set[T]) comparator(o Set[T]) Comparator[T] {
	if s.cmp != nil {
		return s.cmp
	}
	return o.cmp
}

// Contains tests membership by binary search.
func (s Set[T]) Contains(x T) bool {
	if len(s.items) == 0 {
		return false
	}
	_, found := slices.BinarySearchFunc(s.items, x, s.cmp)
	return found
}

// Add returns a set with x added. If x is already contained, s is returned.
func (s Set[T]) Add(x T) Set[T] {
	if s.cmp == nil {
		panic("orderedset: cannot add to a set without comparator")
	}
	i, found := slices.BinarySearchFunc(s.items, x, s.cmp)
	if found {
		return s
	}
	items := make([]T, 0, len(s.items)+1)
	items = append(items, s.items[:i]...)
	items = append(items, x)
	items = append(items, s.items[i:]...)
	return Set[T]{items: items, cmp: s.cmp}
}

// IsSubsetOf is true if every element of s is contained in o.
func (s Set[T]) IsSubsetOf(o Set[T]) bool {
	if len(s.items) > len(o.items) {
		return false
	}
	if len(s.items) == 0 {
		return true
	}
	cmp := s.comparator(o)
	j := 0
	for _, x := range s.items {
		for j < len(o.items) && cmp(o.items[j], x) < 0 {
			j++
		}
		if j == len(o.items) || cmp(o.items[j], x) != 0 {
			return false
		}
		j++
	}
	return true
}

// Disjoint is true if s and o have no common element.
func (s Set[T]) Disjoint(o Set[T]) bool {
	if len(s.items) == 0 || len(o.items) == 0 {
		return true
	}
	cmp := s.comparator(o)
	i, j := 0, 0
	for i < len(s.items) && j < len(o.items) {
		c := cmp(s.items[i], o.items[j])
		switch {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			return false
		}
	}
	return true
}

// Union returns s ∪ o. If one operand contains the other, the larger operand is
// returned as is.
func (s Set[T]) Union(o Set[T]) Set[T] {
	if o.IsSubsetOf(s) {
		return s
	}
	if s.IsSubsetOf(o) {
		return o
	}
	cmp := s.comparator(o)
	items := make([]T, 0, len(s.items)+len(o.items))
	i, j := 0, 0
	for i < len(s.items) && j < len(o.items) {
		c := cmp(s.items[i], o.items[j])
		switch {
		case c < 0:
			items = append(items, s.items[i])
			i++
		case c > 0:
			items = append(items, o.items[j])
			j++
		default:
			items = append(items, s.items[i])
			i++
			j++
		}
	}
	items = append(items, s.items[i:]...)
	items = append(items, o.items[j:]...)
	return Set[T]{items: items, cmp: cmp}
}

// Intersect returns s ∩ o. If one operand is contained in the other, the smaller
// operand is returned as is.
func (s Set[T]) Intersect(o Set[T]) Set[T] {
	if s.IsSubsetOf(o) {
		return s
	}
	if o.IsSubsetOf(s) {
		return o
	}
	cmp := s.comparator(o)
	var items []T
	i, j := 0, 0
	for i < len(s.items) && j < len(o.items) {
		c := cmp(s.items[i], o.items[j])
		switch {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			items = append(items, s.items[i])
			i++
			j++
		}
	}
	return Set[T]{items: items, cmp: cmp}
}

// Subtract returns s \ o. If s and o are disjoint, s is returned as is.
func (s Set[T]) Subtract(o Set[T]) Set[T] {
	if s.Disjoint(o) {
		return s
	}
	cmp := s.comparator(o)
	var items []T
	j := 0
	for _, x := range s.items {
		for j < len(o.items) && cmp(o.items[j], x) < 0 {
			j++
		}
		if j < len(o.items) && cmp(o.items[j], x) == 0 {
			continue
		}
		items = append(items, x)
	}
	return Set[T]{items: items, cmp: cmp}
}

// Equal is true if s and o contain the same elements.
func (s Set[T]) Equal(o Set[T]) bool {
	return s.Compare(o) == 0
}

// Compare orders sets lexicographically by their elements. Shorter prefixes
// come first.
func (s Set[T]) Compare(o Set[T]) int {
	cmp := s.comparator(o)
	for i := 0; i < len(s.items) && i < len(o.items); i++ {
		if c := cmp(s.items[i], o.items[i]); c != 0 {
			return c
		}
	}
	return len(s.items) - len(o.items)
}

func (s Set[T]) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, x := range s.items {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%v", x)
	}
	b.WriteString("}")
	return b.String()
}
