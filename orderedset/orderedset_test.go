package orderedset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalConstruction(t *testing.T) {
	s := Of(5, 1, 3, 1, 5)
	assert.Equal(t, []int{1, 3, 5}, s.Items())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(4))
	assert.Equal(t, "{1 3 5}", s.String())
	var empty Set[int]
	assert.False(t, empty.Contains(1))
	assert.True(t, empty.IsEmpty())
}

func TestSetOperations(t *testing.T) {
	a := Of(1, 2, 3, 4)
	b := Of(3, 4, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, a.Union(b).Items())
	assert.Equal(t, []int{3, 4}, a.Intersect(b).Items())
	assert.Equal(t, []int{1, 2}, a.Subtract(b).Items())
	assert.True(t, Of(2, 3).IsSubsetOf(a))
	assert.False(t, b.IsSubsetOf(a))
	assert.True(t, Of(1).Disjoint(b))
	assert.True(t, a.Add(9).Contains(9))
	assert.False(t, a.Contains(9), "Add must not modify its receiver")
}

func TestOperandReuse(t *testing.T) {
	a := Of(1, 2, 3, 4)
	sub := Of(2, 3)
	same := func(x, y Set[int]) bool {
		return len(x.items) > 0 && &x.items[0] == &y.items[0]
	}
	assert.True(t, same(a.Union(sub), a), "union with subset returns the superset")
	assert.True(t, same(sub.Union(a), a))
	assert.True(t, same(a.Intersect(sub), sub), "intersection with subset returns the subset")
	assert.True(t, same(a.Subtract(Of(7, 8)), a), "subtracting a disjoint set returns the receiver")
	assert.True(t, same(a.Add(3), a))
}

func TestCompare(t *testing.T) {
	assert.True(t, Of(1, 2).Compare(Of(1, 3)) < 0)
	assert.True(t, Of(1, 2).Compare(Of(1)) > 0)
	assert.True(t, Of(2, 1).Equal(Of(1, 2)))
	byLen := New(func(a, b string) int { return len(a) - len(b) }, "ccc", "a", "bb", "x")
	assert.Equal(t, []string{"a", "bb", "ccc"}, byLen.Items())
}
