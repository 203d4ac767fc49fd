package graph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func diamond() (*Builder[string, rune], []State) {
	b := NewBuilder[string, rune]()
	s := []State{
		b.NewState(true, "a"),
		b.NewState(false, "b"),
		b.NewState(false, "c"),
		b.NewState(false, "d"),
	}
	b.AddTransition(s[0], s[1], 'x')
	b.AddTransition(s[0], s[2], 'y')
	b.AddTransition(s[1], s[3], 'z')
	b.AddEpsilon(s[2], s[3])
	return b, s
}

func TestBuildAndEnumerate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.graph")
	defer teardown()
	//
	b, s := diamond()
	g := b.Build()
	assert.Equal(t, 4, g.StateCount())
	assert.Equal(t, []State{s[0]}, g.StartStates())
	assert.Len(t, g.Transitions(), 4)
	assert.Len(t, g.Out(s[0]), 2)
	assert.Len(t, g.In(s[3]), 2)
	eps := g.In(s[3])[1]
	_, ok := g.TransitionLabel(eps)
	assert.False(t, ok)
	assert.True(t, g.IsEpsilon(eps))
	l, ok := g.TransitionLabel(g.Out(s[0])[0])
	assert.True(t, ok)
	assert.Equal(t, 'x', l)
	assert.Equal(t, "c", g.Label(s[2]))
}

func TestDeleteCascades(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.graph")
	defer teardown()
	//
	b, s := diamond()
	b.DeleteState(s[1])
	assert.Equal(t, 3, b.StateCount())
	assert.Len(t, b.Transitions(), 2)
	assert.Len(t, b.Out(s[0]), 1)
	assert.Len(t, b.In(s[3]), 1)
	assert.True(t, b.IsDeleted(s[1]))
	assert.Equal(t, "b", b.Label(s[1]), "handles of deleted states stay valid")
	b.DeleteTransition(b.Out(s[0])[0])
	g := b.Build()
	assert.Equal(t, 1, Reachable(g, s[0]).Len())
	assert.Panics(t, func() { b.NewState(false, "e") })
}

func TestPreconditions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.graph")
	defer teardown()
	//
	b, s := diamond()
	b.DeleteState(s[2])
	assert.Panics(t, func() { b.AddTransition(s[0], s[2], 'q') })
	assert.Panics(t, func() { b.Label(State(17)) })
	assert.Panics(t, func() { b.DeleteState(s[2]) })
}

func TestReachable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.graph")
	defer teardown()
	//
	b, s := diamond()
	island := b.NewState(false, "island")
	b.AddTransition(island, s[0], 'w')
	g := b.Build()
	r := Reachable(g, s[0])
	assert.Equal(t, 4, r.Len())
	assert.False(t, r.Has(int(island)))
	assert.Equal(t, 2, Reachable(g, s[2]).Len())
}

func TestGraphViz(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tabgen.graph")
	defer teardown()
	//
	b, _ := diamond()
	g := b.Build()
	var out bytes.Buffer
	err := ToGraphViz(&out, g, func(s State, l string) string { return l },
		func(r rune) string { return string(r) })
	assert.NoError(t, err)
	dot := out.String()
	assert.True(t, strings.HasPrefix(dot, "digraph {"))
	assert.Contains(t, dot, `s000 -> s001 [label="x"]`)
	assert.Contains(t, dot, `s002 -> s003 [label="ε"]`)
	assert.Contains(t, dot, "fillcolor=lightgray")
}
