package graph

import (
	"fmt"
	"io"
	"strings"
)

// ToGraphViz exports a graph to the Graphviz Dot format. stateLabel and
// transitionLabel render labels; both may be nil. Start states are filled gray.
func ToGraphViz[S, T any](w io.Writer, g *Graph[S, T], stateLabel func(State, S) string,
	transitionLabel func(T) string) error {
	//
	var b strings.Builder
	b.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	for _, s := range g.States() {
		label := ""
		if stateLabel != nil {
			label = stateLabel(s, g.Label(s))
		}
		fmt.Fprintf(&b, "s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n",
			s, nodecolor(g.IsStart(s)), s, forGraphviz(label))
	}
	for _, t := range g.Transitions() {
		label := "ε"
		if l, ok := g.TransitionLabel(t); ok {
			label = ""
			if transitionLabel != nil {
				label = transitionLabel(l)
			}
		}
		fmt.Fprintf(&b, "s%03d -> s%03d [label=\"%s\"]\n", g.From(t), g.To(t), forGraphviz(label))
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func nodecolor(start bool) string {
	if start {
		return "lightgray"
	}
	return "white"
}

var dotEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
	"\n", `\l`,
)

func forGraphviz(s string) string {
	return dotEscaper.Replace(s)
}
