/*
Package lr implements LALR(1) parser construction.

Building a Grammar

Grammars are specified using a grammar builder object. Clients add
rules, consisting of non-terminal symbols and terminals. Grammars may
contain epsilon-productions and optional segments.

Example:

    b := lr.NewGrammarBuilder("G")
    b.LHS("S").N("A").T("a").End()     // S  →  A "a"
    b.LHS("A").N("B").N("D").End()     // A  →  B D
    b.LHS("B").T("b").End()            // B  →  "b"
    b.LHS("B").Epsilon()               // B  →  ε
    b.LHS("D").T("d").End()            // D  →  "d"
    b.LHS("D").Epsilon()               // D  →  ε
    g, err := b.Grammar()

Every start symbol S is augmented with an initial production <S> → S, which
comes first in declaration order:

   0: <S> → S
   1: S → A "a"
   2: A → B D
   …

Static Grammar Analysis

A SegmentSetProvider computes FIRST and FOLLOW sets for a grammar. FIRST sets
of nullable symbols contain the Epsilon sentinel.

    ssp := lr.NewSegmentSetProvider(g)
    ssp.First(lr.N("A"))  // {"b" "d" ε}
    ssp.Follow(lr.N("A")) // {"a"}

Parser Construction

ConstructGraph builds the LALR(1) item graph: LR(0) item sets with propagated
lookaheads. There is one start state per initial segment. The graph is then
subject to a ParseGraphOptimiser, which inlines unit reductions and removes
unused transitions and states, and which reports reduce-reduce conflicts.
BuildActionTable finally turns the graph into a table of parser actions. The
item graph is not thrown away, but is made available to the client. This is
intended for debugging purposes. It can be exported to Graphviz's Dot-format.

    pg := lr.ConstructGraph(g, ssp)
    pg, err = lr.NewParseGraphOptimiser(diag).Run(pg)
    table := lr.BuildActionTable(pg)

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tabgen.lr'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen.lr")
}
