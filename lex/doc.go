/*
Package lex constructs minimal deterministic scanner automata.

Scanner rules are given as an NFA: a graph with interval-set transition labels,
epsilon transitions, and NodeData state labels which mark start states (by start
rule) and accepting states (by token rule and priority). NFABuilder helps to build
such NFAs from Thompson fragments.

CreateDfa turns an NFA into a minimal DFA in three steps:

■ ExtractAlphabet partitions the character domain into the coarsest set of
classes which is consistent with every transition label.

■ SubsetConstruction determinizes the NFA.

■ SubsetConstructionR determinizes the reverse of the result, storing transitions
in the original orientation, and a second SubsetConstruction determinizes again.
This is Brzozowski's minimization; it merges all states with identical future
behaviour.

If several token rules accept in the same DFA state, the rule with the lowest
priority wins. Priorities are usually assigned in order of rule declaration, so
that scanners implement "longest match, first rule".

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lex

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tabgen.lex'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen.lex")
}
