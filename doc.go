/*
Package tabgen is a generator for table-driven recognizers.

TabGen builds minimal scanner automata from regular token rules and LALR(1)
parser automata from context-free grammars, and emits both as compact integer
tables, ready to be embedded into generated code. Package structure is
as follows:

■ graph: Package graph implements a mutable directed multigraph with soft-delete
semantics. It is the substrate for scanner automata as well as for parser item graphs.

■ lex: Package lex implements alphabet partitioning and NFA-to-DFA construction
with minimization. Sub-package charset implements interval sets over runes.

■ lr: Package lr implements grammar analysis (FIRST and FOLLOW sets), LALR(1)
item graph construction, graph optimization and conflict detection.

■ compact: Package compact merges many table rows into one array by overlapping
equal runs at row boundaries.

■ blob: Package blob implements byte-level compression codecs for embedding tables.

■ generator: Package generator wires everything together into end-to-end pipelines.

The base package contains data types which are used throughout all the other packages:
tokens, source locations, diagnostics and generator settings.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tabgen

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tabgen'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen")
}
