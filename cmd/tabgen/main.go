/*
Command tabgen generates compressed scanner and parser tables from EBNF grammars.

Usage:

    tabgen scanner [flags] grammar.ebnf…   write <grammar>.scanner.bin
    tabgen parser  [flags] grammar.ebnf…   write <grammar>.parser.bin
    tabgen all     [flags] grammar.ebnf…   write both
    tabgen repl    [flags] grammar.ebnf    parse input lines interactively

Several grammar files are processed concurrently. Every output file starts with
two bytes, the compression method and the element size, followed by the
serialized blob (see package blob).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"os"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tabgen'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen")
}

func main() {
	initDisplay()
	if err := NewCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
