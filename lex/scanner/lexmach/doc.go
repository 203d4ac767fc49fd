/*
Package lexmach runs timtadh/lexmachine as a reference scanner.

For more information on lexmachine, see e.g.
https://hackthology.com/how-to-tokenize-complex-strings-with-lexmachine.html

Scanner tables generated by package generator are checked against lexmachine:
both have to agree on every token for every input. Rules are given in priority
order, with lexmachine regular expressions and the token type the generated
scanner uses for the same rule.

	oracle, err := lexmach.New(
		lexmach.Literal("nil", 0),
		lexmach.Rule{Pattern: `[a-z][a-z0-9]*`, Type: 1},
		lexmach.Rule{Pattern: `( |\t|\n)+`, Skip: true},
	)
	tokens, err := oracle.Tokenize("nil nilly")

Scanners for single inputs implement scanner.Tokenizer.

________________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lexmach
