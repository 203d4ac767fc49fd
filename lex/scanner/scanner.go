/*
Package scanner defines an interface for scanners to be used with parsers of
package lr/lalr, and a table-driven tokenizer running generated scanner tables.

An adapter for lexmachine lives in sub-package `lexmach`.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tabgen"
)

// tracer traces with key 'tabgen.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen.scanner")
}

// EOF is the token type signalling the end of input.
const EOF tabgen.TokType = -1

// Tokenizer is a scanner interface.
type Tokenizer interface {
	NextToken() tabgen.Token
	SetErrorHandler(func(error))
}

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: %v", e)
}

// --- Default tokens --------------------------------------------------------

// DefaultToken is a very unsophisticated token type, used as default for the
// table tokenizer as well as the lexmachine scanner.
type DefaultToken struct {
	kind   tabgen.TokType
	lexeme string
	Val    interface{}
	span   tabgen.Span
}

var _ tabgen.Token = DefaultToken{}

// MakeDefaultToken creates a token.
func MakeDefaultToken(typ tabgen.TokType, lexeme string, span tabgen.Span) DefaultToken {
	return DefaultToken{
		kind:   typ,
		lexeme: lexeme,
		span:   span,
	}
}

// TokType is part of interface tabgen.Token.
func (t DefaultToken) TokType() tabgen.TokType {
	return t.kind
}

// Value returns a client-defined value.
func (t DefaultToken) Value() interface{} {
	return t.Val
}

// Lexeme is part of interface tabgen.Token.
func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

// Span is part of interface tabgen.Token.
func (t DefaultToken) Span() tabgen.Span {
	return t.span
}

func (t DefaultToken) String() string {
	if t.kind == EOF {
		return "<EOF>"
	}
	return fmt.Sprintf("<%d|%q>", t.kind, t.lexeme)
}
