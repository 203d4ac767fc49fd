/*
Package lalr provides a table-driven LALR(1) parser. Clients have to use the
tools of package lr (or package generator) to prepare the necessary parse tables.
The parser utilizes these tables to create a right derivation for a given input,
provided through a scanner interface.

The parser runs on flat tables: a lookup function for actions and a production
table. Both lr.ActionTable and the tables produced by package generator
implement interface Tables.

Usage

Clients construct a grammar, usually by using a grammar builder:

	b := lr.NewGrammarBuilder("Signed Variables Grammar")
	b.LHS("Var").N("Sign").T("a").End()  // Var  → Sign "a"
	b.LHS("Sign").T("+").End()           // Sign → "+"
	b.LHS("Sign").T("-").End()           // Sign → "-"
	b.LHS("Sign").Epsilon()              // Sign → ε
	g, err := b.Grammar()

This grammar is subjected to grammar analysis and table generation.

	pg := lr.ConstructGraph(g, lr.NewSegmentSetProvider(g))
	table := lr.BuildActionTable(pg)

Finally parse some input:

	p := lalr.NewParser(table, columnOf)   // columnOf maps token types to columns
	accepted, err := p.Parse(startRow, tokenizer)

Clients may listen to reductions to build a parse tree or perform semantic
actions.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lalr

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/lex/scanner"
	"github.com/npillmayer/tabgen/lr"
)

// tracer traces with key 'tabgen.lr'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen.lr")
}

// Tables is the interface of parser tables the parser runs on. Actions are
// encoded as in package lr (see lr.DecodeAction).
type Tables interface {
	Lookup(state, column int) int
	ProductionInfo(p int) (length, column int)
}

// ErrSyntax is returned for input the parser cannot accept.
var ErrSyntax = errors.New("syntax error")

// Parser is an LALR(1)-parser type. Create and initialize one with lalr.NewParser(...)
type Parser struct {
	tables  Tables
	column  func(tabgen.TokType) (int, bool)
	stack   []stackitem // parser stack
	Reduced func(production int, span tabgen.Span)
}

// We store pairs of states and spans on the parse stack.
type stackitem struct {
	state int
	span  tabgen.Span // input span over which this symbol reaches
}

// NewParser creates an LALR(1) parser. column maps token types, including
// scanner.EOF, to table columns.
func NewParser(tables Tables, column func(tabgen.TokType) (int, bool)) *Parser {
	return &Parser{
		tables: tables,
		column: column,
		stack:  make([]stackitem, 0, 512),
	}
}

// Parse starts a new parse, given a start state and a scanner tokenizing the input.
//
// The parser returns true if the input string has been accepted. For input which
// is not accepted, the error wraps ErrSyntax.
func (p *Parser) Parse(start int, scan scanner.Tokenizer) (bool, error) {
	tracer().Debugf("~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~")
	if p.tables == nil || p.column == nil {
		return false, fmt.Errorf("LALR(1)-parser not initialized")
	}
	p.stack = append(p.stack[:0], stackitem{state: start})
	token := scan.NextToken()
	for {
		tokval := token.TokType()
		col, ok := p.column(tokval)
		if !ok {
			return false, fmt.Errorf("unknown token type %d (%q) at %v: %w", tokval, token.Lexeme(), token.Span(), ErrSyntax)
		}
		state := p.stack[len(p.stack)-1].state // TOS
		action := p.tables.Lookup(state, col)
		kind, arg := lr.DecodeAction(int32(action))
		tracer().Debugf("action(%d,%d)=%d", state, col, action)
		switch kind {
		case lr.Accept:
			return true, nil
		case lr.Shift:
			tracer().Debugf("shifting %q, next state = %d", token.Lexeme(), arg)
			p.stack = append(p.stack, stackitem{arg, token.Span()})
			token = scan.NextToken()
		case lr.Reduce:
			span, err := p.reduce(arg, token.Span())
			if err != nil {
				return false, err
			}
			if p.Reduced != nil {
				p.Reduced(arg, span)
			}
		default:
			return false, fmt.Errorf("unexpected %q at %v: %w", token.Lexeme(), token.Span(), ErrSyntax)
		}
	}
}

// reduce performs a reduce action for production A → X1 … Xn. Symbols X1 to Xn
// are represented on the stack as states
//
//    [TOS]  Sn(span_n) … S1(span_1)  …
//
func (p *Parser) reduce(production int, lookahead tabgen.Span) (tabgen.Span, error) {
	length, column := p.tables.ProductionInfo(production)
	tracer().Debugf("reduce production %d of length %d", production, length)
	if length >= len(p.stack) {
		return tabgen.Span{}, fmt.Errorf("parser stack underflow reducing production %d", production)
	}
	var handlespan tabgen.Span
	for _, item := range p.stack[len(p.stack)-length:] {
		handlespan = handlespan.Extend(item.span)
	}
	if handlespan.IsNull() { // resulted from an epsilon production
		pos := lookahead.From()
		handlespan = tabgen.Span{pos, pos} // epsilon was just before lookahead
	}
	p.stack = p.stack[:len(p.stack)-length]
	tos := p.stack[len(p.stack)-1]
	kind, next := lr.DecodeAction(int32(p.tables.Lookup(tos.state, column)))
	if kind != lr.Shift {
		return tabgen.Span{}, fmt.Errorf("no goto for production %d in state %d: %w", production, tos.state, ErrSyntax)
	}
	tracer().Debugf("reduced to next state = %d", next)
	p.stack = append(p.stack, stackitem{next, handlespan})
	return handlespan, nil
}
