/*
Package frontend reads grammars written in EBNF and prepares them for table
generation.

The notation is the one of golang.org/x/exp/ebnf (as used by the Go language
specification):

    Expr   = Term { ( "+" | "-" ) Term } .
    Term   = number | "(" Expr ")" .
    number = digit { digit } .
    digit  = "0" … "9" .
    white  = " " | "\t" | "\n" .

Productions starting with an upper case letter are syntactic and become
productions of an lr.Grammar. Productions starting with a lower case letter are
lexical and are compiled into a scanner NFA. A lexical production becomes a
token rule of its own if it is referenced from a syntactic production, or if it
is not referenced at all. The latter kind (white space, comments) is skipped by
scanners. Lexical productions used only within other lexical productions are
expanded inline; recursion between lexical productions is an error.

Quoted strings within syntactic productions are literal token rules. They are
numbered first and therefore take priority over lexical token rules matching the
same input, which is how keywords win over identifiers.

Groups within syntactic productions become derived non-terminals, options
become optional segments and repetitions become derived left-recursive
non-terminals. Derived non-terminals are named after their owner, e.g. "Expr~1".

Note that EBNF drops empty alternatives; an epsilon production is written as an
empty production (A = .) or with an option.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package frontend

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/scanner"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/lex"
	"github.com/npillmayer/tabgen/lex/charset"
	"github.com/npillmayer/tabgen/lr"
	"golang.org/x/exp/ebnf"
)

// tracer traces with key 'tabgen.frontend'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen.frontend")
}

// ErrInvalidGrammar is returned if loading a grammar reported errors.
var ErrInvalidGrammar = errors.New("invalid grammar")

// TokenRule is a scanner token rule derived from a grammar. Token rules are
// numbered by their position in Result.Tokens, which is their priority, too.
type TokenRule struct {
	Name     string     // literal text or name of a lexical production
	Literal  bool       // rule matches a quoted string
	Skip     bool       // matches are dropped by scanners
	Terminal lr.Segment // terminal of the grammar for non-skipped rules
}

// Result is a loaded grammar.
type Result struct {
	Name    string
	Grammar *lr.Grammar   // nil for grammars without syntactic productions
	NFA     *lex.Automaton // scanner NFA with start rule 0
	Tokens  []TokenRule
}

// Rule returns the token rule for a terminal.
func (r *Result) Rule(t lr.Segment) (int, bool) {
	for i, tok := range r.Tokens {
		if !tok.Skip && tok.Terminal == t {
			return i, true
		}
	}
	return 0, false
}

// SkipRules returns the token rules which scanners should drop.
func (r *Result) SkipRules() []tabgen.TokType {
	var skip []tabgen.TokType
	for i, tok := range r.Tokens {
		if tok.Skip {
			skip = append(skip, tabgen.TokType(i))
		}
	}
	return skip
}

// Load reads an EBNF grammar from src. Syntactic start symbols may be given;
// otherwise the first syntactic production is the start symbol.
//
// Problems are reported to diag (which may be nil) with 1-based positions. If
// any error has been reported, Load returns an error wrapping ErrInvalidGrammar.
func Load(name string, src io.Reader, diag tabgen.Diagnostics, starts ...string) (*Result, error) {
	ebnfGrammar, err := ebnf.Parse(name, src)
	if err != nil {
		tabgen.Errorf(diag, tabgen.Location{}, "%v", err)
		return nil, fmt.Errorf("%s: %v: %w", name, err, ErrInvalidGrammar)
	}
	l := &loader{
		name:    name,
		grammar: ebnfGrammar,
		nb:      lex.NewNFABuilder(),
		derived: make(map[string]int),
	}
	l.sortProductions()
	l.collectTokens()
	l.buildNFA()
	r := &Result{Name: name, NFA: l.nb.Build(), Tokens: l.tokens}
	if len(l.syntactic) > 0 {
		r.Grammar = l.buildGrammar(starts)
	} else if len(starts) > 0 {
		l.errorf(tabgen.Location{}, "start symbols given for a grammar without syntactic productions")
	}
	for _, d := range l.diag.Entries { // replay in order of occurrence
		if diag == nil {
			break
		}
		at := d.Location
		if d.Severity == tabgen.Error {
			diag.AddError(at.FromLine, at.FromChar, at.ToLine, at.ToChar, d.Message)
		} else {
			diag.AddWarning(at.FromLine, at.FromChar, at.ToLine, at.ToChar, d.Message)
		}
	}
	if err := l.diag.Err(); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", name, err, ErrInvalidGrammar)
	}
	tracer().Infof("grammar %s: %d token rules", name, len(r.Tokens))
	return r, nil
}

type loader struct {
	name      string
	grammar   ebnf.Grammar
	lexical   []*ebnf.Production // in source order
	syntactic []*ebnf.Production // in source order
	tokens    []TokenRule
	lexRules  map[string]int // lexical production → token rule
	nb        *lex.NFABuilder
	gb        *lr.GrammarBuilder
	derived   map[string]int // owner → number of derived non-terminals
	diag      tabgen.Collector
}

func isLexical(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(r)
}

func location(pos scanner.Position) tabgen.Location {
	if !pos.IsValid() {
		return tabgen.Location{}
	}
	return tabgen.At(pos.Line, pos.Column)
}

func (l *loader) errorf(at tabgen.Location, format string, args ...interface{}) {
	tabgen.Errorf(&l.diag, at, format, args...)
}

func (l *loader) sortProductions() {
	var prods []*ebnf.Production
	for _, p := range l.grammar {
		prods = append(prods, p)
	}
	sort.Slice(prods, func(i, j int) bool {
		return prods[i].Pos().Offset < prods[j].Pos().Offset
	})
	for _, p := range prods {
		if isLexical(p.Name.String) {
			l.lexical = append(l.lexical, p)
		} else {
			l.syntactic = append(l.syntactic, p)
		}
	}
}

// collectTokens numbers literal token rules first, in order of appearance, then
// the lexical token rules in source order.
func (l *loader) collectTokens() {
	literals := make(map[string]bool)
	fromSyntax := make(map[string]bool)
	fromLexical := make(map[string]bool)
	var walk func(ebnf.Expression, bool)
	walk = func(expr ebnf.Expression, lexical bool) {
		switch x := expr.(type) {
		case *ebnf.Name:
			if !isLexical(x.String) {
				return
			}
			if lexical {
				fromLexical[x.String] = true
			} else {
				fromSyntax[x.String] = true
			}
		case *ebnf.Token:
			if lexical || literals[x.String] {
				return
			}
			if x.String == "" {
				l.errorf(location(x.Pos()), "empty literal")
				return
			}
			literals[x.String] = true
			l.tokens = append(l.tokens, TokenRule{Name: x.String, Literal: true, Terminal: lr.T(x.String)})
		case ebnf.Alternative:
			for _, y := range x {
				walk(y, lexical)
			}
		case ebnf.Sequence:
			for _, y := range x {
				walk(y, lexical)
			}
		case *ebnf.Group:
			walk(x.Body, lexical)
		case *ebnf.Option:
			walk(x.Body, lexical)
		case *ebnf.Repetition:
			walk(x.Body, lexical)
		}
	}
	for _, p := range l.syntactic {
		walk(p.Expr, false)
	}
	for _, p := range l.lexical {
		walk(p.Expr, true)
	}
	l.lexRules = make(map[string]int)
	hasSyntax := len(l.syntactic) > 0
	for _, p := range l.lexical {
		name := p.Name.String
		if !fromSyntax[name] && fromLexical[name] {
			continue // inlined only
		}
		if literals[name] {
			l.errorf(location(p.Pos()), "lexical production %s collides with literal %q", name, name)
			continue
		}
		rule := TokenRule{Name: name, Terminal: lr.T(name)}
		if hasSyntax && !fromSyntax[name] {
			rule = TokenRule{Name: name, Skip: true}
		}
		l.lexRules[name] = len(l.tokens)
		l.tokens = append(l.tokens, rule)
	}
}

// --- Lexical productions ---------------------------------------------------

func (l *loader) buildNFA() {
	for i, tok := range l.tokens {
		var f lex.Fragment
		if tok.Literal {
			f = l.nb.Literal(tok.Name)
		} else {
			f = l.fragment(l.grammar[tok.Name].Expr, map[string]bool{tok.Name: true})
		}
		l.nb.AddRule(0, f, i, i)
	}
}

// fragment compiles a lexical expression by Thompson construction. expanding
// holds the lexical productions currently being expanded.
func (l *loader) fragment(expr ebnf.Expression, expanding map[string]bool) lex.Fragment {
	nb := l.nb
	switch x := expr.(type) {
	case nil:
		return nb.Empty()
	case *ebnf.Name:
		at := location(x.Pos())
		if !isLexical(x.String) {
			l.errorf(at, "lexical production refers to syntactic production %s", x.String)
			return nb.Empty()
		}
		p, ok := l.grammar[x.String]
		if !ok {
			l.errorf(at, "undefined lexical production %s", x.String)
			return nb.Empty()
		}
		if expanding[x.String] {
			l.errorf(at, "recursive lexical production %s", x.String)
			return nb.Empty()
		}
		expanding[x.String] = true
		defer delete(expanding, x.String)
		return l.fragment(p.Expr, expanding)
	case *ebnf.Token:
		return nb.Literal(x.String)
	case *ebnf.Range:
		from, to, ok := l.runeRange(x)
		if !ok {
			return nb.Empty()
		}
		return nb.Class(charset.Span(from, to))
	case ebnf.Sequence:
		frags := make([]lex.Fragment, len(x))
		for i, y := range x {
			frags[i] = l.fragment(y, expanding)
		}
		return nb.Concat(frags...)
	case ebnf.Alternative:
		frags := make([]lex.Fragment, len(x))
		for i, y := range x {
			frags[i] = l.fragment(y, expanding)
		}
		return nb.Alt(frags...)
	case *ebnf.Group:
		return l.fragment(x.Body, expanding)
	case *ebnf.Option:
		return nb.Optional(l.fragment(x.Body, expanding))
	case *ebnf.Repetition:
		return nb.Star(l.fragment(x.Body, expanding))
	case *ebnf.Bad:
		l.errorf(location(x.Pos()), "%s", x.Error)
		return nb.Empty()
	}
	l.errorf(location(expr.Pos()), "unsupported expression %T", expr)
	return nb.Empty()
}

func (l *loader) runeRange(r *ebnf.Range) (rune, rune, bool) {
	at := location(r.Pos())
	if utf8.RuneCountInString(r.Begin.String) != 1 || utf8.RuneCountInString(r.End.String) != 1 {
		l.errorf(at, "range bounds must be single characters")
		return 0, 0, false
	}
	from, _ := utf8.DecodeRuneInString(r.Begin.String)
	to, _ := utf8.DecodeRuneInString(r.End.String)
	if to < from {
		l.errorf(at, "empty range %q … %q", from, to)
		return 0, 0, false
	}
	return from, to, true
}

// --- Syntactic productions -------------------------------------------------

func (l *loader) buildGrammar(starts []string) *lr.Grammar {
	l.gb = lr.NewGrammarBuilder(l.name).ReportTo(&l.diag)
	if len(starts) == 0 {
		starts = []string{l.syntactic[0].Name.String}
	}
	for _, S := range starts {
		if _, ok := l.grammar[S]; !ok || isLexical(S) {
			l.errorf(tabgen.Location{}, "start symbol %s is not a syntactic production", S)
			continue
		}
		l.gb.Start(S)
	}
	for _, p := range l.syntactic {
		l.production(p.Name.String, p.Expr, location(p.Pos()))
	}
	g, err := l.gb.Grammar()
	if err != nil {
		tracer().Infof("grammar %s: %v", l.name, err)
		return nil
	}
	return g
}

// production adds the productions for non-terminal A, one per alternative.
func (l *loader) production(A string, expr ebnf.Expression, at tabgen.Location) {
	alts := []ebnf.Expression{expr}
	if alt, ok := expr.(ebnf.Alternative); ok {
		alts = alt
	}
	for _, alt := range alts {
		items := l.sequence(A, alt)
		loc := at
		if alt != nil {
			loc = location(alt.Pos())
		}
		l.gb.LHS(A).At(loc).Seg(items...).End()
	}
}

func (l *loader) sequence(owner string, expr ebnf.Expression) []lr.Segment {
	if expr == nil {
		return nil
	}
	seq, ok := expr.(ebnf.Sequence)
	if !ok {
		seq = ebnf.Sequence{expr}
	}
	var items []lr.Segment
	for _, x := range seq {
		if s, ok := l.symbol(owner, x); ok {
			items = append(items, s)
		}
	}
	return items
}

// symbol translates a factor of a syntactic production to a segment.
func (l *loader) symbol(owner string, expr ebnf.Expression) (lr.Segment, bool) {
	at := location(expr.Pos())
	switch x := expr.(type) {
	case *ebnf.Name:
		if !isLexical(x.String) {
			return lr.N(x.String), true
		}
		if _, ok := l.lexRules[x.String]; !ok {
			l.errorf(at, "undefined lexical production %s", x.String)
			return lr.Segment{}, false
		}
		return lr.T(x.String), true
	case *ebnf.Token:
		return lr.T(x.String), x.String != ""
	case *ebnf.Group:
		D := l.derive(owner)
		l.production(D, x.Body, at)
		return lr.N(D), true
	case *ebnf.Option:
		switch x.Body.(type) {
		case *ebnf.Name, *ebnf.Token:
			s, ok := l.symbol(owner, x.Body)
			if !ok {
				return s, false
			}
			return s.AsOptional(), true
		}
		D := l.derive(owner)
		l.production(D, x.Body, at)
		return lr.N(D).AsOptional(), true
	case *ebnf.Repetition:
		R := l.derive(owner)
		l.gb.LHS(R).At(at).Epsilon()
		alts := []ebnf.Expression{x.Body}
		if alt, ok := x.Body.(ebnf.Alternative); ok {
			alts = alt
		}
		for _, alt := range alts {
			items := l.sequence(R, alt)
			l.gb.LHS(R).At(at).N(R).Seg(items...).End()
		}
		return lr.N(R), true
	case *ebnf.Range:
		l.errorf(at, "character range in syntactic production %s", owner)
	case *ebnf.Bad:
		l.errorf(at, "%s", x.Error)
	default:
		l.errorf(at, "unsupported expression %T", expr)
	}
	return lr.Segment{}, false
}

// derive creates the name of a derived non-terminal. Nested derivations are
// numbered after the production they stem from.
func (l *loader) derive(owner string) string {
	if i := strings.IndexByte(owner, '~'); i >= 0 {
		owner = owner[:i]
	}
	l.derived[owner]++
	return fmt.Sprintf("%s~%d", owner, l.derived[owner])
}
