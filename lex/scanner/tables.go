package scanner

import (
	"fmt"
	"unicode/utf8"

	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/graph"
	"github.com/npillmayer/tabgen/lex"
)

// Tables is the interface of scanner tables a TableTokenizer runs on. States
// and classes are dense integers; -1 means "none".
type Tables interface {
	Class(r rune) int                // character class of r
	Next(state, class int) int       // successor state
	Accept(state int) int            // token rule accepted in state
	Start(startRule int) (int, bool) // start state for a start rule
}

// FromDFA wraps a DFA as scanner tables.
func FromDFA(dfa *lex.DFA) Tables {
	return dfaTables{dfa}
}

type dfaTables struct {
	dfa *lex.DFA
}

func (t dfaTables) Class(r rune) int {
	return t.dfa.Class(r)
}

func (t dfaTables) Next(state, class int) int {
	if class < 0 {
		return -1
	}
	if next, ok := t.dfa.Target(graph.State(state), class); ok {
		return int(next)
	}
	return -1
}

func (t dfaTables) Accept(state int) int {
	if rule, ok := t.dfa.Accept(graph.State(state)); ok {
		return rule
	}
	return -1
}

func (t dfaTables) Start(startRule int) (int, bool) {
	s, ok := t.dfa.Start(startRule)
	return int(s), ok
}

// --- Table driven tokenizer ------------------------------------------------

// TableTokenizer is a longest-match tokenizer running on scanner tables. If
// several rules match the longest prefix, the tables decide (usually by rule
// priority). Input which no rule matches is reported to the error handler and
// skipped rune by rune.
type TableTokenizer struct {
	tables Tables
	start  int
	input  string
	pos    int
	skip   map[tabgen.TokType]bool
	Error  func(error) // error handler
}

var _ Tokenizer = (*TableTokenizer)(nil)

// Option configures a table tokenizer.
type Option func(*TableTokenizer)

// Skip declares token rules whose matches are dropped, e.g. white space.
func Skip(rules ...tabgen.TokType) Option {
	return func(t *TableTokenizer) {
		for _, r := range rules {
			t.skip[r] = true
		}
	}
}

// NewTableTokenizer creates a tokenizer for an input string, starting in the
// start state of startRule.
func NewTableTokenizer(tables Tables, startRule int, input string, opts ...Option) (*TableTokenizer, error) {
	start, ok := tables.Start(startRule)
	if !ok {
		return nil, fmt.Errorf("scanner tables have no start rule %d", startRule)
	}
	t := &TableTokenizer{
		tables: tables,
		start:  start,
		input:  input,
		skip:   make(map[tabgen.TokType]bool),
		Error:  logError,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// SetErrorHandler sets an error handler for the scanner.
func (t *TableTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

// NextToken is part of the Tokenizer interface.
func (t *TableTokenizer) NextToken() tabgen.Token {
	for t.pos < len(t.input) {
		rule, length := t.match()
		if length == 0 {
			_, w := utf8.DecodeRuneInString(t.input[t.pos:])
			t.Error(fmt.Errorf("no token matches at offset %d: %q", t.pos, t.input[t.pos:t.pos+w]))
			t.pos += w
			continue
		}
		from := t.pos
		t.pos += length
		if t.skip[tabgen.TokType(rule)] {
			continue
		}
		tracer().Debugf("token %d = %q", rule, t.input[from:t.pos])
		return MakeDefaultToken(tabgen.TokType(rule), t.input[from:t.pos],
			tabgen.Span{uint64(from), uint64(t.pos)})
	}
	end := uint64(len(t.input))
	return MakeDefaultToken(EOF, "", tabgen.Span{end, end})
}

// match runs the tables from the current position and returns the rule and byte
// length of the longest non-empty match, or length 0.
func (t *TableTokenizer) match() (int, int) {
	rule, length := -1, 0
	state := t.start
	for i := t.pos; i < len(t.input); {
		r, w := utf8.DecodeRuneInString(t.input[i:])
		state = t.tables.Next(state, t.tables.Class(r))
		if state < 0 {
			break
		}
		i += w
		if a := t.tables.Accept(state); a >= 0 {
			rule, length = a, i-t.pos
		}
	}
	return rule, length
}
