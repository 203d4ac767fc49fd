package lexmach

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/lex/scanner"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'tabgen.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen.scanner")
}

// Rule is a token rule for the oracle. Pattern is a lexmachine regular
// expression; matches of a Skip rule do not produce tokens.
type Rule struct {
	Pattern string
	Type    tabgen.TokType
	Skip    bool
}

// Literal creates a rule matching s verbatim.
func Literal(s string, typ tabgen.TokType) Rule {
	return Rule{Pattern: regexp.QuoteMeta(s), Type: typ}
}

// Oracle is a scanner compiled by lexmachine from a list of rules. Rules
// added first win on matches of equal length, the same policy generated
// scanner tables follow.
type Oracle struct {
	lexer *lexmachine.Lexer
}

// New compiles rules into an oracle.
func New(rules ...Rule) (*Oracle, error) {
	if len(rules) == 0 {
		return nil, errors.New("lexmach: no rules")
	}
	o := &Oracle{lexer: lexmachine.NewLexer()}
	for _, r := range rules {
		if r.Skip {
			o.lexer.Add([]byte(r.Pattern), skip)
			continue
		}
		o.lexer.Add([]byte(r.Pattern), makeToken(r.Type))
	}
	if err := o.lexer.Compile(); err != nil {
		tracer().Errorf("compiling rules: %v", err)
		return nil, fmt.Errorf("lexmach: %w", err)
	}
	return o, nil
}

// Scanner creates a tokenizer for input.
func (o *Oracle) Scanner(input string) (*Scanner, error) {
	s, err := o.lexer.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	return &Scanner{lms: s, end: uint64(len(input)), onError: logError}, nil
}

// Tokenize scans the whole input. Unmatched input is an error.
func (o *Oracle) Tokenize(input string) ([]tabgen.Token, error) {
	sc, err := o.Scanner(input)
	if err != nil {
		return nil, err
	}
	var first error
	sc.SetErrorHandler(func(e error) {
		if first == nil {
			first = e
		}
	})
	var tokens []tabgen.Token
	for t := sc.NextToken(); t.TokType() != scanner.EOF; t = sc.NextToken() {
		tokens = append(tokens, t)
	}
	return tokens, first
}

// Scanner tokenizes one input with lexmachine.
type Scanner struct {
	lms     *lexmachine.Scanner
	end     uint64
	onError func(error)
}

var _ scanner.Tokenizer = (*Scanner)(nil)

// SetErrorHandler sets a handler for unmatched input. nil restores logging.
func (s *Scanner) SetErrorHandler(h func(error)) {
	if h == nil {
		h = logError
	}
	s.onError = h
}

func logError(e error) {
	tracer().Errorf("scanner error: %v", e)
}

// NextToken returns the next token. Unmatched input is reported and skipped
// up to the position where lexmachine gave up.
func (s *Scanner) NextToken() tabgen.Token {
	tok, err, eof := s.lms.Next()
	for err != nil {
		s.onError(err)
		var ui *machines.UnconsumedInput
		if errors.As(err, &ui) {
			s.lms.TC = ui.FailTC
		}
		tok, err, eof = s.lms.Next()
	}
	if eof {
		return scanner.MakeDefaultToken(scanner.EOF, "", tabgen.Span{s.end, s.end})
	}
	t := tok.(*lexmachine.Token)
	from := uint64(t.TC)
	return scanner.MakeDefaultToken(tabgen.TokType(t.Type), string(t.Lexeme),
		tabgen.Span{from, from + uint64(len(t.Lexeme))})
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(typ tabgen.TokType) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(typ), string(m.Bytes), m), nil
	}
}
