package tabgen

import "fmt"

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. For tokens produced by generated scanners,
// it is the ID of the token rule which matched.
type TokType int

// Tokens represent input tokens. They are usually produced by a scanner and
// reflect terminals in a language.
//
// An example would be a token for an identifier:
//
//    TokType = 3           // rule ID of the token rule 'ident'
//    Lexeme  = "alpha"     // lexeme how it appeared in the input stream
//    Span    = 67…72       // occured from position 67 in the input stream
//
type Token interface {
	TokType() TokType
	Lexeme() string
	Span() Span
}

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a length of input token run. A span
// denotes a start position and the position just behind the end.
type Span [2]uint64 // (x…y)

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

// IsNull is true for the zero span.
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend returns the smallest span covering both s and other. Null spans are
// neutral.
func (s Span) Extend(other Span) Span {
	switch {
	case s.IsNull():
		return other
	case other.IsNull():
		return s
	}
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

// --- Locations --------------------------------------------------------

// Location is a region within a grammar source, used for diagnostics.
// Lines and characters are 1-based. The zero value denotes an unknown location.
type Location struct {
	FromLine, FromChar int
	ToLine, ToChar     int
}

// At is a shortcut for a location spanning a single position.
func At(line, char int) Location {
	return Location{FromLine: line, FromChar: char, ToLine: line, ToChar: char}
}

// IsUnknown is true for the zero value.
func (l Location) IsUnknown() bool {
	return l == Location{}
}

func (l Location) String() string {
	if l.IsUnknown() {
		return "?:?"
	}
	if l.FromLine == l.ToLine && l.FromChar == l.ToChar {
		return fmt.Sprintf("%d:%d", l.FromLine, l.FromChar)
	}
	return fmt.Sprintf("%d:%d-%d:%d", l.FromLine, l.FromChar, l.ToLine, l.ToChar)
}
