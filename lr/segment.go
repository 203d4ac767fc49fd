package lr

import (
	"fmt"
	"strings"

	"github.com/npillmayer/tabgen/orderedset"
)

// SegmentFlags tag the variants of grammar symbols.
type SegmentFlags uint8

// Flags for segments. A segment without TerminalFlag is a non-terminal.
const (
	TerminalFlag SegmentFlags = 1 << iota // token of the scanner
	InitialFlag                           // augmented start symbol <S>
	OptionalFlag                          // derived symbol A? → A | ε
	eofFlag
	epsilonFlag
	optionalTerminalFlag // optional segment derived from a terminal
)

// Segment is a grammar symbol: a terminal, a non-terminal, an augmented start
// symbol or a derived optional symbol. Segments are small values; equality and
// ordering are structural.
type Segment struct {
	name  string
	flags SegmentFlags
}

// Reserved segments.
var (
	EOF     = Segment{name: "#eof", flags: TerminalFlag | eofFlag}
	Epsilon = Segment{name: "ε", flags: TerminalFlag | epsilonFlag}
)

// T creates a terminal segment.
func T(name string) Segment {
	return Segment{name: name, flags: TerminalFlag}
}

// N creates a non-terminal segment.
func N(name string) Segment {
	return Segment{name: name}
}

// InitialSegment creates the augmented start symbol for a start symbol.
func InitialSegment(name string) Segment {
	return Segment{name: name, flags: InitialFlag}
}

// AsOptional returns the optional variant A? of a terminal or non-terminal. The
// optional variant is a non-terminal.
func (s Segment) AsOptional() Segment {
	if s.IsOptional() {
		return s
	}
	if s.IsInitial() || s.IsEOF() || s.IsEpsilon() {
		panic(fmt.Sprintf("lr: segment %v cannot be made optional", s))
	}
	if s.IsTerminal() {
		return Segment{name: s.name, flags: OptionalFlag | optionalTerminalFlag}
	}
	return Segment{name: s.name, flags: OptionalFlag}
}

// Base returns the segment an optional segment is derived from.
func (s Segment) Base() Segment {
	switch {
	case !s.IsOptional():
		return s
	case s.flags&optionalTerminalFlag != 0:
		return T(s.name)
	}
	return N(s.name)
}

// Name returns the name of a segment.
func (s Segment) Name() string {
	return s.name
}

// Flags returns the flags of a segment.
func (s Segment) Flags() SegmentFlags {
	return s.flags
}

// IsTerminal is true for terminals, including EOF and Epsilon.
func (s Segment) IsTerminal() bool {
	return s.flags&TerminalFlag != 0
}

// IsInitial is true for augmented start symbols.
func (s Segment) IsInitial() bool {
	return s.flags&InitialFlag != 0
}

// IsOptional is true for derived optional symbols.
func (s Segment) IsOptional() bool {
	return s.flags&OptionalFlag != 0
}

// IsEOF is true for the end-of-input marker.
func (s Segment) IsEOF() bool {
	return s.flags&eofFlag != 0
}

// IsEpsilon is true for the epsilon sentinel.
func (s Segment) IsEpsilon() bool {
	return s.flags&epsilonFlag != 0
}

// Compare orders segments by name, then by flags.
func (s Segment) Compare(o Segment) int {
	if c := strings.Compare(s.name, o.name); c != 0 {
		return c
	}
	return int(s.flags) - int(o.flags)
}

func (s Segment) String() string {
	switch {
	case s.IsEOF() || s.IsEpsilon():
		return s.name
	case s.IsInitial():
		return "<" + s.name + ">"
	case s.IsOptional():
		return s.Base().String() + "?"
	case s.IsTerminal():
		return fmt.Sprintf("%q", s.name)
	}
	return s.name
}

// CompareSegments is a comparator for segments.
func CompareSegments(a, b Segment) int {
	return a.Compare(b)
}

// --- Segment sets ----------------------------------------------------------

// SegmentSet is a canonical set of segments. It may contain the Epsilon sentinel.
type SegmentSet = orderedset.Set[Segment]

// NewSegmentSet creates a segment set.
func NewSegmentSet(segments ...Segment) SegmentSet {
	return orderedset.New(CompareSegments, segments...)
}

// withoutEpsilon returns a set without the epsilon sentinel.
func withoutEpsilon(s SegmentSet) SegmentSet {
	if !s.Contains(Epsilon) {
		return s
	}
	return s.Subtract(NewSegmentSet(Epsilon))
}
