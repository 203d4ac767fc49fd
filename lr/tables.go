package lr

import (
	"fmt"
	"html"
	"io"

	"github.com/npillmayer/tabgen/graph"
	"github.com/npillmayer/tabgen/lr/sparse"
)

// Actions of parser tables are encoded as integers:
//
//     0      error (no action)
//     1      accept
//     2s+2   shift terminal, or goto non-terminal, to row s
//     2p+3   reduce production p
//
// Goto and shift entries share the encoding, as columns distinguish them.
const (
	ErrorAction  = 0
	AcceptAction = 1
)

// ShiftAction encodes a shift or goto to row s.
func ShiftAction(s int) int32 {
	return int32(2*s + 2)
}

// ReduceAction encodes a reduction by production p.
func ReduceAction(p int) int32 {
	return int32(2*p + 3)
}

// ActionKind classifies encoded actions.
type ActionKind int8

// Kinds of actions.
const (
	Error ActionKind = iota
	Accept
	Shift
	Reduce
)

// DecodeAction decodes an action into its kind and argument (row for shifts,
// production index for reductions).
func DecodeAction(v int32) (ActionKind, int) {
	switch {
	case v <= ErrorAction:
		return Error, 0
	case v == AcceptAction:
		return Accept, 0
	case v%2 == 0:
		return Shift, int(v-2) / 2
	}
	return Reduce, int(v-3) / 2
}

// ActionTable is the combined GOTO and ACTION table of an LALR(1) parser. Rows are
// states of the parse graph, renumbered densely. Columns hold non-terminals (goto
// entries) first, then terminals including #eof (action entries).
//
// Cells may hold a second action if there was a conflict. The first action is the
// one the parser takes.
type ActionTable struct {
	pg        *ParseGraph
	states    []graph.State
	rows      map[graph.State]int
	columns   []Segment
	colOf     map[Segment]int
	gotoCols  int
	matrix    *sparse.IntMatrix
	conflicts int
}

// BuildActionTable creates the parser table for a parse graph. Shifts win over
// reductions; of several reductions, the one of the production declared first wins.
func BuildActionTable(pg *ParseGraph) *ActionTable {
	G := pg.grammar
	at := &ActionTable{
		pg:     pg,
		states: pg.g.States(),
		rows:   make(map[graph.State]int),
		colOf:  make(map[Segment]int),
	}
	for r, s := range at.states {
		at.rows[s] = r
	}
	at.columns = append(at.columns, G.NonTerminals()...)
	at.gotoCols = len(at.columns)
	at.columns = append(at.columns, G.Terminals()...)
	for c, X := range at.columns {
		at.colOf[X] = c
	}
	at.matrix = sparse.NewIntMatrix(len(at.states), len(at.columns), ErrorAction)
	for r, s := range at.states {
		for _, t := range pg.g.Out(s) {
			X, _ := pg.g.TransitionLabel(t)
			at.put(r, at.colOf[X], ShiftAction(at.rows[pg.g.To(t)]))
		}
		iset := pg.g.Label(s)
		for i, item := range iset.items { // sorted by production index
			if !item.IsComplete() {
				continue
			}
			for _, la := range iset.lookaheads[i].Items() {
				v := ReduceAction(item.Prod.index)
				if item.Prod.target.IsInitial() {
					v = AcceptAction
				}
				at.put(r, at.colOf[la], v)
			}
		}
	}
	tracer().Infof("action table of size %d x %d with %d entries, %d conflicts",
		len(at.states), len(at.columns), at.matrix.ValueCount(), at.conflicts)
	return at
}

func (at *ActionTable) put(r, c int, v int32) {
	if old := at.matrix.Value(r, c); old != ErrorAction {
		if old == v {
			return
		}
		tracer().Debugf("conflict in row %d on %v: %s over %s", r, at.columns[c],
			actionString(old), actionString(v))
		at.matrix.Add(r, c, v)
		at.conflicts++
		return
	}
	at.matrix.Set(r, c, v)
}

// ParseGraph returns the parse graph the table has been built from.
func (at *ActionTable) ParseGraph() *ParseGraph {
	return at.pg
}

// RowCount returns the number of rows.
func (at *ActionTable) RowCount() int {
	return len(at.states)
}

// Columns returns the column segments: non-terminals, then terminals.
func (at *ActionTable) Columns() []Segment {
	return at.columns
}

// GotoColumns returns the number of leading non-terminal columns.
func (at *ActionTable) GotoColumns() int {
	return at.gotoCols
}

// Column returns the column of a segment.
func (at *ActionTable) Column(X Segment) (int, bool) {
	c, ok := at.colOf[X]
	return c, ok
}

// State returns the parse graph state of row r.
func (at *ActionTable) State(r int) graph.State {
	return at.states[r]
}

// StartRow returns the row of the start state for an initial segment.
func (at *ActionTable) StartRow(S Segment) (int, bool) {
	s, ok := at.pg.initial[S]
	if !ok {
		return 0, false
	}
	r, ok := at.rows[s]
	return r, ok
}

// Value returns the action at row r and column c.
func (at *ActionTable) Value(r, c int) int32 {
	return at.matrix.Value(r, c)
}

// Values returns both actions at row r and column c. The second is
// ErrorAction unless there has been a conflict.
func (at *ActionTable) Values(r, c int) (int32, int32) {
	return at.matrix.Values(r, c)
}

// Lookup returns the primary action at row r and column c as an int.
func (at *ActionTable) Lookup(r, c int) int {
	return int(at.matrix.Value(r, c))
}

// Row returns the primary actions of row r.
func (at *ActionTable) Row(r int) []int {
	row := make([]int, len(at.columns))
	for c := range row {
		row[c] = int(at.matrix.Value(r, c))
	}
	return row
}

// HasConflicts is true if any cell holds more than one action.
func (at *ActionTable) HasConflicts() bool {
	return at.conflicts > 0
}

// ProductionInfo returns the length of production p and the column of its target.
func (at *ActionTable) ProductionInfo(p int) (int, int) {
	prod := at.pg.grammar.Production(p)
	c, ok := at.colOf[prod.target]
	if !ok {
		c = -1 // initial productions are accepted, never reduced
	}
	return prod.Len(), c
}

func actionString(v int32) string {
	switch kind, arg := DecodeAction(v); kind {
	case Accept:
		return "acc"
	case Shift:
		return fmt.Sprintf("s%d", arg)
	case Reduce:
		return fmt.Sprintf("r%d", arg)
	}
	return ""
}

// ActionTableAsHTML exports an action table in HTML format.
func ActionTableAsHTML(at *ActionTable, w io.Writer) error {
	var err error
	write := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	write("<html><body>\n")
	write("<p>table of size %d x %d with %d entries</p>\n", len(at.states), len(at.columns), at.matrix.ValueCount())
	write("<table border=1 cellspacing=0 cellpadding=5>\n")
	write("<tr bgcolor=#cccccc><td></td>\n")
	for _, X := range at.columns {
		write("<td>%s</td>", html.EscapeString(X.String()))
	}
	write("</tr>\n")
	for r := range at.states {
		write("<tr><td>state %d</td>\n", r)
		for c := range at.columns {
			td := "&nbsp;"
			if v1, v2 := at.matrix.Values(r, c); v2 != ErrorAction {
				td = actionString(v1) + "/" + actionString(v2)
			} else if v1 != ErrorAction {
				td = actionString(v1)
			}
			write("<td>%s</td>\n", td)
		}
		write("</tr>\n")
	}
	write("</table></body></html>\n")
	return err
}
