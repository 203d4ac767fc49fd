package generator

import (
	"fmt"

	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/blob"
	"github.com/npillmayer/tabgen/lr"
	"github.com/npillmayer/tabgen/lr/lalr"
)

// ParserTables are compact LALR(1) parser tables. ParserTables implement
// lalr.Tables.
type ParserTables struct {
	Blob     *blob.CompressedBlob
	Action   *lr.ActionTable // nil for tables read from a blob
	rows     int
	cols     int
	gotoCols int
	starts   []int // start rows, in order of initial segments
	flat     []int
	values   []int
	prods    []int // (length, column+1) per production
}

var _ lalr.Tables = (*ParserTables)(nil)

// GenerateParser creates parser tables for a grammar.
//
// Reduce-reduce conflicts are reported to diag (which may be nil), shift-reduce
// conflicts are resolved in favour of shifting.
func GenerateParser(g *lr.Grammar, settings tabgen.Settings, diag tabgen.Diagnostics) (*ParserTables, error) {
	pg := lr.ConstructGraph(g, lr.NewSegmentSetProvider(g))
	opt := lr.NewParseGraphOptimiser(diag)
	opt.Optimise = settings.Optimise
	pg, err := opt.Run(pg)
	if err != nil {
		return nil, err
	}
	at := lr.BuildActionTable(pg)
	pt := &ParserTables{
		Action:   at,
		rows:     at.RowCount(),
		cols:     len(at.Columns()),
		gotoCols: at.GotoColumns(),
	}
	for _, S := range g.InitialSegments() {
		r, ok := at.StartRow(S)
		if !ok {
			return nil, fmt.Errorf("no start state for %v", S)
		}
		pt.starts = append(pt.starts, r)
	}
	rows := make([][]int, pt.rows)
	skips := make([]int, pt.rows)
	for r := range rows {
		rows[r] = at.Row(r)
		for skips[r] < pt.gotoCols && rows[r][skips[r]] == 0 {
			skips[r]++
		}
	}
	if pt.flat, pt.values, err = flatten(rows, skips); err != nil {
		return nil, err
	}
	for p := range g.Productions() {
		length, col := at.ProductionInfo(p)
		pt.prods = append(pt.prods, length, col+1)
	}
	if pt.Blob, err = pack(settings, pt.encode()); err != nil {
		return nil, err
	}
	tracer().Infof("parser tables: %d rows, %d columns, %v", pt.rows, pt.cols, pt.Blob)
	return pt, nil
}

// RowCount returns the number of parser states.
func (pt *ParserTables) RowCount() int {
	return pt.rows
}

// ColumnCount returns the number of columns, non-terminals first.
func (pt *ParserTables) ColumnCount() int {
	return pt.cols
}

// GotoColumns returns the number of leading non-terminal columns.
func (pt *ParserTables) GotoColumns() int {
	return pt.gotoCols
}

// StartRow returns the start row of the i-th initial segment of the grammar.
func (pt *ParserTables) StartRow(i int) int {
	return pt.starts[i]
}

// Lookup is part of interface lalr.Tables.
func (pt *ParserTables) Lookup(state, column int) int {
	return lookup(pt.flat, pt.values, state, column)
}

// ProductionInfo is part of interface lalr.Tables. The column of initial
// productions is -1.
func (pt *ParserTables) ProductionInfo(p int) (int, int) {
	return pt.prods[2*p], pt.prods[2*p+1] - 1
}

func (pt *ParserTables) encode() []int {
	data := []int{pt.rows, pt.cols, pt.gotoCols, len(pt.prods) / 2, len(pt.starts)}
	data = append(data, pt.starts...)
	data = append(data, pt.flat...)
	data = append(data, len(pt.values))
	data = append(data, pt.values...)
	return append(data, pt.prods...)
}

// ParserTablesFromBlob decodes parser tables from a blob.
func ParserTablesFromBlob(b *blob.CompressedBlob) (*ParserTables, error) {
	data, err := b.Decompress()
	if err != nil {
		return nil, err
	}
	r := &reader{data: data}
	pt := &ParserTables{Blob: b}
	pt.rows, pt.cols, pt.gotoCols = r.next(), r.next(), r.next()
	nprods := r.next()
	pt.starts = r.slice(r.next())
	pt.flat = r.slice(pt.rows)
	pt.values = r.slice(r.next())
	pt.prods = r.slice(2 * nprods)
	if err := r.done(); err != nil {
		return nil, err
	}
	if err := checkFlat(pt.flat, pt.values, pt.cols); err != nil {
		return nil, err
	}
	return pt, nil
}
