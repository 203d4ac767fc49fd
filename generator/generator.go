/*
Package generator runs the table generation pipelines for scanners and parsers.

Both pipelines end in flat integer tables suitable for embedding:

■ rows of the state machine (DFA transitions or parser actions) are compacted
by package compact into a single value array

■ a row table holds flat[s] = base + offset(s), where base reserves the
don't-care cells in front of the values. Rows without any entry are not stored
and get flat[s] = 0

■ everything is serialized into one integer sequence and compressed by package
blob, using the element size and compression method from tabgen.Settings

Lookup of cell (s, c) is

    if flat[s] == 0 { return 0 }
    return values[flat[s]+c]

Scanner blob layout:

    nbounds, (bound, class)…, nclasses, nstates, nstarts, (startRule, state)…,
    (acceptedRule+1)…, flat…, nvalues, values…

Scanner cells hold target+1, with 0 meaning "no transition".

Parser blob layout:

    nrows, ncolumns, ngotos, nprods, nstarts, startRow…, flat…, nvalues, values…,
    (length, column+1)…

Parser cells are encoded as in package lr: 0 error, 1 accept, 2s+2 shift or goto
to row s, 2p+3 reduce by production p. Columns hold non-terminals first. Leading
empty goto cells of a row are never read and are not stored.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package generator

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/blob"
	"github.com/npillmayer/tabgen/compact"
)

// tracer traces with key 'tabgen.generator'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen.generator")
}

// flatten compacts rows, each with a don't-care prefix of skips[r] cells. It
// returns the row table and the padded values.
func flatten(rows [][]int, skips []int) ([]int, []int, error) {
	flat := make([]int, len(rows))
	var frags []*compact.TableFragment
	for r, row := range rows {
		if isEmpty(row[skips[r]:]) {
			continue // dead row
		}
		frags = append(frags, compact.NewFragment(r, row, skips[r]))
	}
	if len(frags) == 0 {
		return flat, nil, nil
	}
	combined, err := compact.Combine(frags)
	if err != nil {
		return nil, nil, err
	}
	base := combined.Skip() + 1
	values := make([]int, base, base+combined.Len())
	values = append(values, combined.Values()...)
	for _, origin := range combined.Origins() {
		off, _ := combined.GetOffset(origin)
		flat[origin] = base + off
	}
	cells := 0
	for _, row := range rows {
		cells += len(row)
	}
	tracer().Infof("compacted %d rows with %d cells into %d values", len(rows), cells, len(values))
	return flat, values, nil
}

func isEmpty(row []int) bool {
	for _, v := range row {
		if v != 0 {
			return false
		}
	}
	return true
}

func lookup(flat, values []int, s, c int) int {
	if flat[s] == 0 {
		return 0
	}
	return values[flat[s]+c]
}

// pack compresses a serialized table, checking that every value fits into the
// element size.
func pack(settings tabgen.Settings, data []int) (*blob.CompressedBlob, error) {
	max := settings.ElementSize.Max()
	for i, v := range data {
		if v > max {
			return nil, fmt.Errorf("table element %d = %d exceeds %s: %w", i, v, settings.ElementSize, blob.ErrOverflow)
		}
	}
	return blob.Compress(settings.Compression, settings.ElementSize, data)
}

// reader reads a serialized table.
type reader struct {
	data []int
	pos  int
	err  error
}

func (r *reader) next() int {
	if r.err != nil {
		return 0
	}
	if r.pos >= len(r.data) {
		r.err = fmt.Errorf("table truncated at %d: %w", r.pos, blob.ErrCorrupt)
		return 0
	}
	r.pos++
	return r.data[r.pos-1]
}

func (r *reader) slice(n int) []int {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("table truncated reading %d elements at %d: %w", n, r.pos, blob.ErrCorrupt)
		return nil
	}
	r.pos += n
	return r.data[r.pos-n : r.pos]
}

func (r *reader) done() error {
	if r.err == nil && r.pos != len(r.data) {
		r.err = fmt.Errorf("%d trailing table elements: %w", len(r.data)-r.pos, blob.ErrCorrupt)
	}
	return r.err
}

// checkFlat validates a row table against its values, so that lookups within
// the row width cannot go out of range.
func checkFlat(flat, values []int, width int) error {
	for s, f := range flat {
		if f != 0 && (f < 1 || f+width > len(values)) {
			return fmt.Errorf("row %d at %d out of range: %w", s, f, blob.ErrCorrupt)
		}
	}
	return nil
}
