package blob

import (
	"fmt"
)

// --- Simple ----------------------------------------------------------------

func encodeSimple(values []int, escape int) []int {
	out := make([]int, 0, len(values)/2+2)
	out = append(out, len(values), escape)
	for i := 0; i < len(values); {
		v := values[i]
		n := runLength(values, i)
		if n > 3 || v == escape {
			for rest := n; rest > 0; {
				c := rest
				if c > escape { // counts have to fit into the element type, too
					c = escape
				}
				out = append(out, escape, c, v)
				rest -= c
			}
		} else {
			for k := 0; k < n; k++ {
				out = append(out, v)
			}
		}
		i += n
	}
	return out
}

func decodeSimple(data []int) ([]int, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("simple header missing: %w", ErrCorrupt)
	}
	length, escape := data[0], data[1]
	out := make([]int, 0, length)
	for i := 2; i < len(data); {
		v := data[i]
		if v != escape {
			out = append(out, v)
			i++
			continue
		}
		if i+2 >= len(data) {
			return nil, fmt.Errorf("truncated run at %d: %w", i, ErrCorrupt)
		}
		count, value := data[i+1], data[i+2]
		for k := 0; k < count; k++ {
			out = append(out, value)
		}
		i += 3
	}
	if len(out) != length {
		return nil, fmt.Errorf("decoded %d elements, header says %d: %w", len(out), length, ErrCorrupt)
	}
	return out, nil
}

// --- CTB -------------------------------------------------------------------

const (
	ctbMore   = 0x80 // continuation bit
	ctbRepeat = 0x40 // repetition flag on terminal bytes
)

func encodeCTB(values []int) []int {
	buf := make([]byte, 0, len(values)+4)
	buf = appendNumber(buf, len(values), false)
	for i := 0; i < len(values); {
		v := values[i]
		n := runLength(values, i)
		if n > 1 && numberSize(n)+numberSize(v) < n*numberSize(v) {
			buf = appendNumber(buf, n, false)
			buf = appendNumber(buf, v, true)
		} else {
			for k := 0; k < n; k++ {
				buf = appendNumber(buf, v, false)
			}
		}
		i += n
	}
	out := make([]int, len(buf))
	for i, b := range buf {
		out[i] = int(b)
	}
	return out
}

// appendNumber writes v as 7-bit groups, most significant first. The terminal
// byte holds the lowest 6 bits.
func appendNumber(buf []byte, v int, repeat bool) []byte {
	last := byte(v & 0x3f)
	if repeat {
		last |= ctbRepeat
	}
	v >>= 6
	var groups [10]byte
	n := 0
	for v > 0 {
		groups[n] = byte(v&0x7f) | ctbMore
		n++
		v >>= 7
	}
	for k := n - 1; k >= 0; k-- {
		buf = append(buf, groups[k])
	}
	return append(buf, last)
}

func numberSize(v int) int {
	n := 1
	for v >>= 6; v > 0; v >>= 7 {
		n++
	}
	return n
}

func decodeCTB(data []int) ([]int, error) {
	var out []int
	var acc int
	var pending int
	havePending, havePrefix := false, false
	length := 0
	for i, b := range data {
		if b < 0 || b > 0xff {
			return nil, fmt.Errorf("byte %d out of range: %w", i, ErrCorrupt)
		}
		if b&ctbMore != 0 {
			acc = acc<<7 | b&0x7f
			continue
		}
		acc = acc<<6 | b&0x3f
		repeat := b&ctbRepeat != 0
		v := acc
		acc = 0
		switch {
		case !havePrefix:
			if repeat {
				return nil, fmt.Errorf("repetition flag on count prefix: %w", ErrCorrupt)
			}
			length = v
			havePrefix = true
			out = make([]int, 0, length)
		case repeat:
			if !havePending {
				return nil, fmt.Errorf("repeated value without count at byte %d: %w", i, ErrCorrupt)
			}
			for k := 0; k < pending; k++ {
				out = append(out, v)
			}
			havePending = false
		default:
			if havePending {
				out = append(out, pending)
			}
			pending, havePending = v, true
		}
	}
	if acc != 0 || len(data) > 0 && data[len(data)-1]&ctbMore != 0 {
		return nil, fmt.Errorf("truncated number: %w", ErrCorrupt)
	}
	if !havePrefix {
		return nil, fmt.Errorf("count prefix missing: %w", ErrCorrupt)
	}
	if havePending {
		out = append(out, pending)
	}
	if len(out) != length {
		return nil, fmt.Errorf("decoded %d elements, prefix says %d: %w", len(out), length, ErrCorrupt)
	}
	return out, nil
}

// ---------------------------------------------------------------------------

func runLength(values []int, i int) int {
	n := 1
	for i+n < len(values) && values[i+n] == values[i] {
		n++
	}
	return n
}
