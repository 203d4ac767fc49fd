/*
Package blob implements compression codecs for embedding integer tables as
static resources.

Three encodings are available:

■ None stores the table verbatim.

■ Simple is a run-length encoding. The encoded sequence starts with a header
[length, escape], where escape is the maximum value of the element type. Runs
longer than 3 elements, or runs of the escape value itself, are emitted as
[escape, count, value] triples; shorter runs are emitted literally. Simple is
meant for tables which are decoded once at process start into a fast runtime array.

■ CTB is a variable-length byte stream. Every number is split into 7-bit groups,
most significant group first, with continuation bit 0x80 set on all but the terminal
byte. The terminal byte carries the lowest 6 bits of a number plus a repetition flag
0x40. A run of repeated values is written as the encoded repeat count, followed by
the value with the repetition flag set. The stream starts with the element count.
CTB minimizes the embedded binary size at some decode-time cost.

Method Auto compresses with Simple and falls back to None if Simple does not
shrink the table.

For every method m and every sequence x of non-negative integers,

    b, _ := blob.Compress(m, size, x)
    y, _ := b.Decompress()   // y == x

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package blob

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tabgen.blob'.
func tracer() tracing.Trace {
	return tracing.Select("tabgen.blob")
}

// Method is a compression method tag.
type Method int8

// Compression methods.
const (
	None Method = iota
	Simple
	CTB
	Auto // resolves to Simple or None at compression time
)

func (m Method) String() string {
	switch m {
	case None:
		return "None"
	case Simple:
		return "Simple"
	case CTB:
		return "CTB"
	case Auto:
		return "Auto"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod returns the method for a (case-insensitive) method name.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return None, nil
	case "simple":
		return Simple, nil
	case "ctb":
		return CTB, nil
	case "auto", "":
		return Auto, nil
	}
	return None, fmt.Errorf("unknown compression method %q", s)
}

// ElementSize is the byte width of table elements in a runtime array.
type ElementSize int8

// Element sizes.
const (
	U8  ElementSize = 1
	U16 ElementSize = 2
	U32 ElementSize = 4
)

// Max returns the maximum value of the element type. It is used as the escape
// sentinel for method Simple.
func (e ElementSize) Max() int {
	switch e {
	case U8:
		return 0xff
	case U16:
		return 0xffff
	case U32:
		return 0xffffffff
	}
	panic(fmt.Sprintf("illegal element size %d", int(e)))
}

func (e ElementSize) String() string {
	return fmt.Sprintf("U%d", int(e)*8)
}

// ParseElementSize checks a byte width of 1, 2 or 4.
func ParseElementSize(bytes int) (ElementSize, error) {
	switch bytes {
	case 1:
		return U8, nil
	case 2:
		return U16, nil
	case 4:
		return U32, nil
	}
	return U8, fmt.Errorf("illegal element size %d, must be one of 1, 2, 4", bytes)
}

// Errors returned by compression and decompression.
var (
	ErrNegative = errors.New("tables must not contain negative values")
	ErrOverflow = errors.New("value does not fit into element type")
	ErrCorrupt  = errors.New("corrupt compressed data")
)

// CompressedBlob is an immutable compressed integer sequence together with
// its compression method and the element byte-width of the runtime table.
type CompressedBlob struct {
	method Method
	size   ElementSize
	length int   // number of decoded elements
	data   []int // encoded sequence; bytes for CTB
}

// Compress encodes values with a compression method. Method Auto will be resolved to
// either Simple or None, depending on which one yields the shorter encoding.
func Compress(method Method, size ElementSize, values []int) (*CompressedBlob, error) {
	size.Max() // panics on illegal sizes
	for i, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("element %d = %d: %w", i, v, ErrNegative)
		}
	}
	b := &CompressedBlob{method: method, size: size, length: len(values)}
	switch method {
	case None:
		b.data = append([]int(nil), values...)
	case Simple:
		b.data = encodeSimple(values, size.Max())
	case CTB:
		b.data = encodeCTB(values)
	case Auto:
		b.method = Simple
		b.data = encodeSimple(values, size.Max())
		if len(b.data) >= len(values) {
			tracer().Debugf("simple encoding does not shrink table of length %d", len(values))
			b.method = None
			b.data = append([]int(nil), values...)
		}
	default:
		return nil, fmt.Errorf("unknown compression method %v", method)
	}
	tracer().Debugf("compressed %d elements with method %s to %d elements", len(values), b.method, len(b.data))
	return b, nil
}

// Method returns the compression method. It is never Auto.
func (b *CompressedBlob) Method() Method {
	return b.method
}

// ElementSize returns the element size of the decompressed runtime table.
func (b *CompressedBlob) ElementSize() ElementSize {
	return b.size
}

// Len returns the number of elements of the decompressed table.
func (b *CompressedBlob) Len() int {
	return b.length
}

// EncodedLen returns the number of elements of the encoded sequence.
func (b *CompressedBlob) EncodedLen() int {
	return len(b.data)
}

// Data returns a copy of the encoded sequence.
func (b *CompressedBlob) Data() []int {
	return append([]int(nil), b.data...)
}

// Decompress decodes the blob.
func (b *CompressedBlob) Decompress() ([]int, error) {
	switch b.method {
	case None:
		return append([]int(nil), b.data...), nil
	case Simple:
		return decodeSimple(b.data)
	case CTB:
		return decodeCTB(b.data)
	}
	return nil, fmt.Errorf("cannot decompress method %v", b.method)
}

func (b *CompressedBlob) String() string {
	return fmt.Sprintf("blob(%s,%s,%d→%d)", b.method, b.size, b.length, len(b.data))
}
