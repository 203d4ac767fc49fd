package blob

import (
	"encoding/binary"
	"fmt"
)

// Bytes serializes the encoded sequence for embedding.
//
// Method None: every element at element width, little-endian.
// Method Simple: length and escape as 4-byte little-endian header fields, then every
// element at element width, little-endian.
// Method CTB: the byte stream as is.
//
// Bytes returns ErrOverflow if an element does not fit into the element width.
func (b *CompressedBlob) Bytes() ([]byte, error) {
	switch b.method {
	case CTB:
		out := make([]byte, len(b.data))
		for i, v := range b.data {
			out[i] = byte(v)
		}
		return out, nil
	case None:
		return putElements(make([]byte, 0, len(b.data)*int(b.size)), b.data, b.size)
	case Simple:
		out := make([]byte, 8, 8+(len(b.data)-2)*int(b.size))
		binary.LittleEndian.PutUint32(out[0:4], uint32(b.data[0]))
		binary.LittleEndian.PutUint32(out[4:8], uint32(b.data[1]))
		return putElements(out, b.data[2:], b.size)
	}
	return nil, fmt.Errorf("cannot serialize method %v", b.method)
}

func putElements(out []byte, data []int, size ElementSize) ([]byte, error) {
	max := size.Max()
	var buf [4]byte
	for i, v := range data {
		if v > max {
			return nil, fmt.Errorf("element %d = %d exceeds %s: %w", i, v, size, ErrOverflow)
		}
		switch size {
		case U8:
			buf[0] = byte(v)
		case U16:
			binary.LittleEndian.PutUint16(buf[:2], uint16(v))
		case U32:
			binary.LittleEndian.PutUint32(buf[:4], uint32(v))
		}
		out = append(out, buf[:size]...)
	}
	return out, nil
}

// FromBytes re-creates a blob from its serialized form, as produced by Bytes.
func FromBytes(method Method, size ElementSize, data []byte) (*CompressedBlob, error) {
	size.Max() // panics on illegal sizes
	b := &CompressedBlob{method: method, size: size}
	switch method {
	case CTB:
		b.data = make([]int, len(data))
		for i, x := range data {
			b.data[i] = int(x)
		}
		values, err := decodeCTB(b.data)
		if err != nil {
			return nil, err
		}
		b.length = len(values)
	case None:
		elems, err := getElements(data, size)
		if err != nil {
			return nil, err
		}
		b.data, b.length = elems, len(elems)
	case Simple:
		if len(data) < 8 {
			return nil, fmt.Errorf("simple header missing: %w", ErrCorrupt)
		}
		elems, err := getElements(data[8:], size)
		if err != nil {
			return nil, err
		}
		b.data = make([]int, 0, len(elems)+2)
		b.data = append(b.data,
			int(binary.LittleEndian.Uint32(data[0:4])),
			int(binary.LittleEndian.Uint32(data[4:8])))
		b.data = append(b.data, elems...)
		b.length = b.data[0]
	default:
		return nil, fmt.Errorf("cannot deserialize method %v", method)
	}
	return b, nil
}

func getElements(data []byte, size ElementSize) ([]int, error) {
	w := int(size)
	if len(data)%w != 0 {
		return nil, fmt.Errorf("%d bytes is not a multiple of %s: %w", len(data), size, ErrCorrupt)
	}
	out := make([]int, len(data)/w)
	for i := range out {
		chunk := data[i*w : i*w+w]
		switch size {
		case U8:
			out[i] = int(chunk[0])
		case U16:
			out[i] = int(binary.LittleEndian.Uint16(chunk))
		case U32:
			out[i] = int(binary.LittleEndian.Uint32(chunk))
		}
	}
	return out, nil
}
