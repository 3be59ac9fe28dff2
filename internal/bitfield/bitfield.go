// internal/bitfield/bitfield.go
package bitfield

import (
	"errors"
	"fmt"
)

// ErrRange is returned when a requested bit range does not fit the input
// words or a uint64 result.
var ErrRange = errors.New("bitfield: bit range out of range")

// Bit returns bit n of word as 0 or 1.
func Bit(word uint32, n uint) uint64 {
	return uint64((word >> n) & 0x1)
}

// Extract returns the inclusive bit range [start, end] of words as one value.
//
// Words form a single little-endian bit stream: bit 0 of words[0] is global
// bit 0, bit 0 of words[1] is global bit 32. start becomes the LSB of the
// result. Ranges may cross word boundaries.
// No IO. No side effects.
func Extract(words []uint32, start, end uint) (uint64, error) {
	if start > end {
		return 0, fmt.Errorf("%w: start %d > end %d", ErrRange, start, end)
	}
	if end >= uint(len(words))*32 {
		return 0, fmt.Errorf("%w: bit %d beyond %d words", ErrRange, end, len(words))
	}
	if end-start >= 64 {
		return 0, fmt.Errorf("%w: %d bits wider than 64", ErrRange, end-start+1)
	}

	var acc uint64
	for idx := end + 1; idx > start; idx-- {
		i := idx - 1
		acc = acc<<1 | Bit(words[i/32], i%32)
	}
	return acc, nil
}

// Field names one inclusive bit range inside a packed word sequence.
type Field struct {
	Name  string
	Start uint
	End   uint
}

// Width is the number of bits the field covers.
func (f Field) Width() uint {
	return f.End - f.Start + 1
}

// Value is the decoded value of one Field.
type Value struct {
	Field Field
	Value uint64
}

// Decode extracts every field from words, in field order.
// All-or-nothing: the first out-of-range field aborts the decode.
func Decode(words []uint32, fields []Field) ([]Value, error) {
	out := make([]Value, 0, len(fields))
	for _, f := range fields {
		v, err := Extract(words, f.Start, f.End)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out = append(out, Value{Field: f, Value: v})
	}
	return out, nil
}
