// internal/fuse/fuse.go
package fuse

import (
	"errors"
	"fmt"

	"github.com/tamzrod/asicreg/internal/bitfield"
	"github.com/tamzrod/asicreg/internal/regs"
	"github.com/tamzrod/asicreg/internal/regtree"
)

// Words is the fuse blob length in 32-bit words.
const Words = 16

// DefaultOffset is the first fuse register when no map is available.
const DefaultOffset uint32 = 0x80180

// ErrLength is returned for a blob that is not exactly Words long.
var ErrLength = errors.New("fuse: wrong blob length")

// Record is a decoded fuse blob, fields in layout order.
type Record struct {
	Generation string
	Values     []bitfield.Value
}

// Get returns the value of the named field.
func (r Record) Get(name string) (uint64, bool) {
	for _, v := range r.Values {
		if v.Field.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// ChipID returns the raw chip_id field.
func (r Record) ChipID() (uint64, bool) {
	return r.Get("chip_id")
}

// Decode applies layout to a 16-word blob.
func Decode(words []uint32, layout Layout) (Record, error) {
	if len(words) != Words {
		return Record{}, fmt.Errorf("%w: fuse should be %d words, found %d", ErrLength, Words, len(words))
	}

	vals, err := bitfield.Decode(words, layout.Fields)
	if err != nil {
		return Record{}, fmt.Errorf("fuse: %s: %w", layout.Generation, err)
	}
	return Record{Generation: layout.Generation, Values: vals}, nil
}

// BaseOffset finds the fuse block through the tree, falling back to the
// fixed offset when no map is loaded or the path is absent.
func BaseOffset(tree *regtree.Tree, path string, fallback uint32) uint32 {
	if tree == nil || path == "" {
		return fallback
	}
	off, err := tree.Offset(path)
	if err != nil {
		return fallback
	}
	return off
}

// ReadRaw reads the 16 fuse words starting at base.
func ReadRaw(r regs.WordReader, base uint32) ([]uint32, error) {
	out := make([]uint32, 0, Words)
	off := base
	for i := 0; i < Words; i++ {
		v, err := r.Read4(off)
		if err != nil {
			return nil, fmt.Errorf("fuse word %d: %w", i, err)
		}
		out = append(out, v)
		off += 4
	}
	return out, nil
}

// Read reads and decodes the fuse blob at base.
func Read(r regs.WordReader, base uint32, layout Layout) (Record, error) {
	words, err := ReadRaw(r, base)
	if err != nil {
		return Record{}, err
	}
	return Decode(words, layout)
}
