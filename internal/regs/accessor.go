// internal/regs/accessor.go
package regs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/asicreg/internal/regtree"
	"github.com/tamzrod/asicreg/internal/window"
)

// ErrBadIdentifier is returned when an identifier is neither a numeric
// literal nor a register path.
var ErrBadIdentifier = errors.New("bad register/offset")

// WordReader is the single-word access the decoders depend on.
type WordReader interface {
	Read4(offset uint32) (uint32, error)
}

// Target is a resolved identifier.
type Target struct {
	Offset uint32
	Words  int  // default transfer length in 32-bit words
	ByName bool // resolved through the register tree
}

// Accessor resolves identifiers and performs word transfers on a window.
type Accessor struct {
	win  *window.Window
	tree *regtree.Tree
}

// New builds an accessor. A nil tree behaves like regtree.Empty().
func New(win *window.Window, tree *regtree.Tree) *Accessor {
	if tree == nil {
		tree = regtree.Empty()
	}
	return &Accessor{win: win, tree: tree}
}

// Tree returns the register namespace.
func (a *Accessor) Tree() *regtree.Tree {
	return a.tree
}

// ParseValue parses a 0x-prefixed hex or a decimal unsigned 32-bit literal.
func ParseValue(s string) (uint32, error) {
	if strings.HasPrefix(s, "0x") {
		v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid hex word %q: %w", s, err)
		}
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return uint32(v), nil
}

// Resolve turns an identifier into an offset.
// A numeric literal always wins over a tree name.
func (a *Accessor) Resolve(id string) (Target, error) {
	if off, err := ParseValue(id); err == nil {
		return Target{Offset: off, Words: 1}, nil
	}

	n, err := a.tree.Node(id)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %s (%w)", ErrBadIdentifier, id, err)
	}
	return Target{Offset: n.Offset, Words: int(n.Size / 4), ByName: true}, nil
}

// Read resolves id and reads count consecutive words.
// count <= 0 uses the target's default length.
func (a *Accessor) Read(id string, count int) ([]uint32, error) {
	t, err := a.Resolve(id)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = t.Words
	}
	vals, err := a.ReadOffset(t.Offset, count)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	return vals, nil
}

// ReadRegister reads count words at a register path.
// Only the tree is consulted.
func (a *Accessor) ReadRegister(path string, count int) ([]uint32, error) {
	off, err := a.tree.Offset(path)
	if err != nil {
		return nil, err
	}
	vals, err := a.ReadOffset(off, count)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vals, nil
}

// ReadOffset reads count consecutive words starting at offset.
// All-or-nothing: any failed transfer aborts the read.
func (a *Accessor) ReadOffset(offset uint32, count int) ([]uint32, error) {
	out := make([]uint32, 0, count)
	for i := 0; i < count; i++ {
		v, err := a.win.Read4(offset)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		offset += 4
	}
	return out, nil
}

// Read4 reads one word at a literal offset.
func (a *Accessor) Read4(offset uint32) (uint32, error) {
	return a.win.Read4(offset)
}

// Write4 writes one word at a literal offset.
func (a *Accessor) Write4(offset, value uint32) error {
	return a.win.Write4(offset, value)
}

// Write resolves id and writes exactly one word.
// Multi-word and bitfield writes are not supported.
func (a *Accessor) Write(id string, value uint32) error {
	t, err := a.Resolve(id)
	if err != nil {
		return err
	}
	if err := a.win.Write4(t.Offset, value); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	return nil
}
