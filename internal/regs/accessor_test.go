// internal/regs/accessor_test.go
package regs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/asicreg/internal/regtree"
	"github.com/tamzrod/asicreg/internal/window"
)

const testMap = `
nodes:
  - name: blk
    offset: 0x100
    children:
      - name: ctrl
      - name: table
        offset: 0x10
        size: 16
      - name: half
        offset: 0x20
        size: 6
  - name: "0x10"
    offset: 0x200
  - name: "42"
    offset: 0x300
`

func newAccessor(t *testing.T) (*Accessor, *window.Window) {
	t.Helper()
	tree, err := regtree.Load(strings.NewReader(testMap))
	require.NoError(t, err)
	win := window.NewMemory(0x1000)
	return New(win, tree), win
}

func TestParseValue(t *testing.T) {
	ok := map[string]uint32{
		"0":          0,
		"42":         42,
		"0x2a":       0x2a,
		"0xFFFFFFFF": 0xffffffff,
		"4294967295": 4294967295,
	}
	for in, want := range ok {
		got, err := ParseValue(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "0x", "0x100000000", "4294967296", "-1", "abc", "0xzz", "blk.ctrl"} {
		_, err := ParseValue(in)
		assert.Error(t, err, in)
	}
}

func TestResolve_LiteralDefaultsToOneWord(t *testing.T) {
	a, _ := newAccessor(t)

	tgt, err := a.Resolve("0x104")
	require.NoError(t, err)
	assert.Equal(t, Target{Offset: 0x104, Words: 1}, tgt)
}

func TestResolve_NameDefaultsToNodeSize(t *testing.T) {
	a, _ := newAccessor(t)

	tgt, err := a.Resolve("blk.table")
	require.NoError(t, err)
	assert.Equal(t, Target{Offset: 0x110, Words: 4, ByName: true}, tgt)

	// 6 bytes rounds down to one word
	tgt, err = a.Resolve("blk.half")
	require.NoError(t, err)
	assert.Equal(t, 1, tgt.Words)
}

func TestResolve_LiteralWinsOverName(t *testing.T) {
	a, _ := newAccessor(t)

	tgt, err := a.Resolve("0x10")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10), tgt.Offset)
	assert.False(t, tgt.ByName)

	tgt, err = a.Resolve("42")
	require.NoError(t, err)
	assert.Equal(t, uint32(42), tgt.Offset)
}

func TestResolve_BadIdentifier(t *testing.T) {
	a, _ := newAccessor(t)

	_, err := a.Resolve("blk.nope")
	assert.ErrorIs(t, err, ErrBadIdentifier)
	assert.ErrorIs(t, err, regtree.ErrNotFound)
	assert.Contains(t, err.Error(), "blk.nope")

	noMap := New(window.NewMemory(16), nil)
	_, err = noMap.Resolve("blk.ctrl")
	assert.ErrorIs(t, err, ErrBadIdentifier)
	assert.ErrorIs(t, err, regtree.ErrNoMap)
}

func TestRead_Consecutive(t *testing.T) {
	a, win := newAccessor(t)
	for i := uint32(0); i < 4; i++ {
		require.NoError(t, win.Write4(0x110+4*i, 0xa0+i))
	}

	vals, err := a.Read("blk.table", 0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xa0, 0xa1, 0xa2, 0xa3}, vals)

	vals, err = a.Read("blk.table", 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xa0, 0xa1}, vals)

	vals, err = a.Read("0x114", 0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xa1}, vals)
}

func TestRead_PropagatesWindowErrors(t *testing.T) {
	a, _ := newAccessor(t)

	_, err := a.Read("0x102", 1)
	assert.ErrorIs(t, err, window.ErrAlignment)
	assert.Contains(t, err.Error(), "0x102")

	_, err = a.Read("0xffc", 2)
	assert.ErrorIs(t, err, window.ErrBounds)
}

func TestReadRegister_TreeOnly(t *testing.T) {
	a, win := newAccessor(t)
	require.NoError(t, win.Write4(0x100, 7))

	vals, err := a.ReadRegister("blk.ctrl", 1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{7}, vals)

	_, err = a.ReadRegister("0x100", 1)
	assert.ErrorIs(t, err, regtree.ErrNotFound)
}

func TestWrite_SingleWord(t *testing.T) {
	a, win := newAccessor(t)

	require.NoError(t, a.Write("blk.table", 0x55))
	v, err := win.Read4(0x110)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x55), v)

	v, err = win.Read4(0x114)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v, "only one word is written")

	require.NoError(t, a.Write("0x10", 9))
	v, err = win.Read4(0x10)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), v)

	assert.ErrorIs(t, a.Write("bogus", 1), ErrBadIdentifier)
	assert.ErrorIs(t, a.Write("0x2000", 1), window.ErrBounds)
}
