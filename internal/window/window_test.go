// internal/window/window_test.go
package window

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMapper struct {
	mem      []byte
	err      error
	unmapped bool
}

func (f *fakeMapper) Map(path string, length int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.mem, nil
}

func (f *fakeMapper) Unmap(mem []byte) error {
	f.unmapped = true
	return nil
}

func TestReadWrite_RoundTrip(t *testing.T) {
	w := NewMemory(64)

	require.NoError(t, w.Write4(0x10, 0xdeadbeef))
	v, err := w.Read4(0x10)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v)

	v, err = w.Read4(0x14)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)
}

func TestUnalignedAlwaysRejected(t *testing.T) {
	w := NewMemory(64)
	require.NoError(t, w.Write4(0, 0x11223344))

	for _, off := range []uint32{1, 2, 3, 5, 0x3e} {
		_, err := w.Read4(off)
		assert.ErrorIs(t, err, ErrAlignment, "read 0x%x", off)

		err = w.Write4(off, 0xffffffff)
		assert.ErrorIs(t, err, ErrAlignment, "write 0x%x", off)
	}

	// a rejected write must never have touched memory
	v, err := w.Read4(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x11223344), v)
}

func TestBounds(t *testing.T) {
	w := NewMemory(64)

	_, err := w.Read4(60)
	assert.NoError(t, err, "last word is in range")

	_, err = w.Read4(64)
	assert.ErrorIs(t, err, ErrBounds)

	err = w.Write4(0xfffffffc, 1)
	assert.ErrorIs(t, err, ErrBounds, "no wrap-around on huge offsets")
}

func TestAlignmentCheckedBeforeBounds(t *testing.T) {
	w := NewMemory(8)

	_, err := w.Read4(9)
	assert.ErrorIs(t, err, ErrAlignment)
}

func TestOpen_MappingErrorCarriesPlatformText(t *testing.T) {
	m := &fakeMapper{err: errors.New("failed to open device: permission denied")}

	_, err := Open(m, "/dev/tofino/0", DefaultLength)
	require.Error(t, err)

	var me *MappingError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "/dev/tofino/0", me.Path)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestOpen_ShortMapping(t *testing.T) {
	m := &fakeMapper{mem: make([]byte, 16)}

	_, err := Open(m, "dev", 32)
	var me *MappingError
	assert.ErrorAs(t, err, &me)
}

func TestOpen_CloseReleasesMapping(t *testing.T) {
	m := &fakeMapper{mem: NewMemory(32).mem}

	w, err := Open(m, "dev", 32)
	require.NoError(t, err)
	assert.Equal(t, 32, w.Len())

	require.NoError(t, w.Close())
	assert.True(t, m.unmapped)
}

func TestMapperFor(t *testing.T) {
	assert.IsType(t, MemoryMapper{}, MapperFor("mem:"))
	assert.IsType(t, DeviceMapper{}, MapperFor("/dev/tofino/0"))

	w, err := Open(MapperFor("mem:test"), "mem:test", 4096)
	require.NoError(t, err)
	assert.Equal(t, 4096, w.Len())
}
