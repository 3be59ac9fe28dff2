// internal/bitfield/bitfield_test.go
package bitfield

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Nibbles(t *testing.T) {
	words := []uint32{0xabcd}

	cases := []struct {
		start, end uint
		want       uint64
	}{
		{0, 3, 0xd},
		{4, 7, 0xc},
		{8, 11, 0xb},
		{12, 15, 0xa},
	}

	for _, c := range cases {
		got, err := Extract(words, c.start, c.end)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "bits %d-%d", c.start, c.end)
	}
}

func TestExtract_CrossesWordBoundary(t *testing.T) {
	// bits 28..35 = high nibble of word 0 (0xf) then low nibble of word 1 (0x5)
	words := []uint32{0xf0000000, 0x00000005}

	got, err := Extract(words, 28, 35)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x5f), got)
}

func TestExtract_Full64Bits(t *testing.T) {
	words := []uint32{0x89abcdef, 0x01234567, 0xffffffff}

	got, err := Extract(words, 0, 63)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789abcdef), got)

	got, err = Extract(words, 4, 67)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xf0123456789abcde), got)
}

func TestExtract_SingleBit(t *testing.T) {
	words := []uint32{0, 1 << 9}

	got, err := Extract(words, 41, 41)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got)

	got, err = Extract(words, 40, 40)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestExtract_RangeErrors(t *testing.T) {
	words := []uint32{0, 0, 0}

	_, err := Extract(words, 5, 4)
	assert.ErrorIs(t, err, ErrRange)

	_, err = Extract(words, 0, 96)
	assert.ErrorIs(t, err, ErrRange)

	_, err = Extract(words, 0, 64)
	assert.ErrorIs(t, err, ErrRange)

	_, err = Extract(nil, 0, 0)
	assert.ErrorIs(t, err, ErrRange)
}

func TestExtract_ResultFitsWidth(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for n := 0; n < 500; n++ {
		words := make([]uint32, 1+rng.Intn(16))
		for i := range words {
			words[i] = rng.Uint32()
		}

		total := uint(len(words)) * 32
		start := uint(rng.Intn(int(total)))
		maxWidth := total - start
		if maxWidth > 64 {
			maxWidth = 64
		}
		end := start + uint(rng.Intn(int(maxWidth)))

		got, err := Extract(words, start, end)
		require.NoError(t, err)

		width := end - start + 1
		if width < 64 {
			assert.Less(t, got, uint64(1)<<width)
		}
	}
}

func TestDecode_FieldOrder(t *testing.T) {
	fields := []Field{
		{Name: "lo", Start: 0, End: 7},
		{Name: "hi", Start: 24, End: 31},
	}

	vals, err := Decode([]uint32{0xaa0000bb}, fields)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.Equal(t, "lo", vals[0].Field.Name)
	assert.Equal(t, uint64(0xbb), vals[0].Value)
	assert.Equal(t, uint64(0xaa), vals[1].Value)
	assert.Equal(t, uint(8), vals[1].Field.Width())
}

func TestDecode_AbortsOnBadField(t *testing.T) {
	fields := []Field{
		{Name: "ok", Start: 0, End: 7},
		{Name: "bad", Start: 30, End: 40},
	}

	_, err := Decode([]uint32{0}, fields)
	assert.ErrorIs(t, err, ErrRange)
	assert.Contains(t, err.Error(), "bad")
}
