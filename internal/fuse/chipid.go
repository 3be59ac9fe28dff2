// internal/fuse/chipid.go
package fuse

import "fmt"

// ChipIdentity is the wafer identity packed into the chip_id fuse field.
type ChipIdentity struct {
	Fab    byte
	Lot    byte
	LotNum [4]byte
	Wafer  uint8
	XSign  uint8
	X      uint8
	YSign  uint8
	Y      uint8
}

// bite takes the low bits of *raw and shifts them out.
func bite(raw *uint64, bits uint) uint8 {
	v := uint8(*raw & (1<<bits - 1))
	*raw >>= bits
	return v
}

// DecodeChipID unpacks chip_id least-significant bits first:
// six 7-bit characters, a 5-bit wafer, then sign+magnitude X and Y.
func DecodeChipID(raw uint64) ChipIdentity {
	var c ChipIdentity
	c.Fab = bite(&raw, 7)
	c.Lot = bite(&raw, 7)
	for i := range c.LotNum {
		c.LotNum[i] = bite(&raw, 7)
	}
	c.Wafer = bite(&raw, 5)
	c.XSign = bite(&raw, 1)
	c.X = bite(&raw, 7)
	c.YSign = bite(&raw, 1)
	c.Y = bite(&raw, 7)
	return c
}

func sign(s uint8) byte {
	if s == 0 {
		return '+'
	}
	return '-'
}

// String renders e.g. "TCAK77 Wafer 23 X=+2 Y=+8".
func (c ChipIdentity) String() string {
	return fmt.Sprintf("%c%c%s Wafer %d X=%c%d Y=%c%d",
		c.Fab, c.Lot, string(c.LotNum[:]),
		c.Wafer,
		sign(c.XSign), c.X,
		sign(c.YSign), c.Y,
	)
}
