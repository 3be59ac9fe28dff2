// internal/status/encode.go
package status

import (
	"errors"

	"github.com/tamzrod/asicreg/internal/regs"
	"github.com/tamzrod/asicreg/internal/window"
)

// Encode converts a Snapshot and device name into a full status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot, name string) []uint16 {
	out := make([]uint16, SlotsPerDevice)

	out[SlotHealthCode] = s.Health
	out[SlotLastErrorCode] = s.LastErrorCode
	out[SlotSecondsInError] = s.SecondsInError
	out[SlotPollsHi] = uint16(s.Polls >> 16)
	out[SlotPollsLo] = uint16(s.Polls)

	copy(out[SlotDeviceNameStart:SlotDeviceNameEnd+1], EncodeName(name))
	return out
}

// EncodeName packs up to 16 ASCII characters into 8 registers,
// two bytes per register, big-endian. Non-printable bytes become '?'.
func EncodeName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}

// ErrorCode maps a poll failure onto a status error code.
func ErrorCode(err error) uint16 {
	var me *window.MappingError
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, window.ErrBounds):
		return ErrorBounds
	case errors.Is(err, window.ErrAlignment):
		return ErrorAlignment
	case errors.Is(err, regs.ErrBadIdentifier):
		return ErrorIdentifier
	case errors.As(err, &me):
		return ErrorMapping
	}
	return ErrorGeneric
}
