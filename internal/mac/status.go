// internal/mac/status.go
package mac

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/asicreg/internal/bitfield"
)

// ---- register paths ----

// AuxPath is the status register of the auxiliary (CPU) MAC.
const AuxPath = "eth100g_regs.eth100g_reg.eth_status"

// First and Last bound the high-speed MAC ids.
const (
	First = 1
	Last  = 32
)

// ErrRange is returned for a MAC id outside First..Last.
var ErrRange = errors.New("mac: id out of range")

// ChannelPaths returns the two status register paths of a high-speed MAC.
func ChannelPaths(mac int) (string, string) {
	base := fmt.Sprintf("eth400g_p%d.eth400g_mac", mac)
	return base + ".eth_status0", base + ".eth_status1"
}

// ---- records ----

// RegisterReader reads words at a register path.
type RegisterReader interface {
	ReadRegister(path string, count int) ([]uint32, error)
}

// AuxStatus holds one bit per channel for the 4 auxiliary channels.
type AuxStatus struct {
	SigOK  uint8
	TxIdle uint8
	RxIdle uint8
	TxGood uint8
}

// ChannelStatus holds one bit per channel for the 8 high-speed channels.
type ChannelStatus struct {
	LocalFault  uint8
	RemoteFault uint8
	OtherFault  uint8
	LinkUp      uint8
	SigOK       uint8
	TxIdle      uint8
	RxIdle      uint8
	TxGood      uint8
}

// MacChannel pairs a MAC id with its status.
type MacChannel struct {
	Mac    int
	Status ChannelStatus
}

// field pulls an inclusive bit range out of a single status word.
func field(word uint32, start, end uint) uint8 {
	v, _ := bitfield.Extract([]uint32{word}, start, end)
	return uint8(v)
}

func readWord(r RegisterReader, path string) (uint32, error) {
	vals, err := r.ReadRegister(path, 1)
	if err != nil {
		return 0, err
	}
	if len(vals) != 1 {
		return 0, fmt.Errorf("mac: %s: expected 1 word, got %d", path, len(vals))
	}
	return vals[0], nil
}

// ---- readers ----

// ReadAux reads the auxiliary MAC status register.
func ReadAux(r RegisterReader) (AuxStatus, error) {
	w, err := readWord(r, AuxPath)
	if err != nil {
		return AuxStatus{}, err
	}
	return AuxStatus{
		SigOK:  field(w, 0, 3),
		TxIdle: field(w, 4, 7),
		RxIdle: field(w, 8, 11),
		TxGood: field(w, 12, 15),
	}, nil
}

// ReadChannel reads both status registers of one high-speed MAC.
func ReadChannel(r RegisterReader, mac int) (ChannelStatus, error) {
	if mac < First || mac > Last {
		return ChannelStatus{}, fmt.Errorf("%w: %d (want %d..%d)", ErrRange, mac, First, Last)
	}

	p0, p1 := ChannelPaths(mac)
	s0, err := readWord(r, p0)
	if err != nil {
		return ChannelStatus{}, err
	}
	s1, err := readWord(r, p1)
	if err != nil {
		return ChannelStatus{}, err
	}

	return ChannelStatus{
		LocalFault:  field(s0, 0, 7),
		RemoteFault: field(s0, 8, 15),
		OtherFault:  field(s0, 16, 23),
		LinkUp:      field(s0, 24, 31),
		SigOK:       field(s1, 0, 7),
		TxIdle:      field(s1, 8, 15),
		RxIdle:      field(s1, 16, 23),
		TxGood:      field(s1, 24, 31),
	}, nil
}

// ReadAll reads every high-speed MAC in order.
// The first unreadable MAC aborts the walk.
func ReadAll(r RegisterReader) ([]MacChannel, error) {
	out := make([]MacChannel, 0, Last-First+1)
	for m := First; m <= Last; m++ {
		s, err := ReadChannel(r, m)
		if err != nil {
			return nil, fmt.Errorf("mac %d: %w", m, err)
		}
		out = append(out, MacChannel{Mac: m, Status: s})
	}
	return out, nil
}

// ---- selector ----

// Selector names what a status command shows.
type Selector struct {
	All bool
	Aux bool
	Mac int
}

// ParseSelector accepts "" (all MACs), "aux"/"cpu" or a MAC number.
func ParseSelector(s string) (Selector, error) {
	if s == "" {
		return Selector{All: true}, nil
	}
	switch strings.ToLower(s) {
	case "aux", "cpu":
		return Selector{Aux: true}, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return Selector{}, fmt.Errorf("invalid mac: %s", s)
	}
	return Selector{Mac: int(n)}, nil
}
