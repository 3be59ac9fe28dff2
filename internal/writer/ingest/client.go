// internal/writer/ingest/client.go
package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// Raw Ingest v1 framing.
//
//	0-1  magic "RI"
//	2    version (0x01)
//	3    area
//	4-5  unit id
//	6-7  address
//	8-9  register count
//	10+  registers, big-endian
//
// The endpoint answers one status byte per frame.
const (
	headerLen = 10
	version1  = 0x01

	// AreaHoldingRegisters is the only area the mirror writes.
	AreaHoldingRegisters byte = 3
)

var magic = [2]byte{'R', 'I'}

const (
	respOK       byte = 0x00
	respRejected byte = 0x01
)

var (
	// ErrRejected is returned when the endpoint refuses a frame.
	ErrRejected = errors.New("writer ingest: rejected")

	// ErrFrame is returned for bytes that are not a v1 frame.
	ErrFrame = errors.New("writer ingest: malformed frame")
)

// Frame is one register write.
type Frame struct {
	Area byte
	Unit uint8
	Addr uint16
	Regs []uint16
}

// MarshalBinary encodes f as a v1 frame.
func (f Frame) MarshalBinary() ([]byte, error) {
	if len(f.Regs) > 0xffff {
		return nil, fmt.Errorf("writer ingest: %d registers in one frame", len(f.Regs))
	}

	b := make([]byte, headerLen+2*len(f.Regs))
	copy(b[0:2], magic[:])
	b[2] = version1
	b[3] = f.Area
	binary.BigEndian.PutUint16(b[4:6], uint16(f.Unit))
	binary.BigEndian.PutUint16(b[6:8], f.Addr)
	binary.BigEndian.PutUint16(b[8:10], uint16(len(f.Regs)))
	for i, r := range f.Regs {
		binary.BigEndian.PutUint16(b[headerLen+2*i:], r)
	}
	return b, nil
}

// decode parses one complete v1 frame.
func (f *Frame) decode(b []byte) error {
	if len(b) < headerLen || b[0] != magic[0] || b[1] != magic[1] || b[2] != version1 {
		return ErrFrame
	}
	unit := binary.BigEndian.Uint16(b[4:6])
	count := int(binary.BigEndian.Uint16(b[8:10]))
	if unit > 0xff || len(b) != headerLen+2*count {
		return ErrFrame
	}

	f.Area = b[3]
	f.Unit = uint8(unit)
	f.Addr = binary.BigEndian.Uint16(b[6:8])
	f.Regs = make([]uint16, count)
	for i := range f.Regs {
		f.Regs[i] = binary.BigEndian.Uint16(b[headerLen+2*i:])
	}
	return nil
}

// Client sends each write as one frame on its own connection.
type Client struct {
	endpoint string
	timeout  time.Duration
}

// DefaultTimeout bounds a frame round trip when none is configured.
const DefaultTimeout = 2 * time.Second

// New returns a client for endpoint. No connection is opened until a write.
func New(endpoint string, timeout time.Duration) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{endpoint: endpoint, timeout: timeout}, nil
}

func (c *Client) Close() error { return nil }

// WriteRegisters sends one holding-register frame and waits for its status.
func (c *Client) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	pkt, err := Frame{Area: AreaHoldingRegisters, Unit: unitID, Addr: addr, Regs: regs}.MarshalBinary()
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("writer ingest: dial: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("writer ingest: %w", err)
	}
	if _, err := conn.Write(pkt); err != nil {
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	var status [1]byte
	if _, err := io.ReadFull(conn, status[:]); err != nil {
		return fmt.Errorf("writer ingest: read status: %w", err)
	}
	switch status[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	}
	return fmt.Errorf("writer ingest: unknown status 0x%02x", status[0])
}
