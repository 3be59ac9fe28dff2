// internal/writer/modbus/client.go
package modbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Client writes holding registers over one Modbus TCP connection.
// Requests are serialized because the unit id lives on the shared handler.
// A failed request drops the connection; the next one redials.
type Client struct {
	mu       sync.Mutex
	endpoint string
	handler  *modbus.TCPClientHandler
	mb       modbus.Client
}

// Dial connects to endpoint so a bad address fails at startup.
func Dial(endpoint string, timeout time.Duration) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(endpoint)
	h.Timeout = timeout
	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("writer modbus: %s: %w", endpoint, err)
	}

	return &Client{endpoint: endpoint, handler: h, mb: modbus.NewClient(h)}, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handler == nil {
		return nil
	}
	return c.handler.Close()
}

// WriteRegisters issues FC16 (write multiple holding registers).
func (c *Client) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID
	if _, err := c.mb.WriteMultipleRegisters(addr, uint16(len(regs)), PackRegisters(regs)); err != nil {
		// goburrow reconnects lazily on the next send once closed
		_ = c.handler.Close()
		return fmt.Errorf("writer modbus: %s unit=%d addr=%d: %w", c.endpoint, unitID, addr, err)
	}
	return nil
}

// PackRegisters lays registers out big-endian, as they travel on the wire.
func PackRegisters(regs []uint16) []byte {
	out := make([]byte, 2*len(regs))
	for i, r := range regs {
		binary.BigEndian.PutUint16(out[2*i:], r)
	}
	return out
}
