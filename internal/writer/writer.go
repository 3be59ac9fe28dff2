// internal/writer/writer.go
package writer

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/tamzrod/asicreg/internal/poller"
)

// MaxRegistersPerWrite is the Modbus limit for one write-multiple request.
const MaxRegistersPerWrite = 123

// endpointClient is the only contract the writers use toward an endpoint.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

type dataWriter struct {
	plan    Plan
	clients map[string]endpointClient
}

// New returns the data writer for one unit plan.
func New(plan Plan, clients map[string]endpointClient) Writer {
	return &dataWriter{plan: plan, clients: clients}
}

// EncodeWords splits each 32-bit word into two registers, high half first.
func EncodeWords(words []uint32) []uint16 {
	out := make([]uint16, 0, 2*len(words))
	for _, w := range words {
		out = append(out, uint16(w>>16), uint16(w))
	}
	return out
}

// flatten lays every sample end to end in read order.
func flatten(c poller.Cycle) []uint16 {
	out := make([]uint16, 0, 2*c.Words())
	for _, s := range c.Samples {
		out = append(out, EncodeWords(s.Values)...)
	}
	return out
}

// Write packs a successful cycle into every target's holding registers.
// A failed cycle writes nothing; the status block reports it.
// One target failing does not stop delivery to the others.
func (w *dataWriter) Write(c poller.Cycle) error {
	if !c.OK() {
		return nil
	}

	regs := flatten(c)
	var errs error
	for _, tgt := range w.plan.Targets {
		errs = multierr.Append(errs, w.deliver(tgt, regs))
	}
	return errs
}

// deliver writes regs from tgt.Address in chunks, stopping at the first
// refused chunk.
func (w *dataWriter) deliver(tgt TargetEndpoint, regs []uint16) error {
	cli := w.clients[tgt.Key]
	if cli == nil {
		return fmt.Errorf("writer: missing client for endpoint %s", tgt.Endpoint)
	}

	for off := 0; off < len(regs); off += MaxRegistersPerWrite {
		end := min(off+MaxRegistersPerWrite, len(regs))
		addr := tgt.Address + uint16(off)
		if err := cli.WriteRegisters(tgt.UnitID, addr, regs[off:end]); err != nil {
			return fmt.Errorf("writer: ep=%s unit=%d addr=%d: %w", tgt.Endpoint, tgt.UnitID, addr, err)
		}
	}
	return nil
}
