// internal/writer/status_writer.go
package writer

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/tamzrod/asicreg/internal/status"
)

// StatusWriter delivers device status snapshots verbatim.
// It keeps no health logic of its own.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter mirrors the encoded status block and only sends the
// register runs that changed since the last confirmed write.
type deviceStatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	// shadow is the block as the endpoint holds it; nil forces a full write.
	shadow []uint16
}

// NewDeviceStatusWriter returns the unit's status writer, or false when the
// unit has no status block.
func NewDeviceStatusWriter(plan Plan, clients map[string]endpointClient) (StatusWriter, bool) {
	if plan.Status == nil {
		return nil, false
	}
	return &deviceStatusWriter{plan: plan.Status, cli: clients[plan.Status.Key]}, true
}

// span is a half-open register range [from, to) within the block.
type span struct{ from, to int }

// changed lists the runs of consecutive registers that differ.
func changed(prev, next []uint16) []span {
	var out []span
	for i := 0; i < len(next); {
		if prev[i] == next[i] {
			i++
			continue
		}
		j := i
		for j < len(next) && prev[j] != next[j] {
			j++
		}
		out = append(out, span{i, j})
		i = j
	}
	return out
}

// WriteStatus encodes s and writes it into status memory. The first write,
// and the first one after any failure, re-asserts the whole block
// including the device name.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	first := int(sw.plan.BaseSlot) * status.SlotsPerDevice
	if first+status.SlotsPerDevice-1 > 0xFFFF {
		return fmt.Errorf("status writer: slot %d is past the 16-bit address space", sw.plan.BaseSlot)
	}
	base := uint16(first)
	block := status.Encode(s, sw.plan.DeviceName)

	if sw.shadow == nil {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base, block); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.shadow = block
		return nil
	}

	var errs error
	for _, r := range changed(sw.shadow, block) {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, base+uint16(r.from), block[r.from:r.to]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("slots %d-%d: %w", r.from, r.to-1, err))
			continue
		}
		copy(sw.shadow[r.from:r.to], block[r.from:r.to])
	}

	if errs != nil {
		// endpoint state is uncertain: re-assert on the next call
		sw.shadow = nil
		return fmt.Errorf("status writer: %w", errs)
	}
	return nil
}
