// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/asicreg/internal/bitfield"
	"github.com/tamzrod/asicreg/internal/fuse"
	"github.com/tamzrod/asicreg/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if cfg.WindowBytes < 0 || cfg.WindowBytes%4 != 0 {
		return fmt.Errorf("window_bytes %d must be a non-negative multiple of 4", cfg.WindowBytes)
	}
	if len(cfg.Fuse.Fields) > 0 {
		if err := FuseLayout(cfg).Validate(); err != nil {
			return err
		}
	} else if _, err := fuse.LayoutFor(cfg.Generation); err != nil {
		return err
	}
	if cfg.Fuse.Offset%4 != 0 {
		return fmt.Errorf("fuse.offset 0x%x is not 4-byte aligned", cfg.Fuse.Offset)
	}
	for name, off := range cfg.Rings {
		if name == "" {
			return fmt.Errorf("rings: empty ring name")
		}
		if off%4 != 0 {
			return fmt.Errorf("rings: %s offset 0x%x is not 4-byte aligned", name, off)
		}
	}

	// ------------------------------------------------------------
	// PERF
	// ------------------------------------------------------------

	if cfg.Perf.Iterations < 0 {
		return fmt.Errorf("perf.iterations must be >= 0")
	}
	if cfg.Perf.PauseMs != nil && *cfg.Perf.PauseMs < 0 {
		return fmt.Errorf("perf.pause_ms must be >= 0")
	}
	for _, b := range cfg.Perf.Buses {
		if b.Name == "" || b.Path == "" {
			return fmt.Errorf("perf.buses: name and path are required")
		}
	}

	return validateMirror(cfg.Mirror)
}

// FuseLayout returns the layout the fuse command uses: configured fields
// when present, else the generation's built-in table.
func FuseLayout(cfg *Config) fuse.Layout {
	if len(cfg.Fuse.Fields) == 0 {
		l, err := fuse.LayoutFor(cfg.Generation)
		if err != nil {
			return fuse.Tofino2
		}
		return l
	}

	gen := cfg.Generation
	if gen == "" {
		gen = DefaultGeneration
	}
	l := fuse.Layout{Generation: gen}
	for _, f := range cfg.Fuse.Fields {
		l.Fields = append(l.Fields, bitfield.Field{Name: f.Name, Start: f.Start, End: f.End})
	}
	return l
}

func validTransport(t string) bool {
	return t == "" || t == TransportModbus || t == TransportIngest
}

func validateMirror(m MirrorConfig) error {
	type span struct {
		start int
		end   int
		unit  string
	}

	ids := make(map[string]struct{})

	for _, u := range m.Units {
		if u.ID == "" {
			return fmt.Errorf("mirror: unit id required")
		}
		if _, dup := ids[u.ID]; dup {
			return fmt.Errorf("mirror: duplicate unit %q", u.ID)
		}
		ids[u.ID] = struct{}{}

		if len(u.Reads) == 0 {
			return fmt.Errorf("unit %q: at least one read required", u.ID)
		}
		for _, r := range u.Reads {
			if r.Register == "" {
				return fmt.Errorf("unit %q: read without register", u.ID)
			}
			if r.Count < 0 {
				return fmt.Errorf("unit %q: read %s: negative count", u.ID, r.Register)
			}
		}
		if u.Poll.IntervalMs < 0 {
			return fmt.Errorf("unit %q: poll.interval_ms must be >= 0", u.ID)
		}
		if len(u.Targets) == 0 && u.Status == nil {
			return fmt.Errorf("unit %q: no targets and no status block", u.ID)
		}
		for _, t := range u.Targets {
			if t.Endpoint == "" {
				return fmt.Errorf("unit %q: target endpoint required", u.ID)
			}
			if !validTransport(t.Transport) {
				return fmt.Errorf("unit %q: target %s: unknown transport %q", u.ID, t.Endpoint, t.Transport)
			}
		}

		// device_name sanity (ASCII only)
		if u.Status != nil {
			if u.Status.Endpoint == "" {
				return fmt.Errorf("unit %q: status endpoint required", u.ID)
			}
			if !validTransport(u.Status.Transport) {
				return fmt.Errorf("unit %q: status: unknown transport %q", u.ID, u.Status.Transport)
			}
			for i := 0; i < len(u.Status.DeviceName); i++ {
				if u.Status.DeviceName[i] > 0x7F {
					return fmt.Errorf(
						"unit %q: device_name must contain ASCII characters only",
						u.ID,
					)
				}
			}
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (OPT-IN)
	// ------------------------------------------------------------

	// key = endpoint | unit_id | slot
	statusOwner := make(map[string]string)

	for _, u := range m.Units {
		if u.Status == nil {
			continue
		}
		s := u.Status
		key := fmt.Sprintf("%s|%d|%d", s.Endpoint, s.UnitID, s.Slot)

		if prev, exists := statusOwner[key]; exists {
			return fmt.Errorf(
				"status slot collision: endpoint=%s unit_id=%d slot=%d used by units %q and %q",
				s.Endpoint,
				s.UnitID,
				s.Slot,
				prev,
				u.ID,
			)
		}
		statusOwner[key] = u.ID
	}

	// ------------------------------------------------------------
	// DESTINATION MEMORY GEOMETRY VALIDATION
	// ------------------------------------------------------------

	// key = endpoint | unit_id
	spans := make(map[string][]span)

	// status blocks own their register range like any target
	for _, u := range m.Units {
		if u.Status == nil {
			continue
		}
		s := u.Status
		start := int(s.Slot) * status.SlotsPerDevice
		end := start + status.SlotsPerDevice - 1

		if end > 0xFFFF {
			return fmt.Errorf(
				"unit %q: status slot %d: registers %d-%d exceed the 16-bit address space",
				u.ID, s.Slot, start, end,
			)
		}

		key := fmt.Sprintf("%s|%d", s.Endpoint, s.UnitID)
		spans[key] = append(spans[key], span{
			start: start,
			end:   end,
			unit:  u.ID + " status",
		})
	}

	for _, u := range m.Units {
		n := u.HoldingRegisters()

		for _, t := range u.Targets {
			start := int(t.Address)
			end := start + n - 1

			if end > 0xFFFF {
				return fmt.Errorf(
					"unit %q: target %s: registers %d-%d exceed the 16-bit address space",
					u.ID, t.Endpoint, start, end,
				)
			}

			key := fmt.Sprintf("%s|%d", t.Endpoint, t.UnitID)

			for _, s := range spans[key] {
				// overlap check (inclusive)
				if !(end < s.start || start > s.end) {
					return fmt.Errorf(
						"memory overlap: endpoint=%s unit_id=%d range=%d-%d overlaps with unit=%s range=%d-%d",
						t.Endpoint,
						t.UnitID,
						start,
						end,
						s.unit,
						s.start,
						s.end,
					)
				}
			}

			spans[key] = append(spans[key], span{
				start: start,
				end:   end,
				unit:  u.ID,
			})
		}
	}

	return nil
}
