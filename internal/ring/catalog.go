// internal/ring/catalog.go
package ring

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tamzrod/asicreg/internal/regs"
)

// ErrNotFound is returned for a ring name missing from the table.
var ErrNotFound = errors.New("no such DR")

// Field offsets inside a ring's control/status block.
const (
	offCtrl          = 0x00
	offBaseAddrLow   = 0x04
	offBaseAddrHigh  = 0x08
	offLimitAddrLow  = 0x0c
	offLimitAddrHigh = 0x10
	offSize          = 0x14
	offHeadPtr       = 0x18
	offTailPtr       = 0x1c
	offRingTimeout   = 0x20
	offDataTimeout   = 0x24
	offStatus        = 0x28
)

// Record is one descriptor ring control/status block.
type Record struct {
	Ctrl          uint32
	BaseAddrLow   uint32
	BaseAddrHigh  uint32
	LimitAddrLow  uint32
	LimitAddrHigh uint32
	Size          uint32
	HeadPtr       uint32
	TailPtr       uint32
	RingTimeout   uint32
	DataTimeout   uint32
	Status        uint32
}

// Base is the 64-bit ring base address.
func (r Record) Base() uint64 {
	return uint64(r.BaseAddrHigh)<<32 | uint64(r.BaseAddrLow)
}

// Limit is the 64-bit ring limit address.
func (r Record) Limit() uint64 {
	return uint64(r.LimitAddrHigh)<<32 | uint64(r.LimitAddrLow)
}

// Consistent reports whether limit - base == size.
func (r Record) Consistent() bool {
	return r.Limit()-r.Base() == uint64(r.Size)
}

// DumpEntry is one ring of a full dump.
// Mismatch is advisory: the base->limit range disagrees with size.
type DumpEntry struct {
	Entry
	Record   Record
	Mismatch bool
}

// Catalog reads descriptor rings through a fixed name->offset table.
type Catalog struct {
	r       regs.WordReader
	entries []Entry
	byName  map[string]uint32
	log     *zap.Logger
}

// NewCatalog builds a catalog over table. A nil table uses DefaultTable.
func NewCatalog(r regs.WordReader, table map[string]uint32, log *zap.Logger) *Catalog {
	if table == nil {
		table = DefaultTable()
	}
	if log == nil {
		log = zap.NewNop()
	}

	byName := make(map[string]uint32, len(table))
	for k, v := range table {
		byName[k] = v
	}

	return &Catalog{
		r:       r,
		entries: sorted(byName),
		byName:  byName,
		log:     log,
	}
}

// List returns every ring sorted by name.
func (c *Catalog) List() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Read reads the 11-word block at offset.
// The words are read individually; the snapshot is not atomic.
func (c *Catalog) Read(offset uint32) (Record, error) {
	var rec Record
	targets := [...]struct {
		off uint32
		dst *uint32
	}{
		{offCtrl, &rec.Ctrl},
		{offBaseAddrLow, &rec.BaseAddrLow},
		{offBaseAddrHigh, &rec.BaseAddrHigh},
		{offLimitAddrLow, &rec.LimitAddrLow},
		{offLimitAddrHigh, &rec.LimitAddrHigh},
		{offSize, &rec.Size},
		{offHeadPtr, &rec.HeadPtr},
		{offTailPtr, &rec.TailPtr},
		{offRingTimeout, &rec.RingTimeout},
		{offDataTimeout, &rec.DataTimeout},
		{offStatus, &rec.Status},
	}

	for _, t := range targets {
		v, err := c.r.Read4(offset + t.off)
		if err != nil {
			return Record{}, err
		}
		*t.dst = v
	}
	return rec, nil
}

// Show reads the ring called name.
func (c *Catalog) Show(name string) (Record, error) {
	off, ok := c.byName[name]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c.Read(off)
}

// DumpAll reads every ring in name order.
// A read failure aborts the dump; a size mismatch is logged and flagged.
func (c *Catalog) DumpAll() ([]DumpEntry, error) {
	out := make([]DumpEntry, 0, len(c.entries))
	for _, e := range c.entries {
		rec, err := c.Read(e.Offset)
		if err != nil {
			return nil, fmt.Errorf("dr %s: %w", e.Name, err)
		}

		d := DumpEntry{Entry: e, Record: rec, Mismatch: !rec.Consistent()}
		if d.Mismatch {
			c.log.Warn("base->limit range doesn't match size",
				zap.String("dr", e.Name),
				zap.Uint64("base", rec.Base()),
				zap.Uint64("limit", rec.Limit()),
				zap.Uint32("size", rec.Size),
			)
		}
		out = append(out, d)
	}
	return out, nil
}
