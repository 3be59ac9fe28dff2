// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/asicreg/internal/config"
)

// Build turns one mirror unit's reads into a poller on a shared source.
func Build(u cfg.UnitConfig, src Source) (*Poller, error) {
	spans := make([]Span, len(u.Reads))
	for i, r := range u.Reads {
		spans[i] = Span{Register: r.Register, Count: r.Words()}
	}

	return New(Schedule{
		Unit:     u.ID,
		Interval: time.Duration(u.Poll.IntervalMs) * time.Millisecond,
		Spans:    spans,
	}, src)
}
