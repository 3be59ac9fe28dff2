// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run polls once straight away and then on every tick, handing each
// cycle to out. Cycles never overlap: a slow consumer delays the next
// poll instead of queueing them. Returns when ctx is done.
func (p *Poller) Run(ctx context.Context, out chan<- Cycle) {
	ticker := time.NewTicker(p.sched.Interval)
	defer ticker.Stop()

	for {
		c := p.Poll(ctx)
		if ctx.Err() != nil {
			return
		}
		select {
		case out <- c:
		case <-ctx.Done():
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
