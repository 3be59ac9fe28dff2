// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Source abstracts the register reads a poller needs.
type Source interface {
	Read(id string, count int) ([]uint32, error)
}

// Schedule is what a poller reads and how often.
type Schedule struct {
	Unit     string
	Interval time.Duration
	Spans    []Span
}

// Poller reads a fixed set of spans on a clock.
type Poller struct {
	sched Schedule
	src   Source
	now   func() time.Time
}

// New creates a poller. The schedule is copied and never changes.
func New(s Schedule, src Source) (*Poller, error) {
	switch {
	case s.Unit == "":
		return nil, errors.New("poller: unit id required")
	case s.Interval <= 0:
		return nil, errors.New("poller: interval must be > 0")
	case len(s.Spans) == 0:
		return nil, errors.New("poller: at least one span required")
	case src == nil:
		return nil, errors.New("poller: source required")
	}
	for _, sp := range s.Spans {
		if sp.Count <= 0 {
			return nil, fmt.Errorf("poller: %s: count must be > 0", sp.Register)
		}
	}

	s.Spans = append([]Span(nil), s.Spans...)
	return &Poller{sched: s, src: src, now: time.Now}, nil
}

// Unit returns the unit this poller serves.
func (p *Poller) Unit() string {
	return p.sched.Unit
}

// Interval returns the poll period.
func (p *Poller) Interval() time.Duration {
	return p.sched.Interval
}

// Poll reads every span once. The cycle either carries all samples or
// an error and none of them.
func (p *Poller) Poll(ctx context.Context) Cycle {
	c := Cycle{Unit: p.sched.Unit, Started: p.now()}
	samples := make([]Sample, 0, len(p.sched.Spans))

	fail := func(err error) Cycle {
		c.Err = err
		c.Elapsed = p.now().Sub(c.Started)
		return c
	}

	for _, sp := range p.sched.Spans {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		vals, err := p.src.Read(sp.Register, sp.Count)
		if err != nil {
			return fail(err)
		}
		if len(vals) != sp.Count {
			return fail(fmt.Errorf("poller: %s: got %d words, want %d", sp.Register, len(vals), sp.Count))
		}
		samples = append(samples, Sample{Register: sp.Register, Values: vals})
	}

	c.Samples = samples
	c.Elapsed = p.now().Sub(c.Started)
	return c
}
