// internal/perf/perf.go
package perf

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/message"
)

// BadRead is what a dead bus returns for every read.
const BadRead uint32 = 0xffffffff

// DefaultPause separates the read and write phases of each bus.
const DefaultPause = time.Second

// Bus is one register bus probed through a scratch register.
type Bus struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// DefaultBuses are the scratch registers reachable on each internal bus.
var DefaultBuses = []Bus{
	{Name: "host", Path: "device_select.pcie_bar01_regs.scratch_reg.0"},
	{Name: "cbus", Path: "device_select.lfltr.0.ctrl.scratch.0"},
	{Name: "mbus", Path: "eth100g_regs.eth100g_reg.scratch.0"},
	{Name: "pbus", Path: "pipes.0.mau.0.dp.mau_scratch"},
}

// Resolver maps a register path to its offset.
type Resolver interface {
	Offset(path string) (uint32, error)
}

// Transport is the word access being timed.
type Transport interface {
	Read4(offset uint32) (uint32, error)
	Write4(offset, value uint32) error
}

// Result is the timing of one bus.
type Result struct {
	Bus        string
	Offset     uint32
	Iterations int
	Read       time.Duration
	Write      time.Duration
	BadReads   int
}

// PerRead is the mean read latency.
func (r Result) PerRead() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.Read / time.Duration(r.Iterations)
}

// PerWrite is the mean write latency.
func (r Result) PerWrite() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.Write / time.Duration(r.Iterations)
}

// Prober times repeated transfers against each bus.
type Prober struct {
	t     Transport
	log   *zap.Logger
	pause time.Duration
	now   func() time.Time
}

// NewProber builds a prober. A negative pause uses DefaultPause.
func NewProber(t Transport, pause time.Duration, log *zap.Logger) *Prober {
	if pause < 0 {
		pause = DefaultPause
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Prober{t: t, log: log, pause: pause, now: time.Now}
}

// Targets resolves buses to offsets. Buses whose path does not resolve
// are skipped.
func Targets(r Resolver, buses []Bus, log *zap.Logger) []Result {
	if log == nil {
		log = zap.NewNop()
	}
	out := make([]Result, 0, len(buses))
	for _, b := range buses {
		off, err := r.Offset(b.Path)
		if err != nil {
			log.Debug("bus skipped", zap.String("bus", b.Name), zap.Error(err))
			continue
		}
		out = append(out, Result{Bus: b.Name, Offset: off})
	}
	return out
}

func (p *Prober) wait(ctx context.Context) error {
	if p.pause == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run times iterations reads then iterations zero writes per target.
// Any transfer error aborts the run.
func (p *Prober) Run(ctx context.Context, targets []Result, iterations int) ([]Result, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("perf: iterations must be positive")
	}

	out := make([]Result, 0, len(targets))
	for _, tg := range targets {
		res := Result{Bus: tg.Bus, Offset: tg.Offset, Iterations: iterations}

		if err := p.wait(ctx); err != nil {
			return out, err
		}
		start := p.now()
		for i := 0; i < iterations; i++ {
			v, err := p.t.Read4(tg.Offset)
			if err != nil {
				return out, fmt.Errorf("perf: %s read: %w", tg.Bus, err)
			}
			if v == BadRead {
				res.BadReads++
			}
		}
		res.Read = p.now().Sub(start)
		if res.BadReads > 0 {
			p.log.Warn("bad read",
				zap.String("bus", tg.Bus),
				zap.Uint32("offset", tg.Offset),
				zap.Int("count", res.BadReads),
			)
		}

		if err := p.wait(ctx); err != nil {
			return out, err
		}
		// untimed warm-up write
		if err := p.t.Write4(tg.Offset, 0); err != nil {
			return out, fmt.Errorf("perf: %s write: %w", tg.Bus, err)
		}
		start = p.now()
		for i := 0; i < iterations; i++ {
			if err := p.t.Write4(tg.Offset, 0); err != nil {
				return out, fmt.Errorf("perf: %s write: %w", tg.Bus, err)
			}
		}
		res.Write = p.now().Sub(start)

		p.log.Debug("bus timed",
			zap.String("bus", tg.Bus),
			zap.Duration("read", res.Read),
			zap.Duration("write", res.Write),
		)
		out = append(out, res)
	}
	return out, nil
}

// WriteHeader prints the column titles.
func WriteHeader(w io.Writer) {
	fmt.Fprintf(w, "%5s  %8s %12s %8s    %12s  %8s\n",
		"bus", "addr", "read ns", "ns/read", "write ns", "ns/write")
}

// WriteResult prints one bus row. Nanosecond counts go through p for
// locale digit grouping.
func WriteResult(w io.Writer, p *message.Printer, r Result) {
	fmt.Fprintf(w, "%5s  %8x %12s %8s    %12s  %8s\n",
		r.Bus, r.Offset,
		p.Sprintf("%d", r.Read.Nanoseconds()),
		p.Sprintf("%d", r.PerRead().Nanoseconds()),
		p.Sprintf("%d", r.Write.Nanoseconds()),
		p.Sprintf("%d", r.PerWrite().Nanoseconds()),
	)
}
