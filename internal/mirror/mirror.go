// internal/mirror/mirror.go
package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/asicreg/internal/config"
	"github.com/tamzrod/asicreg/internal/metrics"
	"github.com/tamzrod/asicreg/internal/poller"
	"github.com/tamzrod/asicreg/internal/status"
	"github.com/tamzrod/asicreg/internal/writer"
)

// Unit is one fully wired poll -> write pipeline.
type Unit struct {
	ID     string
	Poller *poller.Poller
	Writer writer.Writer
	Status writer.StatusWriter // nil => status disabled
}

// Mirror runs every unit until its context ends.
type Mirror struct {
	RunID      uuid.UUID
	Generation string
	Listen     string // metrics address, empty => no HTTP server

	units  []Unit
	log    *zap.Logger
	closer func() error
}

// Build wires every configured unit onto one shared register client.
// Config must already be validated and normalized.
func Build(cfg *config.Config, client poller.Source, log *zap.Logger) (*Mirror, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(cfg.Mirror.Units) == 0 {
		return nil, errors.New("mirror: no units configured")
	}

	shared := poller.NewLockedSource(client)
	m := &Mirror{
		RunID:      uuid.New(),
		Generation: cfg.Generation,
		Listen:     cfg.Mirror.MetricsListen,
		log:        log,
	}

	var closers []func() error
	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for _, u := range cfg.Mirror.Units {
		p, err := poller.Build(u, shared)
		if err != nil {
			_ = closeAll()
			return nil, fmt.Errorf("poller build failed (unit=%s): %w", u.ID, err)
		}

		plan, err := writer.BuildPlan(u)
		if err != nil {
			_ = closeAll()
			return nil, fmt.Errorf("writer plan failed (unit=%s): %w", u.ID, err)
		}

		clients, closeWriters, err := writer.BuildEndpointClients(u)
		if err != nil {
			_ = closeAll()
			return nil, fmt.Errorf("writer clients failed (unit=%s): %w", u.ID, err)
		}
		closers = append(closers, closeWriters)

		unit := Unit{ID: u.ID, Poller: p, Writer: writer.New(plan, clients)}
		if sw, ok := writer.NewDeviceStatusWriter(plan, clients); ok {
			unit.Status = sw
		}
		m.units = append(m.units, unit)
	}

	m.closer = closeAll
	return m, nil
}

// New builds a mirror from already wired units.
func New(units []Unit, log *zap.Logger) *Mirror {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mirror{RunID: uuid.New(), units: units, log: log}
}

// Units returns the wired units.
func (m *Mirror) Units() []Unit {
	return m.units
}

// Close releases every endpoint connection.
func (m *Mirror) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer()
}

// Run blocks until ctx is cancelled or the metrics server fails.
func (m *Mirror) Run(ctx context.Context) error {
	m.log.Info("mirror starting",
		zap.String("run_id", m.RunID.String()),
		zap.Int("units", len(m.units)),
	)
	metrics.RunInfo.WithLabelValues(m.RunID.String(), m.Generation).Set(1)

	g, ctx := errgroup.WithContext(ctx)

	for _, u := range m.units {
		u := u
		out := make(chan poller.Cycle)

		// poller producer
		g.Go(func() error {
			u.Poller.Run(ctx, out)
			return nil
		})

		// orchestrator (runner-owned state + 1Hz seconds ticker)
		g.Go(func() error {
			secTicker := time.NewTicker(time.Second)
			defer secTicker.Stop()
			m.runUnit(ctx, u, out, secTicker.C)
			return nil
		})
	}

	if m.Listen != "" {
		srv := &http.Server{Addr: m.Listen, Handler: m.mux()}

		g.Go(func() error {
			m.log.Info("metrics listening", zap.String("addr", m.Listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("mirror: metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdown)
		})
	}

	err := g.Wait()
	m.log.Info("mirror stopped", zap.String("run_id", m.RunID.String()))
	return err
}

func (m *Mirror) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// runUnit delivers poll results and keeps the status block current.
func (m *Mirror) runUnit(ctx context.Context, u Unit, in <-chan poller.Cycle, tick <-chan time.Time) {
	log := m.log.With(zap.String("unit", u.ID))
	tracker := status.NewTracker()

	deliver := func(s status.Snapshot, changed bool, what string) {
		metrics.MirrorHealth.WithLabelValues(u.ID).Set(float64(s.Health))
		if u.Status == nil || !changed {
			return
		}
		if err := u.Status.WriteStatus(s); err != nil {
			log.Warn("status write failed", zap.String("on", what), zap.Error(err))
		}
	}

	// Full block write on start (identity re-assert) if enabled.
	deliver(tracker.Snapshot(), true, "start")

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			metrics.MirrorPollDuration.WithLabelValues(u.ID).Observe(res.Elapsed.Seconds())

			if res.Err != nil {
				metrics.MirrorPollsTotal.WithLabelValues(u.ID, "error").Inc()
				log.Warn("poll failed", zap.Error(res.Err))
			} else {
				metrics.MirrorPollsTotal.WithLabelValues(u.ID, "ok").Inc()
				for _, b := range res.Samples {
					metrics.ObserveWords(u.ID, b.Register, b.Values)
				}
			}

			// --- data delivery ---
			if err := u.Writer.Write(res); err != nil {
				metrics.MirrorWriteErrorsTotal.WithLabelValues(u.ID).Inc()
				log.Warn("writer error", zap.Error(err))
			}

			// --- status update (device-level truth) ---
			s, changed := tracker.Observe(res.Err)
			deliver(s, changed, "poll")

		case <-tick:
			s, changed := tracker.Tick()
			deliver(s, changed, "tick")
		}
	}
}
