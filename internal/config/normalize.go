// internal/config/normalize.go
package config

import (
	"github.com/tamzrod/asicreg/internal/fuse"
	"github.com/tamzrod/asicreg/internal/window"
)

// Defaults applied by Normalize.
const (
	DefaultGeneration     = "tofino2"
	DefaultPerfIterations = 10000
	DefaultPerfPauseMs    = 1000
	DefaultIntervalMs     = 1000
	DefaultTimeoutMs      = 1000
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.WindowBytes == 0 {
		cfg.WindowBytes = window.DefaultLength
	}
	if cfg.Generation == "" {
		cfg.Generation = DefaultGeneration
	}
	if cfg.Fuse.Offset == 0 {
		cfg.Fuse.Offset = fuse.DefaultOffset
	}

	if cfg.Perf.Iterations == 0 {
		cfg.Perf.Iterations = DefaultPerfIterations
	}
	if cfg.Perf.PauseMs == nil {
		ms := DefaultPerfPauseMs
		cfg.Perf.PauseMs = &ms
	}

	for ui := range cfg.Mirror.Units {
		u := &cfg.Mirror.Units[ui]

		if u.Poll.IntervalMs == 0 {
			u.Poll.IntervalMs = DefaultIntervalMs
		}

		for ti := range u.Targets {
			t := &u.Targets[ti]
			if t.Transport == "" {
				t.Transport = TransportModbus
			}
			if t.TimeoutMs == 0 {
				t.TimeoutMs = DefaultTimeoutMs
			}
		}

		// ------------------------------------------------------------
		// DEVICE STATUS BLOCK NORMALIZATION (OPT-IN)
		// ------------------------------------------------------------

		if u.Status == nil {
			continue
		}
		if u.Status.Transport == "" {
			u.Status.Transport = TransportModbus
		}
		if u.Status.TimeoutMs == 0 {
			u.Status.TimeoutMs = DefaultTimeoutMs
		}

		// ASCII already validated; keep at most 16 characters.
		if len(u.Status.DeviceName) > 16 {
			u.Status.DeviceName = u.Status.DeviceName[:16]
		}
	}
}
