// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the whole tool configuration. Every section is optional.
type Config struct {
	Device      string            `yaml:"device"`
	WindowBytes int               `yaml:"window_bytes"`
	Generation  string            `yaml:"generation"`
	RegisterMap string            `yaml:"register_map"`
	Rings       map[string]uint32 `yaml:"rings"`
	Fuse        FuseConfig        `yaml:"fuse"`
	Perf        PerfConfig        `yaml:"perf"`
	Mirror      MirrorConfig      `yaml:"mirror"`
}

// ---- FUSE ----

type FuseConfig struct {
	Path   string `yaml:"path"`   // register path of the first fuse word
	Offset uint32 `yaml:"offset"` // fallback when Path does not resolve

	// Fields replaces the generation's built-in layout when set.
	Fields []FieldConfig `yaml:"fields"`
}

type FieldConfig struct {
	Name  string `yaml:"name"`
	Start uint   `yaml:"start"`
	End   uint   `yaml:"end"`
}

// ---- PERF ----

type PerfConfig struct {
	Iterations int         `yaml:"iterations"`
	PauseMs    *int        `yaml:"pause_ms"`
	Buses      []BusConfig `yaml:"buses"`
}

type BusConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ---- MIRROR ----

type MirrorConfig struct {
	MetricsListen string       `yaml:"metrics_listen"`
	Units         []UnitConfig `yaml:"units"`
}

type UnitConfig struct {
	ID      string         `yaml:"id"`
	Reads   []ReadConfig   `yaml:"reads"`
	Targets []TargetConfig `yaml:"targets"`
	Poll    PollConfig     `yaml:"poll"`

	// Device status block (optional, opt-in)
	Status *StatusConfig `yaml:"status"`
}

// ReadConfig is one register identifier and its word count.
type ReadConfig struct {
	Register string `yaml:"register"`
	Count    int    `yaml:"count"` // 0 => 1 word
}

// Words is the effective word count.
func (r ReadConfig) Words() int {
	if r.Count <= 0 {
		return 1
	}
	return r.Count
}

// Transport names.
const (
	TransportModbus = "modbus"
	TransportIngest = "ingest"
)

type TargetConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Transport string `yaml:"transport"` // modbus (default) | ingest
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"` // first holding register
	TimeoutMs int    `yaml:"timeout_ms"`
}

type StatusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Transport  string `yaml:"transport"`
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// HoldingRegisters is the span one poll cycle occupies on a target.
// Each 32-bit word takes two 16-bit registers.
func (u UnitConfig) HoldingRegisters() int {
	n := 0
	for _, r := range u.Reads {
		n += 2 * r.Words()
	}
	return n
}

// ---- LOAD ----

// Load reads a YAML config file. An empty path yields the zero Config.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML, rejecting unknown keys.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}
