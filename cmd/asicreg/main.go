// cmd/asicreg/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tamzrod/asicreg/internal/config"
	"github.com/tamzrod/asicreg/internal/regs"
	"github.com/tamzrod/asicreg/internal/regtree"
	"github.com/tamzrod/asicreg/internal/window"
)

// DeviceEnv overrides the device path from the config file.
const DeviceEnv = "ASICREG_DEVICE"

const usage = `usage: asicreg [flags] <command> [args]

commands:
  fuse                         dump the content of the fuse registers
  dr list                      list the descriptor rings and their offsets
  dr show <ring>               show the register values for one descriptor ring
  dr dump                      dump summary information for all descriptor rings
  reg read <reg|offset> [n]    read the contents of a register
  reg write <reg|offset> <val> modify the contents of a register
  reg list [path]              list the children of a register path
  reg search [-m max] <name>   search for registers by name
  reg perf [-n iterations]     time register reads and writes on each bus
  mac status [aux|1-32]        show the per-channel state for one or all macs
  script <file>                run a register script
  mirror                       mirror registers onto modbus endpoints

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without the process exit.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("asicreg", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)

	cfgPath := fs.StringP("config", "c", "", "configuration file (yaml)")
	device := fs.StringP("device", "d", "", "device node to map (mem: for an in-process window)")
	mapPath := fs.String("map", "", "register map file (overrides register_map)")
	verbose := fs.BoolP("verbose", "v", false, "debug logging")

	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	log := newLogger(stderr, *verbose)
	defer func() { _ = log.Sync() }()
	restore := zap.ReplaceGlobals(log)
	defer restore()

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "asicreg: config load failed: %v\n", err)
		return 1
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "asicreg: config validation failed: %v\n", err)
		return 1
	}
	config.Normalize(cfg)

	switch {
	case *device != "":
		cfg.Device = *device
	case os.Getenv(DeviceEnv) != "":
		cfg.Device = os.Getenv(DeviceEnv)
	}
	if *mapPath != "" {
		cfg.RegisterMap = *mapPath
	}

	a := &app{cfg: cfg, out: stdout, log: log}
	defer a.close()

	if err := a.dispatch(ctx, fs.Args()); err != nil {
		fmt.Fprintf(stderr, "asicreg: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}

// ---- app ----

// app holds what the commands share. The tree and the window are opened
// on first use so map-only commands work without a device.
type app struct {
	cfg *config.Config
	out io.Writer
	log *zap.Logger

	tree *regtree.Tree
	win  *window.Window
	acc  *regs.Accessor
}

func (a *app) registerTree() (*regtree.Tree, error) {
	if a.tree != nil {
		return a.tree, nil
	}
	if a.cfg.RegisterMap == "" {
		a.tree = regtree.Empty()
		return a.tree, nil
	}

	t, err := regtree.LoadFile(a.cfg.RegisterMap)
	if err != nil {
		return nil, err
	}
	a.log.Debug("register map loaded", zap.String("path", a.cfg.RegisterMap))
	a.tree = t
	return t, nil
}

func (a *app) accessor() (*regs.Accessor, error) {
	if a.acc != nil {
		return a.acc, nil
	}

	tree, err := a.registerTree()
	if err != nil {
		return nil, err
	}

	if a.win == nil {
		dev := a.cfg.Device
		if dev == "" {
			return nil, fmt.Errorf("no device: use --device, %s or device in the config", DeviceEnv)
		}
		w, err := window.Open(window.MapperFor(dev), dev, a.cfg.WindowBytes)
		if err != nil {
			return nil, err
		}
		a.log.Debug("window mapped",
			zap.String("device", dev),
			zap.Int("bytes", w.Len()),
		)
		a.win = w
	}

	a.acc = regs.New(a.win, tree)
	return a.acc, nil
}

func (a *app) close() {
	if a.win == nil {
		return
	}
	if err := a.win.Close(); err != nil {
		a.log.Warn("window close failed", zap.Error(err))
	}
}
