// cmd/asicreg/commands.go
package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/tamzrod/asicreg/internal/config"
	"github.com/tamzrod/asicreg/internal/fuse"
	"github.com/tamzrod/asicreg/internal/mac"
	"github.com/tamzrod/asicreg/internal/mirror"
	"github.com/tamzrod/asicreg/internal/perf"
	"github.com/tamzrod/asicreg/internal/regs"
	"github.com/tamzrod/asicreg/internal/regtree"
	"github.com/tamzrod/asicreg/internal/ring"
	"github.com/tamzrod/asicreg/internal/script"
	"github.com/tamzrod/asicreg/internal/translate"
)

// DefaultSearchMax caps reg search output.
const DefaultSearchMax = 10

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "fuse":
		return a.fuse()
	case "dr":
		return a.dr(rest)
	case "reg":
		return a.reg(ctx, rest)
	case "mac":
		return a.mac(rest)
	case "script":
		return a.script(rest)
	case "mirror":
		return a.mirror(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func want(args []string, min, max int, form string) error {
	if len(args) < min || len(args) > max {
		return fmt.Errorf("usage: %s", form)
	}
	return nil
}

// ---- fuse ----

func (a *app) fuseSource() (*regs.Accessor, fuse.Layout, uint32, error) {
	acc, err := a.accessor()
	if err != nil {
		return nil, fuse.Layout{}, 0, err
	}
	base := fuse.BaseOffset(acc.Tree(), a.cfg.Fuse.Path, a.cfg.Fuse.Offset)
	return acc, config.FuseLayout(a.cfg), base, nil
}

func (a *app) fuse() error {
	acc, layout, base, err := a.fuseSource()
	if err != nil {
		return err
	}

	rec, err := fuse.Read(acc, base, layout)
	if err != nil {
		return err
	}
	for _, v := range rec.Values {
		fmt.Fprintf(a.out, "%-24s: 0x%x\n", v.Field.Name, v.Value)
	}
	if raw, ok := rec.ChipID(); ok {
		fmt.Fprintf(a.out, "%-24s: %s\n", "wafer id", fuse.DecodeChipID(raw))
	}
	return nil
}

// ---- descriptor rings ----

func (a *app) dr(args []string) error {
	const form = "dr list | dr show <ring> | dr dump"
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", form)
	}

	if args[0] == "list" {
		if err := want(args, 1, 1, form); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%-21s %-6s\n", "NAME", "OFFSET")
		for _, e := range ring.NewCatalog(nil, a.cfg.Rings, a.log).List() {
			fmt.Fprintf(a.out, "%-21s 0x%06x\n", e.Name, e.Offset)
		}
		return nil
	}

	acc, err := a.accessor()
	if err != nil {
		return err
	}
	c := ring.NewCatalog(acc, a.cfg.Rings, a.log)

	switch args[0] {
	case "show":
		if err := want(args, 2, 2, "dr show <ring>"); err != nil {
			return err
		}
		rec, err := c.Show(args[1])
		if err != nil {
			return err
		}
		a.writeRing(rec)
		return nil

	case "dump":
		if err := want(args, 1, 1, form); err != nil {
			return err
		}
		all, err := c.DumpAll()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%-21s %-8s %-16s %-16s %6s %6s %-8s\n",
			"NAME", "CTRL", "BASE", "LIMIT", "HEAD", "TAIL", "STATUS")
		for _, d := range all {
			r := d.Record
			fmt.Fprintf(a.out, "%-21s %08x %016x %016x %6x %6x %08x\n",
				d.Name, r.Ctrl, r.Base(), r.Limit(), r.HeadPtr, r.TailPtr, r.Status)
			if d.Mismatch {
				fmt.Fprintf(a.out, "base->limit range doesn't match size of %d\n", r.Size)
			}
		}
		return nil
	}
	return fmt.Errorf("usage: %s", form)
}

func (a *app) writeRing(r ring.Record) {
	for _, f := range []struct {
		name string
		v    uint32
	}{
		{"ctrl", r.Ctrl},
		{"base_addr_low", r.BaseAddrLow},
		{"base_addr_high", r.BaseAddrHigh},
		{"limit_addr_low", r.LimitAddrLow},
		{"limit_addr_high", r.LimitAddrHigh},
		{"size", r.Size},
		{"head_ptr", r.HeadPtr},
		{"tail_ptr", r.TailPtr},
		{"ring_timeout", r.RingTimeout},
		{"data_timeout", r.DataTimeout},
		{"status", r.Status},
	} {
		fmt.Fprintf(a.out, "%s: %08x\n", f.name, f.v)
	}
}

// ---- registers ----

func (a *app) reg(ctx context.Context, args []string) error {
	const form = "reg read|write|list|search|perf ..."
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", form)
	}

	switch args[0] {
	case "read":
		return a.regRead(args[1:])
	case "write":
		return a.regWrite(args[1:])
	case "list":
		return a.regList(args[1:])
	case "search":
		return a.regSearch(args[1:])
	case "perf":
		return a.regPerf(ctx, args[1:])
	}
	return fmt.Errorf("usage: %s", form)
}

func (a *app) regRead(args []string) error {
	if err := want(args, 1, 2, "reg read <reg|offset> [n]"); err != nil {
		return err
	}

	count := 0
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid count %q", args[1])
		}
		count = n
	}

	acc, err := a.accessor()
	if err != nil {
		return err
	}
	t, err := acc.Resolve(args[0])
	if err != nil {
		return err
	}
	vals, err := acc.Read(args[0], count)
	if err != nil {
		return err
	}

	off := t.Offset
	for _, v := range vals {
		if len(vals) > 1 {
			fmt.Fprintf(a.out, "%x: ", off)
		}
		fmt.Fprintf(a.out, "%x\n", v)
		off += 4
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) regWrite(args []string) error {
	if err := want(args, 2, 2, "reg write <reg|offset> <val>"); err != nil {
		return err
	}
	val, err := regs.ParseValue(args[1])
	if err != nil {
		return err
	}

	acc, err := a.accessor()
	if err != nil {
		return err
	}
	return acc.Write(args[0], val)
}

func (a *app) regList(args []string) error {
	if err := want(args, 0, 1, "reg list [path]"); err != nil {
		return err
	}
	path := "."
	if len(args) == 1 {
		path = args[0]
	}

	tree, err := a.registerTree()
	if err != nil {
		return err
	}
	n, err := tree.Node(path)
	if err != nil {
		return err
	}
	for _, name := range tree.Children(n) {
		if !regtree.Hidden(name) {
			fmt.Fprintln(a.out, name)
		}
	}
	return nil
}

func (a *app) regSearch(args []string) error {
	fs := pflag.NewFlagSet("reg search", pflag.ContinueOnError)
	fs.SetOutput(a.out)
	limit := fs.IntP("max", "m", DefaultSearchMax, "maximum matches to print")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := want(fs.Args(), 1, 1, "reg search [-m max] <name>"); err != nil {
		return err
	}

	tree, err := a.registerTree()
	if err != nil {
		return err
	}
	res, err := tree.Search(fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	for _, p := range res.Matches {
		fmt.Fprintln(a.out, p)
	}
	if res.Truncated() {
		fmt.Fprintln(a.out, "...")
		fmt.Fprintf(a.out, "%d matches found\n", res.Total)
	}
	return nil
}

func (a *app) regPerf(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("reg perf", pflag.ContinueOnError)
	fs.SetOutput(a.out)
	n := fs.IntP("iterations", "n", a.cfg.Perf.Iterations, "transfers per bus and direction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := want(fs.Args(), 0, 0, "reg perf [-n iterations]"); err != nil {
		return err
	}

	acc, err := a.accessor()
	if err != nil {
		return err
	}

	buses := perf.DefaultBuses
	if len(a.cfg.Perf.Buses) > 0 {
		buses = make([]perf.Bus, 0, len(a.cfg.Perf.Buses))
		for _, b := range a.cfg.Perf.Buses {
			buses = append(buses, perf.Bus{Name: b.Name, Path: b.Path})
		}
	}
	targets := perf.Targets(acc.Tree(), buses, a.log)
	if len(targets) == 0 {
		return errors.New("perf: no bus register resolves in the register map")
	}

	pause := time.Duration(*a.cfg.Perf.PauseMs) * time.Millisecond
	results, err := perf.NewProber(acc, pause, a.log).Run(ctx, targets, *n)
	if err != nil {
		return err
	}

	printer := translate.Printer()
	perf.WriteHeader(a.out)
	for _, r := range results {
		perf.WriteResult(a.out, printer, r)
	}
	return nil
}

// ---- mac ----

func (a *app) mac(args []string) error {
	if len(args) == 0 || args[0] != "status" {
		return errors.New("usage: mac status [aux|1-32]")
	}
	if err := want(args[1:], 0, 1, "mac status [aux|1-32]"); err != nil {
		return err
	}

	arg := ""
	if len(args) == 2 {
		arg = args[1]
	}
	sel, err := mac.ParseSelector(arg)
	if err != nil {
		return err
	}

	acc, err := a.accessor()
	if err != nil {
		return err
	}

	switch {
	case sel.All:
		all, err := mac.ReadAll(acc)
		if err != nil {
			return err
		}
		mac.WriteAll(a.out, all)
	case sel.Aux:
		s, err := mac.ReadAux(acc)
		if err != nil {
			return err
		}
		mac.WriteAux(a.out, s)
	default:
		s, err := mac.ReadChannel(acc, sel.Mac)
		if err != nil {
			return err
		}
		mac.WriteChannel(a.out, s)
	}
	return nil
}

// ---- script ----

func (a *app) script(args []string) error {
	if err := want(args, 1, 1, "script <file>"); err != nil {
		return err
	}
	acc, layout, base, err := a.fuseSource()
	if err != nil {
		return err
	}
	_, err = script.NewRunner(acc, layout, base, a.out, a.log).Run(args[0], nil)
	return err
}

// ---- mirror ----

func (a *app) mirror(ctx context.Context) error {
	acc, err := a.accessor()
	if err != nil {
		return err
	}

	m, err := mirror.Build(a.cfg, acc, a.log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
