// internal/script/script.go
package script

import (
	"fmt"
	"io"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"

	"github.com/tamzrod/asicreg/internal/bitfield"
	"github.com/tamzrod/asicreg/internal/fuse"
)

// Registers is the register access exposed to scripts.
type Registers interface {
	Read(id string, count int) ([]uint32, error)
	Write(id string, value uint32) error
	Read4(offset uint32) (uint32, error)
}

// Runner executes Starlark register scripts.
//
// Builtins:
//
//	read(id, n=0)            list of words; n=0 uses the register's size
//	write(id, value)         one word
//	bits(words, start, end)  inclusive bit range of a word list
//	fuse()                   dict of decoded fuse fields
//	chip_id(raw)             wafer identity string
//
// id is a register path or an offset (string literal or int).
type Runner struct {
	regs       Registers
	layout     fuse.Layout
	fuseOffset uint32
	out        io.Writer
	log        *zap.Logger
}

// NewRunner builds a runner. print() goes to out.
func NewRunner(regs Registers, layout fuse.Layout, fuseOffset uint32, out io.Writer, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{regs: regs, layout: layout, fuseOffset: fuseOffset, out: out, log: log}
}

// Run executes src (a file name when src is nil) and returns its globals.
func (r *Runner) Run(filename string, src any) (starlark.StringDict, error) {
	thread := &starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(r.out, msg)
		},
	}

	opts := syntax.FileOptions{}
	globals, err := starlark.ExecFileOptions(&opts, thread, filename, src, r.builtins())
	if err != nil {
		if ee, ok := err.(*starlark.EvalError); ok {
			r.log.Debug("script failed", zap.String("backtrace", ee.Backtrace()))
		}
		return nil, fmt.Errorf("script: %w", err)
	}
	return globals, nil
}

func (r *Runner) builtins() starlark.StringDict {
	return starlark.StringDict{
		"read":    starlark.NewBuiltin("read", r.read),
		"write":   starlark.NewBuiltin("write", r.write),
		"bits":    starlark.NewBuiltin("bits", bits),
		"fuse":    starlark.NewBuiltin("fuse", r.fuse),
		"chip_id": starlark.NewBuiltin("chip_id", chipID),
	}
}

// ---- conversions ----

func identifier(v starlark.Value) (string, error) {
	switch x := v.(type) {
	case starlark.String:
		return string(x), nil
	case starlark.Int:
		off, err := word(x)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("0x%x", off), nil
	}
	return "", fmt.Errorf("id must be a string or int, got %s", v.Type())
}

func word(v starlark.Int) (uint32, error) {
	u, ok := v.Uint64()
	if !ok || u > 0xffffffff {
		return 0, fmt.Errorf("%s does not fit in 32 bits", v)
	}
	return uint32(u), nil
}

func wordList(words []uint32) *starlark.List {
	elems := make([]starlark.Value, 0, len(words))
	for _, w := range words {
		elems = append(elems, starlark.MakeUint64(uint64(w)))
	}
	return starlark.NewList(elems)
}

// ---- builtins ----

func (r *Runner) read(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var idv starlark.Value
	n := 0
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "id", &idv, "n?", &n); err != nil {
		return nil, err
	}
	id, err := identifier(idv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	words, err := r.regs.Read(id, n)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return wordList(words), nil
}

func (r *Runner) write(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var idv starlark.Value
	var val starlark.Int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "id", &idv, "value", &val); err != nil {
		return nil, err
	}
	id, err := identifier(idv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	v, err := word(val)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if err := r.regs.Write(id, v); err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.None, nil
}

func bits(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var list *starlark.List
	var start, end int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "words", &list, "start", &start, "end", &end); err != nil {
		return nil, err
	}
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("%s: negative bit index", b.Name())
	}

	words := make([]uint32, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		x, ok := list.Index(i).(starlark.Int)
		if !ok {
			return nil, fmt.Errorf("%s: words[%d] is %s, want int", b.Name(), i, list.Index(i).Type())
		}
		w, err := word(x)
		if err != nil {
			return nil, fmt.Errorf("%s: words[%d]: %w", b.Name(), i, err)
		}
		words = append(words, w)
	}

	v, err := bitfield.Extract(words, uint(start), uint(end))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.MakeUint64(v), nil
}

func (r *Runner) fuse(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	rec, err := fuse.Read(r.regs, r.fuseOffset, r.layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}

	d := starlark.NewDict(len(rec.Values))
	for _, v := range rec.Values {
		if err := d.SetKey(starlark.String(v.Field.Name), starlark.MakeUint64(v.Value)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func chipID(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var raw starlark.Int
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "raw", &raw); err != nil {
		return nil, err
	}
	u, ok := raw.Uint64()
	if !ok {
		return nil, fmt.Errorf("%s: %s does not fit in 64 bits", b.Name(), raw)
	}
	return starlark.String(fuse.DecodeChipID(u).String()), nil
}
