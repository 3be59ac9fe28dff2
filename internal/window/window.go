// internal/window/window.go
package window

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// DefaultLength is the size of the register BAR mapped for the ASIC.
const DefaultLength = 72 * 1024 * 1024

var (
	// ErrAlignment is returned for offsets that are not 4-byte aligned.
	ErrAlignment = errors.New("window: unaligned 4-byte access")

	// ErrBounds is returned when a 4-byte transfer would leave the window.
	ErrBounds = errors.New("window: offset outside the mapped range")
)

// MappingError reports a failure to open or map the device.
// Msg carries the platform's error text verbatim.
type MappingError struct {
	Path string
	Msg  string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("failed to map %s: %s", e.Path, e.Msg)
}

// Mapper acquires a fixed-length byte window given a device path.
type Mapper interface {
	Map(path string, length int) ([]byte, error)
}

// Window is a bounds- and alignment-checked view of a mapped register BAR.
//
// It performs no locking. One owner per process.
type Window struct {
	mem     []byte
	release func() error
}

// Open maps length bytes of the device at path through m.
func Open(m Mapper, path string, length int) (*Window, error) {
	if length <= 0 {
		return nil, &MappingError{Path: path, Msg: fmt.Sprintf("invalid window length %d", length)}
	}

	mem, err := m.Map(path, length)
	if err != nil {
		var me *MappingError
		if errors.As(err, &me) {
			return nil, me
		}
		return nil, &MappingError{Path: path, Msg: err.Error()}
	}
	if len(mem) < length {
		return nil, &MappingError{
			Path: path,
			Msg:  fmt.Sprintf("mapped %d bytes, wanted %d", len(mem), length),
		}
	}

	w := New(mem[:length])
	if r, ok := m.(releaser); ok {
		w.release = func() error { return r.Unmap(mem) }
	}
	return w, nil
}

type releaser interface {
	Unmap(mem []byte) error
}

// New wraps an already-mapped region. mem must be 4-byte aligned.
func New(mem []byte) *Window {
	return &Window{mem: mem}
}

// NewMemory returns a window over zeroed, word-aligned heap memory.
func NewMemory(length int) *Window {
	words := make([]uint32, (length+3)/4)
	if len(words) == 0 {
		return New(nil)
	}
	mem := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)
	return New(mem[:length])
}

// Len is the window length in bytes.
func (w *Window) Len() int {
	return len(w.mem)
}

// Close releases the mapping if the mapper supports it.
// The window must not be used afterwards.
func (w *Window) Close() error {
	if w == nil || w.release == nil {
		return nil
	}
	err := w.release()
	w.release = nil
	w.mem = nil
	return err
}

// check rejects any out-of-contract offset before memory is touched.
func (w *Window) check(offset uint32) (*uint32, error) {
	if offset&0x3 != 0 {
		return nil, fmt.Errorf("%w at 0x%x", ErrAlignment, offset)
	}
	if uint64(offset)+4 > uint64(len(w.mem)) {
		return nil, fmt.Errorf("%w: 0x%x (window is 0x%x bytes)", ErrBounds, offset, len(w.mem))
	}
	return (*uint32)(unsafe.Pointer(&w.mem[offset])), nil
}

// Read4 reads one 32-bit register at offset.
func (w *Window) Read4(offset uint32) (uint32, error) {
	p, err := w.check(offset)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32(p), nil
}

// Write4 writes one 32-bit register at offset.
// A write may have device side effects beyond the register itself.
func (w *Window) Write4(offset, value uint32) error {
	p, err := w.check(offset)
	if err != nil {
		return err
	}
	atomic.StoreUint32(p, value)
	return nil
}
