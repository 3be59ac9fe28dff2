// internal/poller/locked.go
package poller

import "sync"

// LockedSource serializes reads so every poller shares one window
// with a single accessor at a time.
type LockedSource struct {
	mu  sync.Mutex
	src Source
}

// NewLockedSource wraps src.
func NewLockedSource(src Source) *LockedSource {
	return &LockedSource{src: src}
}

func (l *LockedSource) Read(id string, count int) ([]uint32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Read(id, count)
}
