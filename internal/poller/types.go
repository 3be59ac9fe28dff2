// internal/poller/types.go
package poller

import "time"

// Span is one register identifier and the number of words read from it.
type Span struct {
	Register string
	Count    int
}

// Sample holds the words read for one span.
type Sample struct {
	Register string
	Values   []uint32
}

// Cycle is everything one poll produced for a unit.
// Samples is empty whenever Err is set.
type Cycle struct {
	Unit    string
	Started time.Time
	Elapsed time.Duration

	Samples []Sample
	Err     error
}

// OK reports whether the cycle read every span.
func (c Cycle) OK() bool {
	return c.Err == nil
}

// Words counts the 32-bit words carried by the cycle.
func (c Cycle) Words() int {
	n := 0
	for _, s := range c.Samples {
		n += len(s.Values)
	}
	return n
}
