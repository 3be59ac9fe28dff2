// internal/status/tracker.go
package status

// Snapshot is the unit state the status block carries.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
	Polls          uint32
}

// Healthy reports whether the last poll succeeded.
func (s Snapshot) Healthy() bool {
	return s.Health == HealthOK
}

// Tracker owns the per-unit status snapshot.
// Observe folds in poll outcomes; Tick advances seconds_in_error at 1 Hz.
type Tracker struct {
	snap Snapshot
}

// NewTracker starts in HealthUnknown.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}

// Observe records one poll outcome and reports whether the
// delivered block changed.
func (t *Tracker) Observe(err error) (Snapshot, bool) {
	if err == nil {
		// the poll counter moves, so the block always changes
		t.snap.Polls++
		t.snap.Health = HealthOK
		t.snap.LastErrorCode = ErrorNone
		t.snap.SecondsInError = 0
		return t.snap, true
	}

	changed := false

	if t.snap.Health != HealthError {
		t.snap.Health = HealthError
		changed = true
	}
	if code := ErrorCode(err); t.snap.LastErrorCode != code {
		t.snap.LastErrorCode = code
		changed = true
	}
	// seconds_in_error only moves on Tick
	return t.snap, changed
}

// Tick advances seconds_in_error while in error. It saturates at 65535.
func (t *Tracker) Tick() (Snapshot, bool) {
	if t.snap.Health != HealthError || t.snap.SecondsInError == 0xFFFF {
		return t.snap, false
	}
	t.snap.SecondsInError++
	return t.snap, true
}
