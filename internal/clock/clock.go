// Package clock treats the current time as an injected capability so that
// every timing guard in the core can be evaluated against a single observed
// value and advanced deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clock provides the observed current time for an operation. Implementations
// must be monotonically non-decreasing.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

// Now returns the current wall-clock time in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Manual is a clock advanced explicitly, for tests.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual builds a Manual clock starting at the given instant.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start.UTC()}
}

// Now returns the clock's current instant.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (m *Manual) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set jumps the clock to t if t is not earlier than the current instant.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Before(m.now) {
		return
	}
	m.now = t.UTC()
}
