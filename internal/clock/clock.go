// Package clock provides the single source of "now" for the service so that
// day boundaries and rate windows can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// DayLayout is the calendar-day key format stored on daily artifacts.
const DayLayout = "2006-01-02"

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock, always in UTC.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time { return time.Now().UTC() }

// Today returns the UTC calendar day of c as a DayLayout key.
func Today(c Clock) string {
	return c.Now().UTC().Format(DayLayout)
}

// Mock is a manually driven clock.
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock returns a Mock frozen at t.
func NewMock(t time.Time) *Mock {
	return &Mock{now: t.UTC()}
}

// Now returns the frozen instant.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t.UTC()
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
