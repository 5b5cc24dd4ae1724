package shared

import (
	"sync"
	"time"
)

// Clock supplies timestamps for solve runs and stored pages
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// NewRealClock returns the system clock in UTC
func NewRealClock() Clock {
	return realClock{}
}

// MockClock is a manually advanced clock. It is safe to read from a solve
// goroutine while the test advances it.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock starts at startTime, or at the current time when it is zero
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Now().UTC()
	}
	return &MockClock{now: startTime}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
