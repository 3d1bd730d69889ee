package testutil

import (
	"sync"
	"time"
)

// FixedClock provides a deterministic time source for tests.
//
// Every call to Now advances the clock by one second, so run records
// written through it get distinct, reproducible timestamps. Reset
// returns the clock to its start time for test reuse.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
}

// NewFixedClock creates a clock starting at start. The zero time is
// replaced with a fixed reference instant so callers can pass
// time.Time{} and still get stable output.
func NewFixedClock(start time.Time) *FixedClock {
	if start.IsZero() {
		start = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return &FixedClock{start: start, now: start}
}

// Now returns the current instant and advances the clock by one second.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Second)
	return t
}

// Reset returns the clock to its start time.
func (c *FixedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
