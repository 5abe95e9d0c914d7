package clock

import (
	"sync"
	"time"
)

// NewManual returns a Manual clock initialized to the given time. Time
// stands still until Set or Advance is called.
func NewManual(initial time.Time) *Manual {
	return &Manual{current: initial}
}

// Manual is a deterministic Clock for testing. Safe for concurrent use.
type Manual struct {
	mu      sync.Mutex
	current time.Time
}

func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Manual) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Advance moves the clock forward (or, with a negative duration,
// backward) by d and returns the new time.
func (c *Manual) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}
