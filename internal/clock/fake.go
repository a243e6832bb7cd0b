package clock

import "time"

// FakeClock is a manually advanced clock for exercising expiry windows and
// badge date math in tests. It only moves when Advance is called.
type FakeClock struct {
	now time.Time
}

// NewFakeClock pins the clock at t, normalized to UTC like the real clock.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d. Negative d moves it back.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
