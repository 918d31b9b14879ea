package chip8

import "time"

// TimerPeriod is the interval at which the delay and sound timers count down.
const TimerPeriod = time.Second / 60

// Clock converts elapsed wall-clock time into a number of whole periods.
// The host keeps one Clock for the timers and another for the
// instruction rate, so that the two schedules stay independent.
type Clock struct {
	Period time.Duration

	// MaxCatchUp limits the number of periods reported by one call to
	// Ticks, so that a stalled host does not try to run minutes of
	// backlog at once. Zero means one second's worth.
	MaxCatchUp int

	last time.Time
}

// Ticks returns the number of periods that elapsed between the previous
// call and now. The first call starts the clock and returns zero.
func (c *Clock) Ticks(now time.Time) int {
	if c.Period <= 0 {
		return 0
	}
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	n := int(now.Sub(c.last) / c.Period)
	if n <= 0 {
		return 0
	}
	limit := c.MaxCatchUp
	if limit <= 0 {
		limit = int(time.Second / c.Period)
		if limit < 1 {
			limit = 1
		}
	}
	if n > limit {
		// Drop the backlog rather than carry it forward.
		c.last = now
		return limit
	}
	c.last = c.last.Add(time.Duration(n) * c.Period)
	return n
}

// Reset restarts the clock at the next call to Ticks.
func (c *Clock) Reset() { c.last = time.Time{} }
