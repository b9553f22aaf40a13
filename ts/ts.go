package ts

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock wraps a clockwork.Clock so that Now is convenient for display.
type Clock struct {
	clockwork.Clock
}

func NewRealClock() *Clock {
	return &Clock{Clock: clockwork.NewRealClock()}
}

func NewClock(c clockwork.Clock) *Clock {
	return &Clock{Clock: c}
}

// Now provides a timestamp truncated to the second, and in local time,
// convenient for human-readable times.
func (c *Clock) Now() time.Time {
	return c.Clock.Now().Local().Truncate(time.Second)
}

// RealClock returns the underlying clock, for timers.
func (c *Clock) RealClock() clockwork.Clock {
	return c.Clock
}

// Format renders t the way the admin tool lists key windows.
func Format(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
