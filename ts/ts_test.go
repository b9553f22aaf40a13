package ts

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestNowTruncates(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC))
	c := NewClock(fc)
	if got := c.Now(); got.Nanosecond() != 0 || !got.Equal(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)) {
		t.Errorf("Now = %v", got)
	}
	if c.RealClock() != fc {
		t.Errorf("RealClock isn't the wrapped clock")
	}
}
