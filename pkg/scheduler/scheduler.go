// Package scheduler provides the cooperative yield point used by long tree
// rebuilds.
package scheduler

import (
	"runtime"
	"sync"
	"time"
)

// Yielder is called at bounded intervals by long running tree operations.
// Implementations decide whether to actually give up the processor.
type Yielder interface {
	Yield()
}

// Nop never yields. It is meant for batch runs and tests.
type Nop struct{}

func (Nop) Yield() {}

// DefaultInterval is the minimum wall-clock time between two real yields.
const DefaultInterval = 20 * time.Millisecond

// TimeBoxed yields to other goroutines at most once per Interval.
type TimeBoxed struct {
	Interval time.Duration

	mu    sync.Mutex
	last  time.Time
	now   func() time.Time
	yield func()
}

// NewTimeBoxed returns a TimeBoxed yielder using interval, or
// DefaultInterval when interval is not positive.
func NewTimeBoxed(interval time.Duration) *TimeBoxed {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &TimeBoxed{
		Interval: interval,
		now:      time.Now,
		yield:    runtime.Gosched,
	}
}

// Yield gives up the processor when the last real yield is older than the
// interval.
func (t *TimeBoxed) Yield() {
	t.mu.Lock()
	n := t.now()
	if n.Sub(t.last) < t.Interval {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.yield()

	t.mu.Lock()
	t.last = t.now()
	t.mu.Unlock()
}
