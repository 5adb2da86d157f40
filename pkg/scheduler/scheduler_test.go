package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeBoxedYieldsOncePerInterval(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	yields := 0

	y := NewTimeBoxed(20 * time.Millisecond)
	y.now = func() time.Time { return clock }
	y.yield = func() { yields++ }

	y.Yield()
	assert.Equal(t, 1, yields)

	clock = clock.Add(5 * time.Millisecond)
	y.Yield()
	y.Yield()
	assert.Equal(t, 1, yields, "calls inside the interval must not yield")

	clock = clock.Add(20 * time.Millisecond)
	y.Yield()
	assert.Equal(t, 2, yields)
}

func TestNewTimeBoxedDefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, NewTimeBoxed(0).Interval)
	assert.Equal(t, time.Second, NewTimeBoxed(time.Second).Interval)
}

func TestNopYielder(t *testing.T) {
	var y Yielder = Nop{}
	assert.NotPanics(t, y.Yield)
}
