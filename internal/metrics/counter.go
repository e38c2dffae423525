package metrics

import (
	"sync/atomic"
	"time"
)

// Counter is a monotonically increasing value safe for concurrent use.
type Counter struct {
	v atomic.Uint64
}

func (c *Counter) Inc() {
	c.v.Add(1)
}

func (c *Counter) Add(n uint64) {
	c.v.Add(n)
}

func (c *Counter) Load() uint64 {
	return c.v.Load()
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
