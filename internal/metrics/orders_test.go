package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter_Concurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()

	c.Add(5)
	assert.Equal(t, uint64(55), c.Load())
}

func TestOrderMetrics_Snapshot(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		var m OrderMetrics
		assert.Equal(t, OrderSnapshot{}, m.Snapshot())
	})

	t.Run("Counts and average", func(t *testing.T) {
		var m OrderMetrics
		m.Placed.Inc()
		m.Placed.Inc()
		m.RejectedStock.Inc()
		m.Cancelled.Inc()
		m.placementNanos.Add(uint64(4 * time.Millisecond))

		s := m.Snapshot()
		assert.Equal(t, uint64(2), s.Placed)
		assert.Equal(t, uint64(1), s.RejectedStock)
		assert.Equal(t, uint64(1), s.Cancelled)
		assert.Equal(t, uint64(0), s.TransactionsAborted)
		assert.InDelta(t, 2.0, s.AvgPlacementMillis, 0.0001)
	})

	t.Run("ObservePlacement", func(t *testing.T) {
		var m OrderMetrics
		timer := StartTimer()
		m.ObservePlacement(timer)
		m.Placed.Inc()

		assert.GreaterOrEqual(t, m.Snapshot().AvgPlacementMillis, 0.0)
	})
}
