package metrics

import "time"

// OrderMetrics counts order engine outcomes. The zero value is ready to use.
type OrderMetrics struct {
	Placed              Counter
	RejectedStock       Counter
	RejectedValidation  Counter
	Cancelled           Counter
	TransactionsAborted Counter

	placementNanos Counter
}

// ObservePlacement records the latency of one successful placement.
func (m *OrderMetrics) ObservePlacement(t *Timer) {
	m.placementNanos.Add(uint64(t.Duration().Nanoseconds()))
}

type OrderSnapshot struct {
	Placed              uint64  `json:"orders_placed"`
	RejectedStock       uint64  `json:"orders_rejected_stock"`
	RejectedValidation  uint64  `json:"orders_rejected_validation"`
	Cancelled           uint64  `json:"orders_cancelled"`
	TransactionsAborted uint64  `json:"transactions_aborted"`
	AvgPlacementMillis  float64 `json:"avg_placement_ms"`
}

func (m *OrderMetrics) Snapshot() OrderSnapshot {
	s := OrderSnapshot{
		Placed:              m.Placed.Load(),
		RejectedStock:       m.RejectedStock.Load(),
		RejectedValidation:  m.RejectedValidation.Load(),
		Cancelled:           m.Cancelled.Load(),
		TransactionsAborted: m.TransactionsAborted.Load(),
	}
	if s.Placed > 0 {
		avg := time.Duration(m.placementNanos.Load() / s.Placed)
		s.AvgPlacementMillis = float64(avg) / float64(time.Millisecond)
	}
	return s
}
