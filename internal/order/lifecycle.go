package order

import "fmt"

// Effect is what a legal status transition requires from the store.
type Effect int

const (
	// EffectNone: the order is already in the target status.
	EffectNone Effect = iota
	// EffectUpdateStatus: write the new status, inventory untouched.
	EffectUpdateStatus
	// EffectReleaseStock: return every line's quantity to the ledger, then
	// write the cancelled status.
	EffectReleaseStock
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus accepts only the three lowercase status names.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		verr := newValidationError()
		verr.add("status", fmt.Sprintf("Invalid status %q: must be one of pending, confirmed, cancelled", raw))
		return "", verr
	}
	return s, nil
}

// Transition is the single authority on order status changes. Cancelled is
// terminal; entering it releases stock exactly once.
func Transition(from, to Status) (Effect, error) {
	if !from.Valid() {
		return EffectNone, fmt.Errorf("order has unknown status %q", from)
	}
	if !to.Valid() {
		_, err := ParseStatus(string(to))
		return EffectNone, err
	}

	switch {
	case from == StatusCancelled && to == StatusCancelled:
		return EffectNone, nil
	case from == StatusCancelled:
		return EffectNone, &InvalidTransitionError{From: from, To: to}
	case to == StatusCancelled:
		return EffectReleaseStock, nil
	case from == to:
		return EffectNone, nil
	default:
		return EffectUpdateStatus, nil
	}
}
