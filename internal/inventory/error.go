package inventory

import (
	"errors"
	"fmt"
)

// ErrLedgerIntegrity means a release targeted a book row that no longer
// exists. It is fatal to the enclosing transaction.
var ErrLedgerIntegrity = errors.New("inventory ledger integrity fault")

// InsufficientStockError is returned when a reservation asks for more than is
// available. The request was well formed; a smaller quantity may succeed.
type InsufficientStockError struct {
	BookID    int64  `json:"bookId"`
	Title     string `json:"title,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %d: requested %d, available %d",
		e.BookID, e.Requested, e.Available)
}
