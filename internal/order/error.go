package order

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bookstore-be/internal/catalog"
	"bookstore-be/internal/inventory"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrTransactionAborted = errors.New("transaction aborted")

	// ErrBookNotFound is returned for missing and archived books alike.
	ErrBookNotFound = catalog.ErrBookNotFound
)

// InsufficientStockError carries the offending line's requested and
// available quantities.
type InsufficientStockError = inventory.InsufficientStockError

// ValidationError lists every malformed field of a request, keyed by a
// field path such as "items[0].quantity".
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) add(field, msg string) {
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
