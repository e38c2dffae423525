package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookstore-be/internal/catalog"
	"bookstore-be/internal/db"
	"bookstore-be/internal/logger"

	"go.uber.org/zap"
)

// Ledger is the authoritative store of per-book available quantity. Both
// operations must run on the transaction of the order write they support.
type Ledger interface {
	// Reserve decrements the book's quantity by qty only if at least qty is
	// available. On failure nothing is mutated.
	Reserve(ctx context.Context, q db.Querier, bookID int64, qty int) error
	// Release increments the book's quantity by qty unconditionally.
	Release(ctx context.Context, q db.Querier, bookID int64, qty int) error
}

type ledger struct{}

func NewLedger() Ledger {
	return &ledger{}
}

func (l *ledger) Reserve(ctx context.Context, q db.Querier, bookID int64, qty int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "inventory"),
		zap.String("method", "Reserve"),
		zap.Int64("book_id", bookID),
		zap.Int("quantity", qty),
	)

	if qty <= 0 {
		return fmt.Errorf("reserve book %d: non-positive quantity %d", bookID, qty)
	}

	// Single guarded statement: the row lock taken by UPDATE makes concurrent
	// reservations re-check the predicate against the committed quantity.
	var remaining int
	err := q.QueryRowContext(ctx, `
		UPDATE books
		SET quantity = quantity - $1, updated_at = NOW()
		WHERE id = $2 AND is_archived = FALSE AND quantity >= $1
		RETURNING quantity
	`, qty, bookID).Scan(&remaining)

	if err == nil {
		log.Debug("stock reserved", zap.Int("remaining", remaining))
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to reserve stock", zap.Error(err))
		return fmt.Errorf("reserve book %d: %w", bookID, err)
	}

	// The guard rejected the row; find out why.
	var available int
	var archived bool
	err = q.QueryRowContext(ctx, `
		SELECT quantity, is_archived
		FROM books
		WHERE id = $1
	`, bookID).Scan(&available, &archived)

	if errors.Is(err, sql.ErrNoRows) || (err == nil && archived) {
		log.Warn("reserve on missing or archived book")
		return catalog.ErrBookNotFound
	}
	if err != nil {
		log.Error("failed to read stock after rejected reserve", zap.Error(err))
		return fmt.Errorf("reserve book %d: %w", bookID, err)
	}

	log.Warn("insufficient stock", zap.Int("available", available))
	return &InsufficientStockError{
		BookID:    bookID,
		Requested: qty,
		Available: available,
	}
}

func (l *ledger) Release(ctx context.Context, q db.Querier, bookID int64, qty int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "inventory"),
		zap.String("method", "Release"),
		zap.Int64("book_id", bookID),
		zap.Int("quantity", qty),
	)

	res, err := q.ExecContext(ctx, `
		UPDATE books
		SET quantity = quantity + $1, updated_at = NOW()
		WHERE id = $2
	`, qty, bookID)
	if err != nil {
		log.Error("failed to release stock", zap.Error(err))
		return fmt.Errorf("release book %d: %w", bookID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("release book %d: %w", bookID, err)
	}
	if affected == 0 {
		log.Error("release targeted a missing book")
		return fmt.Errorf("release book %d: %w", bookID, ErrLedgerIntegrity)
	}

	log.Debug("stock released")
	return nil
}
