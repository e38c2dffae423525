package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookstore-be/internal/db"
	"bookstore-be/internal/logger"

	"go.uber.org/zap"
)

// Repository is the catalog lookup capability consumed by the order core.
// When q is a transaction the result is consistent with the ledger's view
// inside that transaction.
type Repository interface {
	LookupBook(ctx context.Context, q db.Querier, id int64) (*Book, error)
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

// LookupBook returns the book with the given id, archived or not. Callers
// decide what archived means for them.
func (r *repository) LookupBook(ctx context.Context, q db.Querier, id int64) (*Book, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "LookupBook"),
		zap.Int64("book_id", id),
	)

	var b Book
	err := q.QueryRowContext(ctx, `
		SELECT id, title, author, price, quantity, is_archived
		FROM books
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Title, &b.Author, &b.Price, &b.Quantity, &b.IsArchived)

	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("book not found")
		return nil, ErrBookNotFound
	}
	if err != nil {
		log.Error("failed to query book", zap.Error(err))
		return nil, fmt.Errorf("lookup book %d: %w", id, err)
	}

	return &b, nil
}
