package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_LookupBook(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	repo := NewRepository()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "title", "author", "price", "quantity", "is_archived"}).
			AddRow(1, "Dune", "Frank Herbert", "15.99", 3, false)

		mock.ExpectQuery(`SELECT id, title, author, price, quantity, is_archived FROM books WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(rows)

		book, err := repo.LookupBook(ctx, conn, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), book.ID)
		assert.Equal(t, "Dune", book.Title)
		assert.True(t, decimal.RequireFromString("15.99").Equal(book.Price))
		assert.Equal(t, 3, book.Quantity)
		assert.True(t, book.Available())
	})

	t.Run("Archived book is returned as is", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "title", "author", "price", "quantity", "is_archived"}).
			AddRow(2, "Old", "Someone", "5.00", 10, true)

		mock.ExpectQuery(`SELECT .* FROM books WHERE id = \$1`).
			WithArgs(int64(2)).
			WillReturnRows(rows)

		book, err := repo.LookupBook(ctx, conn, 2)
		require.NoError(t, err)
		assert.False(t, book.Available())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM books WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		book, err := repo.LookupBook(ctx, conn, 99)
		assert.Nil(t, book)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM books WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.LookupBook(ctx, conn, 3)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrBookNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
