package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits when fn succeeds", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE books").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = WithTx(ctx, conn, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "UPDATE books SET quantity = 1")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back when fn fails", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err = WithTx(ctx, conn, func(tx *sql.Tx) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back and re-panics", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = WithTx(ctx, conn, func(tx *sql.Tx) error { panic("unexpected") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin failure", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		called := false
		err = WithTx(ctx, conn, func(tx *sql.Tx) error {
			called = true
			return nil
		})

		assert.Error(t, err)
		assert.False(t, called)
		assert.Contains(t, err.Error(), "begin transaction")
	})

	t.Run("Commit failure", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(&pq.Error{Code: PgSerializationFailure})

		err = WithTx(ctx, conn, func(tx *sql.Tx) error { return nil })

		assert.Error(t, err)
		assert.True(t, IsRetryable(err))
	})

	t.Run("Connection lost during commit is not retryable", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(io.ErrUnexpectedEOF)

		err = WithTx(ctx, conn, func(tx *sql.Tx) error { return nil })

		assert.ErrorIs(t, err, ErrCommitOutcomeUnknown)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.False(t, IsRetryable(err))
	})

	t.Run("Connection lost inside the scope is retryable", func(t *testing.T) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE books").WillReturnError(&pq.Error{Code: PgAdminShutdown})
		mock.ExpectRollback()

		err = WithTx(ctx, conn, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "UPDATE books SET quantity = 1")
			return err
		})

		assert.True(t, IsRetryable(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pq.Error{Code: PgSerializationFailure}, true},
		{"deadlock", &pq.Error{Code: PgDeadlockDetected}, true},
		{"lock timeout", &pq.Error{Code: PgLockNotAvailable}, true},
		{"statement timeout", &pq.Error{Code: PgQueryCanceled}, true},
		{"unique violation", &pq.Error{Code: PgUniqueViolation}, true},
		{"wrapped deadlock", fmt.Errorf("reserve: %w", &pq.Error{Code: PgDeadlockDetected}), true},
		{"admin shutdown", &pq.Error{Code: PgAdminShutdown}, true},
		{"crash shutdown", &pq.Error{Code: PgCrashShutdown}, true},
		{"cannot connect now", &pq.Error{Code: PgCannotConnectNow}, true},
		{"connection failure", &pq.Error{Code: "08006"}, true},
		{"connection does not exist", &pq.Error{Code: "08003"}, true},
		{"bad conn", fmt.Errorf("reserve: %w", driver.ErrBadConn), true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"conn done", sql.ErrConnDone, true},
		{"unknown commit outcome", fmt.Errorf("commit transaction: %w: %w", ErrCommitOutcomeUnknown, driver.ErrBadConn), false},
		{"check violation", &pq.Error{Code: "23514"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetryable(tc.err))
		})
	}
}

func TestTransactor_WithinTx(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	tr := NewTransactor(conn)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = tr.WithinTx(ctx, func(q Querier) error {
		_, isTx := q.(*sql.Tx)
		assert.True(t, isTx)
		_, err := q.ExecContext(ctx, "UPDATE orders SET status = 'cancelled'")
		return err
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
