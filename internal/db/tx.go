package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"

	"bookstore-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres SQLSTATE codes that mean the scope lost a race and may be replayed.
const (
	PgSerializationFailure = "40001"
	PgDeadlockDetected     = "40P01"
	PgLockNotAvailable     = "55P03"
	PgQueryCanceled        = "57014"
	PgUniqueViolation      = "23505"

	PgAdminShutdown      = "57P01"
	PgCrashShutdown      = "57P02"
	PgCannotConnectNow   = "57P03"
	PgConnectionExcClass = "08"
)

// ErrCommitOutcomeUnknown marks a commit whose connection failed before the
// server acknowledged it. The changes may or may not have been applied.
var ErrCommitOutcomeUnknown = errors.New("commit outcome unknown")

// TxBeginner is satisfied by *sql.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Transactor opens atomic scopes and serves reads outside of them.
type Transactor interface {
	Querier
	WithinTx(ctx context.Context, fn func(q Querier) error) error
}

type sqlTransactor struct {
	*sql.DB
}

// NewTransactor adapts a connection pool to Transactor.
func NewTransactor(conn *sql.DB) Transactor {
	return &sqlTransactor{DB: conn}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	return WithTx(ctx, t.DB, func(tx *sql.Tx) error { return fn(tx) })
}

// WithTx runs fn inside one transaction. The transaction commits only when fn
// returns nil; any error or panic rolls it back.
func WithTx(ctx context.Context, conn TxBeginner, fn func(tx *sql.Tx) error) (err error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "db"), zap.String("method", "WithTx"))

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error("failed to rollback transaction", zap.Error(rbErr))
		} else {
			log.Debug("transaction rolled back")
		}
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error("failed to commit transaction", zap.Error(err))
		if isConnectionLoss(err) {
			return fmt.Errorf("commit transaction: %w: %w", ErrCommitOutcomeUnknown, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	committed = true
	return nil
}

// IsRetryable reports whether err means the atomic scope was rolled back by
// the store, so the whole unit of work can safely be replayed from scratch.
// A commit with an unknown outcome is never retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrCommitOutcomeUnknown) {
		return false
	}
	if isConnectionLoss(err) {
		return true
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch string(pqErr.Code) {
	case PgSerializationFailure, PgDeadlockDetected, PgLockNotAvailable, PgQueryCanceled, PgUniqueViolation:
		return true
	}
	return false
}

// isConnectionLoss reports a backend crash or shutdown, or a broken connection.
func isConnectionLoss(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case PgAdminShutdown, PgCrashShutdown, PgCannotConnectNow:
		return true
	}
	return string(pqErr.Code.Class()) == PgConnectionExcClass
}
