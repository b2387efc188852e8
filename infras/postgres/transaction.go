package postgres

//go:generate go run go.uber.org/mock/mockgen -source=./transaction.go -destination=./mocks/transaction_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hotel/config"
	"hotel/shared/constant"
	"hotel/shared/failure"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const MessageTransactionConflict = "transaction conflict, please retry"

// TxFunc runs inside an open transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, tx *sqlx.Tx) error

type Transactor interface {
	WithTransaction(ctx context.Context, fn TxFunc) error
}

type transactor struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewTransactor(conn *Connection, cfg *config.Config) Transactor {
	return &transactor{
		db:      conn.Write,
		timeout: time.Duration(cfg.DB.Postgres.TxTimeoutSeconds) * time.Second,
	}
}

// NewTransactorWithDB is used where no Connection exists, such as sqlmock tests.
func NewTransactorWithDB(db *sqlx.DB, timeout time.Duration) Transactor {
	return &transactor{db: db, timeout: timeout}
}

// WithTransaction opens a READ COMMITTED transaction bound to ctx, commits when fn succeeds and
// rolls back on error or panic. Store contention is reported as a retryable failure.
func (t *transactor) WithTransaction(ctx context.Context, fn TxFunc) (err error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", ClassifyError(err))
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(tx)

			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		rollback(tx)

		return ClassifyError(err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", ClassifyError(err))
	}

	return nil
}

func rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Error().Err(err).Msg("failed to rollback transaction")
	}
}

// ClassifyError turns serialization failures and deadlocks into a retryable failure.
// Everything else, business failures included, is returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeSerializationFailure, constant.PqErrorCodeDeadlockDetected, constant.PqErrorCodeLockNotAvailable:
		log.Warn().Str("code", string(pqErr.Code)).Str("detail", pqErr.Message).Msg("transaction conflict")

		return failure.Transient(MessageTransactionConflict)
	default:
		return err
	}
}

// IsUniqueViolation reports whether err is a unique violation, optionally on a given constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	if string(pqErr.Code) != constant.PqErrorCodeUniqueViolation {
		return false
	}

	return constraint == "" || pqErr.Constraint == constraint
}
