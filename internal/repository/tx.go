package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
)

// TxRunner runs a function inside a REPEATABLE READ transaction. Mutating
// flows take row locks up front so the isolation level mostly guards the
// read-check-write window between them.
type TxRunner struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewTxRunner creates a transaction runner.
func NewTxRunner(db *sqlx.DB, log *zap.Logger) *TxRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &TxRunner{db: db, log: log}
}

// RepeatableRead executes fn within a repeatable-read transaction, committing
// on nil and rolling back otherwise. Store-level failures are translated to
// domain errors; domain errors from fn pass through untouched.
func (r *TxRunner) RepeatableRead(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return TranslateError(err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.log.Warn("transaction rollback failed", zap.Error(rbErr))
		}
		return TranslateError(err)
	}

	if err := tx.Commit(); err != nil {
		return TranslateError(err)
	}
	return nil
}

// TranslateError maps driver-level failures onto the domain error taxonomy.
// Serialization failures, deadlocks and unique violations become retryable
// CONSTRAINT_VIOLATION; connectivity failures become STORE_UNAVAILABLE.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "23505":
			return appErrors.Wrap(err, appErrors.ErrConstraintViolation.Code,
				appErrors.ErrConstraintViolation.Status, appErrors.ErrConstraintViolation.Message)
		}
		if pqErr.Code.Class() == "08" {
			return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code,
				appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code,
			appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}

	return err
}
