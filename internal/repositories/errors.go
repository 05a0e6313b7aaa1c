package repositories

import (
	"context"
	"errors"

	"furnitureshop/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes that mean "lost a race, try again".
var retryableSQLStates = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

// storageErr converts a driver or GORM error into an *apperr.Error.
// Errors that already carry a kind pass through unchanged.
func storageErr(err error, op string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Storage(err, "%s timed out", op)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict(err, "%s: concurrent modification", op)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && retryableSQLStates[pgErr.Code] {
		return apperr.Conflict(err, "%s: concurrent modification", op)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && (liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked) {
		return apperr.Conflict(err, "%s: database busy", op)
	}
	return apperr.Storage(err, "%s failed", op)
}

// conn returns tx when the caller runs inside a transaction, db otherwise.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
