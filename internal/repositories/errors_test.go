package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"furnitureshop/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStorageErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), apperr.KindStorage},
		{"canceled", context.Canceled, apperr.KindStorage},
		{"duplicate key", gorm.ErrDuplicatedKey, apperr.KindConflict},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, apperr.KindConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, apperr.KindConflict},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, apperr.KindConflict},
		{"other postgres error", &pgconn.PgError{Code: "42P01"}, apperr.KindStorage},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, apperr.KindConflict},
		{"sqlite locked", sqlite3.Error{Code: sqlite3.ErrLocked}, apperr.KindConflict},
		{"plain error", errors.New("boom"), apperr.KindStorage},
		{"already classified", apperr.EmptyCart("c1"), apperr.KindEmptyCart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := storageErr(tt.err, "op")
			assert.Equal(t, tt.want, apperr.KindOf(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, storageErr(nil, "op"))
}
