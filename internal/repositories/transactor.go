package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs a function inside a single database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// GORMTransactor is the GORM implementation of Transactor.
type GORMTransactor struct {
	db *gorm.DB
}

// NewGORMTransactor creates a new instance of GORMTransactor.
func NewGORMTransactor(db *gorm.DB) *GORMTransactor {
	return &GORMTransactor{db: db}
}

func (t *GORMTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := t.db.WithContext(ctx).Transaction(fn)
	return storageErr(err, "transaction")
}
