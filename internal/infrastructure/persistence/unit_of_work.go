package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// GormUnitOfWork implements shared.UnitOfWork on a GORM transaction.
// The transaction handle travels through the context so every
// repository call inside fn joins the same storage transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside one storage transaction. Nested Execute calls
// join the ambient transaction instead of opening a second one.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// txFromContext returns the ambient transaction handle, or nil
func txFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// dbFrom resolves the DB handle for a repository call: the ambient
// unit-of-work transaction when present, the base connection otherwise.
func dbFrom(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return base.WithContext(ctx)
}
