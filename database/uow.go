package database

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork is an open transaction together with the request context it
// belongs to. Everything written through Tx commits or rolls back as one.
type UnitOfWork struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// DB returns the transaction bound to the unit of work's context.
func (u UnitOfWork) DB() *gorm.DB {
	return u.Tx.WithContext(u.Ctx)
}

// TxRunner opens units of work. fn returning an error rolls the whole
// unit back; a nil return commits it.
type TxRunner interface {
	InTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewTxRunner returns a TxRunner backed by gorm transactions.
func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	if r == nil || r.db == nil {
		return errNilDB
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(UnitOfWork{Ctx: ctx, Tx: tx})
	})
}
