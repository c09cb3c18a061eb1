package repository

import (
	"context"

	"github.com/driveport/service-rental/internal/domain"
	"gorm.io/gorm"
)

type txKey struct{}

// TxRunner scopes a function to a single database transaction. Repositories
// called with the returned context reuse the transaction connection, so a
// multi-query read observes one snapshot of the data.
type TxRunner struct {
	db *gorm.DB
}

// NewTxRunner creates a TxRunner on the given connection.
func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// ReadOnly runs fn inside a repeatable-read read-only transaction.
func (r *TxRunner) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY").Error; err != nil {
			return domain.NewTransientStoreError("begin read-only transaction", err)
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to the context, or the repository's own
// connection when no transaction is in flight.
func conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
