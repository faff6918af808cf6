package xcontext

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type dbTx struct {
	tx        *gorm.DB
	savepoint string
	depth     int
	finished  bool
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the running transaction if WithDBTransaction was called on ctx,
// otherwise the plain database handle.
func DB(ctx context.Context) *gorm.DB {
	if tx := runningTx(ctx); tx != nil {
		return tx.tx.WithContext(ctx)
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}
	return db.WithContext(ctx)
}

func runningTx(ctx context.Context) *dbTx {
	tx, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || tx.finished {
		return nil
	}
	return tx
}

// WithDBTransaction begins a transaction. If ctx already runs a transaction,
// a savepoint is created instead and the commit of the inner transaction is
// deferred to the outer one.
func WithDBTransaction(ctx context.Context) context.Context {
	if parent := runningTx(ctx); parent != nil {
		name := fmt.Sprintf("sp%d", parent.depth+1)
		parent.tx.SavePoint(name)
		return context.WithValue(ctx, dbTxKey{}, &dbTx{
			tx:        parent.tx,
			savepoint: name,
			depth:     parent.depth + 1,
		})
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return ctx
	}

	return context.WithValue(ctx, dbTxKey{}, &dbTx{tx: db.WithContext(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) error {
	tx := runningTx(ctx)
	if tx == nil {
		return nil
	}

	tx.finished = true
	if tx.savepoint != "" {
		return nil
	}

	return tx.tx.Commit().Error
}

// WithRollbackDBTransaction is safe to defer; it does nothing once the
// transaction was committed.
func WithRollbackDBTransaction(ctx context.Context) {
	tx := runningTx(ctx)
	if tx == nil {
		return
	}

	tx.finished = true
	if tx.savepoint != "" {
		tx.tx.RollbackTo(tx.savepoint)
		return
	}

	tx.tx.Rollback()
}
