package database

import (
	"context"
	"database/sql"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories need.  A
// repository bound to a *sql.Tx sees the writes made earlier in the same
// transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Beginner opens transactions.  *sql.DB satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn inside a transaction on its own connection.  The
// transaction is committed when fn returns nil and rolled back when it
// returns an error or panics.  Rollback failures are ignored so the caller
// always receives fn's error.
func WithTx(ctx context.Context, db Beginner, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
