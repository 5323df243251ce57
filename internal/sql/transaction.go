package sql

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

type ctxKeyTx struct{}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ctxWithTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, ctxKeyTx{}, tx)
}

func txFromCtx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(ctxKeyTx{}).(*sql.Tx)
	return tx, ok
}

func (s *mySql) querier(ctx context.Context) querier {
	if tx, ok := txFromCtx(ctx); ok {
		return tx
	}
	return s.DB
}

// Transaction executes fx within a single transaction, every call made
// with the context given to fx joins it. The transaction is committed when
// fx returns nil and rolled back otherwise; nested calls reuse the
// outer transaction.
func (s *mySql) Transaction(ctx context.Context, fx func(ctx context.Context) error) error {
	if _, ok := txFromCtx(ctx); ok {
		return fx(ctx)
	}
	tx, err := s.BeginTx(ctx, &sql.TxOptions{Isolation: databaseIsolation})
	if err != nil {
		return errors.Wrap(err, "error while beginning transaction")
	}
	if err := fx(ctxWithTx(ctx, tx)); err != nil {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.Error(ctx, "error while rolling back transaction: %s", err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error while committing transaction")
	}
	return nil
}
