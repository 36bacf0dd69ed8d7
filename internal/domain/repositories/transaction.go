package repositories

import "context"

// TxFn runs with a context that carries the active transaction.
// Repositories called with that context join the transaction.
type TxFn func(ctx context.Context) error

// TransactionManager is implemented by both the PostgreSQL and SQLite stores.
type TransactionManager interface {
	// ExecTx commits when fn returns nil and rolls back otherwise.
	// A call nested inside another ExecTx reuses the outer transaction.
	ExecTx(ctx context.Context, fn TxFn) error
}
