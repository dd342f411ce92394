package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// AccountTxRunner is the unit-of-work coordinator for ledger mutations.
//
// RunAccountTx opens a transaction, serializes it against other mutations of
// the same account, runs fn, and commits. Any error from fn rolls the whole
// unit back. Conflict and transient storage failures are retried from the top
// up to a fixed attempt bound; domain errors are returned as-is, unretried.
type AccountTxRunner interface {
	RunAccountTx(ctx context.Context, accountID string, fn func(tx pgx.Tx) error) error
}
