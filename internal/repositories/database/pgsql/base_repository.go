package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/apperrors"
)

// mutationAttempts bounds the retry loop for conflict/transient failures.
const mutationAttempts = 3

// retryBackoff spaces retries out so the winning transaction can commit.
const retryBackoff = 25 * time.Millisecond

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// RunAccountTx runs fn inside one transaction serialized per account.
//
// The first statement takes a transaction-scoped advisory lock keyed on the
// account id, so concurrent mutations of the same account queue rather than
// race on the read-then-range-write sequence. Mutations of different accounts
// proceed with no coordination. Conflict and transient failures restart the
// whole unit, up to mutationAttempts; domain errors from fn are returned as-is.
func (r *BaseRepository) RunAccountTx(ctx context.Context, accountID string, fn func(tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= mutationAttempts; attempt++ {
		lastErr = r.runAccountTxOnce(ctx, accountID, fn)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return fmt.Errorf("%w: giving up after %d attempts: %v", apperrors.ErrConflict, mutationAttempts, lastErr)
}

func (r *BaseRepository) runAccountTxOnce(ctx context.Context, accountID string, fn func(tx pgx.Tx) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0));`, accountID); err != nil {
		return apperrors.NewAppError(500, "failed to acquire account lock for "+accountID, err)
	}

	if err := fn(tx); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// isRetryable reports whether an error is a storage-level conflict or a
// transient failure worth restarting the unit of work for. Business-rule
// failures (not-found, reference violations, validation) never retry.
func isRetryable(err error) bool {
	if errors.Is(err, apperrors.ErrConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure / deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return pgconn.SafeToRetry(err)
}
