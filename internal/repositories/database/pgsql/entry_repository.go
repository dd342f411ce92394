package pgsql

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/apperrors"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/ordering"
	portsrepo "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/repositories"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/models"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/utils/mapping"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const entryColumns = `entry_id, account_id, category_id, signed_amount, occurred_on, sequence, cumulative_delta, notes, created_at, created_by, last_updated_at, last_updated_by`

// PgxEntryRepository is the durable ledger store: ordered per-account entries
// with range-scoped bulk arithmetic updates and single-row reads/writes.
type PgxEntryRepository struct {
	BaseRepository
}

// NewEntryRepository creates a new repository for ledger entry data.
func NewEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxEntryRepository implements portsrepo.EntryRepositoryWithTx
var _ portsrepo.EntryRepositoryWithTx = (*PgxEntryRepository)(nil)

// FindEntryByID retrieves an entry by its ID.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE entry_id = $1;`
	return r.scanOneEntry(r.Pool.QueryRow(ctx, query, entryID), entryID)
}

// FindEntryForUpdate reads an entry inside a transaction, locking the row.
func (r *PgxEntryRepository) FindEntryForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE entry_id = $1 FOR UPDATE;`
	return r.scanOneEntry(tx.QueryRow(ctx, query, entryID), entryID)
}

func (r *PgxEntryRepository) scanOneEntry(row pgx.Row, entryID string) (*domain.Entry, error) {
	var m models.Entry
	err := row.Scan(
		&m.EntryID,
		&m.AccountID,
		&m.CategoryID,
		&m.SignedAmount,
		&m.OccurredOn,
		&m.Sequence,
		&m.CumulativeDelta,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find entry "+entryID, err)
	}
	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

// DeltaBefore returns the cumulative delta of the entry at the greatest
// position strictly before pos, or zero if the account has no earlier entry.
func (r *PgxEntryRepository) DeltaBefore(ctx context.Context, tx pgx.Tx, accountID string, pos ordering.Position) (decimal.Decimal, error) {
	query := `
		SELECT cumulative_delta FROM entries
		WHERE account_id = $1 AND (occurred_on, sequence) < ($2, $3)
		ORDER BY occurred_on DESC, sequence DESC
		LIMIT 1;
	`
	var delta decimal.Decimal
	err := tx.QueryRow(ctx, query, accountID, pos.OccurredOn, pos.Sequence).Scan(&delta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, apperrors.NewAppError(500, "failed to read predecessor delta for account "+accountID, err)
	}
	return delta, nil
}

// InsertEntry persists a new entry and returns its database-assigned sequence.
func (r *PgxEntryRepository) InsertEntry(ctx context.Context, tx pgx.Tx, entry domain.Entry) (int64, error) {
	m := mapping.ToModelEntry(entry)
	query := `
		INSERT INTO entries (entry_id, account_id, category_id, signed_amount, occurred_on, cumulative_delta, notes, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING sequence;
	`
	var sequence int64
	err := tx.QueryRow(ctx, query,
		m.EntryID,
		m.AccountID,
		m.CategoryID,
		m.SignedAmount,
		m.OccurredOn,
		m.CumulativeDelta,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	).Scan(&sequence)
	if err != nil {
		if mapped := mapEntryWriteError(err, m.EntryID); mapped != nil {
			return 0, mapped
		}
		return 0, apperrors.NewAppError(500, "failed to insert entry "+m.EntryID, err)
	}
	return sequence, nil
}

// UpdateEntry persists an existing entry's mutable columns. The account id and
// sequence are immutable and deliberately absent from the SET list.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, tx pgx.Tx, entry domain.Entry) error {
	m := mapping.ToModelEntry(entry)
	query := `
		UPDATE entries
		SET category_id = $2,
		    signed_amount = $3,
		    occurred_on = $4,
		    cumulative_delta = $5,
		    notes = $6,
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE entry_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query,
		m.EntryID,
		m.CategoryID,
		m.SignedAmount,
		m.OccurredOn,
		m.CumulativeDelta,
		m.Notes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if mapped := mapEntryWriteError(err, m.EntryID); mapped != nil {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to update entry "+m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("entry " + m.EntryID + " not found for update")
	}
	return nil
}

// DeleteEntry removes an entry row.
func (r *PgxEntryRepository) DeleteEntry(ctx context.Context, tx pgx.Tx, entryID string) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete entry "+entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("entry " + entryID + " not found for delete")
	}
	return nil
}

// ShiftAfter adds delta to every entry of the account strictly after pos.
// One declarative statement; affected rows are never materialized in memory.
func (r *PgxEntryRepository) ShiftAfter(ctx context.Context, tx pgx.Tx, accountID string, pos ordering.Position, delta decimal.Decimal) error {
	query := `
		UPDATE entries
		SET cumulative_delta = cumulative_delta + $4
		WHERE account_id = $1 AND (occurred_on, sequence) > ($2, $3);
	`
	if _, err := tx.Exec(ctx, query, accountID, pos.OccurredOn, pos.Sequence, delta); err != nil {
		return apperrors.NewAppError(500, "failed to shift entries after position for account "+accountID, err)
	}
	return nil
}

// ShiftBetween adds delta to every entry of the account strictly between lo
// and hi. Boundary ties are decided by the sequence half of the comparison.
func (r *PgxEntryRepository) ShiftBetween(ctx context.Context, tx pgx.Tx, accountID string, lo, hi ordering.Position, delta decimal.Decimal) error {
	query := `
		UPDATE entries
		SET cumulative_delta = cumulative_delta + $6
		WHERE account_id = $1
		  AND (occurred_on, sequence) > ($2, $3)
		  AND (occurred_on, sequence) < ($4, $5);
	`
	if _, err := tx.Exec(ctx, query, accountID, lo.OccurredOn, lo.Sequence, hi.OccurredOn, hi.Sequence, delta); err != nil {
		return apperrors.NewAppError(500, "failed to shift entry range for account "+accountID, err)
	}
	return nil
}

// LatestDelta returns the cumulative delta of the account's last entry.
func (r *PgxEntryRepository) LatestDelta(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT cumulative_delta FROM entries
		WHERE account_id = $1
		ORDER BY occurred_on DESC, sequence DESC
		LIMIT 1;
	`
	var delta decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, accountID).Scan(&delta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, apperrors.NewAppError(500, "failed to read latest delta for account "+accountID, err)
	}
	return delta, nil
}

// DeltaAsOf returns the cumulative delta of the last entry dated on or before date.
func (r *PgxEntryRepository) DeltaAsOf(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error) {
	query := `
		SELECT cumulative_delta FROM entries
		WHERE account_id = $1 AND occurred_on <= $2
		ORDER BY occurred_on DESC, sequence DESC
		LIMIT 1;
	`
	var delta decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, accountID, date).Scan(&delta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, apperrors.NewAppError(500, "failed to read delta as of date for account "+accountID, err)
	}
	return delta, nil
}

// ListAccountChain retrieves every entry of an account in chronological order.
func (r *PgxEntryRepository) ListAccountChain(ctx context.Context, accountID string) ([]domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM entries
		WHERE account_id = $1
		ORDER BY occurred_on ASC, sequence ASC;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entry chain for account "+accountID, err)
	}
	defer rows.Close()
	return r.collectEntries(rows, accountID)
}

// ListEntries retrieves a filtered, paginated list of an account's entries
// using token-based pagination, newest position first.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, accountID string, filter portsrepo.EntryFilter, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	var sb strings.Builder
	sb.WriteString(`SELECT ` + entryColumns + ` FROM entries WHERE account_id = $1`)
	args := []interface{}{accountID}

	appendCond := func(cond string, vals ...interface{}) {
		sb.WriteString(" AND " + cond)
		args = append(args, vals...)
	}

	if !filter.From.IsZero() {
		appendCond("occurred_on >= $"+strconv.Itoa(len(args)+1), filter.From)
	}
	if !filter.To.IsZero() {
		appendCond("occurred_on <= $"+strconv.Itoa(len(args)+1), filter.To)
	}
	if filter.CategoryID != "" {
		appendCond("category_id = $"+strconv.Itoa(len(args)+1), filter.CategoryID)
	}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastSeq, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		// Tuple comparison against the listing's own sort order keeps the
		// cursor stable under concurrent inserts.
		n := len(args)
		appendCond("(occurred_on, sequence) < ($"+strconv.Itoa(n+1)+", $"+strconv.Itoa(n+2)+")", lastDate, lastSeq)
	}

	sb.WriteString(" ORDER BY occurred_on DESC, sequence DESC LIMIT $" + strconv.Itoa(len(args)+1) + ";")
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries for account "+accountID, err)
	}
	defer rows.Close()

	entries, err := r.collectEntries(rows, accountID)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1] // the actual last item of the current page
		token := pagination.EncodeToken(last.OccurredOn, last.Sequence)
		nextTokenVal = &token
		entries = entries[:limit]
	}
	return entries, nextTokenVal, nil
}

func (r *PgxEntryRepository) collectEntries(rows pgx.Rows, accountID string) ([]domain.Entry, error) {
	modelEntries := []models.Entry{}
	for rows.Next() {
		var m models.Entry
		err := rows.Scan(
			&m.EntryID,
			&m.AccountID,
			&m.CategoryID,
			&m.SignedAmount,
			&m.OccurredOn,
			&m.Sequence,
			&m.CumulativeDelta,
			&m.Notes,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row for account "+accountID, err)
		}
		modelEntries = append(modelEntries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for account "+accountID, err)
	}
	return mapping.ToDomainEntrySlice(modelEntries), nil
}

// mapEntryWriteError translates constraint violations into domain errors, or
// returns nil when the error is not a recognized constraint violation.
func mapEntryWriteError(err error, entryID string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case "23503": // foreign_key_violation
		if strings.Contains(pgErr.ConstraintName, "category") {
			return apperrors.ErrCategoryNotFound
		}
		if strings.Contains(pgErr.ConstraintName, "account") {
			return apperrors.ErrAccountNotFound
		}
	case "23505": // unique_violation
		return apperrors.NewAppError(409, "entry "+entryID+" already exists", apperrors.ErrDuplicate)
	}
	return nil
}
