package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/ordering"
	"github.com/shopspring/decimal"
)

// EntryFilter narrows entry listings. Zero values mean "no constraint".
type EntryFilter struct {
	From       time.Time
	To         time.Time
	CategoryID string
}

// EntryReader defines read operations for ledger entries outside mutations.
type EntryReader interface {
	// FindEntryByID retrieves a specific entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.Entry, error)

	// ListEntries retrieves a filtered, paginated list of an account's entries,
	// newest position first. It returns the entries, a token for the next page,
	// and an error.
	ListEntries(ctx context.Context, accountID string, filter EntryFilter, limit int, nextToken *string) ([]domain.Entry, *string, error)

	// ListAccountChain retrieves every entry of an account in chronological
	// (occurred_on, sequence) order. Used for invariant verification.
	ListAccountChain(ctx context.Context, accountID string) ([]domain.Entry, error)

	// LatestDelta returns the cumulative delta of the account's chronologically
	// last entry, or zero if the account has no entries.
	LatestDelta(ctx context.Context, accountID string) (decimal.Decimal, error)

	// DeltaAsOf returns the cumulative delta of the last entry dated on or
	// before the given date, or zero if there is none.
	DeltaAsOf(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error)
}

// EntryTxSupport defines the in-transaction primitives the delta maintenance
// algorithm is built from. Every method runs on the supplied transaction.
type EntryTxSupport interface {
	// FindEntryForUpdate reads an entry and locks its row for the transaction.
	FindEntryForUpdate(ctx context.Context, tx pgx.Tx, entryID string) (*domain.Entry, error)

	// DeltaBefore returns the cumulative delta of the entry at the greatest
	// position strictly before pos, or zero if no such entry exists. When an
	// entry is being moved forward it can be its own predecessor here; its
	// stored delta still reflects the pre-move chain, which is what the
	// date-move arithmetic needs.
	DeltaBefore(ctx context.Context, tx pgx.Tx, accountID string, pos ordering.Position) (decimal.Decimal, error)

	// InsertEntry persists a new entry and returns the database-assigned
	// insertion sequence.
	InsertEntry(ctx context.Context, tx pgx.Tx, entry domain.Entry) (int64, error)

	// UpdateEntry persists an existing entry's mutable columns.
	UpdateEntry(ctx context.Context, tx pgx.Tx, entry domain.Entry) error

	// DeleteEntry removes an entry row.
	DeleteEntry(ctx context.Context, tx pgx.Tx, entryID string) error

	// ShiftAfter adds delta to the cumulative delta of every entry of the
	// account at a position strictly after pos, as one bulk statement.
	ShiftAfter(ctx context.Context, tx pgx.Tx, accountID string, pos ordering.Position, delta decimal.Decimal) error

	// ShiftBetween adds delta to the cumulative delta of every entry of the
	// account strictly between lo and hi (both exclusive), as one bulk statement.
	ShiftBetween(ctx context.Context, tx pgx.Tx, accountID string, lo, hi ordering.Position, delta decimal.Decimal) error
}

// EntryRepositoryFacade combines all entry-related repository interfaces
type EntryRepositoryFacade interface {
	EntryReader
	EntryTxSupport
	AccountTxRunner
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction capabilities
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
