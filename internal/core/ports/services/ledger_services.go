package services

import (
	"context"
	"time"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerWriterSvc defines the mutation operations of the ledger core. Every
// operation leaves the account's cumulative delta chain consistent or has no
// effect at all.
type LedgerWriterSvc interface {
	// CreateEntry inserts a new entry at its chronological position and shifts
	// every later entry's cumulative delta.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.Entry, error)

	// UpdateEntry applies an amount and/or date change to an entry, rippling
	// cumulative deltas over the minimal affected range.
	UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.Entry, error)

	// DeleteEntry removes an entry and sheds its amount from every later entry.
	DeleteEntry(ctx context.Context, entryID string) error
}

// LedgerReaderSvc defines the read side of the ledger.
type LedgerReaderSvc interface {
	// GetEntry retrieves a specific entry by its ID.
	GetEntry(ctx context.Context, entryID string) (*domain.Entry, error)

	// ListEntries retrieves a filtered, paginated list of an account's entries.
	ListEntries(ctx context.Context, accountID string, params dto.ListEntriesRequest) (*dto.ListEntriesResponse, error)

	// GetBalance returns the account's current balance
	// (initial balance + cumulative delta of the chronologically last entry).
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// GetBalanceAsOf returns the account's balance at the end of the given date.
	GetBalanceAsOf(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error)

	// VerifyAccountChain re-folds the account's entries in chronological order
	// and checks every stored cumulative delta. Diagnostic; read-only.
	VerifyAccountChain(ctx context.Context, accountID string) (*dto.ChainVerificationResponse, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}
