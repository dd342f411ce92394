package dto

import (
	"time"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// CreateEntryRequest is the payload for creating a ledger entry.
// SignedAmount is positive for inflows, negative for outflows.
type CreateEntryRequest struct {
	AccountID    string          `json:"accountID" binding:"required,uuid"`
	SignedAmount decimal.Decimal `json:"signedAmount" binding:"required"`
	OccurredOn   string          `json:"occurredOn" binding:"required"` // YYYY-MM-DD
	CategoryID   *string         `json:"categoryID,omitempty" binding:"omitempty,uuid"`
	Notes        string          `json:"notes,omitempty"`
}

// UpdateEntryRequest is the payload for updating a ledger entry. Amount and
// date are always submitted in full; the service detects what actually changed.
type UpdateEntryRequest struct {
	SignedAmount decimal.Decimal `json:"signedAmount" binding:"required"`
	OccurredOn   string          `json:"occurredOn" binding:"required"` // YYYY-MM-DD
	CategoryID   *string         `json:"categoryID,omitempty" binding:"omitempty,uuid"`
	Notes        *string         `json:"notes,omitempty"`
}

// ListEntriesRequest carries the filter/pagination query for entry listings.
type ListEntriesRequest struct {
	From       string  `form:"from" binding:"omitempty"`
	To         string  `form:"to" binding:"omitempty"`
	CategoryID string  `form:"categoryID" binding:"omitempty,uuid"`
	Limit      int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken  *string `form:"nextToken" binding:"omitempty"`
}

// EntryResponse is the wire representation of a ledger entry.
type EntryResponse struct {
	EntryID         string          `json:"entryID"`
	AccountID       string          `json:"accountID"`
	CategoryID      *string         `json:"categoryID,omitempty"`
	SignedAmount    decimal.Decimal `json:"signedAmount"`
	Direction       string          `json:"direction"`
	Magnitude       decimal.Decimal `json:"magnitude"`
	OccurredOn      string          `json:"occurredOn"`
	Sequence        int64           `json:"sequence"`
	CumulativeDelta decimal.Decimal `json:"cumulativeDelta"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}

// ListEntriesResponse wraps a page of entries with the cursor for the next page.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// BalanceResponse reports a materialized account balance.
type BalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
	AsOf      *string         `json:"asOf,omitempty"` // YYYY-MM-DD when a date-scoped balance was requested
}

// ChainVerificationResponse reports the outcome of an invariant scan.
type ChainVerificationResponse struct {
	AccountID      string  `json:"accountID"`
	Valid          bool    `json:"valid"`
	EntriesChecked int     `json:"entriesChecked"`
	BrokenAtEntry  *string `json:"brokenAtEntryID,omitempty"`
}

// ToEntryResponse converts a domain Entry into its wire representation.
func ToEntryResponse(e domain.Entry) EntryResponse {
	direction, magnitude := accounting.Classify(e.SignedAmount)
	return EntryResponse{
		EntryID:         e.EntryID,
		AccountID:       e.AccountID,
		CategoryID:      e.CategoryID,
		SignedAmount:    e.SignedAmount,
		Direction:       string(direction),
		Magnitude:       magnitude,
		OccurredOn:      e.OccurredOn.Format(DateLayout),
		Sequence:        e.Sequence,
		CumulativeDelta: e.CumulativeDelta,
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt,
		LastUpdatedAt:   e.LastUpdatedAt,
	}
}

// ToEntryResponseSlice converts a slice of domain entries.
func ToEntryResponseSlice(es []domain.Entry) []EntryResponse {
	out := make([]EntryResponse, len(es))
	for i, e := range es {
		out[i] = ToEntryResponse(e)
	}
	return out
}
