package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one signed monetary record in an account's ledger.
//
// SignedAmount is positive for inflows and negative for outflows.
// CumulativeDelta is the running sum of SignedAmount over this entry and every
// chronologically-earlier entry of the same account; it is assigned at creation
// and maintained exclusively by the ledger service's mutation paths.
type Entry struct {
	EntryID         string          `json:"entryID"`   // Primary Key (UUID)
	AccountID       string          `json:"accountID"` // FK -> accounts.account_id, immutable
	CategoryID      *string         `json:"categoryID,omitempty"`
	SignedAmount    decimal.Decimal `json:"signedAmount"`
	OccurredOn      time.Time       `json:"occurredOn"` // calendar date, no time-of-day
	Sequence        int64           `json:"sequence"`   // creation-order tie-break, immutable
	CumulativeDelta decimal.Decimal `json:"cumulativeDelta"`
	Notes           string          `json:"notes"`
	AuditFields
}

// BalanceAfter is the account balance as of this entry.
func (e Entry) BalanceAfter(initialBalance decimal.Decimal) decimal.Decimal {
	return initialBalance.Add(e.CumulativeDelta)
}
