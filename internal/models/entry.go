package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry mirrors the entries table. Sequence is a bigserial assigned by the
// database on insert; it is never written by application code afterwards.
type Entry struct {
	EntryID         string          `json:"entryID"`
	AccountID       string          `json:"accountID"`
	CategoryID      *string         `json:"categoryID,omitempty"`
	SignedAmount    decimal.Decimal `json:"signedAmount"`
	OccurredOn      time.Time       `json:"occurredOn"`
	Sequence        int64           `json:"sequence"`
	CumulativeDelta decimal.Decimal `json:"cumulativeDelta"`
	Notes           string          `json:"notes"`
	AuditFields
}
