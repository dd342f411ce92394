package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MutationOp names the ledger operation an event describes.
type MutationOp string

const (
	OpCreate MutationOp = "CREATE"
	OpUpdate MutationOp = "UPDATE"
	OpDelete MutationOp = "DELETE"
)

// EntryMutationEvent is published after a ledger mutation commits.
type EntryMutationEvent struct {
	EntryID    string          `json:"entryID"`
	AccountID  string          `json:"accountID"`
	Op         MutationOp      `json:"op"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredOn time.Time       `json:"occurredOn"`
	EmittedAt  time.Time       `json:"emittedAt"`
}
