package domain

import (
	"github.com/shopspring/decimal"
)

// Account identifies a ledger owner. InitialBalance is a fixed starting offset;
// ledger mutations never touch it, only explicit account edits do.
type Account struct {
	AccountID      string          `json:"accountID"` // Primary Key (UUID)
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initialBalance"` // 2-digit scale
	CurrencyCode   string          `json:"currencyCode"`
	Description    string          `json:"description"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}
