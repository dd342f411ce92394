package models

import "github.com/shopspring/decimal"

// Account mirrors the accounts table.
type Account struct {
	AccountID      string          `json:"accountID"`
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrencyCode   string          `json:"currencyCode"`
	Description    string          `json:"description"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}
