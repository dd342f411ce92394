package dto

import (
	"time"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the payload for creating an account.
type CreateAccountRequest struct {
	Name           string          `json:"name" binding:"required,max=120"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3"`
	Description    string          `json:"description,omitempty"`
}

// UpdateAccountRequest is the payload for account-level edits.
type UpdateAccountRequest struct {
	Name           *string          `json:"name,omitempty" binding:"omitempty,max=120"`
	InitialBalance *decimal.Decimal `json:"initialBalance,omitempty"`
	Description    *string          `json:"description,omitempty"`
}

// AccountResponse is the wire representation of an account.
type AccountResponse struct {
	AccountID      string          `json:"accountID"`
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrencyCode   string          `json:"currencyCode"`
	Description    string          `json:"description,omitempty"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain Account into its wire representation.
func ToAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      a.AccountID,
		Name:           a.Name,
		InitialBalance: a.InitialBalance,
		CurrencyCode:   a.CurrencyCode,
		Description:    a.Description,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
		LastUpdatedAt:  a.LastUpdatedAt,
	}
}
