package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/apperrors"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	portsrepo "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/repositories"
	portssvc "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/services"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/dto"
)

// accountService provides account collaborator operations. Accounts are plain
// reference data for the ledger core; only their initial balance matters to it,
// and only account-level edits here ever change that value.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	if req.InitialBalance.Exponent() < -2 {
		return nil, fmt.Errorf("%w: initial balance %s exceeds 2-digit decimal precision", apperrors.ErrValidation, req.InitialBalance)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		Name:           req.Name,
		InitialBalance: req.InitialBalance,
		CurrencyCode:   req.CurrencyCode,
		Description:    req.Description,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "failed to create account", slog.String("name", req.Name))
		return nil, err
	}
	return &account, nil
}

// GetAccountByID retrieves a specific account by its ID.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.accountRepo.ListAccounts(ctx, limit, offset)
}

// UpdateAccount applies account-level edits.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.InitialBalance != nil {
		if req.InitialBalance.Exponent() < -2 {
			return nil, fmt.Errorf("%w: initial balance %s exceeds 2-digit decimal precision", apperrors.ErrValidation, req.InitialBalance)
		}
		account.InitialBalance = *req.InitialBalance
	}
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = requestingUserID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

// DeactivateAccount marks an account as inactive. Its ledger history stays intact.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, requestingUserID string) error {
	err := s.accountRepo.DeactivateAccount(ctx, accountID, requestingUserID, time.Now().UTC())
	if err != nil && errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrAccountNotFound
	}
	return err
}
