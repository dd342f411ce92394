package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/apperrors"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/ordering"
	portsrepo "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/repositories"
	portssvc "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/services"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/dto"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// ledgerService maintains the per-account cumulative delta chain.
//
// The invariant: sorting an account's entries by (occurred_on, sequence) and
// folding cumulative_delta[i] = cumulative_delta[i-1] + signed_amount[i]
// (base 0) reproduces every stored cumulative delta. Each mutation touches the
// written row plus at most two bulk range shifts; nothing else ever writes
// cumulative deltas.
type ledgerService struct {
	BaseService
	entryRepo    portsrepo.EntryRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	categoryRepo portsrepo.CategoryRepositoryFacade
	publisher    portssvc.EventPublisher // optional, may be nil
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(entryRepo portsrepo.EntryRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, categoryRepo portsrepo.CategoryRepositoryFacade, publisher portssvc.EventPublisher) portssvc.LedgerSvcFacade {
	return &ledgerService{
		entryRepo:    entryRepo,
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateEntry inserts a new entry at its chronological position.
//
// The new sequence is assigned by the database and is greater than every
// existing one, so the entry lands after all existing same-date entries. Its
// cumulative delta is the predecessor's plus its own amount; every strictly
// later entry absorbs the amount through one bulk shift.
func (s *ledgerService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.Entry, error) {
	occurredOn, err := parseOccurredOn(req.OccurredOn)
	if err != nil {
		return nil, err
	}
	if err := accounting.ValidateAmount(req.SignedAmount); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.checkReferences(ctx, req.AccountID, req.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.Entry{
		EntryID:      uuid.NewString(),
		AccountID:    req.AccountID,
		CategoryID:   req.CategoryID,
		SignedAmount: req.SignedAmount,
		OccurredOn:   occurredOn,
		Notes:        req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	err = s.entryRepo.RunAccountTx(ctx, entry.AccountID, func(tx pgx.Tx) error {
		// The sequence is not assigned yet but will exceed every existing one,
		// so end-of-day is the entry's effective position for the predecessor read.
		prevDelta, err := s.entryRepo.DeltaBefore(ctx, tx, entry.AccountID, ordering.EndOfDay(occurredOn))
		if err != nil {
			return err
		}
		entry.CumulativeDelta = prevDelta.Add(entry.SignedAmount)

		seq, err := s.entryRepo.InsertEntry(ctx, tx, entry)
		if err != nil {
			return err
		}
		entry.Sequence = seq

		return s.entryRepo.ShiftAfter(ctx, tx, entry.AccountID, ordering.At(occurredOn, seq), entry.SignedAmount)
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "ledger entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("account_id", entry.AccountID),
		slog.String("amount", entry.SignedAmount.String()))
	s.publishMutation(ctx, entry, domain.OpCreate)
	return &entry, nil
}

// UpdateEntry applies an amount and/or date change to an existing entry.
func (s *ledgerService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.Entry, error) {
	newDate, err := parseOccurredOn(req.OccurredOn)
	if err != nil {
		return nil, err
	}
	if err := accounting.ValidateAmount(req.SignedAmount); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	existing, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindCategoryByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, err
		}
	}

	var updated domain.Entry
	err = s.entryRepo.RunAccountTx(ctx, existing.AccountID, func(tx pgx.Tx) error {
		old, err := s.entryRepo.FindEntryForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}

		entry := *old
		entry.CategoryID = req.CategoryID
		if req.Notes != nil {
			entry.Notes = *req.Notes
		}
		entry.LastUpdatedAt = time.Now().UTC()
		entry.LastUpdatedBy = requestingUserID

		amountChanged := !req.SignedAmount.Equal(old.SignedAmount)
		dateChanged := !newDate.Equal(old.OccurredOn)

		switch {
		case !amountChanged && !dateChanged:
			// Nothing that affects the chain changed; persist the mutable
			// columns and skip the bulk scan entirely.
			if err := s.entryRepo.UpdateEntry(ctx, tx, entry); err != nil {
				return err
			}

		case !dateChanged:
			if err := s.applyAmountChange(ctx, tx, &entry, old, req.SignedAmount); err != nil {
				return err
			}

		default:
			if err := s.applyDateMove(ctx, tx, &entry, old, req.SignedAmount, newDate); err != nil {
				return err
			}
		}

		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "ledger entry updated",
		slog.String("entry_id", updated.EntryID),
		slog.String("account_id", updated.AccountID))
	s.publishMutation(ctx, updated, domain.OpUpdate)
	return &updated, nil
}

// applyAmountChange is the fast update path: the date is unchanged, so the
// entry keeps its position and the amount delta ripples over the same range
// an insert at that position would touch.
func (s *ledgerService) applyAmountChange(ctx context.Context, tx pgx.Tx, entry, old *domain.Entry, newAmount decimal.Decimal) error {
	amountDelta := newAmount.Sub(old.SignedAmount)
	entry.SignedAmount = newAmount
	entry.CumulativeDelta = old.CumulativeDelta.Add(amountDelta)

	if err := s.entryRepo.UpdateEntry(ctx, tx, *entry); err != nil {
		return err
	}
	return s.entryRepo.ShiftAfter(ctx, tx, entry.AccountID, ordering.At(old.OccurredOn, old.Sequence), amountDelta)
}

// applyDateMove relocates an entry in the chronological order. The entry keeps
// its sequence; only the date component of its position changes.
//
// Two independent corrections are applied:
//   - the range between the old and new position absorbs or sheds the moved
//     entry depending on direction, and
//   - if the amount also changed, everything strictly after the later of the
//     two positions takes the plain amount correction.
func (s *ledgerService) applyDateMove(ctx context.Context, tx pgx.Tx, entry, old *domain.Entry, newAmount decimal.Decimal, newDate time.Time) error {
	correction := newAmount.Sub(old.SignedAmount)
	amountChanged := !correction.IsZero()

	oldPos := ordering.At(old.OccurredOn, old.Sequence)
	newPos := ordering.At(newDate, old.Sequence)
	movingToPast := ordering.Before(newPos, oldPos)

	// The predecessor must be read before any range shift below rewrites it.
	// On a forward move the predecessor may be the moved row itself (nothing
	// sits between the old and new position); either way it still carries the
	// old amount at this point.
	prevDelta, err := s.entryRepo.DeltaBefore(ctx, tx, entry.AccountID, newPos)
	if err != nil {
		return err
	}

	entry.SignedAmount = newAmount
	entry.OccurredOn = newDate
	if movingToPast {
		// The old position sorts after newPos, so the predecessor read never
		// sees the moved row and its delta is already correct for the new
		// position.
		entry.CumulativeDelta = prevDelta.Add(newAmount)
	} else {
		// Moving forward: the predecessor's delta includes this entry's old
		// amount. Adding the full new amount would double-count, so only the
		// correction applies here; the in-between range sheds the old amount
		// below, which leaves this stored value consistent.
		entry.CumulativeDelta = prevDelta.Add(correction)
	}

	if err := s.entryRepo.UpdateEntry(ctx, tx, *entry); err != nil {
		return err
	}

	if movingToPast {
		// These entries now come after the moved entry and must absorb it.
		if err := s.entryRepo.ShiftBetween(ctx, tx, entry.AccountID, newPos, oldPos, newAmount); err != nil {
			return err
		}
		if amountChanged {
			return s.entryRepo.ShiftAfter(ctx, tx, entry.AccountID, oldPos, correction)
		}
		return nil
	}

	// These entries no longer come after the moved entry's old position and
	// must shed its old amount.
	if err := s.entryRepo.ShiftBetween(ctx, tx, entry.AccountID, oldPos, newPos, old.SignedAmount.Neg()); err != nil {
		return err
	}
	if amountChanged {
		return s.entryRepo.ShiftAfter(ctx, tx, entry.AccountID, newPos, correction)
	}
	return nil
}

// DeleteEntry removes an entry and sheds its amount from every later entry.
func (s *ledgerService) DeleteEntry(ctx context.Context, entryID string) error {
	existing, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}

	var removed domain.Entry
	err = s.entryRepo.RunAccountTx(ctx, existing.AccountID, func(tx pgx.Tx) error {
		// Re-read inside the transaction: a concurrent delete may have won.
		entry, err := s.entryRepo.FindEntryForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}
		removed = *entry

		pos := ordering.At(entry.OccurredOn, entry.Sequence)
		if err := s.entryRepo.ShiftAfter(ctx, tx, entry.AccountID, pos, entry.SignedAmount.Neg()); err != nil {
			return err
		}
		return s.entryRepo.DeleteEntry(ctx, tx, entryID)
	})
	if err != nil {
		return err
	}

	s.LogInfo(ctx, "ledger entry deleted",
		slog.String("entry_id", entryID),
		slog.String("account_id", removed.AccountID))
	s.publishMutation(ctx, removed, domain.OpDelete)
	return nil
}

// GetEntry retrieves a specific entry by its ID.
func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.Entry, error) {
	return s.entryRepo.FindEntryByID(ctx, entryID)
}

// ListEntries retrieves a filtered, paginated list of an account's entries.
func (s *ledgerService) ListEntries(ctx context.Context, accountID string, params dto.ListEntriesRequest) (*dto.ListEntriesResponse, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}

	filter := portsrepo.EntryFilter{CategoryID: params.CategoryID}
	var err error
	if params.From != "" {
		if filter.From, err = parseOccurredOn(params.From); err != nil {
			return nil, err
		}
	}
	if params.To != "" {
		if filter.To, err = parseOccurredOn(params.To); err != nil {
			return nil, err
		}
	}

	entries, nextToken, err := s.entryRepo.ListEntries(ctx, accountID, filter, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponseSlice(entries),
		NextToken: nextToken,
	}, nil
}

// GetBalance returns initial balance plus the latest cumulative delta.
func (s *ledgerService) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, apperrors.ErrAccountNotFound
		}
		return decimal.Zero, err
	}
	delta, err := s.entryRepo.LatestDelta(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.InitialBalance.Add(delta), nil
}

// GetBalanceAsOf returns the balance at the end of the given date.
func (s *ledgerService) GetBalanceAsOf(ctx context.Context, accountID string, date time.Time) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, apperrors.ErrAccountNotFound
		}
		return decimal.Zero, err
	}
	delta, err := s.entryRepo.DeltaAsOf(ctx, accountID, ordering.Date(date))
	if err != nil {
		return decimal.Zero, err
	}
	return account.InitialBalance.Add(delta), nil
}

// VerifyAccountChain re-folds the account's entries in chronological order and
// compares every stored cumulative delta against the recomputed running sum.
func (s *ledgerService) VerifyAccountChain(ctx context.Context, accountID string) (*dto.ChainVerificationResponse, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}

	entries, err := s.entryRepo.ListAccountChain(ctx, accountID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ChainVerificationResponse{
		AccountID:      accountID,
		Valid:          true,
		EntriesChecked: len(entries),
	}
	running := decimal.Zero
	for i := range entries {
		running = running.Add(entries[i].SignedAmount)
		if !running.Equal(entries[i].CumulativeDelta) {
			resp.Valid = false
			resp.BrokenAtEntry = &entries[i].EntryID
			s.LogError(ctx, fmt.Errorf("stored %s, recomputed %s", entries[i].CumulativeDelta, running),
				"cumulative delta chain broken",
				slog.String("account_id", accountID),
				slog.String("entry_id", entries[i].EntryID))
			break
		}
	}
	return resp, nil
}

// checkReferences validates the account and optional category an entry points at.
func (s *ledgerService) checkReferences(ctx context.Context, accountID string, categoryID *string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, accountID)
	}
	if categoryID != nil {
		if _, err := s.categoryRepo.FindCategoryByID(ctx, *categoryID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return err
		}
	}
	return nil
}

// publishMutation emits a post-commit event; failures are logged, never surfaced.
func (s *ledgerService) publishMutation(ctx context.Context, entry domain.Entry, op domain.MutationOp) {
	if s.publisher == nil {
		return
	}
	event := domain.EntryMutationEvent{
		EntryID:    entry.EntryID,
		AccountID:  entry.AccountID,
		Op:         op,
		Amount:     entry.SignedAmount,
		OccurredOn: entry.OccurredOn,
		EmittedAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishEntryMutation(ctx, event); err != nil {
		s.LogError(ctx, err, "failed to publish entry mutation event",
			slog.String("entry_id", entry.EntryID))
	}
}

func parseOccurredOn(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(dto.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: occurred_on must be YYYY-MM-DD: %v", apperrors.ErrValidation, err)
	}
	return ordering.Date(parsed), nil
}
