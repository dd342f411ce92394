package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/apperrors"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	portssvc "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/services"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/services"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	accountA = "7b0f4f7e-5a42-4a6e-9d9e-1a2b3c4d5e6f"
	accountB = "2f6a1c3d-8e9b-4a5c-b6d7-e8f9a0b1c2d3"
	day1     = "2024-03-01"
	day15    = "2024-03-02" // between day1 and day2
	day2     = "2024-03-03"
	day3     = "2024-03-05"
	day35    = "2024-03-06" // after day3
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type ledgerFixture struct {
	svc          portssvc.LedgerSvcFacade
	store        *fakeEntryStore
	accountRepo  *MockAccountRepository
	categoryRepo *MockCategoryRepository
	publisher    *capturingPublisher
}

func newLedgerFixture() *ledgerFixture {
	store := newFakeEntryStore()
	accountRepo := new(MockAccountRepository)
	categoryRepo := new(MockCategoryRepository)
	publisher := &capturingPublisher{}
	return &ledgerFixture{
		svc:          services.NewLedgerService(store, accountRepo, categoryRepo, publisher),
		store:        store,
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
	}
}

func (f *ledgerFixture) seedAccount(accountID, initialBalance string) {
	f.accountRepo.On("FindAccountByID", mock.Anything, accountID).Return(&domain.Account{
		AccountID:      accountID,
		Name:           "checking",
		InitialBalance: dec(initialBalance),
		CurrencyCode:   "USD",
		IsActive:       true,
	}, nil)
}

func (f *ledgerFixture) create(t *testing.T, accountID, amount, occurredOn string) *domain.Entry {
	t.Helper()
	entry, err := f.svc.CreateEntry(context.Background(), dto.CreateEntryRequest{
		AccountID:    accountID,
		SignedAmount: dec(amount),
		OccurredOn:   occurredOn,
	}, "tester")
	require.NoError(t, err)
	return entry
}

// chainDeltas reads the account's stored cumulative deltas in chronological order.
func (f *ledgerFixture) chainDeltas(t *testing.T, accountID string) []string {
	t.Helper()
	chain, err := f.store.ListAccountChain(context.Background(), accountID)
	require.NoError(t, err)
	out := make([]string, len(chain))
	for i := range chain {
		out[i] = chain[i].CumulativeDelta.String()
	}
	return out
}

func (f *ledgerFixture) requireValidChain(t *testing.T, accountID string) {
	t.Helper()
	resp, err := f.svc.VerifyAccountChain(context.Background(), accountID)
	require.NoError(t, err)
	require.True(t, resp.Valid, "cumulative delta chain broken at %v", resp.BrokenAtEntry)
}

func TestCreateEntry_ChronologicalInserts(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "1000")

	f.create(t, accountA, "500", day1)
	f.create(t, accountA, "-50", day2)
	f.create(t, accountA, "-100", day3)

	assert.Equal(t, []string{"500", "450", "350"}, f.chainDeltas(t, accountA))

	balance, err := f.svc.GetBalance(context.Background(), accountA)
	require.NoError(t, err)
	assert.True(t, dec("1350").Equal(balance), "got %s", balance)
	f.requireValidChain(t, accountA)
}

func TestCreateEntry_BackdatedInsertShiftsLaterEntries(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	f.create(t, accountA, "-50", day2)
	f.create(t, accountA, "-100", day3)

	// Lands between day1 and day2; both later entries absorb it.
	backdated := f.create(t, accountA, "-50", day15)
	assert.True(t, dec("450").Equal(backdated.CumulativeDelta))

	assert.Equal(t, []string{"500", "450", "400", "300"}, f.chainDeltas(t, accountA))
	f.requireValidChain(t, accountA)
}

func TestCreateEntry_SameDateOrderedByInsertion(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	a := f.create(t, accountA, "100", day1)
	b := f.create(t, accountA, "10", day1)
	c := f.create(t, accountA, "1", day1)

	require.Less(t, a.Sequence, b.Sequence)
	require.Less(t, b.Sequence, c.Sequence)
	assert.Equal(t, []string{"100", "110", "111"}, f.chainDeltas(t, accountA))
}

func TestCreateEntry_Validation(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	testCases := []struct {
		name    string
		req     dto.CreateEntryRequest
		wantErr error
	}{
		{
			name:    "zero amount",
			req:     dto.CreateEntryRequest{AccountID: accountA, SignedAmount: dec("0"), OccurredOn: day1},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "more than two decimal places",
			req:     dto.CreateEntryRequest{AccountID: accountA, SignedAmount: dec("10.005"), OccurredOn: day1},
			wantErr: apperrors.ErrValidation,
		},
		{
			name:    "malformed date",
			req:     dto.CreateEntryRequest{AccountID: accountA, SignedAmount: dec("10"), OccurredOn: "03/01/2024"},
			wantErr: apperrors.ErrValidation,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateEntry(context.Background(), tc.req, "tester")
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	chain, err := f.store.ListAccountChain(context.Background(), accountA)
	require.NoError(t, err)
	assert.Empty(t, chain, "rejected requests must not write entries")
}

func TestCreateEntry_UnknownAccount(t *testing.T) {
	f := newLedgerFixture()
	f.accountRepo.On("FindAccountByID", mock.Anything, accountA).Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.CreateEntry(context.Background(), dto.CreateEntryRequest{
		AccountID:    accountA,
		SignedAmount: dec("10"),
		OccurredOn:   day1,
	}, "tester")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestCreateEntry_InactiveAccount(t *testing.T) {
	f := newLedgerFixture()
	f.accountRepo.On("FindAccountByID", mock.Anything, accountA).Return(&domain.Account{
		AccountID: accountA,
		IsActive:  false,
	}, nil)

	_, err := f.svc.CreateEntry(context.Background(), dto.CreateEntryRequest{
		AccountID:    accountA,
		SignedAmount: dec("10"),
		OccurredOn:   day1,
	}, "tester")
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)
}

func TestCreateEntry_UnknownCategory(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")
	categoryID := "e1a2b3c4-d5e6-47f8-9a0b-1c2d3e4f5a6b"
	f.categoryRepo.On("FindCategoryByID", mock.Anything, categoryID).Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.CreateEntry(context.Background(), dto.CreateEntryRequest{
		AccountID:    accountA,
		SignedAmount: dec("10"),
		OccurredOn:   day1,
		CategoryID:   &categoryID,
	}, "tester")
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestUpdateEntry_AmountOnly(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	target := f.create(t, accountA, "-50", day2)
	f.create(t, accountA, "-100", day3)

	updated, err := f.svc.UpdateEntry(context.Background(), target.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("-20"),
		OccurredOn:   day2,
	}, "tester")
	require.NoError(t, err)

	assert.True(t, dec("480").Equal(updated.CumulativeDelta))
	assert.Equal(t, []string{"500", "480", "380"}, f.chainDeltas(t, accountA))
	f.requireValidChain(t, accountA)
}

func TestUpdateEntry_NoOpSkipsChain(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	target := f.create(t, accountA, "-50", day2)
	f.create(t, accountA, "-100", day3)

	notes := "groceries"
	updated, err := f.svc.UpdateEntry(context.Background(), target.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("-50"),
		OccurredOn:   day2,
		Notes:        &notes,
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, "groceries", updated.Notes)
	assert.True(t, target.CumulativeDelta.Equal(updated.CumulativeDelta))
	assert.Equal(t, []string{"500", "450", "350"}, f.chainDeltas(t, accountA))
}

func TestUpdateEntry_DateMoveForward(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	target := f.create(t, accountA, "-50", day2)
	f.create(t, accountA, "-100", day3)

	updated, err := f.svc.UpdateEntry(context.Background(), target.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("-50"),
		OccurredOn:   day35,
	}, "tester")
	require.NoError(t, err)

	// day3's entry no longer follows the moved one and sheds its amount;
	// the moved entry is now last.
	assert.True(t, dec("350").Equal(updated.CumulativeDelta))
	assert.Equal(t, []string{"500", "400", "350"}, f.chainDeltas(t, accountA))
	f.requireValidChain(t, accountA)
}

func TestUpdateEntry_DateMoveForwardLastEntry(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	f.create(t, accountA, "-50", day2)
	target := f.create(t, accountA, "-100", day3)

	// Nothing sits between the old and new position; the moved entry is its
	// own predecessor and its delta must not change.
	updated, err := f.svc.UpdateEntry(context.Background(), target.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("-100"),
		OccurredOn:   day35,
	}, "tester")
	require.NoError(t, err)

	assert.True(t, dec("350").Equal(updated.CumulativeDelta))
	assert.Equal(t, []string{"500", "450", "350"}, f.chainDeltas(t, accountA))
	f.requireValidChain(t, accountA)
}

func TestUpdateEntry_DateMoveForwardLastEntryWithAmountChange(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	f.create(t, accountA, "-50", day2)
	target := f.create(t, accountA, "-100", day3)

	updated, err := f.svc.UpdateEntry(context.Background(), target.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("-150"),
		OccurredOn:   day35,
	}, "tester")
	require.NoError(t, err)

	assert.True(t, dec("300").Equal(updated.CumulativeDelta))
	assert.Equal(t, []string{"500", "450", "300"}, f.chainDeltas(t, accountA))
	f.requireValidChain(t, accountA)
}

func TestUpdateEntry_DateMoveForwardOnlyEntry(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	target := f.create(t, accountA, "100", day1)

	updated, err := f.svc.UpdateEntry(context.Background(), target.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("100"),
		OccurredOn:   day3,
	}, "tester")
	require.NoError(t, err)

	assert.True(t, dec("100").Equal(updated.CumulativeDelta))
	assert.Equal(t, []string{"100"}, f.chainDeltas(t, accountA))
	f.requireValidChain(t, accountA)
}

func TestUpdateEntry_DateMoveBackward(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	f.create(t, accountA, "-50", day2)
	target := f.create(t, accountA, "-100", day3)

	updated, err := f.svc.UpdateEntry(context.Background(), target.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("-100"),
		OccurredOn:   day15,
	}, "tester")
	require.NoError(t, err)

	assert.True(t, dec("400").Equal(updated.CumulativeDelta))
	assert.Equal(t, []string{"500", "400", "350"}, f.chainDeltas(t, accountA))
	f.requireValidChain(t, accountA)
}

func TestUpdateEntry_DateMoveForwardWithAmountChange(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	target := f.create(t, accountA, "-50", day2)
	f.create(t, accountA, "-100", day3)

	updated, err := f.svc.UpdateEntry(context.Background(), target.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("-80"),
		OccurredOn:   day35,
	}, "tester")
	require.NoError(t, err)

	assert.True(t, dec("320").Equal(updated.CumulativeDelta))
	assert.Equal(t, []string{"500", "400", "320"}, f.chainDeltas(t, accountA))
	f.requireValidChain(t, accountA)
}

func TestUpdateEntry_DateMoveBackwardWithAmountChange(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	f.create(t, accountA, "-50", day2)
	target := f.create(t, accountA, "-100", day3)

	updated, err := f.svc.UpdateEntry(context.Background(), target.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("-200"),
		OccurredOn:   day15,
	}, "tester")
	require.NoError(t, err)

	assert.True(t, dec("300").Equal(updated.CumulativeDelta))
	assert.Equal(t, []string{"500", "300", "250"}, f.chainDeltas(t, accountA))
	f.requireValidChain(t, accountA)
}

func TestUpdateEntry_UnknownEntry(t *testing.T) {
	f := newLedgerFixture()

	_, err := f.svc.UpdateEntry(context.Background(), "missing", dto.UpdateEntryRequest{
		SignedAmount: dec("10"),
		OccurredOn:   day1,
	}, "tester")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteEntry_MiddleOfChain(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	target := f.create(t, accountA, "-50", day2)
	f.create(t, accountA, "-100", day3)

	require.NoError(t, f.svc.DeleteEntry(context.Background(), target.EntryID))

	assert.Equal(t, []string{"500", "400"}, f.chainDeltas(t, accountA))
	f.requireValidChain(t, accountA)

	_, err := f.svc.GetEntry(context.Background(), target.EntryID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteEntry_Unknown(t *testing.T) {
	f := newLedgerFixture()
	err := f.svc.DeleteEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMutations_DoNotAffectOtherAccounts(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")
	f.seedAccount(accountB, "0")

	f.create(t, accountA, "500", day1)
	f.create(t, accountA, "-50", day2)
	other := f.create(t, accountB, "300", day1)

	f.create(t, accountB, "-25", day15)
	_, err := f.svc.UpdateEntry(context.Background(), other.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("100"),
		OccurredOn:   day2,
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, []string{"500", "450"}, f.chainDeltas(t, accountA))
	assert.Equal(t, []string{"-25", "75"}, f.chainDeltas(t, accountB))
	f.requireValidChain(t, accountA)
	f.requireValidChain(t, accountB)
}

func TestChainStaysConsistentAcrossMixedMutations(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	e1 := f.create(t, accountA, "120.50", day1)
	e2 := f.create(t, accountA, "-30.25", day2)
	f.create(t, accountA, "-10", day2)
	e4 := f.create(t, accountA, "75", day3)

	_, err := f.svc.UpdateEntry(context.Background(), e2.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("-45.75"),
		OccurredOn:   day15,
	}, "tester")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteEntry(context.Background(), e1.EntryID))

	_, err = f.svc.UpdateEntry(context.Background(), e4.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("80"),
		OccurredOn:   day1,
	}, "tester")
	require.NoError(t, err)

	f.create(t, accountA, "-5.10", day35)

	resp, err := f.svc.VerifyAccountChain(context.Background(), accountA)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, 4, resp.EntriesChecked)
}

func TestVerifyAccountChain_DetectsCorruption(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	broken := f.create(t, accountA, "-50", day2)
	f.create(t, accountA, "-100", day3)

	f.store.entries[broken.EntryID].CumulativeDelta = dec("999")

	resp, err := f.svc.VerifyAccountChain(context.Background(), accountA)
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	require.NotNil(t, resp.BrokenAtEntry)
	assert.Equal(t, broken.EntryID, *resp.BrokenAtEntry)
}

func TestGetBalance_EmptyAccountIsInitialBalance(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "250.75")

	balance, err := f.svc.GetBalance(context.Background(), accountA)
	require.NoError(t, err)
	assert.True(t, dec("250.75").Equal(balance))
}

func TestGetBalanceAsOf(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "1000")

	f.create(t, accountA, "500", day1)
	f.create(t, accountA, "-50", day2)
	f.create(t, accountA, "-100", day3)

	asOf := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	balance, err := f.svc.GetBalanceAsOf(context.Background(), accountA, asOf)
	require.NoError(t, err)
	assert.True(t, dec("1450").Equal(balance), "got %s", balance)

	beforeAll := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	balance, err = f.svc.GetBalanceAsOf(context.Background(), accountA, beforeAll)
	require.NoError(t, err)
	assert.True(t, dec("1000").Equal(balance))
}

func TestGetBalance_UnknownAccount(t *testing.T) {
	f := newLedgerFixture()
	f.accountRepo.On("FindAccountByID", mock.Anything, accountA).Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.GetBalance(context.Background(), accountA)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestListEntries_NewestFirstWithCursor(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	f.create(t, accountA, "500", day1)
	f.create(t, accountA, "-50", day2)
	f.create(t, accountA, "-100", day3)

	page, err := f.svc.ListEntries(context.Background(), accountA, dto.ListEntriesRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, day3, page.Entries[0].OccurredOn)
	assert.Equal(t, day2, page.Entries[1].OccurredOn)
	require.NotNil(t, page.NextToken)

	next, err := f.svc.ListEntries(context.Background(), accountA, dto.ListEntriesRequest{Limit: 2, NextToken: page.NextToken})
	require.NoError(t, err)
	require.Len(t, next.Entries, 1)
	assert.Equal(t, day1, next.Entries[0].OccurredOn)
	assert.Nil(t, next.NextToken)
}

func TestMutationEventsPublished(t *testing.T) {
	f := newLedgerFixture()
	f.seedAccount(accountA, "0")

	entry := f.create(t, accountA, "500", day1)
	_, err := f.svc.UpdateEntry(context.Background(), entry.EntryID, dto.UpdateEntryRequest{
		SignedAmount: dec("600"),
		OccurredOn:   day1,
	}, "tester")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteEntry(context.Background(), entry.EntryID))

	require.Len(t, f.publisher.events, 3)
	assert.Equal(t, domain.OpCreate, f.publisher.events[0].Op)
	assert.Equal(t, domain.OpUpdate, f.publisher.events[1].Op)
	assert.Equal(t, domain.OpDelete, f.publisher.events[2].Op)
	for _, event := range f.publisher.events {
		assert.Equal(t, accountA, event.AccountID)
		assert.Equal(t, entry.EntryID, event.EntryID)
	}
}
