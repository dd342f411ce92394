package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/apperrors"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/ordering"
	portsrepo "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/repositories"
	"github.com/ledgerkeeper/ledger_keeper_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

// --- Mock CategoryRepository ---

type MockCategoryRepository struct {
	mock.Mock
}

var _ portsrepo.CategoryRepositoryFacade = (*MockCategoryRepository)(nil)

func (m *MockCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) SaveCategory(ctx context.Context, category domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

// --- Capturing event publisher ---

type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.EntryMutationEvent
}

func (p *capturingPublisher) PublishEntryMutation(_ context.Context, event domain.EntryMutationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// --- In-memory fake ledger store ---

// fakeEntryStore behaves like the pgsql entry repository against an in-memory
// map: same ordering, same strict range semantics, same sequence assignment.
// RunAccountTx runs the unit directly; there is nothing to roll back here, so
// tests that need rollback behavior live with the real repository.
type fakeEntryStore struct {
	mu      sync.Mutex
	entries map[string]*domain.Entry
	nextSeq int64
}

var _ portsrepo.EntryRepositoryFacade = (*fakeEntryStore)(nil)

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[string]*domain.Entry), nextSeq: 1}
}

func (f *fakeEntryStore) RunAccountTx(_ context.Context, _ string, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func pos(e *domain.Entry) ordering.Position {
	return ordering.At(e.OccurredOn, e.Sequence)
}

// sortedChain returns the account's entries in chronological order.
func (f *fakeEntryStore) sortedChain(accountID string) []*domain.Entry {
	var chain []*domain.Entry
	for _, e := range f.entries {
		if e.AccountID == accountID {
			chain = append(chain, e)
		}
	}
	sort.Slice(chain, func(i, j int) bool {
		return ordering.Before(pos(chain[i]), pos(chain[j]))
	})
	return chain
}

func (f *fakeEntryStore) FindEntryByID(_ context.Context, entryID string) (*domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[entryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntryStore) FindEntryForUpdate(ctx context.Context, _ pgx.Tx, entryID string) (*domain.Entry, error) {
	return f.FindEntryByID(ctx, entryID)
}

func (f *fakeEntryStore) DeltaBefore(_ context.Context, _ pgx.Tx, accountID string, p ordering.Position) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delta := decimal.Zero
	var best *domain.Entry
	for _, e := range f.entries {
		if e.AccountID != accountID {
			continue
		}
		if ordering.Before(pos(e), p) && (best == nil || ordering.After(pos(e), pos(best))) {
			best = e
		}
	}
	if best != nil {
		delta = best.CumulativeDelta
	}
	return delta, nil
}

func (f *fakeEntryStore) InsertEntry(_ context.Context, _ pgx.Tx, entry domain.Entry) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.Sequence = f.nextSeq
	f.nextSeq++
	cp := entry
	f.entries[entry.EntryID] = &cp
	return entry.Sequence, nil
}

func (f *fakeEntryStore) UpdateEntry(_ context.Context, _ pgx.Tx, entry domain.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[entry.EntryID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := entry
	f.entries[entry.EntryID] = &cp
	return nil
}

func (f *fakeEntryStore) DeleteEntry(_ context.Context, _ pgx.Tx, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[entryID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.entries, entryID)
	return nil
}

func (f *fakeEntryStore) ShiftAfter(_ context.Context, _ pgx.Tx, accountID string, p ordering.Position, delta decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.AccountID == accountID && ordering.After(pos(e), p) {
			e.CumulativeDelta = e.CumulativeDelta.Add(delta)
		}
	}
	return nil
}

func (f *fakeEntryStore) ShiftBetween(_ context.Context, _ pgx.Tx, accountID string, lo, hi ordering.Position, delta decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.AccountID == accountID && ordering.After(pos(e), lo) && ordering.Before(pos(e), hi) {
			e.CumulativeDelta = e.CumulativeDelta.Add(delta)
		}
	}
	return nil
}

func (f *fakeEntryStore) LatestDelta(_ context.Context, accountID string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chain := f.sortedChain(accountID)
	if len(chain) == 0 {
		return decimal.Zero, nil
	}
	return chain[len(chain)-1].CumulativeDelta, nil
}

func (f *fakeEntryStore) DeltaAsOf(_ context.Context, accountID string, date time.Time) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chain := f.sortedChain(accountID)
	delta := decimal.Zero
	for _, e := range chain {
		if e.OccurredOn.After(date) {
			break
		}
		delta = e.CumulativeDelta
	}
	return delta, nil
}

func (f *fakeEntryStore) ListAccountChain(_ context.Context, accountID string) ([]domain.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chain := f.sortedChain(accountID)
	out := make([]domain.Entry, len(chain))
	for i, e := range chain {
		out[i] = *e
	}
	return out, nil
}

func (f *fakeEntryStore) ListEntries(_ context.Context, accountID string, filter portsrepo.EntryFilter, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}

	chain := f.sortedChain(accountID)
	// Newest first, like the real repository.
	var out []domain.Entry
	for i := len(chain) - 1; i >= 0; i-- {
		e := chain[i]
		if !filter.From.IsZero() && e.OccurredOn.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.OccurredOn.After(filter.To) {
			continue
		}
		if filter.CategoryID != "" && (e.CategoryID == nil || *e.CategoryID != filter.CategoryID) {
			continue
		}
		out = append(out, *e)
	}

	if nextToken != nil && *nextToken != "" {
		cursorDate, cursorSeq, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, err
		}
		cursor := ordering.At(cursorDate, cursorSeq)
		filtered := out[:0]
		for _, e := range out {
			if ordering.Before(ordering.At(e.OccurredOn, e.Sequence), cursor) {
				filtered = append(filtered, e)
			}
		}
		out = filtered
	}

	var token *string
	if len(out) > limit {
		out = out[:limit]
		last := out[limit-1]
		t := pagination.EncodeToken(last.OccurredOn, last.Sequence)
		token = &t
	}
	return out, token, nil
}
