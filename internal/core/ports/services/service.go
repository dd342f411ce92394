package services

import (
	"context"

	"github.com/ledgerkeeper/ledger_keeper_app/internal/core/domain"
)

// EventPublisher emits events after ledger mutations commit. Implementations
// must tolerate being called with a cancelled context; publish failures are
// logged by the caller and never affect the committed mutation.
type EventPublisher interface {
	PublishEntryMutation(ctx context.Context, event domain.EntryMutationEvent) error
}

// ServicesProvider holds all service facades for handler registration.
type ServicesProvider struct {
	Ledger   LedgerSvcFacade
	Account  AccountSvcFacade
	Category CategorySvcFacade
}
