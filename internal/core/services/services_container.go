package services

import (
	portsrepo "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/repositories"
	portssvc "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/services"
)

// NewServicesContainer wires all services from their repository dependencies.
func NewServicesContainer(repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher) portssvc.ServicesProvider {
	return portssvc.ServicesProvider{
		Ledger:   NewLedgerService(repos.EntryRepo, repos.AccountRepo, repos.CategoryRepo, publisher),
		Account:  NewAccountService(repos.AccountRepo),
		Category: NewCategoryService(repos.CategoryRepo),
	}
}
