package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/ledgerkeeper/ledger_keeper_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgsql repositories from one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EntryRepo:    NewEntryRepository(pool),
		AccountRepo:  NewAccountRepository(pool),
		CategoryRepo: NewCategoryRepository(pool),
	}
}
