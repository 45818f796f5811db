package pgsql

import (
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the PostgreSQL stores and unit of work onto dbPool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Accounts:       newPgxAccountRepository(dbPool),
		JournalEntries: newPgxJournalEntryRepository(dbPool),
		UnitOfWork:     newPgxUnitOfWork(dbPool),
	}
}
