package repositories

import "context"

// UnitOfWork opens atomic units.
type UnitOfWork interface {
	// Begin opens a unit. The caller must end it with exactly one Commit or Rollback;
	// Rollback after a successful Commit is a no-op.
	Begin(ctx context.Context) (Unit, error)
}

// Unit groups writes that become visible together on Commit or not at all.
type Unit interface {
	Accounts() AccountWriter
	JournalEntries() JournalEntryWriter

	// Commit applies every staged write. On error none of them is observable.
	Commit(ctx context.Context) error

	// Rollback discards staged writes.
	Rollback(ctx context.Context) error
}
