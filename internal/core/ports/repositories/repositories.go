package repositories

// RepositoryProvider holds the storage collaborators needed by services.
// Reads go straight to the stores; writes go through units opened on UnitOfWork.
type RepositoryProvider struct {
	Accounts       AccountReader
	JournalEntries JournalEntryReader
	UnitOfWork     UnitOfWork
}
