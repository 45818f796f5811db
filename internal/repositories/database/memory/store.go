package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/google/uuid"
)

// Store keeps accounts and journal entries in process memory.
// It honours the same unit contract as the PostgreSQL stores: writes are staged
// in a unit, version-checked and applied together on Commit.
type Store struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
	names    map[string]uuid.UUID
	entries  map[uuid.UUID]*domain.JournalEntry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]*domain.Account),
		names:    make(map[string]uuid.UUID),
		entries:  make(map[uuid.UUID]*domain.JournalEntry),
	}
}

var (
	_ portsrepo.AccountReader      = (*Store)(nil)
	_ portsrepo.JournalEntryReader = (*Store)(nil)
	_ portsrepo.UnitOfWork         = (*Store)(nil)
)

// Provider exposes the store as a RepositoryProvider.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Accounts:       s,
		JournalEntries: s,
		UnitOfWork:     s,
	}
}

// FindAccountByID returns a copy of the stored account.
func (s *Store) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return account.Clone(), nil
}

func (s *Store) ExistsByName(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.names[name]
	return ok, nil
}

// FindJournalEntryByID returns the stored entry. Entries are immutable, so no copy is needed.
func (s *Store) FindJournalEntryByID(ctx context.Context, entryID uuid.UUID) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
	}
	return entry, nil
}

// CountJournalEntries returns the number of stored entries.
func (s *Store) CountJournalEntries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Begin opens a unit. Nothing is locked until Commit.
func (s *Store) Begin(ctx context.Context) (portsrepo.Unit, error) {
	return &unit{
		store:    s,
		accounts: make(map[uuid.UUID]*domain.Account),
	}, nil
}

var errUnitClosed = errors.New("unit of work already closed")

type unit struct {
	store    *Store
	order    []uuid.UUID
	accounts map[uuid.UUID]*domain.Account
	entries  []*domain.JournalEntry
	closed   bool
}

func (u *unit) Accounts() portsrepo.AccountWriter            { return accountWriter{u} }
func (u *unit) JournalEntries() portsrepo.JournalEntryWriter { return entryWriter{u} }

type accountWriter struct{ u *unit }

func (w accountWriter) SaveAccount(ctx context.Context, account *domain.Account) error {
	if w.u.closed {
		return errUnitClosed
	}
	if _, staged := w.u.accounts[account.ID()]; !staged {
		w.u.order = append(w.u.order, account.ID())
	}
	w.u.accounts[account.ID()] = account.Clone()
	return nil
}

type entryWriter struct{ u *unit }

func (w entryWriter) SaveJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	if w.u.closed {
		return errUnitClosed
	}
	w.u.entries = append(w.u.entries, entry)
	return nil
}

// Commit validates every staged write against the current state and applies all of them,
// or none when any check fails.
func (u *unit) Commit(ctx context.Context) error {
	if u.closed {
		return errUnitClosed
	}
	u.closed = true

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	names := maps.Clone(s.names)
	for _, id := range u.order {
		account := u.accounts[id]
		current, exists := s.accounts[id]
		switch {
		case account.Version() == 0 && exists:
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, id)
		case account.Version() != 0 && !exists:
			return fmt.Errorf("%w: account %s no longer exists", apperrors.ErrConflict, id)
		case exists && current.Version() != account.Version():
			return fmt.Errorf("%w: account %s is at version %d, not %d", apperrors.ErrConflict, id, current.Version(), account.Version())
		}
		if exists {
			delete(names, current.Name())
		}
		if owner, taken := names[account.Name()]; taken && owner != id {
			return fmt.Errorf("%w: account named %q", apperrors.ErrDuplicate, account.Name())
		}
		names[account.Name()] = id
	}
	for _, entry := range u.entries {
		if _, exists := s.entries[entry.ID()]; exists {
			return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.ID())
		}
	}

	for _, id := range u.order {
		account := u.accounts[id]
		s.accounts[id] = domain.ReconstructAccount(id, account.Name(), account.Type(), account.Balance(), account.Version()+1)
	}
	for _, entry := range u.entries {
		s.entries[entry.ID()] = entry
	}
	s.names = names
	return nil
}

func (u *unit) Rollback(ctx context.Context) error {
	u.closed = true
	u.accounts = nil
	u.entries = nil
	return nil
}
