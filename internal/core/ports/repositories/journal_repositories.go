package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/google/uuid"
)

// JournalEntryReader defines read operations for journal entries
type JournalEntryReader interface {
	// FindJournalEntryByID retrieves an entry with its lines.
	// It returns apperrors.ErrEntryNotFound when no such entry exists.
	FindJournalEntryByID(ctx context.Context, entryID uuid.UUID) (*domain.JournalEntry, error)
}

// JournalEntryWriter defines write operations for journal entries
type JournalEntryWriter interface {
	// SaveJournalEntry stages the insert of an entry and its lines. Entries are written once.
	SaveJournalEntry(ctx context.Context, entry *domain.JournalEntry) error
}
