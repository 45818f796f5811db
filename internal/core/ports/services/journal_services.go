package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/google/uuid"
)

// LedgerReaderSvc defines read operations for journal entries
type LedgerReaderSvc interface {
	GetJournalEntry(ctx context.Context, entryID uuid.UUID) (*domain.JournalEntry, error)
}

// LedgerPostingSvc defines the posting and reversal workflows.
type LedgerPostingSvc interface {
	// RecordJournalEntry posts a balanced entry and applies its lines to the accounts, atomically.
	RecordJournalEntry(ctx context.Context, req dto.RecordJournalEntryRequest) (*domain.JournalEntry, error)

	// ReverseJournalEntry posts the mirror entry of an existing entry, atomically.
	ReverseJournalEntry(ctx context.Context, entryID uuid.UUID, reversalDate time.Time) (*domain.JournalEntry, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerPostingSvc
}
