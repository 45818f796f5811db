package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/platform/metrics"
	"github.com/google/uuid"
)

// ledgerService implements the posting and reversal workflows.
type ledgerService struct {
	BaseService
	accounts        portsrepo.AccountReader
	entries         portsrepo.JournalEntryReader
	vouchers        portssvc.VoucherNumberGenerator
	defaultCurrency string
}

// NewLedgerService creates a new LedgerService. defaultCurrency applies to requests that name no currency.
func NewLedgerService(repos portsrepo.RepositoryProvider, vouchers portssvc.VoucherNumberGenerator, defaultCurrency string, options ...ServiceOption) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService:     newBaseService(repos.UnitOfWork, options...),
		accounts:        repos.Accounts,
		entries:         repos.JournalEntries,
		vouchers:        vouchers,
		defaultCurrency: defaultCurrency,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// postingSet collects the accounts touched by one workflow attempt.
// An account referenced by several lines is loaded once and mutated once per line.
type postingSet struct {
	reader   portsrepo.AccountReader
	byID     map[uuid.UUID]*domain.Account
	accounts []*domain.Account
}

func newPostingSet(reader portsrepo.AccountReader) *postingSet {
	return &postingSet{reader: reader, byID: make(map[uuid.UUID]*domain.Account)}
}

func (p *postingSet) resolve(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	if account, ok := p.byID[accountID]; ok {
		return account, nil
	}
	account, err := p.reader.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	p.byID[accountID] = account
	p.accounts = append(p.accounts, account)
	return account, nil
}

// commitEntry persists the touched accounts and the new entry as one unit.
func (s *ledgerService) commitEntry(ctx context.Context, operation string, accounts []*domain.Account, entry *domain.JournalEntry) error {
	return s.withUnit(ctx, operation, func(ctx context.Context, unit portsrepo.Unit) error {
		for _, account := range accounts {
			if err := unit.Accounts().SaveAccount(ctx, account); err != nil {
				return err
			}
		}
		return unit.JournalEntries().SaveJournalEntry(ctx, entry)
	})
}

// RecordJournalEntry resolves, applies, constructs and commits a journal entry.
// The whole workflow restarts with fresh account reads when the commit hits a conflict.
func (s *ledgerService) RecordJournalEntry(ctx context.Context, req dto.RecordJournalEntryRequest) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx)

	currency := req.CurrencyCode
	if currency == "" {
		currency = s.defaultCurrency
	}

	entry, err := retryOnConflict(ctx, &s.BaseService, metrics.OpPost, func() (*domain.JournalEntry, error) {
		return s.recordOnce(ctx, req, currency)
	})
	if err != nil {
		s.metrics.WorkflowFailed(metrics.OpPost, err)
		s.LogFailure(ctx, err, "Failed to record journal entry",
			slog.String("description", req.Description),
			slog.Int("line_count", len(req.Lines)))
		return nil, err
	}

	s.metrics.EntryRecorded(metrics.OpPost)
	logger.Info("Journal entry recorded",
		slog.String("entry_id", entry.ID().String()),
		slog.String("voucher_number", entry.Voucher().Number()),
		slog.Int("line_count", len(req.Lines)))
	return entry, nil
}

func (s *ledgerService) recordOnce(ctx context.Context, req dto.RecordJournalEntryRequest, currency string) (*domain.JournalEntry, error) {
	// Checked before a voucher number is drawn.
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: entry date must be set", apperrors.ErrInvalidValue)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: entry description must not be blank", apperrors.ErrInvalidValue)
	}

	postings := newPostingSet(s.accounts)
	lines := make([]domain.TransactionLine, 0, len(req.Lines))

	for i, reqLine := range req.Lines {
		if !reqLine.Side.IsValid() {
			return nil, fmt.Errorf("%w: line %d has unknown side %q", apperrors.ErrInvalidValue, i, reqLine.Side)
		}
		account, err := postings.resolve(ctx, reqLine.AccountID)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		amount, err := domain.NewMoney(currency, reqLine.Amount)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}

		line := domain.NewTransactionLine(account.ID(), amount, reqLine.IsDebit())
		account.Post(line.Side(), amount.Amount())
		lines = append(lines, line)
	}

	number, err := s.vouchers.Generate(ctx, domain.CalendarDate(req.Date.Time))
	if err != nil {
		return nil, asPersistence("failed to generate voucher number", err)
	}
	voucher, err := domain.NewVoucher(number)
	if err != nil {
		return nil, err
	}

	entry, err := domain.NewJournalEntry(req.Date.Time, req.Description, voucher, lines)
	if err != nil {
		return nil, err
	}

	if err := s.commitEntry(ctx, metrics.OpPost, postings.accounts, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ReverseJournalEntry loads an entry, derives its mirror and re-posts it to the accounts.
func (s *ledgerService) ReverseJournalEntry(ctx context.Context, entryID uuid.UUID, reversalDate time.Time) (*domain.JournalEntry, error) {
	logger := s.GetLogger(ctx).With(slog.String("original_entry_id", entryID.String()))

	reversal, err := retryOnConflict(ctx, &s.BaseService, metrics.OpReverse, func() (*domain.JournalEntry, error) {
		return s.reverseOnce(ctx, entryID, reversalDate)
	})
	if err != nil {
		s.metrics.WorkflowFailed(metrics.OpReverse, err)
		s.LogFailure(ctx, err, "Failed to reverse journal entry", slog.String("original_entry_id", entryID.String()))
		return nil, err
	}

	s.metrics.EntryRecorded(metrics.OpReverse)
	logger.Info("Journal entry reversed",
		slog.String("entry_id", reversal.ID().String()),
		slog.String("voucher_number", reversal.Voucher().Number()))
	return reversal, nil
}

func (s *ledgerService) reverseOnce(ctx context.Context, entryID uuid.UUID, reversalDate time.Time) (*domain.JournalEntry, error) {
	original, err := s.entries.FindJournalEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	reversal, err := domain.ReverseJournalEntry(original, reversalDate)
	if err != nil {
		return nil, err
	}

	postings := newPostingSet(s.accounts)
	for _, line := range reversal.Lines() {
		account, err := postings.resolve(ctx, line.AccountID())
		if err != nil {
			return nil, err
		}
		account.Post(line.Side(), line.Amount().Amount())
	}

	if err := s.commitEntry(ctx, metrics.OpReverse, postings.accounts, reversal); err != nil {
		return nil, err
	}
	return reversal, nil
}

// GetJournalEntry retrieves an entry by its identifier.
func (s *ledgerService) GetJournalEntry(ctx context.Context, entryID uuid.UUID) (*domain.JournalEntry, error) {
	entry, err := s.entries.FindJournalEntryByID(ctx, entryID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get journal entry", slog.String("entry_id", entryID.String()))
		return nil, err
	}
	return entry, nil
}
