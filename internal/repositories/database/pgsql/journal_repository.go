package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxJournalEntryRepository struct {
	BaseRepository
}

// newPgxJournalEntryRepository creates a new repository for journal entries and their lines.
func newPgxJournalEntryRepository(pool *pgxpool.Pool) *PgxJournalEntryRepository {
	return &PgxJournalEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalEntryReader = (*PgxJournalEntryRepository)(nil)

func toModelLines(entry *domain.JournalEntry) []models.TransactionLine {
	lines := entry.Lines()
	out := make([]models.TransactionLine, len(lines))
	for i, l := range lines {
		out[i] = models.TransactionLine{
			EntryID:      entry.ID(),
			LineNo:       int32(i + 1),
			AccountID:    l.AccountID(),
			Side:         string(l.Side()),
			Amount:       l.Amount().Amount(),
			CurrencyCode: l.Currency(),
		}
	}
	return out
}

func toDomainJournalEntry(header models.JournalEntry, rows []models.TransactionLine) (*domain.JournalEntry, error) {
	voucher, err := domain.NewVoucher(header.VoucherNumber)
	if err != nil {
		return nil, fmt.Errorf("stored entry %s: %w", header.EntryID, err)
	}
	lines := make([]domain.TransactionLine, len(rows))
	for i, row := range rows {
		side := domain.TransactionType(row.Side)
		if !side.IsValid() {
			return nil, fmt.Errorf("stored entry %s line %d: %w: side %q", header.EntryID, row.LineNo, apperrors.ErrInvalidValue, row.Side)
		}
		amount, err := domain.NewMoney(row.CurrencyCode, row.Amount)
		if err != nil {
			return nil, fmt.Errorf("stored entry %s line %d: %w", header.EntryID, row.LineNo, err)
		}
		lines[i] = domain.NewTransactionLine(row.AccountID, amount, side == domain.Debit)
	}
	return domain.ReconstructJournalEntry(header.EntryID, header.EntryDate, header.Description, voucher, lines), nil
}

// FindJournalEntryByID retrieves an entry and its lines in line order.
func (r *PgxJournalEntryRepository) FindJournalEntryByID(ctx context.Context, entryID uuid.UUID) (*domain.JournalEntry, error) {
	headerQuery := `
		SELECT entry_id, entry_date, description, voucher_number, currency_code, created_at
		FROM journal_entries
		WHERE entry_id = $1;
	`
	rows, err := r.Pool.Query(ctx, headerQuery, entryID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to query journal entry "+entryID.String(), err)
	}
	header, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		return nil, apperrors.NewPersistenceError("failed to scan journal entry "+entryID.String(), err)
	}

	lineQuery := `
		SELECT entry_id, line_no, account_id, side, amount, currency_code
		FROM transaction_lines
		WHERE entry_id = $1
		ORDER BY line_no;
	`
	rows, err = r.Pool.Query(ctx, lineQuery, entryID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to query lines of journal entry "+entryID.String(), err)
	}
	lineRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.TransactionLine])
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to scan lines of journal entry "+entryID.String(), err)
	}

	return toDomainJournalEntry(header, lineRows)
}

// txJournalEntryWriter writes journal entries inside a unit's transaction.
type txJournalEntryWriter struct {
	tx pgx.Tx
}

var _ portsrepo.JournalEntryWriter = (*txJournalEntryWriter)(nil)

// SaveJournalEntry inserts the entry header and, in one batch, its lines.
func (w *txJournalEntryWriter) SaveJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	headerQuery := `
		INSERT INTO journal_entries (entry_id, entry_date, description, voucher_number, currency_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := w.tx.Exec(ctx, headerQuery,
		entry.ID(),
		entry.Date(),
		entry.Description(),
		entry.Voucher().Number(),
		entry.Currency(),
		time.Now().UTC(),
	)
	if err != nil {
		return persistenceError("failed to insert journal entry "+entry.ID().String(), err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO transaction_lines (entry_id, line_no, account_id, side, amount, currency_code)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, line := range toModelLines(entry) {
		batch.Queue(lineQuery, line.EntryID, line.LineNo, line.AccountID, line.Side, line.Amount, line.CurrencyCode)
	}

	br := w.tx.SendBatch(ctx, batch)
	// Close reports the first failed insert of the batch
	if err := br.Close(); err != nil {
		return persistenceError("failed to insert lines of journal entry "+entry.ID().String(), err)
	}
	return nil
}
