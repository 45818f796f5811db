package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	reversalDescriptionPrefix = "Reversal of: "
	reversalVoucherPrefix     = "REV-"
)

// JournalEntry is a balanced, immutable set of transaction lines.
// It can only be obtained from NewJournalEntry, ReverseJournalEntry or,
// for rows that were validated before they were stored, ReconstructJournalEntry.
type JournalEntry struct {
	id          uuid.UUID
	date        time.Time
	description string
	voucher     Voucher
	lines       []TransactionLine
}

// NewJournalEntry validates and creates a journal entry with a fresh identity.
// The date is truncated to its calendar day.
func NewJournalEntry(date time.Time, description string, voucher Voucher, lines []TransactionLine) (*JournalEntry, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: entry date must be set", apperrors.ErrInvalidValue)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: entry description must not be blank", apperrors.ErrInvalidValue)
	}
	if voucher.IsZero() {
		return nil, fmt.Errorf("%w: entry voucher is required", apperrors.ErrInvalidValue)
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: entry needs at least two lines, got %d", apperrors.ErrUnbalancedEntry, len(lines))
	}

	totalDebit, totalCredit, err := sumLines(lines)
	if err != nil {
		return nil, err
	}
	if !totalDebit.Equal(totalCredit) {
		return nil, fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedEntry, totalDebit.Amount().String(), totalCredit.Amount().String())
	}

	frozen := make([]TransactionLine, len(lines))
	copy(frozen, lines)

	return &JournalEntry{
		id:          uuid.New(),
		date:        CalendarDate(date),
		description: description,
		voucher:     voucher,
		lines:       frozen,
	}, nil
}

// ReverseJournalEntry derives the mirror entry of original dated reversalDate.
// Every line swaps sides; the result goes through NewJournalEntry.
func ReverseJournalEntry(original *JournalEntry, reversalDate time.Time) (*JournalEntry, error) {
	reversedLines := make([]TransactionLine, len(original.lines))
	for i, line := range original.lines {
		reversedLines[i] = line.reversed()
	}

	voucher, err := NewVoucher(reversalVoucherPrefix + original.voucher.Number())
	if err != nil {
		return nil, err
	}

	return NewJournalEntry(reversalDate, reversalDescriptionPrefix+original.description, voucher, reversedLines)
}

// ReconstructJournalEntry rebuilds an entry loaded from storage.
func ReconstructJournalEntry(id uuid.UUID, date time.Time, description string, voucher Voucher, lines []TransactionLine) *JournalEntry {
	return &JournalEntry{
		id:          id,
		date:        CalendarDate(date),
		description: description,
		voucher:     voucher,
		lines:       lines,
	}
}

// CalendarDate drops the time of day, keeping the year, month and day of t.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sumLines(lines []TransactionLine) (Money, Money, error) {
	currency := lines[0].Currency()
	totalDebit, totalCredit := zeroOf(currency), zeroOf(currency)
	for _, line := range lines {
		var err error
		if totalDebit, err = totalDebit.Add(line.Debit()); err != nil {
			return Money{}, Money{}, err
		}
		if totalCredit, err = totalCredit.Add(line.Credit()); err != nil {
			return Money{}, Money{}, err
		}
	}
	return totalDebit, totalCredit, nil
}

func (e *JournalEntry) ID() uuid.UUID       { return e.id }
func (e *JournalEntry) Date() time.Time     { return e.date }
func (e *JournalEntry) Description() string { return e.description }
func (e *JournalEntry) Voucher() Voucher    { return e.voucher }

// Lines returns a copy of the entry's lines in their original order.
func (e *JournalEntry) Lines() []TransactionLine {
	lines := make([]TransactionLine, len(e.lines))
	copy(lines, e.lines)
	return lines
}

// Currency of the entry, taken from its first line.
func (e *JournalEntry) Currency() string {
	if len(e.lines) == 0 {
		return ""
	}
	return e.lines[0].Currency()
}

func (e *JournalEntry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.lines {
		total = total.Add(line.Debit().Amount())
	}
	return total
}

func (e *JournalEntry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.lines {
		total = total.Add(line.Credit().Amount())
	}
	return total
}

func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebit().Equal(e.TotalCredit())
}
