package dto

import (
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one proposed posting of a journal entry.
type JournalLineRequest struct {
	AccountID uuid.UUID              `json:"accountID"`
	Amount    decimal.Decimal        `json:"amount"`
	Side      domain.TransactionType `json:"side" binding:"required,oneof=DEBIT CREDIT"`
}

// IsDebit reports whether the line posts to the debit side.
func (l JournalLineRequest) IsDebit() bool {
	return l.Side == domain.Debit
}

// RecordJournalEntryRequest defines the data needed to post a journal entry.
// CurrencyCode is optional; the configured default currency applies when empty.
type RecordJournalEntryRequest struct {
	Date         Date                 `json:"date"`
	Description  string               `json:"description" binding:"required"`
	CurrencyCode string               `json:"currencyCode" binding:"omitempty,currency"`
	Lines        []JournalLineRequest `json:"lines" binding:"required,dive"`
}

// ReverseJournalEntryRequest defines the data needed to reverse a journal entry.
type ReverseJournalEntryRequest struct {
	ReversalDate Date `json:"reversalDate"`
}

// TransactionLineResponse defines the data returned for a line of an entry.
type TransactionLineResponse struct {
	AccountID string                 `json:"accountID"`
	Side      domain.TransactionType `json:"side"`
	Debit     decimal.Decimal        `json:"debit"`
	Credit    decimal.Decimal        `json:"credit"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID       string                    `json:"entryID"`
	Date          Date                      `json:"date"`
	Description   string                    `json:"description"`
	VoucherNumber string                    `json:"voucherNumber"`
	CurrencyCode  string                    `json:"currencyCode"`
	TotalDebit    decimal.Decimal           `json:"totalDebit"`
	TotalCredit   decimal.Decimal           `json:"totalCredit"`
	Lines         []TransactionLineResponse `json:"lines"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := e.Lines()
	responses := make([]TransactionLineResponse, len(lines))
	for i, l := range lines {
		responses[i] = TransactionLineResponse{
			AccountID: l.AccountID().String(),
			Side:      l.Side(),
			Debit:     l.Debit().Amount(),
			Credit:    l.Credit().Amount(),
		}
	}
	return JournalEntryResponse{
		EntryID:       e.ID().String(),
		Date:          NewDate(e.Date()),
		Description:   e.Description(),
		VoucherNumber: e.Voucher().Number(),
		CurrencyCode:  e.Currency(),
		TotalDebit:    e.TotalDebit(),
		TotalCredit:   e.TotalCredit(),
		Lines:         responses,
	}
}
