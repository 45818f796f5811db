package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionLine is the storage row of one line of a journal entry.
// Only the active side's amount is stored; the other side is zero by construction.
type TransactionLine struct {
	EntryID      uuid.UUID       `db:"entry_id"`
	LineNo       int32           `db:"line_no"`
	AccountID    uuid.UUID       `db:"account_id"`
	Side         string          `db:"side"`
	Amount       decimal.Decimal `db:"amount"`
	CurrencyCode string          `db:"currency_code"`
}
