package models

import (
	"time"

	"github.com/google/uuid"
)

// JournalEntry is the storage row of a journal entry header.
type JournalEntry struct {
	EntryID       uuid.UUID `db:"entry_id"`
	EntryDate     time.Time `db:"entry_date"`
	Description   string    `db:"description"`
	VoucherNumber string    `db:"voucher_number"`
	CurrencyCode  string    `db:"currency_code"`
	CreatedAt     time.Time `db:"created_at"`
}
