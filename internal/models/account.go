package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the storage row of a ledger account.
type Account struct {
	AccountID     uuid.UUID       `db:"account_id"`
	Name          string          `db:"name"`
	AccountType   string          `db:"account_type"`
	Balance       decimal.Decimal `db:"balance"`
	Version       int64           `db:"version"`
	CreatedAt     time.Time       `db:"created_at"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}
