package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// ParseAccountType accepts any casing of an account type name.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown account type %q", apperrors.ErrInvalidValue, s)
	}
	return t, nil
}

// BalanceEffect is the direction a posting moves an account balance.
type BalanceEffect int

const (
	Decrease BalanceEffect = -1
	Increase BalanceEffect = 1
)

// Polarity maps an account type and a posting side to its balance effect.
// DEBIT to ASSET/EXPENSE -> Increase
// CREDIT to ASSET/EXPENSE -> Decrease
// DEBIT to LIABILITY/EQUITY/REVENUE -> Decrease
// CREDIT to LIABILITY/EQUITY/REVENUE -> Increase
func Polarity(t AccountType, side TransactionType) BalanceEffect {
	debitNormal := t == Asset || t == Expense
	if debitNormal == (side == Debit) {
		return Increase
	}
	return Decrease
}

// Account is a ledger account with a running balance.
// Version is the storage revision the account was loaded at; zero means never stored.
type Account struct {
	id          uuid.UUID
	name        string
	accountType AccountType
	balance     decimal.Decimal
	version     int64
}

// NewAccount creates an account with a fresh identity.
func NewAccount(name string, accountType AccountType, initialBalance decimal.Decimal) (*Account, error) {
	return NewAccountWithID(uuid.New(), name, accountType, initialBalance)
}

// NewAccountWithID creates an account with an externally supplied identity.
func NewAccountWithID(id uuid.UUID, name string, accountType AccountType, initialBalance decimal.Decimal) (*Account, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: account id must not be empty", apperrors.ErrInvalidValue)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: account name must not be blank", apperrors.ErrInvalidValue)
	}
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrInvalidValue, accountType)
	}
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance %s must not be negative", apperrors.ErrInvalidValue, initialBalance.String())
	}
	return &Account{
		id:          id,
		name:        name,
		accountType: accountType,
		balance:     initialBalance,
	}, nil
}

// ReconstructAccount rebuilds an account from storage. Stored balances may be negative,
// so no creation rules are applied.
func ReconstructAccount(id uuid.UUID, name string, accountType AccountType, balance decimal.Decimal, version int64) *Account {
	return &Account{
		id:          id,
		name:        name,
		accountType: accountType,
		balance:     balance,
		version:     version,
	}
}

// Debit applies a debit of amount according to the account's polarity.
func (a *Account) Debit(amount decimal.Decimal) {
	a.apply(Debit, amount)
}

// Credit applies a credit of amount according to the account's polarity.
func (a *Account) Credit(amount decimal.Decimal) {
	a.apply(Credit, amount)
}

// Post applies a debit or a credit depending on side.
func (a *Account) Post(side TransactionType, amount decimal.Decimal) {
	a.apply(side, amount)
}

func (a *Account) apply(side TransactionType, amount decimal.Decimal) {
	if Polarity(a.accountType, side) == Increase {
		a.balance = a.balance.Add(amount)
	} else {
		a.balance = a.balance.Sub(amount)
	}
}

// UpdateName renames the account; the new name is trimmed.
func (a *Account) UpdateName(newName string) error {
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return fmt.Errorf("%w: account name must not be blank", apperrors.ErrInvalidValue)
	}
	a.name = trimmed
	return nil
}

func (a *Account) ID() uuid.UUID            { return a.id }
func (a *Account) Name() string             { return a.name }
func (a *Account) Type() AccountType        { return a.accountType }
func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) Version() int64           { return a.version }

// Clone returns an independent copy.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}
