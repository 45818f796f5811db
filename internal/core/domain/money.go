package domain

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Money is a non-negative amount in a single currency. The zero value is not a valid Money.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// IsValidCurrencyCode reports whether code is exactly three non-blank characters.
func IsValidCurrencyCode(code string) bool {
	if utf8.RuneCountInString(code) != 3 {
		return false
	}
	for _, r := range code {
		if unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// NewMoney creates a Money value.
func NewMoney(currency string, amount decimal.Decimal) (Money, error) {
	if !IsValidCurrencyCode(currency) {
		return Money{}, fmt.Errorf("%w: currency %q must be exactly 3 non-blank characters", apperrors.ErrInvalidValue, currency)
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: amount %s must not be negative", apperrors.ErrInvalidValue, amount.String())
	}
	return Money{amount: amount, currency: currency}, nil
}

// zeroOf returns the zero amount in m's currency.
func zeroOf(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Add returns the sum of m and other. Both must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot add %s to %s", apperrors.ErrCurrencyMismatch, other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() string { return m.currency }

func (m Money) IsZero() bool { return m.amount.IsZero() }

// Equal compares currency and numeric value; 1.5 and 1.50 are equal.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.amount.String() + " " + m.currency
}
