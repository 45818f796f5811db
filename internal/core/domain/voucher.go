package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
)

// Voucher is the human-facing reference tag of a journal entry.
type Voucher struct {
	number string
}

// NewVoucher creates a Voucher; the number must not be blank.
func NewVoucher(number string) (Voucher, error) {
	if strings.TrimSpace(number) == "" {
		return Voucher{}, fmt.Errorf("%w: voucher number must not be blank", apperrors.ErrInvalidValue)
	}
	return Voucher{number: number}, nil
}

func (v Voucher) Number() string { return v.number }

// IsZero reports whether v is the absent voucher.
func (v Voucher) IsZero() bool { return v.number == "" }

func (v Voucher) String() string { return v.number }
