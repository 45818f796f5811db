package services

import (
	"context"
	"time"
)

// VoucherNumberGenerator issues voucher numbers for entries dated date.
// Numbers are expected to be unique enough for reference purposes; gaps are allowed.
type VoucherNumberGenerator interface {
	Generate(ctx context.Context, date time.Time) (string, error)
}
