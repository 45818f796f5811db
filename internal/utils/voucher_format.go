package utils

import (
	"fmt"
	"time"
)

// VoucherDayKey returns the per-day sequence key for date, e.g. "20250719".
func VoucherDayKey(date time.Time) string {
	return date.Format("20060102")
}

// FormatVoucherNumber renders a voucher number such as "JV-20250719-0007".
// Sequences past 9999 simply grow wider.
func FormatVoucherNumber(prefix string, date time.Time, seq int64) string {
	if prefix == "" {
		return fmt.Sprintf("%s-%04d", VoucherDayKey(date), seq)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, VoucherDayKey(date), seq)
}
