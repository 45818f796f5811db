package utils_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestFormatVoucherNumber(t *testing.T) {
	date := time.Date(2025, 7, 19, 13, 45, 0, 0, time.UTC)

	assert.Equal(t, "JV-20250719-0001", utils.FormatVoucherNumber("JV", date, 1))
	assert.Equal(t, "JV-20250719-12345", utils.FormatVoucherNumber("JV", date, 12345))
	assert.Equal(t, "20250719-0042", utils.FormatVoucherNumber("", date, 42))
	assert.Equal(t, "20250719", utils.VoucherDayKey(date))
}
