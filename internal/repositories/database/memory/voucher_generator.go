package memory

import (
	"context"
	"sync"
	"time"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/utils"
)

// VoucherGenerator issues per-day voucher sequences held in memory.
type VoucherGenerator struct {
	mu     sync.Mutex
	prefix string
	last   map[string]int64
}

// NewVoucherGenerator creates a generator prefixing numbers with prefix.
func NewVoucherGenerator(prefix string) *VoucherGenerator {
	return &VoucherGenerator{prefix: prefix, last: make(map[string]int64)}
}

var _ portssvc.VoucherNumberGenerator = (*VoucherGenerator)(nil)

func (g *VoucherGenerator) Generate(ctx context.Context, date time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := utils.VoucherDayKey(date)

	g.mu.Lock()
	g.last[key]++
	seq := g.last[key]
	g.mu.Unlock()

	return utils.FormatVoucherNumber(g.prefix, date, seq), nil
}
