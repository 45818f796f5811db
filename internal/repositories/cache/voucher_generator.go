package cache

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/redis/go-redis/v9"
)

const voucherKeyPrefix = "ledger:voucher:"

// RedisVoucherGenerator issues per-day voucher sequences with Redis INCR.
// Several ledger processes can share one generator through the same Redis.
type RedisVoucherGenerator struct {
	client redis.Cmdable
	prefix string
}

// NewRedisVoucherGenerator creates a generator prefixing numbers with prefix.
func NewRedisVoucherGenerator(client redis.Cmdable, prefix string) *RedisVoucherGenerator {
	return &RedisVoucherGenerator{client: client, prefix: prefix}
}

var _ portssvc.VoucherNumberGenerator = (*RedisVoucherGenerator)(nil)

// sequenceKey returns the Redis key counting vouchers issued for date.
func (g *RedisVoucherGenerator) sequenceKey(date time.Time) string {
	return voucherKeyPrefix + g.prefix + ":" + utils.VoucherDayKey(date)
}

func (g *RedisVoucherGenerator) Generate(ctx context.Context, date time.Time) (string, error) {
	seq, err := g.client.Incr(ctx, g.sequenceKey(date)).Result()
	if err != nil {
		return "", apperrors.NewPersistenceError("failed to advance voucher sequence", err)
	}
	return utils.FormatVoucherNumber(g.prefix, date, seq), nil
}
