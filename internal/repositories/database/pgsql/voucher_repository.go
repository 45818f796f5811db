package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/utils"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxVoucherGenerator issues per-day voucher sequences from the voucher_sequences table.
// Each number is taken in its own statement, so numbers of failed postings leave gaps.
type PgxVoucherGenerator struct {
	BaseRepository
	prefix string
}

// NewPgxVoucherGenerator creates a voucher generator prefixing numbers with prefix.
func NewPgxVoucherGenerator(pool *pgxpool.Pool, prefix string) *PgxVoucherGenerator {
	return &PgxVoucherGenerator{BaseRepository: BaseRepository{Pool: pool}, prefix: prefix}
}

var _ portssvc.VoucherNumberGenerator = (*PgxVoucherGenerator)(nil)

func (g *PgxVoucherGenerator) Generate(ctx context.Context, date time.Time) (string, error) {
	query := `
		INSERT INTO voucher_sequences (sequence_key, last_value)
		VALUES ($1, 1)
		ON CONFLICT (sequence_key) DO UPDATE SET last_value = voucher_sequences.last_value + 1
		RETURNING last_value;
	`
	var seq int64
	if err := g.Pool.QueryRow(ctx, query, g.prefix+":"+utils.VoucherDayKey(date)).Scan(&seq); err != nil {
		return "", apperrors.NewPersistenceError("failed to advance voucher sequence", err)
	}
	return utils.FormatVoucherNumber(g.prefix, date, seq), nil
}
