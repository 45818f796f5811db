package pgsql

import (
	"context"
	"errors"

	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxUnitOfWork opens units backed by a single pgx transaction each.
type PgxUnitOfWork struct {
	BaseRepository
}

func newPgxUnitOfWork(pool *pgxpool.Pool) *PgxUnitOfWork {
	return &PgxUnitOfWork{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.UnitOfWork = (*PgxUnitOfWork)(nil)

// Begin starts the transaction backing a new unit.
func (u *PgxUnitOfWork) Begin(ctx context.Context) (portsrepo.Unit, error) {
	tx, err := u.BaseRepository.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxUnit{base: &u.BaseRepository, tx: tx}, nil
}

type pgxUnit struct {
	base   *BaseRepository
	tx     pgx.Tx
	closed bool
}

func (u *pgxUnit) Accounts() portsrepo.AccountWriter {
	return &txAccountWriter{tx: u.tx}
}

func (u *pgxUnit) JournalEntries() portsrepo.JournalEntryWriter {
	return &txJournalEntryWriter{tx: u.tx}
}

func (u *pgxUnit) Commit(ctx context.Context) error {
	if u.closed {
		return errors.New("unit of work already closed")
	}
	u.closed = true
	return u.base.Commit(ctx, u.tx)
}

func (u *pgxUnit) Rollback(ctx context.Context) error {
	if u.closed {
		return nil
	}
	u.closed = true
	return u.base.Rollback(ctx, u.tx)
}
