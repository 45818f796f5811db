package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return persistenceError("failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction. Rolling back a finished transaction is not an error.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewPersistenceError("failed to rollback transaction", err)
	}
	return nil
}

// classify maps PostgreSQL errors onto the application error taxonomy.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, pgErr.ConstraintName)
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.Message)
		}
	}
	return err
}

// persistenceError wraps a failed statement. Unique violations stay duplicates,
// everything else becomes a persistence failure.
func persistenceError(message string, err error) error {
	err = classify(err)
	if errors.Is(err, apperrors.ErrDuplicate) {
		return fmt.Errorf("%s: %w", message, err)
	}
	return apperrors.NewPersistenceError(message, err)
}
