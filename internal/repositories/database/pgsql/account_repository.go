package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountReader
var _ portsrepo.AccountReader = (*PgxAccountRepository)(nil)

func toModelAccount(d *domain.Account) models.Account {
	return models.Account{
		AccountID:   d.ID(),
		Name:        d.Name(),
		AccountType: string(d.Type()),
		Balance:     d.Balance(),
		Version:     d.Version(),
	}
}

func toDomainAccount(m models.Account) (*domain.Account, error) {
	accountType, err := domain.ParseAccountType(m.AccountType)
	if err != nil {
		return nil, fmt.Errorf("stored account %s: %w", m.AccountID, err)
	}
	return domain.ReconstructAccount(m.AccountID, m.Name, accountType, m.Balance, m.Version), nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT account_id, name, account_type, balance, version, created_at, last_updated_at
		FROM accounts
		WHERE account_id = $1;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to query account "+accountID.String(), err)
	}
	modelAcc, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, apperrors.NewPersistenceError("failed to scan account "+accountID.String(), err)
	}
	return toDomainAccount(modelAcc)
}

// ExistsByName reports whether an account with this exact name exists.
func (r *PgxAccountRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE name = $1);`, name).Scan(&exists)
	if err != nil {
		return false, apperrors.NewPersistenceError("failed to check account name", err)
	}
	return exists, nil
}

// txAccountWriter writes accounts inside a unit's transaction.
type txAccountWriter struct {
	tx pgx.Tx
}

var _ portsrepo.AccountWriter = (*txAccountWriter)(nil)

// SaveAccount inserts a never-stored account or updates a stored one guarded by its version.
func (w *txAccountWriter) SaveAccount(ctx context.Context, account *domain.Account) error {
	modelAcc := toModelAccount(account)
	now := time.Now().UTC()

	if modelAcc.Version == 0 {
		query := `
			INSERT INTO accounts (account_id, name, account_type, balance, version, created_at, last_updated_at)
			VALUES ($1, $2, $3, $4, 1, $5, $5);
		`
		if _, err := w.tx.Exec(ctx, query, modelAcc.AccountID, modelAcc.Name, modelAcc.AccountType, modelAcc.Balance, now); err != nil {
			return persistenceError("failed to insert account "+modelAcc.AccountID.String(), err)
		}
		return nil
	}

	query := `
		UPDATE accounts
		SET name = $2, balance = $3, version = version + 1, last_updated_at = $5
		WHERE account_id = $1 AND version = $4;
	`
	cmdTag, err := w.tx.Exec(ctx, query, modelAcc.AccountID, modelAcc.Name, modelAcc.Balance, modelAcc.Version, now)
	if err != nil {
		return persistenceError("failed to update account "+modelAcc.AccountID.String(), err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s is no longer at version %d", apperrors.ErrConflict, modelAcc.AccountID, modelAcc.Version)
	}
	return nil
}
