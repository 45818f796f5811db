package repositories

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/google/uuid"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves an account by its identifier.
	// It returns apperrors.ErrAccountNotFound when no such account exists.
	FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)

	// ExistsByName reports whether an account with exactly this name exists.
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// AccountWriter defines write operations for account data.
// Writers are only handed out by a Unit, so every write belongs to an atomic unit.
type AccountWriter interface {
	// SaveAccount stages an insert (version 0) or a version-guarded update of the account.
	// A version mismatch surfaces as apperrors.ErrConflict, at the latest on Commit.
	SaveAccount(ctx context.Context, account *domain.Account) error
}
