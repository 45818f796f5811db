package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/google/uuid"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccount retrieves an account by its identifier.
	GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount creates an account; names must be unique.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)

	// UpdateAccountName renames an account.
	UpdateAccountName(ctx context.Context, accountID uuid.UUID, name string) (*domain.Account, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
