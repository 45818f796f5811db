package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/platform/metrics"
	"github.com/google/uuid"
)

// accountService implements the account workflows.
type accountService struct {
	BaseService
	accounts portsrepo.AccountReader
}

// NewAccountService creates a new AccountService.
func NewAccountService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{
		BaseService: newBaseService(repos.UnitOfWork, options...),
		accounts:    repos.Accounts,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) saveAccount(ctx context.Context, operation string, account *domain.Account) error {
	return s.withUnit(ctx, operation, func(ctx context.Context, unit portsrepo.Unit) error {
		return unit.Accounts().SaveAccount(ctx, account)
	})
}

// CreateAccount creates an account after checking that its name is free.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := s.GetLogger(ctx)

	account, err := s.createAccount(ctx, req)
	if err != nil {
		s.metrics.WorkflowFailed(metrics.OpCreateAccount, err)
		s.LogFailure(ctx, err, "Failed to create account", slog.String("account_name", req.Name))
		return nil, err
	}

	logger.Info("Account created",
		slog.String("account_id", account.ID().String()),
		slog.String("account_type", string(account.Type())))
	return account, nil
}

func (s *accountService) createAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	account, err := domain.NewAccount(strings.TrimSpace(req.Name), req.AccountType, req.InitialBalance)
	if err != nil {
		return nil, err
	}

	exists, err := s.accounts.ExistsByName(ctx, account.Name())
	if err != nil {
		return nil, asPersistence("failed to check account name", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: account named %q", apperrors.ErrDuplicate, account.Name())
	}

	if err := s.saveAccount(ctx, metrics.OpCreateAccount, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount retrieves an account by its identifier.
func (s *accountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		s.LogFailure(ctx, err, "Failed to get account", slog.String("account_id", accountID.String()))
		return nil, err
	}
	return account, nil
}

// UpdateAccountName renames an account, retrying when the account changed concurrently.
func (s *accountService) UpdateAccountName(ctx context.Context, accountID uuid.UUID, name string) (*domain.Account, error) {
	account, err := retryOnConflict(ctx, &s.BaseService, metrics.OpRenameAccount, func() (*domain.Account, error) {
		account, err := s.accounts.FindAccountByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if err := account.UpdateName(name); err != nil {
			return nil, err
		}
		if err := s.saveAccount(ctx, metrics.OpRenameAccount, account); err != nil {
			return nil, err
		}
		return account, nil
	})
	if err != nil {
		s.metrics.WorkflowFailed(metrics.OpRenameAccount, err)
		s.LogFailure(ctx, err, "Failed to rename account", slog.String("account_id", accountID.String()))
		return nil, err
	}

	s.GetLogger(ctx).Info("Account renamed", slog.String("account_id", accountID.String()))
	return account, nil
}
