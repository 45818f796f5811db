package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/repositories/database/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// --- Mock UnitOfWork ---
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Begin(ctx context.Context) (portsrepo.Unit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(portsrepo.Unit), args.Error(1)
}

// MockUnit is its own account and journal entry writer.
type MockUnit struct {
	mock.Mock
}

func (m *MockUnit) Accounts() portsrepo.AccountWriter            { return m }
func (m *MockUnit) JournalEntries() portsrepo.JournalEntryWriter { return m }

func (m *MockUnit) SaveAccount(ctx context.Context, account *domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockUnit) SaveJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockUnit) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnit) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ portsrepo.UnitOfWork = (*MockUnitOfWork)(nil)
	_ portsrepo.Unit       = (*MockUnit)(nil)
)

// --- Mock VoucherNumberGenerator ---
type MockVoucherGenerator struct {
	mock.Mock
}

func (m *MockVoucherGenerator) Generate(ctx context.Context, date time.Time) (string, error) {
	args := m.Called(ctx, date)
	return args.String(0), args.Error(1)
}

var _ portssvc.VoucherNumberGenerator = (*MockVoucherGenerator)(nil)

// --- Mock AccountReader ---
type MockAccountReader struct {
	mock.Mock
}

func (m *MockAccountReader) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	var account *domain.Account
	if a := args.Get(0); a != nil {
		account = a.(*domain.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountReader) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

var _ portsrepo.AccountReader = (*MockAccountReader)(nil)

// missingAccountReader behaves as if one account had been removed from the store.
type missingAccountReader struct {
	*memory.Store
	missing uuid.UUID
}

func (r *missingAccountReader) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	if accountID == r.missing {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return r.Store.FindAccountByID(ctx, accountID)
}

// interferingReader commits a competing change to one account right after the
// workflow has read it for the first time, forcing a version conflict.
type interferingReader struct {
	*memory.Store
	target uuid.UUID
	once   sync.Once
	mutate func(*domain.Account)
}

func (r *interferingReader) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := r.Store.FindAccountByID(ctx, accountID)
	if err != nil || accountID != r.target {
		return account, err
	}
	r.once.Do(func() {
		competing, err := r.Store.FindAccountByID(ctx, accountID)
		if err != nil {
			panic(err)
		}
		r.mutate(competing)
		unit, _ := r.Store.Begin(ctx)
		if err := unit.Accounts().SaveAccount(ctx, competing); err != nil {
			panic(err)
		}
		if err := unit.Commit(ctx); err != nil {
			panic(err)
		}
	})
	return account, nil
}
