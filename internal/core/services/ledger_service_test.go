package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/platform/metrics"
	"github.com/SscSPs/ledger_core/internal/repositories/database/memory"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var fastRetry = services.RetryPolicy{MaxRetries: 3, InitialInterval: time.Millisecond}

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	vouchers *memory.VoucherGenerator
	metrics  *metrics.Metrics
	ledger   portssvc.LedgerSvcFacade
	cash     uuid.UUID
	fees     uuid.UUID
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.vouchers = memory.NewVoucherGenerator("JV")
	s.metrics = metrics.New()
	s.ledger = services.NewLedgerService(s.store.Provider(), s.vouchers, "TWD",
		services.WithMetrics(s.metrics), services.WithRetryPolicy(fastRetry))

	s.cash = s.seedAccount("Cash", domain.Asset, 1000)
	s.fees = s.seedAccount("Fees", domain.Expense, 0)
}

func (s *LedgerServiceTestSuite) seedAccount(name string, t domain.AccountType, balance int64) uuid.UUID {
	account, err := domain.NewAccount(name, t, decimal.NewFromInt(balance))
	s.Require().NoError(err)
	unit, err := s.store.Begin(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(unit.Accounts().SaveAccount(s.ctx, account))
	s.Require().NoError(unit.Commit(s.ctx))
	return account.ID()
}

func (s *LedgerServiceTestSuite) balance(id uuid.UUID) decimal.Decimal {
	account, err := s.store.FindAccountByID(s.ctx, id)
	s.Require().NoError(err)
	return account.Balance()
}

func (s *LedgerServiceTestSuite) assertBalance(id uuid.UUID, want int64) {
	got := s.balance(id)
	s.True(decimal.NewFromInt(want).Equal(got), "want %d, got %s", want, got)
}

func day(y int, m time.Month, d int) dto.Date {
	return dto.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func line(accountID uuid.UUID, amount int64, side domain.TransactionType) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: accountID, Amount: decimal.NewFromInt(amount), Side: side}
}

func (s *LedgerServiceTestSuite) feeRequest(amount int64) dto.RecordJournalEntryRequest {
	return dto.RecordJournalEntryRequest{
		Date:        day(2025, 7, 19),
		Description: "Bank fee",
		Lines: []dto.JournalLineRequest{
			line(s.fees, amount, domain.Debit),
			line(s.cash, amount, domain.Credit),
		},
	}
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_AppliesPolarity() {
	entry, err := s.ledger.RecordJournalEntry(s.ctx, s.feeRequest(50))
	s.Require().NoError(err)

	s.assertBalance(s.cash, 950)
	s.assertBalance(s.fees, 50)

	s.Equal("JV-20250719-0001", entry.Voucher().Number())
	s.Equal("TWD", entry.Currency())
	s.True(entry.IsBalanced())
	s.Len(entry.Lines(), 2)

	stored, err := s.ledger.GetJournalEntry(s.ctx, entry.ID())
	s.Require().NoError(err)
	s.Equal(entry.ID(), stored.ID())
	s.Equal(1, s.store.CountJournalEntries())

	s.NoError(testutil.GatherAndCompare(s.metrics.Gatherer(), strings.NewReader(`
# HELP ledger_entries_recorded_total Journal entries committed, by workflow.
# TYPE ledger_entries_recorded_total counter
ledger_entries_recorded_total{operation="post"} 1
`), "ledger_entries_recorded_total"))
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_SequentialVouchers() {
	first, err := s.ledger.RecordJournalEntry(s.ctx, s.feeRequest(10))
	s.Require().NoError(err)
	second, err := s.ledger.RecordJournalEntry(s.ctx, s.feeRequest(10))
	s.Require().NoError(err)

	s.Equal("JV-20250719-0001", first.Voucher().Number())
	s.Equal("JV-20250719-0002", second.Voucher().Number())
	s.NotEqual(first.ID(), second.ID())
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_RequestCurrency() {
	req := s.feeRequest(5)
	req.CurrencyCode = "USD"

	entry, err := s.ledger.RecordJournalEntry(s.ctx, req)
	s.Require().NoError(err)
	s.Equal("USD", entry.Currency())
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_SingleLineIsUnbalanced() {
	req := s.feeRequest(50)
	req.Lines = req.Lines[:1]

	_, err := s.ledger.RecordJournalEntry(s.ctx, req)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	s.assertBalance(s.cash, 1000)
	s.assertBalance(s.fees, 0)
	s.Equal(0, s.store.CountJournalEntries())
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_UnequalSides() {
	req := s.feeRequest(50)
	req.Lines[1].Amount = decimal.NewFromInt(40)

	_, err := s.ledger.RecordJournalEntry(s.ctx, req)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)
	s.assertBalance(s.cash, 1000)
	s.Equal(0, s.store.CountJournalEntries())

	s.NoError(testutil.GatherAndCompare(s.metrics.Gatherer(), strings.NewReader(`
# HELP ledger_workflow_failures_total Workflow failures by operation and reason.
# TYPE ledger_workflow_failures_total counter
ledger_workflow_failures_total{operation="post",reason="unbalanced"} 1
`), "ledger_workflow_failures_total"))
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_UnknownAccount() {
	req := s.feeRequest(50)
	req.Lines[0].AccountID = uuid.New()

	_, err := s.ledger.RecordJournalEntry(s.ctx, req)
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
	s.assertBalance(s.cash, 1000)
	s.Equal(0, s.store.CountJournalEntries())
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_InvalidInput() {
	tests := map[string]func(*dto.RecordJournalEntryRequest){
		"negative amount":   func(r *dto.RecordJournalEntryRequest) { r.Lines[0].Amount = decimal.NewFromInt(-1) },
		"blank description": func(r *dto.RecordJournalEntryRequest) { r.Description = "  " },
		"zero date":         func(r *dto.RecordJournalEntryRequest) { r.Date = dto.Date{} },
		"unknown side":      func(r *dto.RecordJournalEntryRequest) { r.Lines[0].Side = "SIDEWAYS" },
		"bad currency":      func(r *dto.RecordJournalEntryRequest) { r.CurrencyCode = "EURO" },
	}
	for name, mutate := range tests {
		req := s.feeRequest(50)
		mutate(&req)
		_, err := s.ledger.RecordJournalEntry(s.ctx, req)
		s.ErrorIs(err, apperrors.ErrInvalidValue, name)
	}
	s.assertBalance(s.cash, 1000)
	s.Equal(0, s.store.CountJournalEntries())
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_InvalidHeaderDrawsNoVoucher() {
	vouchers := new(MockVoucherGenerator)
	ledger := services.NewLedgerService(s.store.Provider(), vouchers, "TWD", services.WithRetryPolicy(fastRetry))

	tests := map[string]func(*dto.RecordJournalEntryRequest){
		"zero date":         func(r *dto.RecordJournalEntryRequest) { r.Date = dto.Date{} },
		"blank description": func(r *dto.RecordJournalEntryRequest) { r.Description = "" },
	}
	for name, mutate := range tests {
		req := s.feeRequest(50)
		mutate(&req)
		_, err := ledger.RecordJournalEntry(s.ctx, req)
		s.ErrorIs(err, apperrors.ErrInvalidValue, name)
	}
	vouchers.AssertNotCalled(s.T(), "Generate", mock.Anything, mock.Anything)
	s.Equal(0, s.store.CountJournalEntries())
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_RepeatedAccountAccumulates() {
	req := dto.RecordJournalEntryRequest{
		Date:        day(2025, 7, 19),
		Description: "Split fee",
		Lines: []dto.JournalLineRequest{
			line(s.fees, 20, domain.Debit),
			line(s.fees, 30, domain.Debit),
			line(s.cash, 50, domain.Credit),
		},
	}

	_, err := s.ledger.RecordJournalEntry(s.ctx, req)
	s.Require().NoError(err)
	s.assertBalance(s.fees, 50)
	s.assertBalance(s.cash, 950)
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_ZeroAmountLinesBalance() {
	req := s.feeRequest(0)

	entry, err := s.ledger.RecordJournalEntry(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(domain.Debit, entry.Lines()[0].Side())
	s.Equal(domain.Credit, entry.Lines()[1].Side())
	s.assertBalance(s.cash, 1000)
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_OverdraftAllowed() {
	_, err := s.ledger.RecordJournalEntry(s.ctx, s.feeRequest(1500))
	s.Require().NoError(err)
	s.assertBalance(s.cash, -500)
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_CancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.ledger.RecordJournalEntry(ctx, s.feeRequest(50))
	s.ErrorIs(err, context.Canceled)
	s.NotErrorIs(err, apperrors.ErrPersistence)
	s.assertBalance(s.cash, 1000)
	s.Equal(0, s.store.CountJournalEntries())
}

func (s *LedgerServiceTestSuite) TestReverseJournalEntry_RestoresBalances() {
	original, err := s.ledger.RecordJournalEntry(s.ctx, s.feeRequest(50))
	s.Require().NoError(err)

	reversal, err := s.ledger.ReverseJournalEntry(s.ctx, original.ID(), time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)

	s.assertBalance(s.cash, 1000)
	s.assertBalance(s.fees, 0)
	s.Equal("Reversal of: Bank fee", reversal.Description())
	s.Equal("REV-JV-20250719-0001", reversal.Voucher().Number())
	s.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), reversal.Date())
	s.NotEqual(original.ID(), reversal.ID())

	lines := reversal.Lines()
	s.Equal(s.fees, lines[0].AccountID())
	s.Equal(domain.Credit, lines[0].Side())
	s.Equal(domain.Debit, lines[1].Side())
	s.Equal(2, s.store.CountJournalEntries())

	stored, err := s.store.FindJournalEntryByID(s.ctx, original.ID())
	s.Require().NoError(err)
	s.Equal("Bank fee", stored.Description())
}

func (s *LedgerServiceTestSuite) TestReverseJournalEntry_UnknownEntry() {
	_, err := s.ledger.ReverseJournalEntry(s.ctx, uuid.New(), time.Now())
	s.ErrorIs(err, apperrors.ErrEntryNotFound)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestReverseJournalEntry_MissingAccount() {
	original, err := s.ledger.RecordJournalEntry(s.ctx, s.feeRequest(50))
	s.Require().NoError(err)

	reader := &missingAccountReader{Store: s.store, missing: s.cash}
	repos := portsrepo.RepositoryProvider{Accounts: reader, JournalEntries: s.store, UnitOfWork: s.store}
	ledger := services.NewLedgerService(repos, s.vouchers, "TWD", services.WithRetryPolicy(fastRetry))

	_, err = ledger.ReverseJournalEntry(s.ctx, original.ID(), time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
	s.NotErrorIs(err, apperrors.ErrPersistence)

	s.assertBalance(s.fees, 50)
	s.assertBalance(s.cash, 950)
	s.Equal(1, s.store.CountJournalEntries())
}

func (s *LedgerServiceTestSuite) TestReverseJournalEntry_ZeroDate() {
	original, err := s.ledger.RecordJournalEntry(s.ctx, s.feeRequest(50))
	s.Require().NoError(err)

	_, err = s.ledger.ReverseJournalEntry(s.ctx, original.ID(), time.Time{})
	s.ErrorIs(err, apperrors.ErrInvalidValue)
	s.assertBalance(s.cash, 950)
}

func (s *LedgerServiceTestSuite) TestGetJournalEntry_NotFound() {
	_, err := s.ledger.GetJournalEntry(s.ctx, uuid.New())
	s.ErrorIs(err, apperrors.ErrEntryNotFound)
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_RetriesAfterConflict() {
	reader := &interferingReader{
		Store:  s.store,
		target: s.cash,
		mutate: func(a *domain.Account) { a.Debit(decimal.NewFromInt(100)) },
	}
	repos := portsrepo.RepositoryProvider{Accounts: reader, JournalEntries: s.store, UnitOfWork: s.store}
	ledger := services.NewLedgerService(repos, s.vouchers, "TWD",
		services.WithMetrics(s.metrics), services.WithRetryPolicy(fastRetry))

	_, err := ledger.RecordJournalEntry(s.ctx, s.feeRequest(50))
	s.Require().NoError(err)

	// Both the competing +100 and the fee survive.
	s.assertBalance(s.cash, 1050)
	s.assertBalance(s.fees, 50)
	s.Equal(1, s.store.CountJournalEntries())

	s.NoError(testutil.GatherAndCompare(s.metrics.Gatherer(), strings.NewReader(`
# HELP ledger_commit_conflicts_total Commits rejected because a touched account changed concurrently.
# TYPE ledger_commit_conflicts_total counter
ledger_commit_conflicts_total{operation="post"} 1
`), "ledger_commit_conflicts_total"))
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_ConcurrentPostingsLoseNoUpdates() {
	ledger := services.NewLedgerService(s.store.Provider(), s.vouchers, "TWD",
		services.WithRetryPolicy(services.RetryPolicy{MaxRetries: 20, InitialInterval: time.Millisecond}))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int64
		errs      []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.RecordJournalEntry(s.ctx, s.feeRequest(10))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	for _, err := range errs {
		s.ErrorIs(err, apperrors.ErrConflict)
	}
	s.Positive(succeeded)
	s.assertBalance(s.cash, 1000-10*succeeded)
	s.assertBalance(s.fees, 10*succeeded)
	s.Equal(int(succeeded), s.store.CountJournalEntries())
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_CommitFailureRollsBack() {
	unit := new(MockUnit)
	unit.On("SaveAccount", mock.Anything, mock.Anything).Return(nil)
	unit.On("SaveJournalEntry", mock.Anything, mock.Anything).Return(nil).Once()
	unit.On("Commit", mock.Anything).Return(errors.New("connection reset by peer")).Once()
	unit.On("Rollback", mock.Anything).Return(nil).Once()
	uow := new(MockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(unit, nil).Once()

	repos := portsrepo.RepositoryProvider{Accounts: s.store, JournalEntries: s.store, UnitOfWork: uow}
	ledger := services.NewLedgerService(repos, s.vouchers, "TWD", services.WithRetryPolicy(fastRetry))

	_, err := ledger.RecordJournalEntry(s.ctx, s.feeRequest(50))
	s.ErrorIs(err, apperrors.ErrPersistence)
	s.False(apperrors.IsRetryable(err))

	unit.AssertExpectations(s.T())
	uow.AssertExpectations(s.T())
	unit.AssertNumberOfCalls(s.T(), "SaveAccount", 2)
	s.assertBalance(s.cash, 1000)
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_StageFailureRollsBack() {
	unit := new(MockUnit)
	unit.On("SaveAccount", mock.Anything, mock.Anything).Return(errors.New("broken pipe")).Once()
	unit.On("Rollback", mock.Anything).Return(nil).Once()
	uow := new(MockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(unit, nil).Once()

	repos := portsrepo.RepositoryProvider{Accounts: s.store, JournalEntries: s.store, UnitOfWork: uow}
	ledger := services.NewLedgerService(repos, s.vouchers, "TWD", services.WithRetryPolicy(fastRetry))

	_, err := ledger.RecordJournalEntry(s.ctx, s.feeRequest(50))
	s.ErrorIs(err, apperrors.ErrPersistence)
	unit.AssertNotCalled(s.T(), "Commit", mock.Anything)
	unit.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_ExhaustedRetries() {
	unit := new(MockUnit)
	unit.On("SaveAccount", mock.Anything, mock.Anything).Return(nil)
	unit.On("SaveJournalEntry", mock.Anything, mock.Anything).Return(nil)
	unit.On("Commit", mock.Anything).Return(apperrors.ErrConflict)
	unit.On("Rollback", mock.Anything).Return(nil)
	uow := new(MockUnitOfWork)
	uow.On("Begin", mock.Anything).Return(unit, nil)

	repos := portsrepo.RepositoryProvider{Accounts: s.store, JournalEntries: s.store, UnitOfWork: uow}
	ledger := services.NewLedgerService(repos, s.vouchers, "TWD", services.WithRetryPolicy(fastRetry))

	_, err := ledger.RecordJournalEntry(s.ctx, s.feeRequest(50))
	s.ErrorIs(err, apperrors.ErrConflict)
	s.ErrorIs(err, apperrors.ErrPersistence)
	uow.AssertNumberOfCalls(s.T(), "Begin", int(fastRetry.MaxRetries)+1)
	unit.AssertNumberOfCalls(s.T(), "Rollback", int(fastRetry.MaxRetries)+1)
}

func (s *LedgerServiceTestSuite) TestRecordJournalEntry_VoucherFailure() {
	vouchers := new(MockVoucherGenerator)
	vouchers.On("Generate", mock.Anything, time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)).
		Return("", errors.New("sequence unavailable")).Once()

	ledger := services.NewLedgerService(s.store.Provider(), vouchers, "TWD", services.WithRetryPolicy(fastRetry))

	_, err := ledger.RecordJournalEntry(s.ctx, s.feeRequest(50))
	s.ErrorIs(err, apperrors.ErrPersistence)
	s.assertBalance(s.cash, 1000)
	s.Equal(0, s.store.CountJournalEntries())
	vouchers.AssertExpectations(s.T())
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
