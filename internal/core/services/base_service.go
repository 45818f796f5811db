package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/platform/metrics"
	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how often a workflow is re-run after a commit conflict.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
}

// DefaultRetryPolicy is used when no policy is configured.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, InitialInterval: 25 * time.Millisecond}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// BaseService provides common functionality for all services
type BaseService struct {
	unitOfWork portsrepo.UnitOfWork
	metrics    *metrics.Metrics
	retry      RetryPolicy
}

// ServiceOption is a functional option for configuring services
type ServiceOption func(*BaseService)

// WithMetrics records workflow outcomes on m.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *BaseService) {
		s.metrics = m
	}
}

// WithRetryPolicy overrides DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) ServiceOption {
	return func(s *BaseService) {
		s.retry = p
	}
}

func newBaseService(uow portsrepo.UnitOfWork, options ...ServiceOption) BaseService {
	base := BaseService{unitOfWork: uow, retry: DefaultRetryPolicy}
	for _, option := range options {
		option(&base)
	}
	return base
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogFailure logs a failed workflow at a level matching the error class.
// Rejected input is a warning, storage trouble is an error.
func (s *BaseService) LogFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	if errors.Is(err, apperrors.ErrPersistence) || !isClassified(err) {
		s.GetLogger(ctx).Error(msg, args...)
		return
	}
	s.GetLogger(ctx).Warn(msg, args...)
}

// isClassified reports whether err already belongs to the error taxonomy.
func isClassified(err error) bool {
	for _, target := range []error{
		apperrors.ErrInvalidValue,
		apperrors.ErrUnbalancedEntry,
		apperrors.ErrCurrencyMismatch,
		apperrors.ErrNotFound,
		apperrors.ErrDuplicate,
		apperrors.ErrPersistence,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// asPersistence classifies a storage error as ErrPersistence.
// Cancellation of the caller's context passes through untouched.
func asPersistence(message string, err error) error {
	if isClassified(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.NewPersistenceError(message, err)
}

// retryOnConflict runs attempt until it succeeds, fails with anything other than
// apperrors.ErrConflict, or the retry policy is exhausted.
func retryOnConflict[T any](ctx context.Context, s *BaseService, operation string, attempt func() (T, error)) (T, error) {
	n := 0
	return backoff.RetryWithData(func() (T, error) {
		n++
		result, err := attempt()
		if err == nil {
			return result, nil
		}
		if apperrors.IsRetryable(err) {
			s.metrics.CommitConflict(operation)
			s.GetLogger(ctx).Debug("Commit conflict, retrying workflow",
				slog.String("operation", operation),
				slog.Int("attempt", n),
				slog.String("error", err.Error()))
			return result, err
		}
		return result, backoff.Permanent(err)
	}, s.retry.backOff(ctx))
}

// withUnit opens a unit, hands it to stage for the writes and commits it.
// Cancellation of ctx is honoured only until the unit is opened; from then on
// the unit always runs to a commit or a rollback. Every failure path rolls back.
func (s *BaseService) withUnit(ctx context.Context, operation string, stage func(ctx context.Context, unit portsrepo.Unit) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	defer func() { s.metrics.ObserveCommit(operation, time.Since(start)) }()

	unit, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		return asPersistence("failed to open unit of work", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := unit.Rollback(ctx); rbErr != nil {
			s.GetLogger(ctx).Error("Failed to roll back unit of work", slog.String("error", rbErr.Error()))
		}
	}()

	if err := stage(ctx, unit); err != nil {
		return asPersistence("failed to stage writes", err)
	}
	if err := unit.Commit(ctx); err != nil {
		return asPersistence("failed to commit unit of work", err)
	}
	committed = true
	return nil
}
