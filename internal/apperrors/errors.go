package apperrors

import (
	"errors"
	"fmt"
)

// ErrInvalidValue indicates that a value object or aggregate was built from out-of-range, blank or absent input.
var ErrInvalidValue = errors.New("invalid value")

// ErrUnbalancedEntry indicates that a journal entry's lines do not satisfy the double-entry rule.
var ErrUnbalancedEntry = errors.New("unbalanced journal entry")

// ErrCurrencyMismatch indicates arithmetic between two different currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrAccountNotFound indicates that a referenced account does not exist.
var ErrAccountNotFound = fmt.Errorf("account: %w", ErrNotFound)

// ErrEntryNotFound indicates that a referenced journal entry does not exist.
var ErrEntryNotFound = fmt.Errorf("journal entry: %w", ErrNotFound)

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrPersistence indicates that a storage operation, usually a commit, did not complete.
var ErrPersistence = errors.New("persistence failure")

// ErrConflict is the retryable persistence failure: a touched row changed since it was read.
var ErrConflict = fmt.Errorf("concurrent update conflict: %w", ErrPersistence)

// AppError carries an HTTP-ish status code and a message alongside the underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps a storage error so that it classifies as ErrPersistence.
// Errors that already classify as ErrPersistence (e.g. ErrConflict) keep their identity.
func NewPersistenceError(message string, err error) *AppError {
	if errors.Is(err, ErrPersistence) {
		return NewAppError(500, message, err)
	}
	return NewAppError(500, message, errors.Join(ErrPersistence, err))
}

// IsRetryable reports whether err is a conflict that warrants re-running the workflow.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
