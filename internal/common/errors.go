// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the ledger engine matches exactly one of
// these through errors.Is.
var (
	// ErrValidation marks malformed or cross-referentially inconsistent input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an entity that is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an operation blocked by existing references.
	ErrConflict = errors.New("conflict")
	// ErrPersistence marks a failed storage operation.
	ErrPersistence = errors.New("persistence failure")
	// ErrIntegrity marks a failed compensating action that left orphaned data behind.
	ErrIntegrity = errors.New("integrity violation")

	// ErrMissingConfig indicates a required configuration value is absent.
	ErrMissingConfig = errors.New("missing configuration")
	// ErrInvalidConfig indicates a configuration value is malformed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// LedgerError is a rejection the caller can relay to the end user.
type LedgerError struct {
	Err     error
	Kind    error
	Code    string
	Message string
}

func (e *LedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *LedgerError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewValidationError creates a validation rejection.
func NewValidationError(code, format string, args ...any) error {
	return &LedgerError{Kind: ErrValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError creates a not-found rejection for the named entity.
func NewNotFoundError(entity string) error {
	return &LedgerError{
		Kind:    ErrNotFound,
		Code:    entity + "_not_found",
		Message: entity + " not found",
	}
}

// NewConflictError creates a conflict rejection.
func NewConflictError(code, message string) error {
	return &LedgerError{Kind: ErrConflict, Code: code, Message: message}
}

// NewPersistenceError wraps a storage failure.
func NewPersistenceError(code, message string, err error) error {
	return &LedgerError{Kind: ErrPersistence, Code: code, Message: message, Err: err}
}

// NewIntegrityError wraps a failed compensation.
func NewIntegrityError(code, message string, err error) error {
	return &LedgerError{Kind: ErrIntegrity, Code: code, Message: message, Err: err}
}

// CodeOf returns the rejection code carried by err, or "internal_error".
func CodeOf(err error) string {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Code
	}
	return "internal_error"
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrIntegrity) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
