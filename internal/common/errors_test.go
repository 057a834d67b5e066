package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerErrorKinds(t *testing.T) {
	tests := []struct {
		err      error
		kind     error
		name     string
		wantCode string
	}{
		{
			name:     "validation",
			err:      NewValidationError("category_type_mismatch", "category is %q but transaction is %q", "income", "expense"),
			kind:     ErrValidation,
			wantCode: "category_type_mismatch",
		},
		{
			name:     "not found",
			err:      NewNotFoundError("card"),
			kind:     ErrNotFound,
			wantCode: "card_not_found",
		},
		{
			name:     "conflict",
			err:      NewConflictError("category_in_use", "category has transactions"),
			kind:     ErrConflict,
			wantCode: "category_in_use",
		},
		{
			name:     "persistence",
			err:      NewPersistenceError("transaction_insert_failed", "failed to save transaction", errors.New("disk full")),
			kind:     ErrPersistence,
			wantCode: "transaction_insert_failed",
		},
		{
			name:     "integrity",
			err:      NewIntegrityError("orphan_transaction", "rollback failed", errors.New("locked")),
			kind:     ErrIntegrity,
			wantCode: "orphan_transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.wantCode, CodeOf(tt.err))

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
			assert.Equal(t, tt.wantCode, CodeOf(wrapped))
		})
	}
}

func TestLedgerErrorMessage(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("card_update_failed", "failed to update card", cause)

	assert.Equal(t, "failed to update card: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "card not found", NewNotFoundError("card").Error())
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, "internal_error", CodeOf(errors.New("boom")))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(NewValidationError("x", "bad")))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("broker down"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("bad payload"), Retryable: false}))
}
