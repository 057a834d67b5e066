// Package storage provides the SQLite persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidCard        = errors.New("invalid card")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidInstallment = errors.New("invalid installment")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateCategory(cat *model.Category) error {
	if cat == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if cat.ID == "" || cat.OwnerID == "" {
		return fmt.Errorf("%w: missing ID or owner", ErrInvalidCategory)
	}
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	return nil
}

func validateCard(card *model.Card) error {
	if card == nil {
		return fmt.Errorf("%w: card", ErrNilParameter)
	}
	if card.ID == "" || card.OwnerID == "" {
		return fmt.Errorf("%w: missing ID or owner", ErrInvalidCard)
	}
	if strings.TrimSpace(card.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCard)
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" || txn.OwnerID == "" {
		return fmt.Errorf("%w: missing ID or owner", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.CategoryID == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidTransaction)
	}
	return nil
}

func validateInstallments(installments []model.Installment) error {
	if installments == nil {
		return fmt.Errorf("%w: installments", ErrNilParameter)
	}
	if len(installments) == 0 {
		return fmt.Errorf("%w: installments", ErrEmptySlice)
	}
	for i, inst := range installments {
		if inst.ID == "" || inst.TransactionID == "" {
			return fmt.Errorf("installment at index %d: %w: missing ID or transaction", i, ErrInvalidInstallment)
		}
	}
	return nil
}
