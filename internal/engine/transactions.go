package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// CreateTransaction validates and records a transaction, laying out its installments
// when it is paid in parts.
//
// The transaction row is written first, then its installments. If the installments cannot
// be written the transaction is deleted again and a PersistenceError is returned; if that
// deletion fails too the orphan is logged and reported as an IntegrityError. Once the
// transaction row is written the remaining steps ignore cancellation of ctx.
func (l *Ledger) CreateTransaction(ctx context.Context, ownerID string, in model.TransactionInput) (*model.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	in.Description = strings.TrimSpace(in.Description)
	in.Date = model.CivilDate(in.Date)
	if in.InstallmentCount == 0 {
		in.InstallmentCount = 1
	}

	category, err := l.lookupCategory(ctx, ownerID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	card, err := l.lookupCard(ctx, ownerID, in.CardID)
	if err != nil {
		return nil, err
	}

	if err := ledger.ValidateNewTransaction(ownerID, in, category, card); err != nil {
		return nil, err
	}

	now := l.now()
	period := ledger.PeriodOf(in.Date)
	txn := &model.Transaction{
		ID:                l.newID(),
		OwnerID:           ownerID,
		CategoryID:        in.CategoryID,
		CardID:            in.CardID,
		Description:       in.Description,
		Notes:             in.Notes,
		Amount:            in.Amount,
		InstallmentAmount: ledger.InstallmentBase(in.Amount, in.InstallmentCount),
		Type:              in.Type,
		PaymentMethod:     in.PaymentMethod,
		IsInstallment:     in.IsInstallment,
		InstallmentCount:  in.InstallmentCount,
		Date:              in.Date,
		CompetencyMonth:   period.Month,
		CompetencyYear:    period.Year,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	schedule, err := l.schedule(txn)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(txn.ID)
	defer unlock()

	if err := l.storage.InsertTransaction(ctx, txn); err != nil {
		return nil, storageError("transaction", "save", err)
	}

	if len(schedule) > 0 {
		detached := context.WithoutCancel(ctx)
		if err := l.storage.InsertInstallments(detached, schedule); err != nil {
			return nil, l.rollbackCreate(detached, txn, err)
		}
	}

	slog.Info("Created transaction",
		"id", txn.ID,
		"owner", ownerID,
		"type", txn.Type,
		"amount", txn.Amount.StringFixed(2),
		"installments", txn.InstallmentCount)

	l.publish(ctx, model.EventTransactionCreated, ownerID, txn.ID, transactionAttrs(txn))
	return txn, nil
}

// rollbackCreate deletes a transaction whose installments could not be saved.
func (l *Ledger) rollbackCreate(ctx context.Context, txn *model.Transaction, cause error) error {
	if err := l.storage.DeleteTransaction(ctx, txn.OwnerID, txn.ID); err != nil {
		return l.integrityViolation(ctx, txn, "create", errors.Join(cause, err))
	}

	slog.Warn("Rolled back transaction after installment failure", "id", txn.ID, "error", cause)
	return common.NewPersistenceError("installments_save_failed",
		"failed to save installments; the transaction was not recorded", cause)
}

// integrityViolation reports a failed compensation that left data behind.
func (l *Ledger) integrityViolation(ctx context.Context, txn *model.Transaction, operation string, err error) error {
	slog.Error("Compensation failed, ledger left inconsistent",
		"transaction_id", txn.ID,
		"owner", txn.OwnerID,
		"operation", operation,
		"orphan", true,
		"error", err)

	l.publish(ctx, model.EventIntegrityViolation, txn.OwnerID, txn.ID, map[string]string{
		"operation": operation,
		"orphan":    "true",
		"error":     err.Error(),
	})

	return common.NewIntegrityError("orphaned_transaction",
		fmt.Sprintf("transaction %s was left in an inconsistent state during %s", txn.ID, operation), err)
}

// EditTransaction applies a patch to a transaction.
//
// A new date moves the transaction to the date's competency period. When the amount or
// date of an installment transaction changes its schedule is rebuilt; installments that
// were already paid keep their payment. If the new schedule cannot be saved the previous
// state is restored.
func (l *Ledger) EditTransaction(ctx context.Context, ownerID, id string, patch model.TransactionPatch) (*model.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	current, err := l.storage.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return nil, storageError("transaction", "load", err)
	}

	var (
		category *model.Category
		card     *model.Card
	)
	if patch.CategoryID != nil {
		if category, err = l.lookupCategory(ctx, ownerID, *patch.CategoryID); err != nil {
			return nil, err
		}
	}
	if patch.CardID != nil {
		if card, err = l.lookupCard(ctx, ownerID, *patch.CardID); err != nil {
			return nil, err
		}
	}

	if err := ledger.ValidateEdit(ownerID, *current, patch, category, card); err != nil {
		return nil, err
	}

	updated := applyTransactionPatch(*current, patch)
	updated.UpdatedAt = l.now()

	rebuild := current.IsInstallment &&
		(!updated.Amount.Equal(current.Amount) || !updated.Date.Equal(current.Date))

	var oldSchedule, newSchedule []model.Installment
	if rebuild {
		if oldSchedule, err = l.storage.ListInstallments(ctx, id); err != nil {
			return nil, storageError("installment", "load", err)
		}
		if newSchedule, err = l.schedule(&updated); err != nil {
			return nil, err
		}
		carryPayments(oldSchedule, newSchedule)
	}

	if err := l.storage.UpdateTransaction(ctx, &updated); err != nil {
		return nil, storageError("transaction", "update", err)
	}

	if rebuild {
		detached := context.WithoutCancel(ctx)
		if err := l.replaceSchedule(detached, current, oldSchedule, newSchedule); err != nil {
			return nil, err
		}
	}

	slog.Info("Updated transaction", "id", id, "owner", ownerID, "rescheduled", rebuild)

	attrs := transactionAttrs(&updated)
	attrs["rescheduled"] = strconv.FormatBool(rebuild)
	l.publish(ctx, model.EventTransactionUpdated, ownerID, id, attrs)
	return &updated, nil
}

// replaceSchedule swaps the installments of an edited transaction. On failure the stored
// transaction and its old installments are put back.
func (l *Ledger) replaceSchedule(ctx context.Context, previous *model.Transaction, oldSchedule, newSchedule []model.Installment) error {
	if err := l.storage.DeleteInstallments(ctx, previous.ID); err != nil {
		return l.restoreEdit(ctx, previous, nil, err)
	}
	if err := l.storage.InsertInstallments(ctx, newSchedule); err != nil {
		return l.restoreEdit(ctx, previous, oldSchedule, err)
	}
	return nil
}

func (l *Ledger) restoreEdit(ctx context.Context, previous *model.Transaction, oldSchedule []model.Installment, cause error) error {
	var restoreErrs []error
	if len(oldSchedule) > 0 {
		if err := l.storage.InsertInstallments(ctx, oldSchedule); err != nil {
			restoreErrs = append(restoreErrs, err)
		}
	}
	if err := l.storage.UpdateTransaction(ctx, previous); err != nil {
		restoreErrs = append(restoreErrs, err)
	}

	if len(restoreErrs) > 0 {
		return l.integrityViolation(ctx, previous, "edit", errors.Join(append([]error{cause}, restoreErrs...)...))
	}

	slog.Warn("Restored transaction after failed reschedule", "id", previous.ID, "error", cause)
	return common.NewPersistenceError("installments_save_failed",
		"failed to reschedule installments; the transaction was left unchanged", cause)
}

// DeleteTransaction removes a transaction and its installments. Installments go first; if
// they cannot be removed the transaction is left untouched.
func (l *Ledger) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	current, err := l.storage.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return storageError("transaction", "load", err)
	}

	var schedule []model.Installment
	if current.IsInstallment {
		if schedule, err = l.storage.ListInstallments(ctx, id); err != nil {
			return storageError("installment", "load", err)
		}
	}

	if err := l.storage.DeleteInstallments(ctx, id); err != nil {
		return common.NewPersistenceError("installments_delete_failed",
			"failed to delete installments; the transaction was not deleted", err)
	}

	detached := context.WithoutCancel(ctx)
	if err := l.storage.DeleteTransaction(detached, ownerID, id); err != nil {
		if len(schedule) > 0 {
			if restoreErr := l.storage.InsertInstallments(detached, schedule); restoreErr != nil {
				return l.integrityViolation(detached, current, "delete", errors.Join(err, restoreErr))
			}
		}
		return storageError("transaction", "delete", err)
	}

	slog.Info("Deleted transaction", "id", id, "owner", ownerID, "installments", len(schedule))

	l.publish(ctx, model.EventTransactionDeleted, ownerID, id, transactionAttrs(current))
	return nil
}

// GetTransaction returns one of the owner's transactions.
func (l *Ledger) GetTransaction(ctx context.Context, ownerID, id string) (*model.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	txn, err := l.storage.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return nil, storageError("transaction", "load", err)
	}
	return txn, nil
}

// ListTransactions returns the owner's transactions matching filter, newest first.
// Month and Year only apply when both are set.
func (l *Ledger) ListTransactions(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	txns, err := l.storage.ListTransactions(ctx, ownerID, filter)
	if err != nil {
		return nil, storageError("transaction", "list", err)
	}
	return txns, nil
}

// ListInstallments returns the schedule of one of the owner's transactions.
func (l *Ledger) ListInstallments(ctx context.Context, ownerID, transactionID string) ([]model.Installment, error) {
	if _, err := l.GetTransaction(ctx, ownerID, transactionID); err != nil {
		return nil, err
	}

	installments, err := l.storage.ListInstallments(ctx, transactionID)
	if err != nil {
		return nil, storageError("installment", "list", err)
	}
	return installments, nil
}

// PayInstallment marks an installment as paid on paidOn, or today when paidOn is zero.
func (l *Ledger) PayInstallment(ctx context.Context, ownerID, installmentID string, paidOn time.Time) (*model.Installment, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	inst, err := l.storage.GetInstallment(ctx, installmentID)
	if err != nil {
		return nil, storageError("installment", "load", err)
	}

	unlock := l.locks.Lock(inst.TransactionID)
	defer unlock()

	if _, err := l.storage.GetTransaction(ctx, ownerID, inst.TransactionID); err != nil {
		// An installment of someone else's transaction does not exist for this owner.
		return nil, storageError("installment", "load", err)
	}

	// Re-read under the lock so a concurrent payment is seen.
	if inst, err = l.storage.GetInstallment(ctx, installmentID); err != nil {
		return nil, storageError("installment", "load", err)
	}
	if inst.Paid {
		return nil, common.NewValidationError("installment_already_paid",
			"installment %d is already paid", inst.Number)
	}

	if paidOn.IsZero() {
		paidOn = l.today()
	}
	paidOn = model.CivilDate(paidOn)
	inst.Paid = true
	inst.PaidAt = &paidOn

	if err := l.storage.UpdateInstallment(ctx, inst); err != nil {
		return nil, storageError("installment", "update", err)
	}

	slog.Info("Paid installment", "id", inst.ID, "transaction_id", inst.TransactionID, "number", inst.Number)

	l.publish(ctx, model.EventInstallmentPaid, ownerID, inst.ID, map[string]string{
		"transaction_id": inst.TransactionID,
		"number":         strconv.Itoa(inst.Number),
		"amount":         inst.Amount.StringFixed(2),
		"paid_at":        model.FormatDate(paidOn),
	})
	return inst, nil
}

// schedule builds the installments of txn with fresh IDs.
func (l *Ledger) schedule(txn *model.Transaction) ([]model.Installment, error) {
	if !txn.IsInstallment {
		return nil, nil
	}

	installments, err := ledger.BuildSchedule(txn.ID, txn.Amount, txn.InstallmentCount, txn.Date)
	if err != nil {
		return nil, err
	}

	now := l.now()
	for i := range installments {
		installments[i].ID = l.newID()
		installments[i].CreatedAt = now
	}
	return installments, nil
}

// lookupCategory fetches a category, returning nil when the owner has none with that ID.
func (l *Ledger) lookupCategory(ctx context.Context, ownerID, id string) (*model.Category, error) {
	if id == "" {
		return nil, nil
	}
	category, err := l.storage.GetCategory(ctx, ownerID, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("category", "load", err)
	}
	return category, nil
}

// lookupCard fetches a card, returning nil when the owner has none with that ID.
func (l *Ledger) lookupCard(ctx context.Context, ownerID, id string) (*model.Card, error) {
	if id == "" {
		return nil, nil
	}
	card, err := l.storage.GetCard(ctx, ownerID, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("card", "load", err)
	}
	return card, nil
}

func applyTransactionPatch(txn model.Transaction, patch model.TransactionPatch) model.Transaction {
	if patch.Description != nil {
		txn.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Notes != nil {
		txn.Notes = *patch.Notes
	}
	if patch.CategoryID != nil {
		txn.CategoryID = *patch.CategoryID
	}
	if patch.CardID != nil {
		txn.CardID = *patch.CardID
	}
	if patch.PaymentMethod != nil {
		txn.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Amount != nil {
		txn.Amount = *patch.Amount
		txn.InstallmentAmount = ledger.InstallmentBase(txn.Amount, txn.InstallmentCount)
	}
	if patch.Date != nil {
		txn.Date = model.CivilDate(*patch.Date)
		period := ledger.PeriodOf(txn.Date)
		txn.CompetencyMonth = period.Month
		txn.CompetencyYear = period.Year
	}
	return txn
}

// carryPayments keeps the payment of installments that were already settled.
func carryPayments(oldSchedule, newSchedule []model.Installment) {
	paid := make(map[int]model.Installment, len(oldSchedule))
	for _, inst := range oldSchedule {
		if inst.Paid && inst.Number > 1 {
			paid[inst.Number] = inst
		}
	}
	for i := range newSchedule {
		if old, ok := paid[newSchedule[i].Number]; ok {
			newSchedule[i].Paid = true
			newSchedule[i].PaidAt = old.PaidAt
		}
	}
}

func validateFilter(filter model.TransactionFilter) error {
	if filter.HasPeriod() {
		if err := (ledger.Period{Month: filter.Month, Year: filter.Year}).Validate(); err != nil {
			return err
		}
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return common.NewValidationError("invalid_type", "unknown transaction type %q", filter.Type)
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return common.NewValidationError("invalid_date_range", "end date %s is before start date %s",
			model.FormatDate(*filter.EndDate), model.FormatDate(*filter.StartDate))
	}
	return nil
}

func transactionAttrs(txn *model.Transaction) map[string]string {
	return map[string]string{
		"type":         string(txn.Type),
		"amount":       txn.Amount.StringFixed(2),
		"category_id":  txn.CategoryID,
		"installments": strconv.Itoa(txn.InstallmentCount),
		"competency":   ledger.Period{Month: txn.CompetencyMonth, Year: txn.CompetencyYear}.String(),
	}
}
