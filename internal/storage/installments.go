package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const installmentColumns = `id, transaction_id, number, amount, competency_month, competency_year,
	due_date, paid, paid_at, created_at`

// InsertInstallments stores a transaction's installment schedule atomically.
func (s *SQLiteStorage) InsertInstallments(ctx context.Context, installments []model.Installment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInstallments(installments); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO installments (`+installmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, inst := range installments {
		if _, err := stmt.ExecContext(ctx,
			inst.ID, inst.TransactionID, inst.Number, inst.Amount.StringFixed(2),
			inst.CompetencyMonth, inst.CompetencyYear, model.FormatDate(inst.DueDate),
			inst.Paid, nullDate(inst.PaidAt), inst.CreatedAt); err != nil {
			return fmt.Errorf("failed to save installment %d: %w", inst.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit installments: %w", err)
	}

	slog.Debug("saved installments", "transaction", installments[0].TransactionID, "count", len(installments))
	return nil
}

// ListInstallments returns a transaction's installments in sequence order.
func (s *SQLiteStorage) ListInstallments(ctx context.Context, transactionID string) ([]model.Installment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + installmentColumns + ` FROM installments WHERE transaction_id = ? ORDER BY number`

	rows, err := s.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	installments := []model.Installment{}
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, *inst)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating installments: %w", err)
	}

	return installments, nil
}

// GetInstallment returns an installment by ID.
func (s *SQLiteStorage) GetInstallment(ctx context.Context, id string) (*model.Installment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = ?`

	inst, err := scanInstallment(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("installment %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query installment: %w", err)
	}

	return inst, nil
}

// UpdateInstallment records the payment state of an installment.
func (s *SQLiteStorage) UpdateInstallment(ctx context.Context, inst *model.Installment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if inst == nil {
		return fmt.Errorf("%w: installment", ErrNilParameter)
	}

	result, err := s.db.ExecContext(ctx, `UPDATE installments SET paid = ?, paid_at = ? WHERE id = ?`,
		inst.Paid, nullDate(inst.PaidAt), inst.ID)
	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}

	return expectAffected(result, "installment", inst.ID)
}

// DeleteInstallments removes every installment of a transaction. Deleting a transaction
// without installments is not an error.
func (s *SQLiteStorage) DeleteInstallments(ctx context.Context, transactionID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM installments WHERE transaction_id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete installments: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		slog.Debug("deleted installments", "transaction", transactionID, "count", n)
	}
	return nil
}

func scanInstallment(row rowScanner) (*model.Installment, error) {
	var (
		inst    model.Installment
		dueDate string
		paidAt  sql.NullString
	)
	if err := row.Scan(&inst.ID, &inst.TransactionID, &inst.Number, &inst.Amount, &inst.CompetencyMonth,
		&inst.CompetencyYear, &dueDate, &inst.Paid, &paidAt, &inst.CreatedAt); err != nil {
		return nil, err
	}

	due, err := model.ParseDate(dueDate)
	if err != nil {
		return nil, err
	}
	inst.DueDate = due

	if paidAt.Valid {
		paid, err := model.ParseDate(paidAt.String)
		if err != nil {
			return nil, err
		}
		inst.PaidAt = &paid
	}

	return &inst, nil
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: model.FormatDate(*t), Valid: true}
}
