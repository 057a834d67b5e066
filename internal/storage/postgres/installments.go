package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

const installmentColumns = `id, transaction_id, number, amount::text, competency_month, competency_year,
	due_date, paid, paid_at, created_at`

const installmentInsertColumns = `id, transaction_id, number, amount, competency_month, competency_year,
	due_date, paid, paid_at, created_at`

// InsertInstallments stores a transaction's installment schedule in one database transaction.
func (s *Store) InsertInstallments(ctx context.Context, installments []model.Installment) error {
	if len(installments) == 0 {
		return fmt.Errorf("%w: installments", storage.ErrEmptySlice)
	}

	query := `INSERT INTO installments (` + installmentInsertColumns + `)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)`

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, inst := range installments {
			batch.Queue(query,
				inst.ID, inst.TransactionID, inst.Number, inst.Amount.StringFixed(2),
				inst.CompetencyMonth, inst.CompetencyYear, inst.DueDate,
				inst.Paid, inst.PaidAt, inst.CreatedAt)
		}

		results := tx.SendBatch(ctx, batch)
		for _, inst := range installments {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to save installment %d: %w", inst.Number, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return fmt.Errorf("failed to save installments: %w", err)
	}

	slog.Debug("saved installments", "transaction", installments[0].TransactionID, "count", len(installments))
	return nil
}

// ListInstallments returns a transaction's installments in sequence order.
func (s *Store) ListInstallments(ctx context.Context, transactionID string) ([]model.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE transaction_id = $1 ORDER BY number`

	rows, err := s.pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()

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
func (s *Store) GetInstallment(ctx context.Context, id string) (*model.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1`

	inst, err := scanInstallment(s.pool.QueryRow(ctx, query, id))
	if nf := notFound(err, "installment", id); nf != nil {
		return nil, nf
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query installment: %w", err)
	}

	return inst, nil
}

// UpdateInstallment records the payment state of an installment.
func (s *Store) UpdateInstallment(ctx context.Context, inst *model.Installment) error {
	if inst == nil {
		return fmt.Errorf("%w: installment", storage.ErrNilParameter)
	}

	tag, err := s.pool.Exec(ctx, `UPDATE installments SET paid = $1, paid_at = $2 WHERE id = $3`,
		inst.Paid, inst.PaidAt, inst.ID)
	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}

	return expectAffected(tag, "installment", inst.ID)
}

// DeleteInstallments removes every installment of a transaction. Deleting a transaction
// without installments is not an error.
func (s *Store) DeleteInstallments(ctx context.Context, transactionID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM installments WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete installments: %w", err)
	}

	if n := tag.RowsAffected(); n > 0 {
		slog.Debug("deleted installments", "transaction", transactionID, "count", n)
	}
	return nil
}

func scanInstallment(row rowScanner) (*model.Installment, error) {
	var (
		inst   model.Installment
		amount string
		paidAt *time.Time
	)
	if err := row.Scan(&inst.ID, &inst.TransactionID, &inst.Number, &amount, &inst.CompetencyMonth,
		&inst.CompetencyYear, &inst.DueDate, &inst.Paid, &paidAt, &inst.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := parseNumeric(&amount)
	if err != nil {
		return nil, err
	}
	inst.Amount = *parsed
	inst.PaidAt = paidAt

	return &inst, nil
}
