package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const transactionColumns = `id, owner_id, category_id, card_id, description, amount, type, payment_method,
	is_installment, installment_count, installment_amount, date, competency_month, competency_year,
	notes, created_at, updated_at`

// GetTransaction returns a transaction by ID, scoped to its owner.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, ownerID, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND owner_id = ?`

	txn, err := scanTransaction(s.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	return txn, nil
}

// ListTransactions returns the owner's transactions matching filter, newest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidDateRange,
			model.FormatDate(*filter.EndDate), model.FormatDate(*filter.StartDate))
	}

	conditions := []string{"owner_id = ?"}
	args := []any{ownerID}

	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.CardID != "" {
		conditions = append(conditions, "card_id = ?")
		args = append(args, filter.CardID)
	}
	if filter.HasPeriod() {
		conditions = append(conditions, "competency_month = ? AND competency_year = ?")
		args = append(args, filter.Month, filter.Year)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, model.FormatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, model.FormatDate(*filter.EndDate))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := []model.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "owner", ownerID, "count", len(transactions))
	return transactions, nil
}

// InsertTransaction stores a new transaction.
func (s *SQLiteStorage) InsertTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		txn.ID, txn.OwnerID, txn.CategoryID, nullString(txn.CardID), txn.Description,
		txn.Amount.StringFixed(2), txn.Type, txn.PaymentMethod,
		txn.IsInstallment, txn.InstallmentCount, txn.InstallmentAmount.StringFixed(2),
		model.FormatDate(txn.Date), txn.CompetencyMonth, txn.CompetencyYear,
		txn.Notes, txn.CreatedAt, txn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	return nil
}

// UpdateTransaction overwrites the mutable fields of a transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	query := `
		UPDATE transactions
		SET category_id = ?, card_id = ?, description = ?, amount = ?, payment_method = ?,
			installment_amount = ?, date = ?, competency_month = ?, competency_year = ?,
			notes = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`

	result, err := s.db.ExecContext(ctx, query,
		txn.CategoryID, nullString(txn.CardID), txn.Description, txn.Amount.StringFixed(2),
		txn.PaymentMethod, txn.InstallmentAmount.StringFixed(2), model.FormatDate(txn.Date),
		txn.CompetencyMonth, txn.CompetencyYear, txn.Notes, txn.UpdatedAt,
		txn.ID, txn.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return expectAffected(result, "transaction", txn.ID)
}

// DeleteTransaction removes a transaction. Its installments must be deleted first.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return expectAffected(result, "transaction", id)
}

// CountTransactionsByCategory returns how many of the owner's transactions use a category.
func (s *SQLiteStorage) CountTransactionsByCategory(ctx context.Context, ownerID, categoryID string) (int, error) {
	return s.countTransactions(ctx, "category_id", ownerID, categoryID)
}

// CountTransactionsByCard returns how many of the owner's transactions use a card.
func (s *SQLiteStorage) CountTransactionsByCard(ctx context.Context, ownerID, cardID string) (int, error) {
	return s.countTransactions(ctx, "card_id", ownerID, cardID)
}

func (s *SQLiteStorage) countTransactions(ctx context.Context, column, ownerID, refID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	query := `SELECT COUNT(*) FROM transactions WHERE owner_id = ? AND ` + column + ` = ?`
	if err := s.db.QueryRowContext(ctx, query, ownerID, refID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn    model.Transaction
		cardID sql.NullString
		date   string
	)
	if err := row.Scan(&txn.ID, &txn.OwnerID, &txn.CategoryID, &cardID, &txn.Description, &txn.Amount,
		&txn.Type, &txn.PaymentMethod, &txn.IsInstallment, &txn.InstallmentCount, &txn.InstallmentAmount,
		&date, &txn.CompetencyMonth, &txn.CompetencyYear, &txn.Notes, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
		return nil, err
	}

	parsed, err := model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	txn.Date = parsed
	txn.CardID = cardID.String

	return &txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
