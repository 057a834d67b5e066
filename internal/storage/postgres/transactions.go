package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

const transactionColumns = `id, owner_id, category_id, card_id, description, amount::text, type,
	payment_method, is_installment, installment_count, installment_amount::text, date,
	competency_month, competency_year, notes, created_at, updated_at`

const transactionInsertColumns = `id, owner_id, category_id, card_id, description, amount, type,
	payment_method, is_installment, installment_count, installment_amount, date,
	competency_month, competency_year, notes, created_at, updated_at`

// GetTransaction returns a transaction by ID, scoped to its owner.
func (s *Store) GetTransaction(ctx context.Context, ownerID, id string) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND owner_id = $2`

	txn, err := scanTransaction(s.pool.QueryRow(ctx, query, id, ownerID))
	if nf := notFound(err, "transaction", id); nf != nil {
		return nil, nf
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	return txn, nil
}

// ListTransactions returns the owner's transactions matching filter, newest first.
func (s *Store) ListTransactions(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s", storage.ErrInvalidDateRange,
			model.FormatDate(*filter.EndDate), model.FormatDate(*filter.StartDate))
	}

	var (
		conditions []string
		args       []any
	)
	where := func(clause string, values ...any) {
		for _, v := range values {
			args = append(args, v)
			clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(args)), 1)
		}
		conditions = append(conditions, clause)
	}

	where("owner_id = ?", ownerID)
	if filter.Type != "" {
		where("type = ?", string(filter.Type))
	}
	if filter.CategoryID != "" {
		where("category_id = ?", filter.CategoryID)
	}
	if filter.CardID != "" {
		where("card_id = ?", filter.CardID)
	}
	if filter.HasPeriod() {
		where("competency_month = ? AND competency_year = ?", filter.Month, filter.Year)
	}
	if filter.StartDate != nil {
		where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		where("date <= ?", *filter.EndDate)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY date DESC, created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

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
func (s *Store) InsertTransaction(ctx context.Context, txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", storage.ErrNilParameter)
	}

	query := `INSERT INTO transactions (` + transactionInsertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11::numeric, $12, $13, $14, $15, $16, $17)`

	_, err := s.pool.Exec(ctx, query,
		txn.ID, txn.OwnerID, txn.CategoryID, optionalText(txn.CardID), txn.Description,
		txn.Amount.StringFixed(2), string(txn.Type), string(txn.PaymentMethod),
		txn.IsInstallment, txn.InstallmentCount, txn.InstallmentAmount.StringFixed(2),
		txn.Date, txn.CompetencyMonth, txn.CompetencyYear,
		txn.Notes, txn.CreatedAt, txn.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	return nil
}

// UpdateTransaction overwrites the mutable fields of a transaction.
func (s *Store) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", storage.ErrNilParameter)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE transactions
		SET category_id = $1, card_id = $2, description = $3, amount = $4::numeric,
			payment_method = $5, installment_amount = $6::numeric, date = $7,
			competency_month = $8, competency_year = $9, notes = $10, updated_at = $11
		WHERE id = $12 AND owner_id = $13`,
		txn.CategoryID, optionalText(txn.CardID), txn.Description, txn.Amount.StringFixed(2),
		string(txn.PaymentMethod), txn.InstallmentAmount.StringFixed(2), txn.Date,
		txn.CompetencyMonth, txn.CompetencyYear, txn.Notes, txn.UpdatedAt,
		txn.ID, txn.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return expectAffected(tag, "transaction", txn.ID)
}

// DeleteTransaction removes a transaction. Its installments must be deleted first.
func (s *Store) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return expectAffected(tag, "transaction", id)
}

// CountTransactionsByCategory returns how many of the owner's transactions use a category.
func (s *Store) CountTransactionsByCategory(ctx context.Context, ownerID, categoryID string) (int, error) {
	return s.countTransactions(ctx, "category_id", ownerID, categoryID)
}

// CountTransactionsByCard returns how many of the owner's transactions use a card.
func (s *Store) CountTransactionsByCard(ctx context.Context, ownerID, cardID string) (int, error) {
	return s.countTransactions(ctx, "card_id", ownerID, cardID)
}

func (s *Store) countTransactions(ctx context.Context, column, ownerID, refID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM transactions WHERE owner_id = $1 AND ` + column + ` = $2`
	if err := s.pool.QueryRow(ctx, query, ownerID, refID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn                    model.Transaction
		cardID                 *string
		amount, perInstallment string
		txnType, method        string
	)
	if err := row.Scan(&txn.ID, &txn.OwnerID, &txn.CategoryID, &cardID, &txn.Description, &amount,
		&txnType, &method, &txn.IsInstallment, &txn.InstallmentCount, &perInstallment,
		&txn.Date, &txn.CompetencyMonth, &txn.CompetencyYear, &txn.Notes, &txn.CreatedAt,
		&txn.UpdatedAt); err != nil {
		return nil, err
	}

	txn.Type = model.TransactionType(txnType)
	txn.PaymentMethod = model.PaymentMethod(method)
	if cardID != nil {
		txn.CardID = *cardID
	}

	parsed, err := parseNumeric(&amount)
	if err != nil {
		return nil, err
	}
	txn.Amount = *parsed

	if parsed, err = parseNumeric(&perInstallment); err != nil {
		return nil, err
	}
	txn.InstallmentAmount = *parsed

	return &txn, nil
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
