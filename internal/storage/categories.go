package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const categoryColumns = `id, owner_id, name, type, color, icon, is_active, created_at`

// GetCategory returns a category by ID, scoped to its owner.
func (s *SQLiteStorage) GetCategory(ctx context.Context, ownerID, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ? AND owner_id = ?`

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return cat, nil
}

// FindCategoryByName returns the owner's category with the given name and type,
// or nil when there is none.
func (s *SQLiteStorage) FindCategoryByName(ctx context.Context, ownerID, name string, categoryType model.TransactionType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE owner_id = ? AND name = ? COLLATE NOCASE AND type = ?`

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, ownerID, name, categoryType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return cat, nil
}

// ListCategories returns the owner's categories ordered by type then name.
func (s *SQLiteStorage) ListCategories(ctx context.Context, ownerID string, filter model.CategoryFilter) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = ?`
	args := []any{ownerID}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}
	query += ` ORDER BY type, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := []model.Category{}
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "owner", ownerID, "count", len(categories))
	return categories, nil
}

// InsertCategory stores a new category.
func (s *SQLiteStorage) InsertCategory(ctx context.Context, cat *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(cat); err != nil {
		return err
	}

	query := `INSERT INTO categories (` + categoryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		cat.ID, cat.OwnerID, cat.Name, cat.Type, cat.Color, cat.Icon, cat.IsActive, cat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("created new category", "name", cat.Name, "id", cat.ID)
	return nil
}

// UpdateCategory overwrites the mutable fields of a category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, cat *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(cat); err != nil {
		return err
	}

	query := `
		UPDATE categories
		SET name = ?, color = ?, icon = ?, is_active = ?
		WHERE id = ? AND owner_id = ?`

	result, err := s.db.ExecContext(ctx, query, cat.Name, cat.Color, cat.Icon, cat.IsActive, cat.ID, cat.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return expectAffected(result, "category", cat.ID)
}

// DeleteCategory removes a category.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, ownerID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := expectAffected(result, "category", id); err != nil {
		return err
	}

	slog.Info("deleted category", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var cat model.Category
	if err := row.Scan(&cat.ID, &cat.OwnerID, &cat.Name, &cat.Type, &cat.Color, &cat.Icon,
		&cat.IsActive, &cat.CreatedAt); err != nil {
		return nil, err
	}
	return &cat, nil
}

func expectAffected(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, common.ErrNotFound)
	}
	return nil
}
