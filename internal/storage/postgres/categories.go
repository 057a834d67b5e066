package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

const categoryColumns = `id, owner_id, name, type, color, icon, is_active, created_at`

// GetCategory returns a category by ID, scoped to its owner.
func (s *Store) GetCategory(ctx context.Context, ownerID, id string) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND owner_id = $2`

	cat, err := scanCategory(s.pool.QueryRow(ctx, query, id, ownerID))
	if nf := notFound(err, "category", id); nf != nil {
		return nil, nf
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return cat, nil
}

// FindCategoryByName returns the owner's category with the given name and type, ignoring
// case, or nil when there is none.
func (s *Store) FindCategoryByName(ctx context.Context, ownerID, name string, categoryType model.TransactionType) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE owner_id = $1 AND lower(name) = lower($2) AND type = $3`

	cat, err := scanCategory(s.pool.QueryRow(ctx, query, ownerID, name, string(categoryType)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return cat, nil
}

// ListCategories returns the owner's categories ordered by type then name.
func (s *Store) ListCategories(ctx context.Context, ownerID string, filter model.CategoryFilter) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = $1`
	args := []any{ownerID}
	if filter.Type != "" {
		query += ` AND type = $2`
		args = append(args, string(filter.Type))
	}
	query += ` ORDER BY type, name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

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

	return categories, nil
}

// InsertCategory stores a new category.
func (s *Store) InsertCategory(ctx context.Context, cat *model.Category) error {
	if cat == nil {
		return fmt.Errorf("%w: category", storage.ErrNilParameter)
	}

	query := `INSERT INTO categories (` + categoryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		cat.ID, cat.OwnerID, cat.Name, string(cat.Type), cat.Color, cat.Icon, cat.IsActive, cat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("created new category", "name", cat.Name, "id", cat.ID)
	return nil
}

// UpdateCategory overwrites the mutable fields of a category.
func (s *Store) UpdateCategory(ctx context.Context, cat *model.Category) error {
	if cat == nil {
		return fmt.Errorf("%w: category", storage.ErrNilParameter)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE categories
		SET name = $1, color = $2, icon = $3, is_active = $4
		WHERE id = $5 AND owner_id = $6`,
		cat.Name, cat.Color, cat.Icon, cat.IsActive, cat.ID, cat.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return expectAffected(tag, "category", cat.ID)
}

// DeleteCategory removes a category.
func (s *Store) DeleteCategory(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return expectAffected(tag, "category", id)
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		cat     model.Category
		catType string
	)
	if err := row.Scan(&cat.ID, &cat.OwnerID, &cat.Name, &catType, &cat.Color, &cat.Icon,
		&cat.IsActive, &cat.CreatedAt); err != nil {
		return nil, err
	}
	cat.Type = model.TransactionType(catType)
	return &cat, nil
}
