package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// CreateCategory adds a category. Names are unique per owner and type.
func (l *Ledger) CreateCategory(ctx context.Context, ownerID string, in model.CategoryInput) (*model.Category, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := ledger.ValidateCategoryInput(in); err != nil {
		return nil, err
	}

	existing, err := l.storage.FindCategoryByName(ctx, ownerID, in.Name, in.Type)
	if err != nil {
		return nil, storageError("category", "load", err)
	}
	if err := ledger.ValidateUniqueCategoryName(existing, ""); err != nil {
		return nil, err
	}

	cat := &model.Category{
		ID:        l.newID(),
		OwnerID:   ownerID,
		Name:      in.Name,
		Type:      in.Type,
		Color:     in.Color,
		Icon:      in.Icon,
		IsActive:  true,
		CreatedAt: l.now(),
	}
	if cat.Color == "" {
		cat.Color = model.DefaultColor
	}
	if cat.Icon == "" {
		cat.Icon = model.DefaultCategoryIcon
	}

	if err := l.storage.InsertCategory(ctx, cat); err != nil {
		return nil, storageError("category", "save", err)
	}
	return cat, nil
}

// EditCategory changes the name, color or icon of a category. A new name must still be
// unique among the owner's categories of the same type.
func (l *Ledger) EditCategory(ctx context.Context, ownerID, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := ledger.ValidateCategoryPatch(patch); err != nil {
		return nil, err
	}

	cat, err := l.storage.GetCategory(ctx, ownerID, id)
	if err != nil {
		return nil, storageError("category", "load", err)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		existing, err := l.storage.FindCategoryByName(ctx, ownerID, name, cat.Type)
		if err != nil {
			return nil, storageError("category", "load", err)
		}
		if err := ledger.ValidateUniqueCategoryName(existing, cat.ID); err != nil {
			return nil, err
		}
		cat.Name = name
	}
	if patch.Color != nil {
		cat.Color = *patch.Color
	}
	if patch.Icon != nil {
		cat.Icon = *patch.Icon
	}

	if err := l.storage.UpdateCategory(ctx, cat); err != nil {
		return nil, storageError("category", "update", err)
	}
	return cat, nil
}

// ToggleCategory flips a category between active and inactive.
func (l *Ledger) ToggleCategory(ctx context.Context, ownerID, id string) (*model.Category, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	cat, err := l.storage.GetCategory(ctx, ownerID, id)
	if err != nil {
		return nil, storageError("category", "load", err)
	}

	cat.IsActive = !cat.IsActive
	if err := l.storage.UpdateCategory(ctx, cat); err != nil {
		return nil, storageError("category", "update", err)
	}

	slog.Info("Toggled category", "id", id, "active", cat.IsActive)
	return cat, nil
}

// DeleteCategory removes a category no transaction refers to. Categories in use must be
// deactivated instead.
func (l *Ledger) DeleteCategory(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	if _, err := l.storage.GetCategory(ctx, ownerID, id); err != nil {
		return storageError("category", "load", err)
	}

	refs, err := l.storage.CountTransactionsByCategory(ctx, ownerID, id)
	if err != nil {
		return storageError("category", "load", err)
	}
	if err := ledger.ValidateDeletable("category", refs); err != nil {
		return err
	}

	if err := l.storage.DeleteCategory(ctx, ownerID, id); err != nil {
		return storageError("category", "delete", err)
	}
	return nil
}

// GetCategory returns one of the owner's categories.
func (l *Ledger) GetCategory(ctx context.Context, ownerID, id string) (*model.Category, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	cat, err := l.storage.GetCategory(ctx, ownerID, id)
	if err != nil {
		return nil, storageError("category", "load", err)
	}
	return cat, nil
}

// ListCategories returns the owner's categories ordered by type then name.
func (l *Ledger) ListCategories(ctx context.Context, ownerID string, filter model.CategoryFilter) ([]model.Category, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, common.NewValidationError("invalid_type", "unknown category type %q", filter.Type)
	}

	categories, err := l.storage.ListCategories(ctx, ownerID, filter)
	if err != nil {
		return nil, storageError("category", "list", err)
	}
	return categories, nil
}
