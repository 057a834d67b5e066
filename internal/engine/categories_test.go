package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	cat, err := h.ledger.CreateCategory(ctx, h.owner, model.CategoryInput{Name: " Pets ", Type: model.TypeExpense})
	require.NoError(t, err)
	assert.Equal(t, "Pets", cat.Name)
	assert.Equal(t, model.DefaultColor, cat.Color)
	assert.Equal(t, model.DefaultCategoryIcon, cat.Icon)
	assert.True(t, cat.IsActive)

	_, err = h.ledger.CreateCategory(ctx, h.owner, model.CategoryInput{Name: "pets", Type: model.TypeExpense})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "category_name_taken", common.CodeOf(err))

	// The same name is free for the other type and for other owners.
	_, err = h.ledger.CreateCategory(ctx, h.owner, model.CategoryInput{Name: "Pets", Type: model.TypeIncome})
	assert.NoError(t, err)
	_, err = h.ledger.CreateCategory(ctx, "someone-else", model.CategoryInput{Name: "Pets", Type: model.TypeExpense})
	assert.NoError(t, err)

	_, err = h.ledger.CreateCategory(ctx, h.owner, model.CategoryInput{Name: "Bad", Type: model.TypeExpense, Color: "blue"})
	assert.Equal(t, "invalid_color", common.CodeOf(err))
}

func TestEditCategory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	rent := h.db.MustCategory(testutil.CategoryRent)

	name := "Housing"
	color := "#112233"
	updated, err := h.ledger.EditCategory(ctx, h.owner, rent.ID, model.CategoryPatch{Name: &name, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "Housing", updated.Name)
	assert.Equal(t, "#112233", updated.Color)
	assert.Equal(t, model.TypeExpense, updated.Type)

	taken := string(testutil.CategoryGroceries)
	_, err = h.ledger.EditCategory(ctx, h.owner, rent.ID, model.CategoryPatch{Name: &taken})
	assert.Equal(t, "category_name_taken", common.CodeOf(err))

	// Renaming to its own name is allowed.
	same := "housing"
	_, err = h.ledger.EditCategory(ctx, h.owner, rent.ID, model.CategoryPatch{Name: &same})
	assert.NoError(t, err)

	_, err = h.ledger.EditCategory(ctx, "intruder", rent.ID, model.CategoryPatch{Name: &name})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestToggleCategory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	rent := h.db.MustCategory(testutil.CategoryRent)

	toggled, err := h.ledger.ToggleCategory(ctx, h.owner, rent.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	toggled, err = h.ledger.ToggleCategory(ctx, h.owner, rent.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.ledger.CreateTransaction(ctx, h.owner, h.expense("10.00", date(2024, time.March, 1)))
	require.NoError(t, err)

	groceries := h.db.MustCategory(testutil.CategoryGroceries)
	err = h.ledger.DeleteCategory(ctx, h.owner, groceries.ID)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "category_in_use", common.CodeOf(err))

	rent := h.db.MustCategory(testutil.CategoryRent)
	require.NoError(t, h.ledger.DeleteCategory(ctx, h.owner, rent.ID))

	_, err = h.ledger.GetCategory(ctx, h.owner, rent.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = h.ledger.DeleteCategory(ctx, h.owner, rent.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListCategories(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	all, err := h.ledger.ListCategories(ctx, h.owner, model.CategoryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, model.TypeExpense, all[0].Type)

	income, err := h.ledger.ListCategories(ctx, h.owner, model.CategoryFilter{Type: model.TypeIncome})
	require.NoError(t, err)
	require.Len(t, income, 2)
	assert.Equal(t, "Freelance", income[0].Name)

	_, err = h.ledger.ListCategories(ctx, h.owner, model.CategoryFilter{Type: "transfer"})
	assert.ErrorIs(t, err, common.ErrValidation)
}
