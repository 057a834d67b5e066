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

func TestMonthlySummary(t *testing.T) {
	ctx := context.Background()

	t.Run("empty period", func(t *testing.T) {
		h := newHarness(t)

		summary, err := h.ledger.MonthlySummary(ctx, h.owner, 7, 2024)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.Count)
		assert.True(t, summary.TotalIncome.IsZero())
		assert.True(t, summary.Balance.IsZero())
		assert.NotNil(t, summary.ByCategory)
		assert.Empty(t, summary.ByCategory)
		assert.Empty(t, summary.ByPaymentMethod)
	})

	t.Run("aggregates the period", func(t *testing.T) {
		h := newHarness(t)

		salary := model.TransactionInput{
			Date:          date(2024, time.March, 5),
			Amount:        dec("3000.00"),
			CategoryID:    h.db.MustCategory(testutil.CategorySalary).ID,
			Description:   "Salary",
			Type:          model.TypeIncome,
			PaymentMethod: model.PaymentTransfer,
		}
		_, err := h.ledger.CreateTransaction(ctx, h.owner, salary)
		require.NoError(t, err)
		_, err = h.ledger.CreateTransaction(ctx, h.owner, h.expense("750.00", date(2024, time.March, 8)))
		require.NoError(t, err)
		_, err = h.ledger.CreateTransaction(ctx, h.owner, h.expense("250.00", date(2024, time.March, 20)))
		require.NoError(t, err)
		_, err = h.ledger.CreateTransaction(ctx, h.owner, h.expense("999.00", date(2024, time.April, 1)))
		require.NoError(t, err)

		summary, err := h.ledger.MonthlySummary(ctx, h.owner, 3, 2024)
		require.NoError(t, err)

		assert.Equal(t, 3, summary.Count)
		assert.True(t, dec("3000").Equal(summary.TotalIncome))
		assert.True(t, dec("1000").Equal(summary.TotalExpense))
		assert.True(t, dec("2000").Equal(summary.Balance))

		require.Len(t, summary.ByCategory, 2)
		assert.Equal(t, "Salary", summary.ByCategory[0].CategoryName)
		assert.True(t, dec("75").Equal(summary.ByCategory[0].Percentage))
		assert.Equal(t, "Groceries", summary.ByCategory[1].CategoryName)
		assert.True(t, dec("25").Equal(summary.ByCategory[1].Percentage))

		require.Len(t, summary.ByPaymentMethod, 2)
		assert.Equal(t, model.PaymentTransfer, summary.ByPaymentMethod[0].Method)
	})

	t.Run("invalid period", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.ledger.MonthlySummary(ctx, h.owner, 0, 2024)
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("storage failure", func(t *testing.T) {
		h := newHarness(t)
		h.faults.Fail(testutil.FailListCategories, 1)

		_, err := h.ledger.MonthlySummary(ctx, h.owner, 3, 2024)
		assert.ErrorIs(t, err, common.ErrPersistence)
		assert.Equal(t, "category_list_failed", common.CodeOf(err))
	})
}

func TestCardStatement(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	card := h.db.MustCard(testutil.CardCredit)

	plan, err := h.ledger.CreateTransaction(ctx, h.owner, h.plan("300.00", 3, date(2024, time.January, 31)))
	require.NoError(t, err)

	single := h.expense("45.90", date(2024, time.February, 12))
	single.CardID = card.ID
	single.PaymentMethod = model.PaymentCreditCard
	_, err = h.ledger.CreateTransaction(ctx, h.owner, single)
	require.NoError(t, err)

	stmt, err := h.ledger.CardStatement(ctx, h.owner, card.ID, 2, 2024)
	require.NoError(t, err)

	assert.Equal(t, card.Name, stmt.CardName)
	require.Len(t, stmt.Entries, 2)
	assert.True(t, dec("145.90").Equal(stmt.Total))
	assert.True(t, dec("45.90").Equal(stmt.Paid))
	assert.True(t, dec("100.00").Equal(stmt.Pending))
	assert.Equal(t, plan.ID, stmt.Entries[1].TransactionID)
	assert.Equal(t, 2, stmt.Entries[1].Number)
	assert.Equal(t, 3, stmt.Entries[1].Of)

	t.Run("other owner's card", func(t *testing.T) {
		_, err := h.ledger.CardStatement(ctx, "intruder", card.ID, 2, 2024)
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.Equal(t, "card_not_found", common.CodeOf(err))
	})

	t.Run("period without charges", func(t *testing.T) {
		stmt, err := h.ledger.CardStatement(ctx, h.owner, card.ID, 9, 2024)
		require.NoError(t, err)
		assert.Empty(t, stmt.Entries)
		assert.True(t, stmt.Total.IsZero())
	})
}
