package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// setupStore connects to LEDGER_TEST_POSTGRES_DSN and isolates the test under a fresh owner.
func setupStore(t *testing.T) (*Store, string) {
	t.Helper()

	dsn := os.Getenv("LEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEDGER_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(ctx))
	return store, "owner-" + uuid.NewString()
}

func TestNewStore_RequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), " ")
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	store, _ := setupStore(t)
	assert.NoError(t, store.Migrate(context.Background()))
}

func TestStore_RoundTrip(t *testing.T) {
	store, owner := setupStore(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cat := &model.Category{
		ID: uuid.NewString(), OwnerID: owner, Name: "Groceries", Type: model.TypeExpense,
		Color: model.DefaultColor, Icon: model.DefaultCategoryIcon, IsActive: true, CreatedAt: created,
	}
	require.NoError(t, store.InsertCategory(ctx, cat))

	found, err := store.FindCategoryByName(ctx, owner, "groceries", model.TypeExpense)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, cat.ID, found.ID)

	limit := decimal.RequireFromString("5000.00")
	closing, due := 3, 10
	card := &model.Card{
		ID: uuid.NewString(), OwnerID: owner, Name: "Nubank", Kind: model.CardKindCredit,
		Brand: model.BrandVisa, LastFour: "4242", Color: model.DefaultColor,
		TotalLimit: &limit, AvailableLimit: &limit, ClosingDay: &closing, DueDay: &due,
		IsActive: true, CreatedAt: created,
	}
	require.NoError(t, store.InsertCard(ctx, card))

	gotCard, err := store.GetCard(ctx, owner, card.ID)
	require.NoError(t, err)
	require.NotNil(t, gotCard.TotalLimit)
	assert.True(t, limit.Equal(*gotCard.TotalLimit))
	assert.Equal(t, 3, *gotCard.ClosingDay)

	date := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	txn := &model.Transaction{
		ID: uuid.NewString(), OwnerID: owner, CategoryID: cat.ID, CardID: card.ID,
		Description: "Laptop", Amount: decimal.RequireFromString("100.00"),
		InstallmentAmount: decimal.RequireFromString("33.33"), Type: model.TypeExpense,
		PaymentMethod: model.PaymentCreditCard, IsInstallment: true, InstallmentCount: 3,
		Date: date, CompetencyMonth: 1, CompetencyYear: 2024, CreatedAt: created, UpdatedAt: created,
	}
	require.NoError(t, store.InsertTransaction(ctx, txn))

	gotTxn, err := store.GetTransaction(ctx, owner, txn.ID)
	require.NoError(t, err)
	assert.True(t, txn.Amount.Equal(gotTxn.Amount))
	assert.Equal(t, card.ID, gotTxn.CardID)
	assert.True(t, date.Equal(gotTxn.Date))

	installments := []model.Installment{
		{ID: uuid.NewString(), TransactionID: txn.ID, Number: 1, Amount: decimal.RequireFromString("33.33"),
			CompetencyMonth: 1, CompetencyYear: 2024, DueDate: date, Paid: true, PaidAt: &date, CreatedAt: created},
		{ID: uuid.NewString(), TransactionID: txn.ID, Number: 2, Amount: decimal.RequireFromString("33.33"),
			CompetencyMonth: 2, CompetencyYear: 2024, DueDate: date.AddDate(0, 1, -2), CreatedAt: created},
	}
	require.NoError(t, store.InsertInstallments(ctx, installments))

	listed, err := store.ListInstallments(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.True(t, listed[0].Paid)
	assert.Nil(t, listed[1].PaidAt)

	count, err := store.CountTransactionsByCategory(ctx, owner, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	txns, err := store.ListTransactions(ctx, owner, model.TransactionFilter{Month: 1, Year: 2024})
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	require.NoError(t, store.DeleteInstallments(ctx, txn.ID))
	require.NoError(t, store.DeleteTransaction(ctx, owner, txn.ID))
	require.NoError(t, store.DeleteCard(ctx, owner, card.ID))
	require.NoError(t, store.DeleteCategory(ctx, owner, cat.ID))

	_, err = store.GetCategory(ctx, owner, cat.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_OwnerScoping(t *testing.T) {
	store, owner := setupStore(t)
	ctx := context.Background()

	cat := &model.Category{
		ID: uuid.NewString(), OwnerID: owner, Name: "Rent", Type: model.TypeExpense,
		Color: model.DefaultColor, Icon: model.DefaultCategoryIcon, IsActive: true, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.InsertCategory(ctx, cat))
	t.Cleanup(func() { _ = store.DeleteCategory(ctx, owner, cat.ID) })

	_, err := store.GetCategory(ctx, "someone-else", cat.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.DeleteCategory(ctx, "someone-else", cat.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
