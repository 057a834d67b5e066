package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const owner = "owner-1"

func expenseCategory() *model.Category {
	return &model.Category{ID: "cat-1", OwnerID: owner, Name: "Groceries", Type: model.TypeExpense, IsActive: true}
}

func activeCard() *model.Card {
	return &model.Card{ID: "card-1", OwnerID: owner, Name: "Nubank", Kind: model.CardKindCredit, IsActive: true}
}

func validInput() model.TransactionInput {
	return model.TransactionInput{
		Date:             day(2024, time.March, 10),
		Amount:           dec("120.00"),
		CategoryID:       "cat-1",
		Description:      "Weekly groceries",
		Type:             model.TypeExpense,
		PaymentMethod:    model.PaymentCreditCard,
		InstallmentCount: 1,
	}
}

func TestValidateNewTransaction(t *testing.T) {
	tests := []struct {
		mutate   func(*model.TransactionInput)
		category *model.Category
		card     *model.Card
		kind     error
		name     string
		code     string
	}{
		{name: "valid", category: expenseCategory()},
		{
			name:     "valid with card and installments",
			category: expenseCategory(),
			card:     activeCard(),
			mutate: func(in *model.TransactionInput) {
				in.CardID = "card-1"
				in.IsInstallment = true
				in.InstallmentCount = 3
			},
		},
		{
			name:     "blank description",
			category: expenseCategory(),
			mutate:   func(in *model.TransactionInput) { in.Description = "   " },
			kind:     common.ErrValidation,
			code:     "description_required",
		},
		{
			name:     "description too long",
			category: expenseCategory(),
			mutate:   func(in *model.TransactionInput) { in.Description = strings.Repeat("a", MaxDescriptionLength+1) },
			kind:     common.ErrValidation,
			code:     "description_too_long",
		},
		{
			name:     "zero amount",
			category: expenseCategory(),
			mutate:   func(in *model.TransactionInput) { in.Amount = decimal.Zero },
			kind:     common.ErrValidation,
			code:     "amount_not_positive",
		},
		{
			name:     "three decimal places",
			category: expenseCategory(),
			mutate:   func(in *model.TransactionInput) { in.Amount = dec("1.005") },
			kind:     common.ErrValidation,
			code:     "amount_precision",
		},
		{
			name:     "unknown payment method",
			category: expenseCategory(),
			mutate:   func(in *model.TransactionInput) { in.PaymentMethod = "barter" },
			kind:     common.ErrValidation,
			code:     "invalid_payment_method",
		},
		{
			name:     "notes too long",
			category: expenseCategory(),
			mutate:   func(in *model.TransactionInput) { in.Notes = strings.Repeat("n", MaxNotesLength+1) },
			kind:     common.ErrValidation,
			code:     "notes_too_long",
		},
		{
			name:     "installment flag with single count",
			category: expenseCategory(),
			mutate:   func(in *model.TransactionInput) { in.IsInstallment = true },
			kind:     common.ErrValidation,
			code:     "installment_count_required",
		},
		{
			name:     "count without installment flag",
			category: expenseCategory(),
			mutate:   func(in *model.TransactionInput) { in.InstallmentCount = 4 },
			kind:     common.ErrValidation,
			code:     "installment_flag_required",
		},
		{
			name:     "too many installments",
			category: expenseCategory(),
			mutate: func(in *model.TransactionInput) {
				in.IsInstallment = true
				in.InstallmentCount = MaxInstallments + 1
			},
			kind: common.ErrValidation,
			code: "installment_count_too_large",
		},
		{
			name:     "amount too small for plan",
			category: expenseCategory(),
			mutate: func(in *model.TransactionInput) {
				in.Amount = dec("0.01")
				in.IsInstallment = true
				in.InstallmentCount = 2
			},
			kind: common.ErrValidation,
			code: "amount_too_small",
		},
		{
			name: "missing category",
			kind: common.ErrNotFound,
			code: "category_not_found",
		},
		{
			name:     "category of another owner",
			category: &model.Category{ID: "cat-1", OwnerID: "someone-else", Type: model.TypeExpense},
			kind:     common.ErrNotFound,
			code:     "category_not_found",
		},
		{
			name:     "missing card",
			category: expenseCategory(),
			mutate:   func(in *model.TransactionInput) { in.CardID = "card-404" },
			kind:     common.ErrNotFound,
			code:     "card_not_found",
		},
		{
			name:     "card of another owner",
			category: expenseCategory(),
			card:     &model.Card{ID: "card-1", OwnerID: "someone-else", IsActive: true},
			mutate:   func(in *model.TransactionInput) { in.CardID = "card-1" },
			kind:     common.ErrNotFound,
			code:     "card_not_found",
		},
		{
			name:     "inactive card",
			category: expenseCategory(),
			card:     &model.Card{ID: "card-1", OwnerID: owner, Name: "Old", IsActive: false},
			mutate:   func(in *model.TransactionInput) { in.CardID = "card-1" },
			kind:     common.ErrValidation,
			code:     "card_inactive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			err := ValidateNewTransaction(owner, in, tt.category, tt.card)
			if tt.kind == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.code, common.CodeOf(err))
		})
	}
}

func TestValidateNewTransaction_TypeMismatchNamesBothTypes(t *testing.T) {
	in := validInput()
	in.Type = model.TypeIncome

	err := ValidateNewTransaction(owner, in, expenseCategory(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "category_type_mismatch", common.CodeOf(err))
	assert.Contains(t, err.Error(), "expense")
	assert.Contains(t, err.Error(), "income")
}

func TestValidateEdit(t *testing.T) {
	current := model.Transaction{
		ID:               "txn-1",
		OwnerID:          owner,
		CategoryID:       "cat-1",
		Type:             model.TypeExpense,
		Amount:           dec("90.00"),
		InstallmentCount: 3,
		IsInstallment:    true,
	}
	str := func(s string) *string { return &s }
	amount := func(s string) *decimal.Decimal { d := dec(s); return &d }

	tests := []struct {
		patch    model.TransactionPatch
		category *model.Category
		card     *model.Card
		kind     error
		name     string
		code     string
	}{
		{name: "description only", patch: model.TransactionPatch{Description: str("Updated")}},
		{name: "empty patch", kind: common.ErrValidation, code: "empty_update"},
		{
			name:  "category not rechecked when absent",
			patch: model.TransactionPatch{Notes: str("paid in cash")},
		},
		{
			name:     "new category of matching type",
			patch:    model.TransactionPatch{CategoryID: str("cat-1")},
			category: expenseCategory(),
		},
		{
			name:  "new category missing",
			patch: model.TransactionPatch{CategoryID: str("cat-404")},
			kind:  common.ErrNotFound,
			code:  "category_not_found",
		},
		{
			name:     "new category of other type",
			patch:    model.TransactionPatch{CategoryID: str("cat-2")},
			category: &model.Category{ID: "cat-2", OwnerID: owner, Name: "Salary", Type: model.TypeIncome},
			kind:     common.ErrValidation,
			code:     "category_type_mismatch",
		},
		{
			name:  "new card missing",
			patch: model.TransactionPatch{CardID: str("card-404")},
			kind:  common.ErrNotFound,
			code:  "card_not_found",
		},
		{name: "card detached", patch: model.TransactionPatch{CardID: str("")}},
		{
			name:  "amount too small for plan",
			patch: model.TransactionPatch{Amount: amount("0.02")},
			kind:  common.ErrValidation,
			code:  "amount_too_small",
		},
		{
			name:  "negative amount",
			patch: model.TransactionPatch{Amount: amount("-1")},
			kind:  common.ErrValidation,
			code:  "amount_not_positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEdit(owner, current, tt.patch, tt.category, tt.card)
			if tt.kind == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.code, common.CodeOf(err))
		})
	}
}

func TestValidateDeletable(t *testing.T) {
	assert.NoError(t, ValidateDeletable("category", 0))

	err := ValidateDeletable("category", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "category_in_use", common.CodeOf(err))
	assert.Contains(t, err.Error(), "deactivate")

	err = ValidateDeletable("card", 1)
	assert.Equal(t, "card_in_use", common.CodeOf(err))
}

func TestValidateUniqueNames(t *testing.T) {
	existing := expenseCategory()
	assert.NoError(t, ValidateUniqueCategoryName(nil, ""))
	assert.NoError(t, ValidateUniqueCategoryName(existing, existing.ID))

	err := ValidateUniqueCategoryName(existing, "")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "category_name_taken", common.CodeOf(err))

	card := activeCard()
	assert.NoError(t, ValidateUniqueCardName(nil, ""))
	assert.NoError(t, ValidateUniqueCardName(card, card.ID))
	assert.Equal(t, "card_name_taken", common.CodeOf(ValidateUniqueCardName(card, "card-2")))
}

func TestValidateCategoryInput(t *testing.T) {
	tests := []struct {
		name string
		code string
		in   model.CategoryInput
	}{
		{name: "valid", in: model.CategoryInput{Name: "Rent", Type: model.TypeExpense}},
		{name: "valid with color", in: model.CategoryInput{Name: "Rent", Type: model.TypeExpense, Color: "#a1B2c3"}},
		{name: "missing name", in: model.CategoryInput{Type: model.TypeExpense}, code: "name_required"},
		{name: "unknown type", in: model.CategoryInput{Name: "Rent", Type: "transfer"}, code: "invalid_type"},
		{name: "short color", in: model.CategoryInput{Name: "Rent", Type: model.TypeExpense, Color: "#fff"}, code: "invalid_color"},
		{name: "color without hash", in: model.CategoryInput{Name: "Rent", Type: model.TypeExpense, Color: "6B7280"}, code: "invalid_color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCategoryInput(tt.in)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, tt.code, common.CodeOf(err))
		})
	}
}

func TestValidateCategoryPatch(t *testing.T) {
	name := "Food"
	bad := "red"

	assert.NoError(t, ValidateCategoryPatch(model.CategoryPatch{Name: &name}))
	assert.Equal(t, "empty_update", common.CodeOf(ValidateCategoryPatch(model.CategoryPatch{})))
	assert.Equal(t, "invalid_color", common.CodeOf(ValidateCategoryPatch(model.CategoryPatch{Color: &bad})))
}

func TestValidateCardInput(t *testing.T) {
	limit := dec("5000.00")
	negative := dec("-1")
	closing, due, badDay := 3, 10, 32

	tests := []struct {
		name string
		code string
		in   model.CardInput
	}{
		{
			name: "valid credit",
			in: model.CardInput{
				Name: "Nubank", LastFour: "1234", Kind: model.CardKindCredit, Brand: model.BrandMastercard,
				TotalLimit: &limit, ClosingDay: &closing, DueDay: &due,
			},
		},
		{
			name: "valid debit",
			in:   model.CardInput{Name: "Itau", LastFour: "0001", Kind: model.CardKindDebit, Brand: model.BrandVisa},
		},
		{
			name: "last four too short",
			in:   model.CardInput{Name: "Itau", LastFour: "123", Kind: model.CardKindDebit, Brand: model.BrandVisa},
			code: "invalid_last_four",
		},
		{
			name: "last four with letters",
			in:   model.CardInput{Name: "Itau", LastFour: "12a4", Kind: model.CardKindDebit, Brand: model.BrandVisa},
			code: "invalid_last_four",
		},
		{
			name: "unknown brand",
			in:   model.CardInput{Name: "Itau", LastFour: "1234", Kind: model.CardKindDebit, Brand: "diners"},
			code: "invalid_card_brand",
		},
		{
			name: "unknown kind",
			in:   model.CardInput{Name: "Itau", LastFour: "1234", Kind: "prepaid", Brand: model.BrandVisa},
			code: "invalid_card_kind",
		},
		{
			name: "debit with limit",
			in: model.CardInput{
				Name: "Itau", LastFour: "1234", Kind: model.CardKindDebit, Brand: model.BrandVisa, TotalLimit: &limit,
			},
			code: "debit_card_credit_fields",
		},
		{
			name: "negative limit",
			in: model.CardInput{
				Name: "Nubank", LastFour: "1234", Kind: model.CardKindCredit, Brand: model.BrandVisa, TotalLimit: &negative,
			},
			code: "invalid_limit",
		},
		{
			name: "day out of range",
			in: model.CardInput{
				Name: "Nubank", LastFour: "1234", Kind: model.CardKindCredit, Brand: model.BrandVisa, DueDay: &badDay,
			},
			code: "invalid_day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCardInput(tt.in)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, tt.code, common.CodeOf(err))
		})
	}
}

func TestValidateCardPatch(t *testing.T) {
	debit := model.Card{ID: "card-1", Kind: model.CardKindDebit}
	credit := model.Card{ID: "card-2", Kind: model.CardKindCredit}
	limit := dec("100")
	digits := "98765"

	assert.Equal(t, "empty_update", common.CodeOf(ValidateCardPatch(debit, model.CardPatch{})))
	assert.Equal(t, "debit_card_credit_fields", common.CodeOf(ValidateCardPatch(debit, model.CardPatch{TotalLimit: &limit})))
	assert.NoError(t, ValidateCardPatch(credit, model.CardPatch{TotalLimit: &limit}))
	assert.Equal(t, "invalid_last_four", common.CodeOf(ValidateCardPatch(credit, model.CardPatch{LastFour: &digits})))
}
