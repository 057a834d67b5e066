package ledger

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Field limits.
const (
	MaxDescriptionLength  = 500
	MaxNotesLength        = 1000
	MaxInstallments       = 48
	MaxCategoryNameLength = 100
	MaxCategoryIconLength = 50
	MaxCardNameLength     = 255
)

var (
	hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	lastFourPattern = regexp.MustCompile(`^[0-9]{4}$`)
)

// ValidateNewTransaction checks a creation request against the category and card it refers to.
// category and card are the results of owner-scoped lookups and may be nil.
func ValidateNewTransaction(ownerID string, in model.TransactionInput, category *model.Category, card *model.Card) error {
	if err := validateDescription(in.Description); err != nil {
		return err
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return common.NewValidationError("invalid_type", "unknown transaction type %q", in.Type)
	}
	if !in.PaymentMethod.Valid() {
		return common.NewValidationError("invalid_payment_method", "unknown payment method %q", in.PaymentMethod)
	}
	if in.Date.IsZero() {
		return common.NewValidationError("date_required", "transaction date is required")
	}
	if err := validateNotes(in.Notes); err != nil {
		return err
	}
	if err := ValidateInstallmentPlan(in.IsInstallment, in.InstallmentCount); err != nil {
		return err
	}
	if in.IsInstallment {
		if _, err := SplitAmount(in.Amount, in.InstallmentCount); err != nil {
			return err
		}
	}

	if err := checkCategory(ownerID, category, in.Type); err != nil {
		return err
	}
	if in.CardID != "" {
		if err := checkCard(ownerID, card); err != nil {
			return err
		}
	}

	return nil
}

// ValidateEdit checks an edit request. Category and card rules only apply to the fields the
// patch supplies; current is the stored transaction being edited.
func ValidateEdit(ownerID string, current model.Transaction, patch model.TransactionPatch, category *model.Category, card *model.Card) error {
	if patch.IsEmpty() {
		return common.NewValidationError("empty_update", "no fields to update")
	}
	if patch.Description != nil {
		if err := validateDescription(*patch.Description); err != nil {
			return err
		}
	}
	if patch.Amount != nil {
		if err := ValidateAmount(*patch.Amount); err != nil {
			return err
		}
		if current.IsInstallment {
			if _, err := SplitAmount(*patch.Amount, current.InstallmentCount); err != nil {
				return err
			}
		}
	}
	if patch.Notes != nil {
		if err := validateNotes(*patch.Notes); err != nil {
			return err
		}
	}
	if patch.PaymentMethod != nil && !patch.PaymentMethod.Valid() {
		return common.NewValidationError("invalid_payment_method", "unknown payment method %q", *patch.PaymentMethod)
	}
	if patch.Date != nil && patch.Date.IsZero() {
		return common.NewValidationError("date_required", "transaction date is required")
	}

	if patch.CategoryID != nil {
		if err := checkCategory(ownerID, category, current.Type); err != nil {
			return err
		}
	}
	if patch.CardID != nil && *patch.CardID != "" {
		if err := checkCard(ownerID, card); err != nil {
			return err
		}
	}

	return nil
}

// ValidateInstallmentPlan enforces that the installment flag and count agree:
// a plan needs more than one installment, and more than one installment needs a plan.
func ValidateInstallmentPlan(isInstallment bool, count int) error {
	switch {
	case count < 0:
		return common.NewValidationError("installment_count_invalid", "installment count cannot be negative")
	case count > MaxInstallments:
		return common.NewValidationError("installment_count_too_large",
			"installment count must be at most %d, got %d", MaxInstallments, count)
	case isInstallment && count <= 1:
		return common.NewValidationError("installment_count_required",
			"installment transactions need more than one installment")
	case !isInstallment && count > 1:
		return common.NewValidationError("installment_flag_required",
			"a count of %d installments requires an installment transaction", count)
	}
	return nil
}

// ValidateAmount requires a positive amount with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return common.NewValidationError("amount_not_positive", "amount must be positive, got %s", amount.String())
	}
	if !HasMoneyPrecision(amount) {
		return common.NewValidationError("amount_precision",
			"amount %s has more than %d decimal places", amount.String(), MoneyPlaces)
	}
	return nil
}

// ValidateDeletable blocks the hard delete of an entity that transactions still reference.
func ValidateDeletable(entity string, references int) error {
	if references > 0 {
		return common.NewConflictError(entity+"_in_use",
			fmt.Sprintf("cannot delete %s: it is used by %d transaction(s); deactivate it instead", entity, references))
	}
	return nil
}

// ValidateUniqueCategoryName rejects a name already taken by another category of the same
// owner and type. existing is the result of the name lookup; selfID is the category being
// renamed, or "" on creation.
func ValidateUniqueCategoryName(existing *model.Category, selfID string) error {
	if existing != nil && existing.ID != selfID {
		return common.NewValidationError("category_name_taken",
			"a %s category named %q already exists", existing.Type, existing.Name)
	}
	return nil
}

// ValidateUniqueCardName rejects a name already taken by another card of the same owner.
func ValidateUniqueCardName(existing *model.Card, selfID string) error {
	if existing != nil && existing.ID != selfID {
		return common.NewValidationError("card_name_taken", "a card named %q already exists", existing.Name)
	}
	return nil
}

// ValidateCategoryInput checks the fields of a new category.
func ValidateCategoryInput(in model.CategoryInput) error {
	if err := validateCategoryName(in.Name); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return common.NewValidationError("invalid_type", "unknown category type %q", in.Type)
	}
	if in.Color != "" {
		if err := validateColor(in.Color); err != nil {
			return err
		}
	}
	return validateIcon(in.Icon)
}

// ValidateCategoryPatch checks the supplied fields of a category edit.
func ValidateCategoryPatch(p model.CategoryPatch) error {
	if p.Name == nil && p.Color == nil && p.Icon == nil {
		return common.NewValidationError("empty_update", "no fields to update")
	}
	if p.Name != nil {
		if err := validateCategoryName(*p.Name); err != nil {
			return err
		}
	}
	if p.Color != nil {
		if err := validateColor(*p.Color); err != nil {
			return err
		}
	}
	if p.Icon != nil {
		return validateIcon(*p.Icon)
	}
	return nil
}

// ValidateCardInput checks the fields of a new card. Credit-only fields are rejected on
// debit cards.
func ValidateCardInput(in model.CardInput) error {
	if err := validateCardName(in.Name); err != nil {
		return err
	}
	if !in.Kind.Valid() {
		return common.NewValidationError("invalid_card_kind", "unknown card kind %q", in.Kind)
	}
	if !in.Brand.Valid() {
		return common.NewValidationError("invalid_card_brand", "unknown card brand %q", in.Brand)
	}
	if !lastFourPattern.MatchString(in.LastFour) {
		return common.NewValidationError("invalid_last_four", "last four digits must be exactly 4 digits")
	}
	if in.Color != "" {
		if err := validateColor(in.Color); err != nil {
			return err
		}
	}
	if in.Kind == model.CardKindDebit && (in.TotalLimit != nil || in.ClosingDay != nil || in.DueDay != nil) {
		return common.NewValidationError("debit_card_credit_fields",
			"debit cards do not carry a limit, closing day or due day")
	}
	return validateCreditFields(in.TotalLimit, in.ClosingDay, in.DueDay)
}

// ValidateCardPatch checks the supplied fields of a card edit against the stored card.
func ValidateCardPatch(current model.Card, p model.CardPatch) error {
	if p.Name == nil && p.LastFour == nil && p.Color == nil && p.Brand == nil &&
		p.TotalLimit == nil && p.ClosingDay == nil && p.DueDay == nil {
		return common.NewValidationError("empty_update", "no fields to update")
	}
	if p.Name != nil {
		if err := validateCardName(*p.Name); err != nil {
			return err
		}
	}
	if p.LastFour != nil && !lastFourPattern.MatchString(*p.LastFour) {
		return common.NewValidationError("invalid_last_four", "last four digits must be exactly 4 digits")
	}
	if p.Color != nil {
		if err := validateColor(*p.Color); err != nil {
			return err
		}
	}
	if p.Brand != nil && !p.Brand.Valid() {
		return common.NewValidationError("invalid_card_brand", "unknown card brand %q", *p.Brand)
	}
	if current.Kind == model.CardKindDebit && (p.TotalLimit != nil || p.ClosingDay != nil || p.DueDay != nil) {
		return common.NewValidationError("debit_card_credit_fields",
			"debit cards do not carry a limit, closing day or due day")
	}
	return validateCreditFields(p.TotalLimit, p.ClosingDay, p.DueDay)
}

func checkCategory(ownerID string, category *model.Category, txnType model.TransactionType) error {
	if category == nil || category.OwnerID != ownerID {
		return common.NewNotFoundError("category")
	}
	if category.Type != txnType {
		return common.NewValidationError("category_type_mismatch",
			"category %q is of type %s but the transaction is of type %s", category.Name, category.Type, txnType)
	}
	return nil
}

func checkCard(ownerID string, card *model.Card) error {
	if card == nil || card.OwnerID != ownerID {
		return common.NewNotFoundError("card")
	}
	if !card.IsActive {
		return common.NewValidationError("card_inactive", "card %q is inactive", card.Name)
	}
	return nil
}

func validateDescription(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.NewValidationError("description_required", "description is required")
	}
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return common.NewValidationError("description_too_long",
			"description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

func validateNotes(s string) error {
	if utf8.RuneCountInString(s) > MaxNotesLength {
		return common.NewValidationError("notes_too_long", "notes must be at most %d characters", MaxNotesLength)
	}
	return nil
}

func validateCategoryName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.NewValidationError("name_required", "category name is required")
	}
	if utf8.RuneCountInString(s) > MaxCategoryNameLength {
		return common.NewValidationError("name_too_long",
			"category name must be at most %d characters", MaxCategoryNameLength)
	}
	return nil
}

func validateCardName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.NewValidationError("name_required", "card name is required")
	}
	if utf8.RuneCountInString(s) > MaxCardNameLength {
		return common.NewValidationError("name_too_long", "card name must be at most %d characters", MaxCardNameLength)
	}
	return nil
}

func validateIcon(s string) error {
	if utf8.RuneCountInString(s) > MaxCategoryIconLength {
		return common.NewValidationError("icon_too_long", "icon must be at most %d characters", MaxCategoryIconLength)
	}
	return nil
}

func validateColor(s string) error {
	if !hexColorPattern.MatchString(s) {
		return common.NewValidationError("invalid_color", "color %q must be in #RRGGBB format", s)
	}
	return nil
}

func validateCreditFields(limit *decimal.Decimal, closingDay, dueDay *int) error {
	if limit != nil {
		if limit.IsNegative() {
			return common.NewValidationError("invalid_limit", "limit cannot be negative")
		}
		if !HasMoneyPrecision(*limit) {
			return common.NewValidationError("amount_precision",
				"limit %s has more than %d decimal places", limit.String(), MoneyPlaces)
		}
	}
	for _, day := range []*int{closingDay, dueDay} {
		if day != nil && (*day < 1 || *day > 31) {
			return common.NewValidationError("invalid_day", "billing days must be between 1 and 31, got %d", *day)
		}
	}
	return nil
}
