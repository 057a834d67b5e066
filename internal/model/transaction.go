package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether money came in or went out.
type TransactionType string

const (
	// TypeIncome represents money received.
	TypeIncome TransactionType = "income"
	// TypeExpense represents money spent.
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// PaymentMethod is how a transaction was settled.
type PaymentMethod string

// Known payment methods.
const (
	PaymentCash       PaymentMethod = "cash"
	PaymentPix        PaymentMethod = "pix"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentTransfer   PaymentMethod = "transfer"
	PaymentOther      PaymentMethod = "other"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentPix, PaymentDebitCard, PaymentCreditCard, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

// Transaction is a single income or expense entry in the ledger.
type Transaction struct {
	Date              time.Time // Civil date, UTC midnight
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Amount            decimal.Decimal
	InstallmentAmount decimal.Decimal
	ID                string
	OwnerID           string
	CategoryID        string
	CardID            string // Empty when no card is involved
	Description       string
	Notes             string
	Type              TransactionType
	PaymentMethod     PaymentMethod
	InstallmentCount  int
	CompetencyMonth   int
	CompetencyYear    int
	IsInstallment     bool
}

// TransactionInput carries the fields accepted when creating a transaction.
type TransactionInput struct {
	Date             time.Time
	Amount           decimal.Decimal
	CategoryID       string
	CardID           string
	Description      string
	Notes            string
	Type             TransactionType
	PaymentMethod    PaymentMethod
	InstallmentCount int
	IsInstallment    bool
}

// TransactionPatch carries the fields accepted when editing a transaction.
// Nil fields are left untouched. A CardID pointing at "" detaches the card.
type TransactionPatch struct {
	Date          *time.Time
	Amount        *decimal.Decimal
	CategoryID    *string
	CardID        *string
	Description   *string
	Notes         *string
	PaymentMethod *PaymentMethod
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Date == nil && p.Amount == nil && p.CategoryID == nil && p.CardID == nil &&
		p.Description == nil && p.Notes == nil && p.PaymentMethod == nil
}

// TransactionFilter narrows transaction listings. Month and Year only apply together;
// StartDate and EndDate are inclusive bounds on the transaction date.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID string
	CardID     string
	Type       TransactionType
	Month      int
	Year       int
}

// HasPeriod reports whether the filter selects a competency period.
func (f TransactionFilter) HasPeriod() bool {
	return f.Month > 0 && f.Year > 0
}
