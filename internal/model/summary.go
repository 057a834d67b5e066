package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UncategorizedName labels breakdown rows whose category could not be resolved.
const UncategorizedName = "Uncategorized"

// MonthlySummary aggregates one competency period. It is derived on demand and never stored.
type MonthlySummary struct {
	TotalIncome     decimal.Decimal
	TotalExpense    decimal.Decimal
	Balance         decimal.Decimal
	ByCategory      []CategoryBreakdown
	ByPaymentMethod []PaymentMethodBreakdown
	Month           int
	Year            int
	Count           int
}

// CategoryBreakdown is the share of one category in a period's turnover.
type CategoryBreakdown struct {
	Total        decimal.Decimal
	Percentage   decimal.Decimal
	CategoryID   string
	CategoryName string
}

// PaymentMethodBreakdown is the share of one payment method in a period's turnover.
type PaymentMethodBreakdown struct {
	Total      decimal.Decimal
	Percentage decimal.Decimal
	Method     PaymentMethod
}

// CardStatement lists what a card owes for one competency period.
type CardStatement struct {
	Total    decimal.Decimal
	Paid     decimal.Decimal
	Pending  decimal.Decimal
	CardID   string
	CardName string
	Entries  []StatementEntry
	Month    int
	Year     int
}

// StatementEntry is a single charge on a card statement: either one installment of a plan
// or a transaction paid at once.
type StatementEntry struct {
	DueDate       time.Time
	Amount        decimal.Decimal
	TransactionID string
	InstallmentID string // Empty for single-payment transactions
	Description   string
	Number        int
	Of            int
	Paid          bool
}
