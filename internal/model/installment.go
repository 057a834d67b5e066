package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one dated obligation of a transaction paid in installments.
// Installments have no lifecycle of their own; they live and die with their transaction.
type Installment struct {
	DueDate         time.Time
	CreatedAt       time.Time
	PaidAt          *time.Time
	Amount          decimal.Decimal
	ID              string
	TransactionID   string
	Number          int
	CompetencyMonth int
	CompetencyYear  int
	Paid            bool
}
