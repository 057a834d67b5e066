package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/common"
)

// MoneyPlaces is the number of decimal places kept for every monetary value.
const MoneyPlaces = 2

// HasMoneyPrecision reports whether amount has at most two decimal places.
func HasMoneyPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(MoneyPlaces))
}

// InstallmentBase returns the amount charged on every installment but the last:
// total / n rounded half-up to cents.
func InstallmentBase(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 1 {
		return total.Round(MoneyPlaces)
	}
	return total.DivRound(decimal.NewFromInt(int64(n)), MoneyPlaces)
}

// SplitAmount divides total into n installment amounts that sum exactly to total.
//
// The first n-1 installments receive InstallmentBase(total, n); the last one absorbs the
// rounding residual. A total too small to leave a positive last installment is rejected.
//
//	SplitAmount(100.00, 3) -> [33.33 33.33 33.34]
func SplitAmount(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n < 1 {
		return nil, common.NewValidationError("installment_count_invalid",
			"installment count must be at least 1, got %d", n)
	}
	if !total.IsPositive() {
		return nil, common.NewValidationError("amount_not_positive",
			"amount must be positive, got %s", total.String())
	}
	if !HasMoneyPrecision(total) {
		return nil, common.NewValidationError("amount_precision",
			"amount %s has more than %d decimal places", total.String(), MoneyPlaces)
	}

	base := InstallmentBase(total, n)
	last := total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
	if !base.IsPositive() || !last.IsPositive() {
		return nil, common.NewValidationError("amount_too_small",
			"amount %s cannot be split into %d installments", total.StringFixed(MoneyPlaces), n)
	}

	parts := make([]decimal.Decimal, n)
	for i := 0; i < n-1; i++ {
		parts[i] = base
	}
	parts[n-1] = last

	return parts, nil
}
