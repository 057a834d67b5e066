package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// BuildSchedule lays out the installments of a transaction paid in n parts.
//
// Installment i is reported under the period i-1 months after the transaction date and falls
// due on the same day of month (clamped to the month's last day). The first installment is
// settled on the transaction date; the rest start unpaid. A single payment (n == 1) has no
// installments. IDs and timestamps are left for the caller to assign.
func BuildSchedule(transactionID string, total decimal.Decimal, n int, date time.Time) ([]model.Installment, error) {
	if n <= 1 {
		return nil, nil
	}

	amounts, err := SplitAmount(total, n)
	if err != nil {
		return nil, err
	}

	date = model.CivilDate(date)
	day := date.Day()
	period := PeriodOf(date)

	installments := make([]model.Installment, 0, n)
	for i := 1; i <= n; i++ {
		inst := model.Installment{
			TransactionID:   transactionID,
			Number:          i,
			Amount:          amounts[i-1],
			CompetencyMonth: period.Month,
			CompetencyYear:  period.Year,
			DueDate:         period.DateOn(day),
		}
		if i == 1 {
			paidAt := date
			inst.Paid = true
			inst.PaidAt = &paidAt
		}
		installments = append(installments, inst)

		period = period.Next()
	}

	return installments, nil
}
