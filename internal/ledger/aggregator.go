package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Summarize reduces the transactions of a competency period into a monthly summary.
//
// Transactions outside the period are ignored. Category and payment-method totals sum
// amounts regardless of type, and every percentage is the share of the combined turnover
// (income + expense). Breakdowns are ordered by total, largest first; ties keep the order in
// which the group first appeared. categoryNames maps category IDs to display names; unknown
// IDs are labelled model.UncategorizedName.
func Summarize(period Period, txns []model.Transaction, categoryNames map[string]string) model.MonthlySummary {
	summary := model.MonthlySummary{
		Month:           period.Month,
		Year:            period.Year,
		TotalIncome:     decimal.Zero,
		TotalExpense:    decimal.Zero,
		Balance:         decimal.Zero,
		ByCategory:      []model.CategoryBreakdown{},
		ByPaymentMethod: []model.PaymentMethodBreakdown{},
	}

	categoryIndex := make(map[string]int)
	methodIndex := make(map[model.PaymentMethod]int)

	for _, txn := range txns {
		if !period.Contains(txn.CompetencyMonth, txn.CompetencyYear) {
			continue
		}
		summary.Count++

		switch txn.Type {
		case model.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(txn.Amount)
		case model.TypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(txn.Amount)
		}

		if i, ok := categoryIndex[txn.CategoryID]; ok {
			summary.ByCategory[i].Total = summary.ByCategory[i].Total.Add(txn.Amount)
		} else {
			name, found := categoryNames[txn.CategoryID]
			if !found || name == "" {
				name = model.UncategorizedName
			}
			categoryIndex[txn.CategoryID] = len(summary.ByCategory)
			summary.ByCategory = append(summary.ByCategory, model.CategoryBreakdown{
				CategoryID:   txn.CategoryID,
				CategoryName: name,
				Total:        txn.Amount,
			})
		}

		if i, ok := methodIndex[txn.PaymentMethod]; ok {
			summary.ByPaymentMethod[i].Total = summary.ByPaymentMethod[i].Total.Add(txn.Amount)
		} else {
			methodIndex[txn.PaymentMethod] = len(summary.ByPaymentMethod)
			summary.ByPaymentMethod = append(summary.ByPaymentMethod, model.PaymentMethodBreakdown{
				Method: txn.PaymentMethod,
				Total:  txn.Amount,
			})
		}
	}

	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	turnover := summary.TotalIncome.Add(summary.TotalExpense)

	for i := range summary.ByCategory {
		summary.ByCategory[i].Percentage = Percentage(summary.ByCategory[i].Total, turnover)
	}
	for i := range summary.ByPaymentMethod {
		summary.ByPaymentMethod[i].Percentage = Percentage(summary.ByPaymentMethod[i].Total, turnover)
	}

	sort.SliceStable(summary.ByCategory, func(i, j int) bool {
		return summary.ByCategory[i].Total.GreaterThan(summary.ByCategory[j].Total)
	})
	sort.SliceStable(summary.ByPaymentMethod, func(i, j int) bool {
		return summary.ByPaymentMethod[i].Total.GreaterThan(summary.ByPaymentMethod[j].Total)
	})

	return summary
}

// Percentage returns part as a percentage of whole, rounded to two places; zero when whole is zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, MoneyPlaces)
}
