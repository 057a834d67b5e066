package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// BuildCardStatement lists what a card owes for a period.
//
// Installment transactions contribute the installments whose competency is the period.
// Single-payment transactions contribute themselves when their own competency is the period;
// they are settled at purchase and count as paid. installments maps transaction IDs to their
// schedules. Entries are ordered by due date, then by transaction.
func BuildCardStatement(card model.Card, period Period, txns []model.Transaction, installments map[string][]model.Installment) model.CardStatement {
	stmt := model.CardStatement{
		CardID:   card.ID,
		CardName: card.Name,
		Month:    period.Month,
		Year:     period.Year,
		Total:    decimal.Zero,
		Paid:     decimal.Zero,
		Pending:  decimal.Zero,
		Entries:  []model.StatementEntry{},
	}

	for _, txn := range txns {
		if txn.CardID != card.ID {
			continue
		}

		if !txn.IsInstallment {
			if !period.Contains(txn.CompetencyMonth, txn.CompetencyYear) {
				continue
			}
			stmt.Entries = append(stmt.Entries, model.StatementEntry{
				TransactionID: txn.ID,
				Description:   txn.Description,
				DueDate:       txn.Date,
				Amount:        txn.Amount,
				Number:        1,
				Of:            1,
				Paid:          true,
			})
			continue
		}

		for _, inst := range installments[txn.ID] {
			if !period.Contains(inst.CompetencyMonth, inst.CompetencyYear) {
				continue
			}
			stmt.Entries = append(stmt.Entries, model.StatementEntry{
				TransactionID: txn.ID,
				InstallmentID: inst.ID,
				Description:   txn.Description,
				DueDate:       inst.DueDate,
				Amount:        inst.Amount,
				Number:        inst.Number,
				Of:            txn.InstallmentCount,
				Paid:          inst.Paid,
			})
		}
	}

	sort.SliceStable(stmt.Entries, func(i, j int) bool {
		a, b := stmt.Entries[i], stmt.Entries[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.TransactionID < b.TransactionID
	})

	for _, entry := range stmt.Entries {
		stmt.Total = stmt.Total.Add(entry.Amount)
		if entry.Paid {
			stmt.Paid = stmt.Paid.Add(entry.Amount)
		} else {
			stmt.Pending = stmt.Pending.Add(entry.Amount)
		}
	}

	return stmt
}
