// Package report renders ledger data as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Delimiter separates CSV fields.
var Delimiter = ','

// TransactionRow is one exported transaction.
type TransactionRow struct {
	ID            string `csv:"id"`
	Date          string `csv:"date"`
	Competency    string `csv:"competency"`
	Type          string `csv:"type"`
	Description   string `csv:"description"`
	Category      string `csv:"category"`
	Card          string `csv:"card"`
	PaymentMethod string `csv:"payment_method"`
	Amount        string `csv:"amount"`
	Installments  int    `csv:"installments"`
	Notes         string `csv:"notes"`
}

// BreakdownRow is one line of an exported monthly summary.
type BreakdownRow struct {
	Section    string `csv:"section"`
	Label      string `csv:"label"`
	Total      string `csv:"total"`
	Percentage string `csv:"percentage"`
}

// StatementRow is one exported card statement entry.
type StatementRow struct {
	DueDate     string `csv:"due_date"`
	Description string `csv:"description"`
	Installment string `csv:"installment"`
	Amount      string `csv:"amount"`
	Paid        bool   `csv:"paid"`
}

// Names resolves category and card IDs to display names.
type Names struct {
	Categories map[string]string
	Cards      map[string]string
}

// TransactionRows converts transactions to export rows, keeping their order.
func TransactionRows(txns []model.Transaction, names Names) []TransactionRow {
	rows := make([]TransactionRow, 0, len(txns))
	for _, txn := range txns {
		category, ok := names.Categories[txn.CategoryID]
		if !ok {
			category = model.UncategorizedName
		}
		installments := 1
		if txn.IsInstallment {
			installments = txn.InstallmentCount
		}
		rows = append(rows, TransactionRow{
			ID:            txn.ID,
			Date:          model.FormatDate(txn.Date),
			Competency:    fmt.Sprintf("%04d-%02d", txn.CompetencyYear, txn.CompetencyMonth),
			Type:          string(txn.Type),
			Description:   txn.Description,
			Category:      category,
			Card:          names.Cards[txn.CardID],
			PaymentMethod: string(txn.PaymentMethod),
			Amount:        txn.Amount.StringFixed(2),
			Installments:  installments,
			Notes:         txn.Notes,
		})
	}
	return rows
}

// SummaryRows flattens a monthly summary into totals followed by both breakdowns.
func SummaryRows(summary model.MonthlySummary) []BreakdownRow {
	rows := []BreakdownRow{
		{Section: "total", Label: "income", Total: summary.TotalIncome.StringFixed(2)},
		{Section: "total", Label: "expense", Total: summary.TotalExpense.StringFixed(2)},
		{Section: "total", Label: "balance", Total: summary.Balance.StringFixed(2)},
	}
	for _, b := range summary.ByCategory {
		rows = append(rows, BreakdownRow{
			Section:    "category",
			Label:      b.CategoryName,
			Total:      b.Total.StringFixed(2),
			Percentage: b.Percentage.StringFixed(2),
		})
	}
	for _, b := range summary.ByPaymentMethod {
		rows = append(rows, BreakdownRow{
			Section:    "payment_method",
			Label:      string(b.Method),
			Total:      b.Total.StringFixed(2),
			Percentage: b.Percentage.StringFixed(2),
		})
	}
	return rows
}

// StatementRows converts card statement entries to export rows.
func StatementRows(statement model.CardStatement) []StatementRow {
	rows := make([]StatementRow, 0, len(statement.Entries))
	for _, e := range statement.Entries {
		installment := ""
		if e.InstallmentID != "" {
			installment = fmt.Sprintf("%d/%d", e.Number, e.Of)
		}
		rows = append(rows, StatementRow{
			DueDate:     model.FormatDate(e.DueDate),
			Description: e.Description,
			Installment: installment,
			Amount:      e.Amount.StringFixed(2),
			Paid:        e.Paid,
		})
	}
	return rows
}

// WriteTransactions writes transactions as CSV with a header row.
func WriteTransactions(w io.Writer, txns []model.Transaction, names Names) error {
	return write(w, TransactionRows(txns, names), "transactions")
}

// WriteSummary writes a monthly summary as CSV with a header row.
func WriteSummary(w io.Writer, summary model.MonthlySummary) error {
	return write(w, SummaryRows(summary), "summary")
}

// WriteStatement writes a card statement as CSV with a header row.
func WriteStatement(w io.Writer, statement model.CardStatement) error {
	return write(w, StatementRows(statement), "statement")
}

// ReadTransactions parses CSV produced by WriteTransactions.
func ReadTransactions(r io.Reader) ([]TransactionRow, error) {
	var rows []TransactionRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("error parsing transactions CSV: %w", err)
	}
	return rows, nil
}

func write[T any](w io.Writer, rows []T, kind string) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = Delimiter

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing %s CSV: %w", kind, err)
	}

	slog.Debug("Wrote CSV export", "kind", kind, "rows", len(rows))
	return nil
}
