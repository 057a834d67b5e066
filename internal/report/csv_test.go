package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestWriteTransactions(t *testing.T) {
	txns := []model.Transaction{
		{
			ID: "txn-1", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			CompetencyMonth: 3, CompetencyYear: 2024, Type: model.TypeExpense,
			Description: "Laptop, 15 inch", CategoryID: "cat-shopping", CardID: "card-nubank",
			PaymentMethod: model.PaymentCreditCard, Amount: decimal.RequireFromString("1200"),
			IsInstallment: true, InstallmentCount: 3,
		},
		{
			ID: "txn-2", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			CompetencyMonth: 3, CompetencyYear: 2024, Type: model.TypeIncome,
			Description: "Salary", CategoryID: "cat-gone", PaymentMethod: model.PaymentTransfer,
			Amount: decimal.RequireFromString("5000.5"), InstallmentCount: 1,
		},
	}
	names := Names{
		Categories: map[string]string{"cat-shopping": "Shopping"},
		Cards:      map[string]string{"card-nubank": "Nubank"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns, names))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,date,competency,type,description,category,card,payment_method,amount,installments,notes", lines[0])
	assert.Equal(t, `txn-1,2024-03-05,2024-03,expense,"Laptop, 15 inch",Shopping,Nubank,credit_card,1200.00,3,`, lines[1])
	assert.Equal(t, "txn-2,2024-03-01,2024-03,income,Salary,Uncategorized,,transfer,5000.50,1,", lines[2])

	rows, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Laptop, 15 inch", rows[0].Description)
}

func TestWriteSummary(t *testing.T) {
	summary := model.MonthlySummary{
		Month: 3, Year: 2024,
		TotalIncome:  decimal.RequireFromString("1000"),
		TotalExpense: decimal.RequireFromString("250"),
		Balance:      decimal.RequireFromString("750"),
		ByCategory: []model.CategoryBreakdown{
			{CategoryName: "Salary", Total: decimal.RequireFromString("1000"), Percentage: decimal.RequireFromString("80")},
		},
		ByPaymentMethod: []model.PaymentMethodBreakdown{
			{Method: model.PaymentPix, Total: decimal.RequireFromString("250"), Percentage: decimal.RequireFromString("20")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, summary))

	assert.Equal(t, strings.Join([]string{
		"section,label,total,percentage",
		"total,income,1000.00,",
		"total,expense,250.00,",
		"total,balance,750.00,",
		"category,Salary,1000.00,80.00",
		"payment_method,pix,250.00,20.00",
	}, "\n")+"\n", buf.String())
}

func TestStatementRows(t *testing.T) {
	statement := model.CardStatement{
		Entries: []model.StatementEntry{
			{DueDate: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Description: "Laptop",
				InstallmentID: "inst-2", Number: 2, Of: 3, Amount: decimal.RequireFromString("33.33")},
			{DueDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), Description: "Coffee",
				Amount: decimal.RequireFromString("4.5"), Paid: true},
		},
	}

	rows := StatementRows(statement)
	require.Len(t, rows, 2)
	assert.Equal(t, "2/3", rows[0].Installment)
	assert.Equal(t, "", rows[1].Installment)
	assert.Equal(t, "4.50", rows[1].Amount)

	var buf bytes.Buffer
	require.NoError(t, WriteStatement(&buf, statement))
	assert.True(t, strings.HasPrefix(buf.String(), "due_date,description,installment,amount,paid\n"))
}

func TestWrite_EmptyInputWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, nil, Names{}))
	assert.Equal(t, "id,date,competency,type,description,category,card,payment_method,amount,installments,notes\n", buf.String())
}
