package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestFormatSigned(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		txnType  model.TransactionType
		expected string
	}{
		{name: "income", amount: "1500", txnType: model.TypeIncome, expected: "+1500.00"},
		{name: "expense", amount: "33.3", txnType: model.TypeExpense, expected: "-33.30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSigned(decimal.RequireFromString(tt.amount), tt.txnType)
			assert.Contains(t, got, tt.expected)
		})
	}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "03/2024", FormatPeriod(3, 2024))
	assert.Equal(t, "33.33%", FormatPercentage(decimal.RequireFromString("33.333")))
	assert.Contains(t, FormatBalance(decimal.RequireFromString("-10")), "-10.00")
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon+" saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon+" failed")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"DATE", "DESCRIPTION", "AMOUNT"},
		[][]string{
			{"2024-03-05", "Laptop", "1200.00"},
			{"2024-03-01", "Coffee", "4.50"},
		},
		"No transactions",
	)

	assert.Contains(t, out, "DESCRIPTION")
	assert.Contains(t, out, "Laptop")
	assert.Contains(t, out, "4.50")
	assert.Less(t, strings.Index(out, "Laptop"), strings.Index(out, "Coffee"))
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Contains(t, RenderTable([]string{"A"}, nil, "Nothing here"), "Nothing here")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 2, "Importing")
	p.Step()
	p.Step()
	p.Finish()
	assert.Contains(t, buf.String(), "Importing")
	assert.Contains(t, buf.String(), "2/2")

	var nilProgress *Progress
	assert.NotPanics(t, func() {
		nilProgress.Step()
		nilProgress.Finish()
	})
}
