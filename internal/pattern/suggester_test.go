package pattern

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestSuggester_Suggest(t *testing.T) {
	categories := []model.Category{
		{ID: "cat-food", Name: "Food", Type: model.TypeExpense, IsActive: true},
		{ID: "cat-salary", Name: "Salary", Type: model.TypeIncome, IsActive: true},
		{ID: "cat-old", Name: "Old", Type: model.TypeExpense, IsActive: false},
	}
	m, err := NewMatcher([]Rule{
		{Name: "market", Pattern: "mercado", Category: "food"},
		{Name: "payroll", Pattern: "acme", Category: "Salary"},
		{Name: "retired", Pattern: "legacy", Category: "Old"},
		{Name: "misfiled", Pattern: "bonus", Category: "Food"},
	})
	require.NoError(t, err)
	s := NewSuggester(m, categories)

	tests := []struct {
		name   string
		want   Suggestion
		line   Line
		wantOK bool
	}{
		{
			name:   "resolves category name case-insensitively",
			line:   Line{Description: "MERCADO LIVRE", Amount: decimal.NewFromInt(10), Type: model.TypeExpense},
			want:   Suggestion{CategoryID: "cat-food", Category: "Food", Rule: "market"},
			wantOK: true,
		},
		{
			name:   "income rule",
			line:   Line{Description: "ACME PAYROLL", Amount: decimal.NewFromInt(3000), Type: model.TypeIncome},
			want:   Suggestion{CategoryID: "cat-salary", Category: "Salary", Rule: "payroll"},
			wantOK: true,
		},
		{
			name: "inactive category never fires",
			line: Line{Description: "LEGACY STORE", Amount: decimal.NewFromInt(10), Type: model.TypeExpense},
		},
		{
			name: "category of the other type is ignored",
			line: Line{Description: "BONUS", Amount: decimal.NewFromInt(500), Type: model.TypeIncome},
		},
		{
			name: "no rule matches",
			line: Line{Description: "PADARIA", Amount: decimal.NewFromInt(8), Type: model.TypeExpense},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Suggest(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
