package pattern

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestMatcher_Match(t *testing.T) {
	expense := func(desc, amount string) Line {
		return Line{Description: desc, Amount: decimal.RequireFromString(amount), Type: model.TypeExpense}
	}

	tests := []struct {
		name     string
		rules    []Rule
		line     Line
		wantRule string
		wantOK   bool
	}{
		{
			name:     "substring match ignores case",
			rules:    []Rule{{Name: "market", Pattern: "supermercado", Category: "Food"}},
			line:     expense("SUPERMERCADO CENTRAL", "80.00"),
			wantRule: "market",
			wantOK:   true,
		},
		{
			name:   "substring miss",
			rules:  []Rule{{Name: "market", Pattern: "supermercado", Category: "Food"}},
			line:   expense("POSTO SHELL", "80.00"),
			wantOK: false,
		},
		{
			name:     "regex match",
			rules:    []Rule{{Name: "fuel", Pattern: `^posto\s+\w+`, IsRegex: true, Category: "Transport"}},
			line:     expense("Posto Shell", "200.00"),
			wantRule: "fuel",
			wantOK:   true,
		},
		{
			name:     "amount less than",
			rules:    []Rule{{Name: "small", Pattern: "amazon", AmountCondition: "lt", AmountValue: "20", Category: "Shopping"}},
			line:     expense("Amazon", "15.00"),
			wantRule: "small",
			wantOK:   true,
		},
		{
			name:   "amount less than fails at the boundary",
			rules:  []Rule{{Name: "small", Pattern: "amazon", AmountCondition: "lt", AmountValue: "20", Category: "Shopping"}},
			line:   expense("Amazon", "20.00"),
			wantOK: false,
		},
		{
			name:     "amount range is inclusive",
			rules:    []Rule{{Name: "meal", Pattern: "restaurante", AmountCondition: "range", AmountMin: "10", AmountMax: "50", Category: "Food"}},
			line:     expense("Restaurante Sabor", "50.00"),
			wantRule: "meal",
			wantOK:   true,
		},
		{
			name:   "type filter rejects other type",
			rules:  []Rule{{Name: "salary", Pattern: "acme", Type: "income", Category: "Salary"}},
			line:   expense("ACME LTDA", "100.00"),
			wantOK: false,
		},
		{
			name: "higher priority wins",
			rules: []Rule{
				{Name: "generic", Pattern: "uber", Category: "Transport"},
				{Name: "eats", Pattern: "uber eats", Category: "Food", Priority: 10},
			},
			line:     expense("UBER EATS 123", "35.00"),
			wantRule: "eats",
			wantOK:   true,
		},
		{
			name: "equal priority keeps configured order",
			rules: []Rule{
				{Name: "first", Pattern: "uber", Category: "Transport"},
				{Name: "second", Pattern: "uber", Category: "Food"},
			},
			line:     expense("UBER TRIP", "20.00"),
			wantRule: "first",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.rules)
			require.NoError(t, err)

			rule, ok := m.Match(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantRule, rule.Label())
			}
		})
	}
}

func TestNewMatcher_RejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantMsg string
	}{
		{name: "missing pattern", rule: Rule{Category: "Food"}, wantMsg: "pattern is required"},
		{name: "missing category", rule: Rule{Pattern: "x"}, wantMsg: "category is required"},
		{name: "bad type", rule: Rule{Pattern: "x", Category: "Food", Type: "transfer"}, wantMsg: "must be income or expense"},
		{name: "unknown condition", rule: Rule{Pattern: "x", Category: "Food", AmountCondition: "between"}, wantMsg: "unknown amount condition"},
		{name: "condition without amount", rule: Rule{Pattern: "x", Category: "Food", AmountCondition: "gt"}, wantMsg: "amount is required"},
		{name: "empty range", rule: Rule{Pattern: "x", Category: "Food", AmountCondition: "range"}, wantMsg: "range needs"},
		{name: "amount not a number", rule: Rule{Pattern: "x", Category: "Food", AmountCondition: "eq", AmountValue: "ten"}, wantMsg: "is not a number"},
		{name: "bad regex", rule: Rule{Pattern: "([", IsRegex: true, Category: "Food"}, wantMsg: "rule (["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatcher([]Rule{tt.rule})
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestMatcher_NilIsEmpty(t *testing.T) {
	var m *Matcher
	assert.Equal(t, 0, m.Len())
	_, ok := m.Match(Line{Description: "anything"})
	assert.False(t, ok)
}
