package config

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/pattern"
)

func readYAML(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return v
}

func TestLoadImportRules(t *testing.T) {
	v := readYAML(t, `
import:
  rules:
    - name: groceries
      pattern: supermercado
      category: Food
    - name: small delivery
      pattern: "^uber\\s+eats"
      regex: true
      category: Delivery
      amount_condition: lt
      amount: 100
      priority: 10
`)

	m, err := LoadImportRules(v)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	rule, ok := m.Match(pattern.Line{Description: "Uber Eats Pedido", Amount: decimal.NewFromInt(40), Type: model.TypeExpense})
	require.True(t, ok)
	assert.Equal(t, "small delivery", rule.Label())
	assert.Equal(t, "100", rule.AmountValue)

	rule, ok = m.Match(pattern.Line{Description: "SUPERMERCADO DIA", Amount: decimal.NewFromInt(90), Type: model.TypeExpense})
	require.True(t, ok)
	assert.Equal(t, "Food", rule.Category)
}

func TestLoadImportRules_Absent(t *testing.T) {
	m, err := LoadImportRules(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestLoadImportRules_Invalid(t *testing.T) {
	v := readYAML(t, `
import:
  rules:
    - name: broken
      pattern: mercado
`)

	_, err := LoadImportRules(v)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "category is required")
}
