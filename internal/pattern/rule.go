// Package pattern matches imported statement lines against user-defined categorization rules.
package pattern

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Amount conditions.
const (
	ConditionAny   = "any"
	ConditionLT    = "lt"
	ConditionLE    = "le"
	ConditionEQ    = "eq"
	ConditionGE    = "ge"
	ConditionGT    = "gt"
	ConditionRange = "range"
)

// Rule files statement lines whose description matches Pattern under Category.
// Amounts are decimal strings so they survive YAML and environment decoding intact.
type Rule struct {
	Name            string `mapstructure:"name"`
	Pattern         string `mapstructure:"pattern"`
	Category        string `mapstructure:"category"`
	Type            string `mapstructure:"type"`
	AmountCondition string `mapstructure:"amount_condition"`
	AmountValue     string `mapstructure:"amount"`
	AmountMin       string `mapstructure:"amount_min"`
	AmountMax       string `mapstructure:"amount_max"`
	Priority        int    `mapstructure:"priority"`
	IsRegex         bool   `mapstructure:"regex"`
}

// Label names the rule in logs and errors.
func (r Rule) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Pattern
}

// Line is the part of a statement line rules look at.
type Line struct {
	Description string
	Amount      decimal.Decimal
	Type        model.TransactionType
}

// Validate checks a rule definition before it is compiled.
func (r Rule) Validate() error {
	var problems []string

	if strings.TrimSpace(r.Pattern) == "" {
		problems = append(problems, "pattern is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		problems = append(problems, "category is required")
	}
	if r.Type != "" && !model.TransactionType(r.Type).Valid() {
		problems = append(problems, fmt.Sprintf("type %q must be income or expense", r.Type))
	}

	switch r.condition() {
	case ConditionAny:
	case ConditionLT, ConditionLE, ConditionEQ, ConditionGE, ConditionGT:
		if r.AmountValue == "" {
			problems = append(problems, fmt.Sprintf("amount is required for condition %s", r.condition()))
		}
	case ConditionRange:
		if r.AmountMin == "" && r.AmountMax == "" {
			problems = append(problems, "range needs amount_min, amount_max or both")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown amount condition %q", r.AmountCondition))
	}

	for field, value := range map[string]string{"amount": r.AmountValue, "amount_min": r.AmountMin, "amount_max": r.AmountMax} {
		if value == "" {
			continue
		}
		if _, err := decimal.NewFromString(value); err != nil {
			problems = append(problems, fmt.Sprintf("%s %q is not a number", field, value))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: rule %s: %s", common.ErrInvalidConfig, r.Label(), strings.Join(problems, "; "))
	}
	return nil
}

func (r Rule) condition() string {
	if r.AmountCondition == "" {
		return ConditionAny
	}
	return strings.ToLower(r.AmountCondition)
}
