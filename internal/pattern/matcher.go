package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// compiledRule is a validated rule with its regex and amounts parsed.
type compiledRule struct {
	re        *regexp.Regexp
	amount    *decimal.Decimal
	amountMin *decimal.Decimal
	amountMax *decimal.Decimal
	rule      Rule
}

// Matcher evaluates statement lines against a fixed rule set.
type Matcher struct {
	rules []compiledRule
}

// NewMatcher validates and compiles rules. Rules are tried highest priority first;
// equal priorities keep their configured order.
func NewMatcher(rules []Rule) (*Matcher, error) {
	m := &Matcher{rules: make([]compiledRule, 0, len(rules))}

	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, err
		}

		c := compiledRule{rule: rule}
		if rule.IsRegex {
			re, err := regexp.Compile("(?i)" + rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %s: %w", common.ErrInvalidConfig, rule.Label(), err)
			}
			c.re = re
		}
		c.amount = parseOptional(rule.AmountValue)
		c.amountMin = parseOptional(rule.AmountMin)
		c.amountMax = parseOptional(rule.AmountMax)
		m.rules = append(m.rules, c)
	}

	sort.SliceStable(m.rules, func(i, j int) bool {
		return m.rules[i].rule.Priority > m.rules[j].rule.Priority
	})

	return m, nil
}

// Len reports how many rules the matcher holds.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Match returns the first rule the line satisfies.
func (m *Matcher) Match(line Line) (Rule, bool) {
	if m == nil {
		return Rule{}, false
	}
	for _, c := range m.rules {
		if c.matches(line) {
			return c.rule, true
		}
	}
	return Rule{}, false
}

func (c compiledRule) matches(line Line) bool {
	if c.rule.Type != "" && model.TransactionType(c.rule.Type) != line.Type {
		return false
	}
	return c.matchesDescription(line.Description) && c.matchesAmount(line.Amount)
}

// matchesDescription uses the regex when set, a case-insensitive substring otherwise.
func (c compiledRule) matchesDescription(description string) bool {
	if c.re != nil {
		return c.re.MatchString(description)
	}
	return strings.Contains(strings.ToLower(description), strings.ToLower(c.rule.Pattern))
}

func (c compiledRule) matchesAmount(amount decimal.Decimal) bool {
	switch c.rule.condition() {
	case ConditionAny:
		return true
	case ConditionLT:
		return amount.LessThan(*c.amount)
	case ConditionLE:
		return amount.LessThanOrEqual(*c.amount)
	case ConditionEQ:
		return amount.Equal(*c.amount)
	case ConditionGE:
		return amount.GreaterThanOrEqual(*c.amount)
	case ConditionGT:
		return amount.GreaterThan(*c.amount)
	case ConditionRange:
		if c.amountMin != nil && amount.LessThan(*c.amountMin) {
			return false
		}
		if c.amountMax != nil && amount.GreaterThan(*c.amountMax) {
			return false
		}
		return true
	}
	return false
}

func parseOptional(value string) *decimal.Decimal {
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &d
}
