package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/pattern"
)

// LoadImportRules decodes the import.rules list and compiles it. An absent key yields an
// empty matcher.
//
//	import:
//	  rules:
//	    - name: groceries
//	      pattern: supermercado
//	      category: Food
//	    - pattern: "^uber\\s+eats"
//	      regex: true
//	      category: Food
//	      amount_condition: lt
//	      amount: "100"
//	      priority: 10
func LoadImportRules(v *viper.Viper) (*pattern.Matcher, error) {
	var rules []pattern.Rule
	if err := v.UnmarshalKey(KeyImportRules, &rules); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, KeyImportRules, err)
	}
	return pattern.NewMatcher(rules)
}
