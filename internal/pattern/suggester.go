package pattern

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Suggestion is the category a rule picked for a statement line.
type Suggestion struct {
	CategoryID string
	Category   string
	Rule       string
}

// Suggester resolves matched rules to the owner's categories.
type Suggester struct {
	matcher    *Matcher
	categories map[model.TransactionType]map[string]model.Category
}

// NewSuggester indexes categories by type and case-folded name. Inactive categories
// are left out so a rule naming one never fires.
func NewSuggester(matcher *Matcher, categories []model.Category) *Suggester {
	s := &Suggester{
		matcher:    matcher,
		categories: make(map[model.TransactionType]map[string]model.Category),
	}
	for _, cat := range categories {
		if !cat.IsActive {
			continue
		}
		if s.categories[cat.Type] == nil {
			s.categories[cat.Type] = make(map[string]model.Category)
		}
		s.categories[cat.Type][strings.ToLower(cat.Name)] = cat
	}
	return s
}

// Suggest returns the category of the first matching rule whose category exists with the
// line's type. A match naming an unknown category is logged and treated as no match.
func (s *Suggester) Suggest(line Line) (Suggestion, bool) {
	rule, ok := s.matcher.Match(line)
	if !ok {
		return Suggestion{}, false
	}

	cat, ok := s.categories[line.Type][strings.ToLower(strings.TrimSpace(rule.Category))]
	if !ok {
		slog.Warn("Rule names no active category of this type",
			"rule", rule.Label(), "category", rule.Category, "type", line.Type)
		return Suggestion{}, false
	}

	return Suggestion{CategoryID: cat.ID, Category: cat.Name, Rule: rule.Label()}, true
}
