package services

import (
	"strings"

	"budgetbalancer/internal/core"
)

// Categorizer assigns categories to transactions by matching merchant or
// description text against a priority-ordered rule list.
type Categorizer struct {
	rules []core.CategoryRule
}

// NewCategorizer builds a categorizer from rules already sorted by
// descending priority, the order ListRules returns them in.
func NewCategorizer(rules []core.CategoryRule) *Categorizer {
	return &Categorizer{rules: rules}
}

// Categorize returns the category for a transaction. The merchant field is
// preferred when present, otherwise the description is matched. Patterns are
// case-insensitive substrings; the first hit in priority order wins.
// Unmatched transactions land in Uncategorized.
func (c *Categorizer) Categorize(merchant *string, description string) int64 {
	text := description
	if merchant != nil && *merchant != "" {
		text = *merchant
	}
	text = strings.ToLower(text)

	for _, rule := range c.rules {
		if strings.Contains(text, strings.ToLower(rule.Pattern)) {
			return rule.CategoryID
		}
	}
	return core.DefaultCategoryID
}
