package keywords

import (
	"atsmatch/internal/rules"
	"atsmatch/internal/types"
)

// PatternCategorizer buckets keywords with the ordered category rule
// groups, without calling a model
type PatternCategorizer struct {
	rules *rules.Rules
}

// NewPatternCategorizer creates a categorizer over the rule groups of r
func NewPatternCategorizer(r *rules.Rules) *PatternCategorizer {
	return &PatternCategorizer{rules: r}
}

// Categorize places each keyword in the category of the first rule group
// that matches it. Unmatched keywords go to industryTerms. Every category
// of the result is present.
func (p *PatternCategorizer) Categorize(keywords []string) types.JobKeywordSet {
	set := types.NewJobKeywordSet()
	for _, kw := range keywords {
		set.Append(p.CategoryOf(kw), kw)
	}
	return set
}

// CategoryOf returns the category a single keyword falls in
func (p *PatternCategorizer) CategoryOf(keyword string) types.Category {
	for _, group := range p.rules.Groups {
		for _, re := range group.Patterns {
			if re.MatchString(keyword) {
				return group.Category
			}
		}
	}
	return types.CategoryIndustryTerms
}
