package keywords

import (
	"strings"
	"unicode/utf8"

	"atsmatch/internal/rules"
	"atsmatch/internal/types"
)

// Cleaner enforces the keyword invariants: trimmed, within the length
// bounds, not a disallowed phrase, case-insensitively unique and capped
// per category
type Cleaner struct {
	rules    *rules.Rules
	minLen   int
	maxLen   int
	maxItems int
}

// NewCleaner creates a cleaner with the given bounds
func NewCleaner(r *rules.Rules, minLen, maxLen, maxItems int) *Cleaner {
	return &Cleaner{rules: r, minLen: minLen, maxLen: maxLen, maxItems: maxItems}
}

// Clean filters a list of keywords
func (c *Cleaner) Clean(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if len(out) == c.maxItems {
			break
		}
		v = strings.TrimSpace(v)
		n := utf8.RuneCountInString(v)
		if n < c.minLen || n > c.maxLen {
			continue
		}
		if c.rules.IsDisallowed(v) {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// CleanValues drops non-string items and cleans the rest
func (c *Cleaner) CleanValues(values []any) []string {
	strs := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			strs = append(strs, s)
		}
	}
	return c.Clean(strs)
}

// CleanSet cleans every category of a keyword set
func (c *Cleaner) CleanSet(set types.JobKeywordSet) types.JobKeywordSet {
	out := types.NewJobKeywordSet()
	for _, category := range types.Categories {
		out.Set(category, c.Clean(set.Get(category)))
	}
	return out
}

// FromObject builds a cleaned keyword set from a decoded model payload.
// Categories that are absent or not arrays are empty.
func (c *Cleaner) FromObject(obj map[string]any) types.JobKeywordSet {
	set := types.NewJobKeywordSet()
	for _, category := range types.Categories {
		if items, ok := obj[string(category)].([]any); ok {
			set.Set(category, c.CleanValues(items))
		}
	}
	return set
}
