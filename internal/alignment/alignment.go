// Package alignment compares a candidate's current position with a target
// job title.
package alignment

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"atsmatch/internal/rules"
	"atsmatch/internal/types"
)

// minTokenLength is exclusive: only tokens longer than this take part
const minTokenLength = 3

// Classifier computes career alignment between two job titles
type Classifier struct {
	rules *rules.Rules
}

// NewClassifier creates a classifier that ignores the title modifiers of r
func NewClassifier(r *rules.Rules) *Classifier {
	return &Classifier{rules: r}
}

// Classify reports how much two titles overlap and how the overlap is
// classified. The result does not depend on argument order.
func (c *Classifier) Classify(currentPosition, targetTitle string) types.CareerAlignment {
	current := c.tokens(currentPosition)
	target := c.tokens(targetTitle)

	common := 0
	for token := range current {
		if _, ok := target[token]; ok {
			common++
		}
	}

	overlap := 100 * math.Min(
		float64(common)/float64(max(len(current), 1)),
		float64(common)/float64(max(len(target), 1)),
	)
	overlap = math.Round(overlap*100) / 100

	return types.CareerAlignment{
		OverlapPercentage: overlap,
		Classification:    Classify(overlap),
	}
}

// Classify maps an overlap percentage to its alignment class
func Classify(overlap float64) types.AlignmentClass {
	switch {
	case overlap < 30:
		return types.CareerChange
	case overlap < 50:
		return types.SomewhatRelated
	case overlap <= 70:
		return types.Related
	default:
		return types.HighlyAligned
	}
}

// IsCareerChange reports whether an alignment indicates a change of field
func IsCareerChange(a types.CareerAlignment) bool {
	return a.Classification == types.CareerChange
}

func (c *Classifier) tokens(title string) map[string]struct{} {
	set := make(map[string]struct{})
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= minTokenLength || c.rules.IsTitleModifier(f) {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}
