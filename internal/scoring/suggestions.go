package scoring

import (
	"fmt"
	"strings"

	"atsmatch/internal/config"
	"atsmatch/internal/types"
)

const (
	lowJobScore    = 50
	minSuggestions = 2
)

const (
	titleMismatchSuggestion = "Your current title differs from the target role. Add a skills section that bridges " +
		"your experience to the target job and highlights transferable skills."
	missingKeywordsSuggestion = "Incorporate more of the job's keywords into your experience and skills sections"
	looksGoodSuggestion       = "Your resume looks good. Keep tailoring it to each job you apply for."
)

// Synthesizer turns rubric feedback into an ordered list of suggestions
type Synthesizer struct {
	missingInTip int
}

// NewSynthesizer creates a synthesizer naming up to
// cfg.MissingKeywordsInTip missing keywords
func NewSynthesizer(cfg config.ScoringConfig) *Synthesizer {
	return &Synthesizer{missingInTip: cfg.MissingKeywordsInTip}
}

// Synthesize builds suggestions without naming missing keywords
func Synthesize(feedback []types.FeedbackItem, jobScore *int, titleMismatch bool) []string {
	return (&Synthesizer{}).Synthesize(feedback, jobScore, titleMismatch, nil)
}

// Synthesize lists high-priority feedback, then the title-mismatch and
// missing-keyword suggestions, padding with medium-priority feedback when
// fewer than two suggestions were collected. The result is never empty.
func (s *Synthesizer) Synthesize(feedback []types.FeedbackItem, jobScore *int, titleMismatch bool, missing []string) []string {
	suggestions := []string{}
	for _, item := range feedback {
		if item.Priority == types.PriorityHigh {
			suggestions = append(suggestions, item.Feedback)
		}
	}

	if titleMismatch {
		suggestions = append(suggestions, titleMismatchSuggestion)
	}

	if jobScore != nil && *jobScore < lowJobScore {
		suggestions = append(suggestions, s.missingKeywords(missing))
	}

	if len(suggestions) < minSuggestions {
		for _, item := range feedback {
			if item.Priority == types.PriorityMedium {
				suggestions = append(suggestions, item.Feedback)
			}
		}
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, looksGoodSuggestion)
	}
	return suggestions
}

func (s *Synthesizer) missingKeywords(missing []string) string {
	if s.missingInTip <= 0 || len(missing) == 0 {
		return missingKeywordsSuggestion + "."
	}
	names := missing[:min(len(missing), s.missingInTip)]
	return fmt.Sprintf("%s, such as: %s.", missingKeywordsSuggestion, strings.Join(names, ", "))
}
