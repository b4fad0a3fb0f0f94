package scoring

import (
	"math"
	"strings"

	"atsmatch/internal/matching"
	"atsmatch/internal/rules"
	"atsmatch/internal/types"
)

// JobResult is the outcome of the job-specific rubric
type JobResult struct {
	Score    int
	Keywords types.KeywordsFeedback
}

// JobRubric scores keyword coverage of a resume against a job keyword set
type JobRubric struct {
	rules   *rules.Rules
	matcher *matching.Matcher
}

// NewJobRubric creates a job rubric weighting categories by the rule tables
func NewJobRubric(r *rules.Rules) *JobRubric {
	return &JobRubric{rules: r, matcher: matching.NewMatcher(r)}
}

// Score matches every keyword of set against the full resume content.
// Missing categories count as empty; an empty set scores 0.
func (j *JobRubric) Score(doc types.ResumeDocument, set types.JobKeywordSet) JobResult {
	haystack := matching.Normalize(doc.SearchableText())

	feedback := types.KeywordsFeedback{
		Found:      []string{},
		Missing:    []string{},
		All:        []string{},
		Categories: make(map[types.Category]types.CategoryKeywords, len(types.Categories)),
	}
	flat := newFlatLists()

	var weightedFound, weightedTotal float64
	for _, category := range types.Categories {
		entry := types.CategoryKeywords{Found: []string{}, Missing: []string{}, All: []string{}}
		weight := j.rules.Weight(category)

		for _, kw := range set.Get(category) {
			entry.All = append(entry.All, kw)
			weightedTotal += weight
			if j.matcher.Matches(haystack, kw) {
				entry.Found = append(entry.Found, kw)
				weightedFound += weight
				flat.add(&feedback.Found, kw)
			} else {
				entry.Missing = append(entry.Missing, kw)
				flat.add(&feedback.Missing, kw)
			}
			flat.add(&feedback.All, kw)
		}
		feedback.Categories[category] = entry
	}

	score := 0
	if weightedTotal > 0 {
		score = clamp(int(math.Round(100*weightedFound/weightedTotal)), 0, 100)
	}
	return JobResult{Score: score, Keywords: feedback}
}

// flatLists dedupes the category-spanning found, missing and all lists
type flatLists struct {
	seen map[*[]string]map[string]struct{}
}

func newFlatLists() *flatLists {
	return &flatLists{seen: make(map[*[]string]map[string]struct{})}
}

func (f *flatLists) add(list *[]string, kw string) {
	seen, ok := f.seen[list]
	if !ok {
		seen = make(map[string]struct{})
		f.seen[list] = seen
	}
	key := strings.ToLower(kw)
	if _, dup := seen[key]; dup {
		return
	}
	seen[key] = struct{}{}
	*list = append(*list, kw)
}
