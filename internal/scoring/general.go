// Package scoring implements the deterministic ATS rubrics: a general
// rubric over resume content and a job-specific keyword coverage rubric.
package scoring

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"atsmatch/internal/config"
	"atsmatch/internal/matching"
	"atsmatch/internal/rules"
	"atsmatch/internal/types"
)

// Rubric category names as reported in feedback
const (
	CategoryKeywordMatch      = "Keyword Match"
	CategoryKeywordPlacement  = "Keyword Placement"
	CategoryFormatting        = "Formatting Compliance"
	CategoryExperience        = "Experience Relevance"
	CategoryEducation         = "Education & Certifications"
	CategoryMissingExperience = "Work Experience"
	CategoryMissingEducation  = "Education"
	CategoryMissingSkills     = "Skills"
)

// Maximum points of each sub-score
const (
	maxKeywordMatch     = 40.0
	maxKeywordPlacement = 20.0
	maxFormatting       = 15.0
	maxExperience       = 15.0
	maxEducation        = 10.0
)

// MinimalContentScore is the fixed score of a resume without any core
// section
const MinimalContentScore = 5

const (
	skillCountCap      = 20
	skillCountPoints   = 25.0
	genericPoints      = 15.0
	skillSplitBonus    = 5.0
	skillSplitMinimum  = 5
	minPhoneLength     = 7
	detailAchievements = 3
	detailDescription  = 100
	educationPoints    = 5.0
	completeEducation  = 2.0
	maxCertPoints      = 3
	significantWordLen = 3
)

// GeneralResult is the outcome of the general rubric
type GeneralResult struct {
	Total    int
	Feedback []types.FeedbackItem
}

// GeneralRubric scores a resume on its own merits, with an optional target
// title for experience relevance
type GeneralRubric struct {
	rules   *rules.Rules
	matcher *matching.Matcher
	cfg     config.ScoringConfig
}

// NewGeneralRubric creates a general rubric over the rule tables of r
func NewGeneralRubric(r *rules.Rules, cfg config.ScoringConfig) *GeneralRubric {
	return &GeneralRubric{rules: r, matcher: matching.NewMatcher(r), cfg: cfg}
}

// Score computes the general score of doc. It never fails; missing
// collections are treated as empty.
func (g *GeneralRubric) Score(doc types.ResumeDocument, targetTitle string) GeneralResult {
	skills := doc.AllSkills()

	if g.isMinimal(doc, skills) {
		return minimalResult()
	}

	subs := []struct {
		category string
		points   float64
		max      float64
	}{
		{CategoryKeywordMatch, g.keywordMatch(doc, skills), maxKeywordMatch},
		{CategoryKeywordPlacement, g.keywordPlacement(doc, skills), maxKeywordPlacement},
		{CategoryFormatting, formatting(doc, skills), maxFormatting},
		{CategoryExperience, g.experienceRelevance(doc, targetTitle), maxExperience},
		{CategoryEducation, educationAndCertifications(doc), maxEducation},
	}

	var sum float64
	feedback := make([]types.FeedbackItem, 0, len(subs))
	for _, s := range subs {
		points := math.Max(0, math.Min(s.points, s.max))
		sum += points
		feedback = append(feedback, feedbackFor(s.category, int(math.Round(100*points/s.max))))
	}

	return GeneralResult{
		Total:    clamp(int(math.Round(sum)), 0, 100),
		Feedback: feedback,
	}
}

func (g *GeneralRubric) isMinimal(doc types.ResumeDocument, skills []string) bool {
	return len(doc.WorkExperience) == 0 &&
		len(doc.Education) == 0 &&
		len(skills) == 0 &&
		utf8.RuneCountInString(strings.TrimSpace(doc.Summary)) < g.cfg.MeaningfulSummaryLength
}

func minimalResult() GeneralResult {
	return GeneralResult{
		Total: MinimalContentScore,
		Feedback: []types.FeedbackItem{
			{
				Category: CategoryMissingExperience,
				Score:    0,
				Feedback: "Add your work experience with positions, companies, dates and key achievements.",
				Priority: types.PriorityHigh,
			},
			{
				Category: CategoryMissingEducation,
				Score:    0,
				Feedback: "Add your education, including institution, degree and field of study.",
				Priority: types.PriorityHigh,
			},
			{
				Category: CategoryMissingSkills,
				Score:    0,
				Feedback: "Add a skills section listing your technical and soft skills.",
				Priority: types.PriorityHigh,
			},
		},
	}
}

// keywordMatch rewards the number of distinct skills, coverage of the
// generic professional keywords and a technical/soft split
func (g *GeneralRubric) keywordMatch(doc types.ResumeDocument, skills []string) float64 {
	points := float64(min(len(skills), skillCountCap)) / skillCountCap * skillCountPoints

	if generic := g.rules.GenericKeywords; len(generic) > 0 {
		text := matching.Normalize(doc.SearchableText())
		found := 0
		for _, kw := range generic {
			if g.matcher.Matches(text, kw) {
				found++
			}
		}
		points += float64(found) / float64(len(generic)) * genericPoints
	}

	if len(doc.TechnicalSkills) > 0 && len(doc.SoftSkills) > 0 && len(skills) > skillSplitMinimum {
		points += skillSplitBonus
	}
	return points
}

// keywordPlacement rewards skills that appear in context rather than only
// in the skills lists. Each summary, position, description and achievement
// a skill appears in counts once toward the score.
func (g *GeneralRubric) keywordPlacement(doc types.ResumeDocument, skills []string) float64 {
	if len(skills) == 0 {
		return 0
	}

	contexts := []string{doc.Summary}
	for _, exp := range doc.WorkExperience {
		contexts = append(contexts, exp.Position, exp.Description)
		contexts = append(contexts, exp.Achievements...)
	}

	hits := 0
	for _, field := range contexts {
		text := matching.Normalize(field)
		if text == "" {
			continue
		}
		for _, skill := range skills {
			if g.matcher.Matches(text, skill) {
				hits++
			}
		}
	}
	return math.Min(maxKeywordPlacement, float64(hits)/float64(len(skills))*maxKeywordPlacement)
}

// formatting starts from full marks and deducts for missing sections,
// incomplete contact details and inconsistent experience entries
func formatting(doc types.ResumeDocument, skills []string) float64 {
	points := maxFormatting

	missingSections := 0
	for _, present := range []bool{
		strings.TrimSpace(doc.Summary) != "",
		len(doc.WorkExperience) > 0,
		len(doc.Education) > 0,
		len(skills) > 0,
	} {
		if !present {
			missingSections++
		}
	}
	points -= math.Min(3, float64(missingSections)*0.75)

	info := doc.PersonalInfo
	missingContact := 0
	if strings.TrimSpace(info.FullName) == "" {
		missingContact++
	}
	if !strings.Contains(info.Email, "@") {
		missingContact++
	}
	if utf8.RuneCountInString(strings.TrimSpace(info.Phone)) < minPhoneLength {
		missingContact++
	}
	points -= math.Min(3, float64(missingContact))

	if len(doc.WorkExperience) > 1 {
		if !consistentDates(doc.WorkExperience) {
			points -= 3
		}
		withBullets := 0
		for _, exp := range doc.WorkExperience {
			if len(exp.Achievements) > 0 {
				withBullets++
			}
		}
		if withBullets > 0 && withBullets < len(doc.WorkExperience) {
			points -= 3
		}
	}

	return math.Max(0, points)
}

func consistentDates(entries []types.WorkExperience) bool {
	shapes := make(map[string]struct{})
	for _, exp := range entries {
		for _, d := range []string{exp.StartDate, exp.EndDate} {
			d = strings.TrimSpace(d)
			if d == "" || isOngoing(d) {
				continue
			}
			shapes[dateShape(d)] = struct{}{}
		}
	}
	return len(shapes) <= 1
}

func isOngoing(date string) bool {
	switch strings.ToLower(date) {
	case "present", "current", "now", "ongoing":
		return true
	}
	return false
}

// dateShape reduces a date string to its layout: digits become 9 and each
// run of letters becomes a single a, so "Jan 2020" and "March 2021" share
// a shape while "01/2020" does not
func dateShape(date string) string {
	var b strings.Builder
	inWord := false
	for _, r := range date {
		switch {
		case unicode.IsDigit(r):
			b.WriteByte('9')
			inWord = false
		case unicode.IsLetter(r):
			if !inWord {
				b.WriteByte('a')
			}
			inWord = true
		default:
			b.WriteRune(r)
			inWord = false
		}
	}
	return b.String()
}

func (g *GeneralRubric) experienceRelevance(doc types.ResumeDocument, targetTitle string) float64 {
	if len(doc.WorkExperience) == 0 {
		return 0
	}

	relevant := 0
	target := strings.TrimSpace(targetTitle)
	if target != "" {
		words := g.significantWords(target)
		normTarget := matching.Normalize(target)
		for _, exp := range doc.WorkExperience {
			if g.titleRelated(exp.Position, normTarget, words) {
				relevant++
			}
		}
	} else {
		for _, exp := range doc.WorkExperience {
			if len(exp.Achievements) >= detailAchievements ||
				utf8.RuneCountInString(strings.TrimSpace(exp.Description)) > detailDescription {
				relevant++
			}
		}
	}
	return float64(relevant) / float64(len(doc.WorkExperience)) * maxExperience
}

func (g *GeneralRubric) titleRelated(position, normTarget string, targetWords map[string]struct{}) bool {
	normPosition := matching.Normalize(position)
	if normPosition == "" {
		return false
	}
	if strings.Contains(normPosition, normTarget) || strings.Contains(normTarget, normPosition) {
		return true
	}
	for w := range g.significantWords(position) {
		if _, ok := targetWords[w]; ok {
			return true
		}
	}
	return false
}

func (g *GeneralRubric) significantWords(title string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(matching.Normalize(title)) {
		if utf8.RuneCountInString(w) <= significantWordLen || g.rules.IsStopWord(w) || g.rules.IsTitleModifier(w) {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}

func educationAndCertifications(doc types.ResumeDocument) float64 {
	var points float64
	if len(doc.Education) > 0 {
		points += educationPoints
		complete := true
		for _, edu := range doc.Education {
			if blank(edu.Institution) || blank(edu.Degree) || blank(edu.FieldOfStudy) ||
				(blank(edu.StartDate) && blank(edu.EndDate)) {
				complete = false
				break
			}
		}
		if complete {
			points += completeEducation
		}
	}
	points += float64(min(len(doc.Certifications), maxCertPoints))
	return points
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
