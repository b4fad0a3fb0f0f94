package formatters

import (
	"encoding/json"
	"testing"

	"atsmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() types.ATSScoreReport {
	job := 56
	return types.ATSScoreReport{
		RequestID:        "req-1",
		GeneralScore:     74,
		JobSpecificScore: &job,
		Feedback: []types.FeedbackItem{
			{Category: "Keyword Match", Score: 53, Feedback: "Add more skills.", Priority: types.PriorityMedium},
		},
		KeywordsFeedback: &types.KeywordsFeedback{
			Found:   []string{"Go"},
			Missing: []string{"Kubernetes"},
			All:     []string{"Go", "Kubernetes"},
			Categories: map[types.Category]types.CategoryKeywords{
				types.CategoryTechnicalSkills: {Found: []string{"Go"}, Missing: []string{"Kubernetes"}, All: []string{"Go", "Kubernetes"}},
			},
		},
		OverallSuggestions: []string{"Tailor your resume."},
		CareerAlignment:    &types.CareerAlignment{OverlapPercentage: 66.67, Classification: types.Related},
	}
}

func TestFormatReport(t *testing.T) {
	r := NewFormatterRegistry()

	text, err := r.Format(sampleReport(), "text")
	require.NoError(t, err)
	assert.Contains(t, text, "General score: 74/100")
	assert.Contains(t, text, "Job match score: 56/100")
	assert.Contains(t, text, "[MEDIUM] Keyword Match: 53/100")
	assert.Contains(t, text, "Missing (1): Kubernetes")
	assert.Contains(t, text, "Related (66.67% title overlap)")

	report := sampleReport()
	md, err := r.Format(&report, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "# ATS Score Report")
	assert.Contains(t, md, "| Keyword Match | 53 | medium | Add more skills. |")
	assert.Contains(t, md, "### technicalSkills")

	raw, err := r.Format(sampleReport(), "json")
	require.NoError(t, err)
	var decoded types.ATSScoreReport
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, 56, *decoded.JobSpecificScore)
}

func TestFormatReportWithoutJob(t *testing.T) {
	report := types.ATSScoreReport{GeneralScore: 5, Feedback: []types.FeedbackItem{}, OverallSuggestions: []string{}}
	text, err := NewFormatterRegistry().Format(report, "text")
	require.NoError(t, err)
	assert.NotContains(t, text, "Job match score")
	assert.NotContains(t, text, "KEYWORDS")
}

func TestFormatKeywords(t *testing.T) {
	set := types.NewJobKeywordSet()
	set.Set(types.CategoryTechnicalSkills, []string{"Go", "Python"})

	text, err := NewFormatterRegistry().Format(set, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "technicalSkills: Go, Python")
	assert.Contains(t, text, "tools: none")

	md, err := NewFormatterRegistry().Format(set, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "## technicalSkills\n\n- Go\n- Python")
	assert.NotContains(t, md, "## tools")
}

func TestFormatResumeFallsBackToJSONForMarkdown(t *testing.T) {
	doc := types.ResumeDocument{
		PersonalInfo:   types.PersonalInfo{FullName: "Jane Doe", Email: "jane@example.com"},
		WorkExperience: []types.WorkExperience{{Company: "Acme", Position: "Engineer", StartDate: "2020", Current: true}},
		Skills:         []string{"Go"},
	}
	r := NewFormatterRegistry()

	text, err := r.Format(doc, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe\njane@example.com")
	assert.Contains(t, text, "Engineer, Acme (2020 - Present)")

	md, err := r.Format(doc, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, `"fullName": "Jane Doe"`)
}

func TestFormatUnknownFormat(t *testing.T) {
	_, err := NewFormatterRegistry().Format(sampleReport(), "xml")
	assert.EqualError(t, err, "no formatter found for format 'xml' and type 'ATSScoreReport'")
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}
