package extraction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atsmatch/internal/ai"
	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
	"personalInfo": {"fullName": "Jane Doe", "email": "jane@example.com", "phone": "555-123-4567"},
	"summary": "Backend engineer with ten years of Python experience.",
	"workExperience": [{
		"company": "Acme",
		"position": "Senior Engineer",
		"startDate": "Jan 2020",
		"endDate": "Present",
		"current": true,
		"description": "Payments platform",
		"achievements": ["Cut latency by 40%"]
	}],
	"education": [{"institution": "State University", "degree": "BSc", "fieldOfStudy": "Computer Science"}],
	"technicalSkills": ["Python", "Go"]
}`

const rawResume = "Jane Doe\njane@example.com\nSenior Engineer at Acme since Jan 2020\nBSc Computer Science, State University"

type reply struct {
	text string
	err  error
}

// scriptedCompleter answers calls in order and records every request
type scriptedCompleter struct {
	replies  []reply
	requests []ai.CompletionRequest
}

func (s *scriptedCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, *ai.TokenUsage, error) {
	s.requests = append(s.requests, req)
	if len(s.requests) > len(s.replies) {
		return "", nil, errors.NewAIError(errors.ErrCodeAIServer, "unexpected call", nil)
	}
	r := s.replies[len(s.requests)-1]
	return r.text, nil, r.err
}

func testExtractionConfig() config.ExtractionConfig {
	return config.ExtractionConfig{
		MaxInputChars: 30000,
		Attempts:      1,
		Strategies:    []string{StrategyTwoPass, StrategySinglePass},
	}
}

func serverError() error {
	return errors.NewAIError(errors.ErrCodeAIServer, "upstream down", nil)
}

func TestExtractTwoPass(t *testing.T) {
	c := &scriptedCompleter{replies: []reply{
		{text: "CONTACT: Jane Doe\nEXPERIENCE: Senior Engineer, Acme"},
		{text: "```json\n" + validPayload + "\n```"},
	}}

	doc := NewExtractor(c, testExtractionConfig(), nil).Extract(context.Background(), rawResume)

	assert.Equal(t, "Jane Doe", doc.PersonalInfo.FullName)
	require.Len(t, doc.WorkExperience, 1)
	assert.True(t, doc.WorkExperience[0].Current)
	assert.Empty(t, doc.Note)
	assert.NotNil(t, doc.Projects)
	assert.NotNil(t, doc.Certifications)

	require.Len(t, c.requests, 2)
	assert.Equal(t, config.OperationExtractText, c.requests[0].Operation)
	assert.False(t, c.requests[0].Structured)
	assert.Contains(t, c.requests[0].Prompt, "Senior Engineer at Acme")
	assert.Equal(t, config.OperationStructure, c.requests[1].Operation)
	assert.True(t, c.requests[1].Structured)
	assert.Equal(t, ai.SchemaResume, c.requests[1].Schema)
	assert.Contains(t, c.requests[1].Prompt, "EXPERIENCE: Senior Engineer, Acme", "pass two structures pass one output")
}

func TestExtractFallsBackToSinglePass(t *testing.T) {
	tests := []struct {
		name    string
		replies []reply
	}{
		{"unparseable pass two", []reply{{text: "notes"}, {text: "I could not produce JSON, sorry."}, {text: validPayload}}},
		{"pass one error", []reply{{err: serverError()}, {text: validPayload}}},
		{"wrong shape under strict schema", []reply{{text: "notes"}, {text: `{"workExperience": "Acme"}`}, {text: validPayload}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &scriptedCompleter{replies: tt.replies}
			doc := NewExtractor(c, testExtractionConfig(), nil).Extract(context.Background(), rawResume)

			assert.Equal(t, "Jane Doe", doc.PersonalInfo.FullName)
			assert.Contains(t, doc.Note, StrategySinglePass)
			assert.Len(t, c.requests, len(tt.replies))
			last := c.requests[len(c.requests)-1]
			assert.Contains(t, last.Prompt, rawResume, "single pass works from the raw text")
		})
	}
}

func TestExtractTotalFailureReturnsPlaceholder(t *testing.T) {
	run := func() types.ResumeDocument {
		c := &scriptedCompleter{replies: []reply{{err: serverError()}, {err: serverError()}}}
		return NewExtractor(c, testExtractionConfig(), nil).Extract(context.Background(), rawResume)
	}

	doc := run()
	assert.Equal(t, PlaceholderValue, doc.PersonalInfo.FullName)
	assert.Equal(t, PlaceholderValue, doc.Summary)
	require.Len(t, doc.WorkExperience, 1)
	assert.Equal(t, PlaceholderValue, doc.WorkExperience[0].Company)
	assert.Contains(t, doc.Note, "temporarily unavailable")
	assert.NotNil(t, doc.Education)
	assert.NotNil(t, doc.WorkExperience[0].Achievements)

	assert.Equal(t, doc, run(), "placeholder is deterministic")
}

func TestExtractEmptyInput(t *testing.T) {
	c := &scriptedCompleter{}
	doc := NewExtractor(c, testExtractionConfig(), nil).Extract(context.Background(), " \n ")

	assert.Equal(t, ErrorPlaceholder(emptyInputNote), doc)
	assert.Empty(t, c.requests)
}

func TestExtractTruncatesLongInput(t *testing.T) {
	cfg := testExtractionConfig()
	cfg.MaxInputChars = 40
	c := &scriptedCompleter{replies: []reply{{text: "notes"}, {text: validPayload}}}

	doc := NewExtractor(c, cfg, nil).Extract(context.Background(), rawResume+" TAILMARKER")

	assert.Equal(t, truncationNote, doc.Note)
	assert.NotContains(t, c.requests[0].Prompt, "TAILMARKER")
}

func TestExtractRetriesWithinStrategy(t *testing.T) {
	cfg := testExtractionConfig()
	cfg.Attempts = 2
	c := &scriptedCompleter{replies: []reply{{err: serverError()}, {text: "notes"}, {text: validPayload}}}

	doc := NewExtractor(c, cfg, nil).Extract(context.Background(), rawResume)

	assert.Equal(t, "Jane Doe", doc.PersonalInfo.FullName)
	assert.Empty(t, doc.Note, "a retried two-pass success is not a fallback")
	assert.Len(t, c.requests, 3)
}

func TestExtractUnknownStrategy(t *testing.T) {
	cfg := testExtractionConfig()
	cfg.Strategies = []string{"three-pass"}
	c := &scriptedCompleter{}

	doc := NewExtractor(c, cfg, nil).Extract(context.Background(), rawResume)

	assert.Equal(t, PlaceholderValue, doc.Summary)
	assert.Contains(t, doc.Note, "three-pass")
	assert.Empty(t, c.requests)
}

func TestPolicyStopsOnCancelledContext(t *testing.T) {
	strategies, err := NewStrategies(config.KnownStrategies, DefaultPromptSet())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &scriptedCompleter{}

	out := Policy{Strategies: strategies, Attempts: 1}.Run(ctx, c, rawResume)
	assert.False(t, out.OK())
	assert.Len(t, out.Failures, 1)
	assert.Empty(t, c.requests)
}

func TestParseDocumentRepairs(t *testing.T) {
	payload := `{
		"summary": "NOT FOUND",
		"workExperience": [{
			"company": "Acme",
			"position": "Engineer",
			"startDate": 2019,
			"current": "yes",
			"achievements": "Shipped the billing service"
		}],
		"education": [{"institution": "State University", "degree": "N/A"}],
		"skills": ["Go", "Not Found", "  SQL "]
	}`

	doc, err := ParseDocument(payload, false)
	require.NoError(t, err)

	assert.Empty(t, doc.Summary)
	assert.Equal(t, types.PersonalInfo{}, doc.PersonalInfo)
	require.Len(t, doc.WorkExperience, 1)
	assert.Equal(t, "2019", doc.WorkExperience[0].StartDate)
	assert.True(t, doc.WorkExperience[0].Current)
	assert.Equal(t, []string{"Shipped the billing service"}, doc.WorkExperience[0].Achievements)
	assert.Empty(t, doc.Education[0].Degree)
	assert.Equal(t, []string{"Go", "SQL"}, doc.Skills)
	assert.NotNil(t, doc.TechnicalSkills)
	assert.NotNil(t, doc.Projects)
}

func TestParseDocumentBlanksHashSummary(t *testing.T) {
	doc, err := ParseDocument(`{"summary": "3f2a9c8b7d6e5f4a3b2c1d0e9f8a7b6c", "workExperience": [], "education": []}`, true)
	require.NoError(t, err)
	assert.Empty(t, doc.Summary)
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		strict  bool
	}{
		{"prose", "Here is the resume you asked for.", false},
		{"broken json", `{"summary": `, false},
		{"strict wrong type", `{"workExperience": "Acme", "education": []}`, true},
		{"strict wrong personal info", `{"personalInfo": {"fullName": 42}, "workExperience": [], "education": []}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument(tt.payload, tt.strict)
			require.Error(t, err)
			assert.Equal(t, ai.FailureParse, ai.KindOf(err))
		})
	}
}

func TestNewStrategy(t *testing.T) {
	two, err := NewStrategy(StrategyTwoPass, DefaultPromptSet())
	require.NoError(t, err)
	assert.Len(t, two.Passes, 2)
	assert.True(t, two.Strict)

	single, err := NewStrategy(StrategySinglePass, DefaultPromptSet())
	require.NoError(t, err)
	assert.Len(t, single.Passes, 1)
	assert.False(t, single.Strict)

	_, err = NewStrategy("bogus", DefaultPromptSet())
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bogus"))
}

func TestDescribeFailure(t *testing.T) {
	rateLimited := errors.NewAIError(errors.ErrCodeAIRateLimit, "quota exhausted", nil)

	tests := []struct {
		name     string
		failures []Failure
		want     string
	}{
		{"none attempted", nil, "no extraction strategy was attempted"},
		{"application error", []Failure{{Err: rateLimited}}, rateLimited.UserMessage()},
		{"wrapped application error", []Failure{{Err: fmt.Errorf("structure step: %w", rateLimited)}}, rateLimited.UserMessage()},
		{"last failure wins", []Failure{{Err: rateLimited}, {Err: fmt.Errorf("boom")}}, "the language model request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeFailure(tt.failures))
		})
	}
}

func TestResolvePromptSet(t *testing.T) {
	dir := t.TempDir()
	systemFile := filepath.Join(dir, "single-pass-system.md")
	require.NoError(t, os.WriteFile(systemFile, []byte("single pass system from file\n"), 0600))

	tests := []struct {
		name       string
		yaml       string
		wantSystem string
		wantUser   string
	}{
		{
			name:       "defaults",
			yaml:       "extraction:\n  attempts: 1\n",
			wantSystem: ai.DefaultSystemPrompts[ai.PromptSinglePass],
			wantUser:   ai.DefaultUserPrompts[ai.PromptSinglePass],
		},
		{
			name:       "inline override",
			yaml:       "extraction:\n  singlePassPrompts:\n    user: \"Parse: %s\"\n",
			wantSystem: ai.DefaultSystemPrompts[ai.PromptSinglePass],
			wantUser:   "Parse: %s",
		},
		{
			name:       "file override",
			yaml:       "extraction:\n  singlePassPrompts:\n    system: inline\n    systemFile: " + systemFile + "\n",
			wantSystem: "single pass system from file",
			wantUser:   ai.DefaultUserPrompts[ai.PromptSinglePass],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.yaml), 0600))
			cfg, err := config.LoadConfig(configFile)
			require.NoError(t, err)

			set := ResolvePromptSet(cfg)
			assert.Equal(t, tt.wantSystem, set.SinglePass.System)
			assert.Equal(t, tt.wantUser, set.SinglePass.User)
			assert.Equal(t, ai.DefaultPrompts(ai.PromptStructure), set.Structure)
		})
	}
}
