package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"atsmatch/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ATSScoreReport", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "ATSScoreReport", &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "JobKeywordSet", &KeywordsTextFormatter{})
	registry.RegisterFormatter("markdown", "JobKeywordSet", &KeywordsMarkdownFormatter{})
	registry.RegisterFormatter("text", "ResumeDocument", &ResumeTextFormatter{})
	registry.RegisterFormatter("text", "CareerAlignment", &AlignmentTextFormatter{})
	registry.RegisterFormatter("markdown", "CareerAlignment", &AlignmentTextFormatter{})

	return registry
}

// GlobalRegistry is the registry used by the command output handler
var GlobalRegistry = NewFormatterRegistry()

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter. Formats without a
// formatter for the data type fall back to JSON.
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}
	if _, known := fr.formatters[format]; known {
		return fr.formatters["json"]["any"].Format(data)
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ATSScoreReport, *types.ATSScoreReport:
		return "ATSScoreReport"
	case types.JobKeywordSet, *types.JobKeywordSet:
		return "JobKeywordSet"
	case types.ResumeDocument, *types.ResumeDocument:
		return "ResumeDocument"
	case types.CareerAlignment, *types.CareerAlignment:
		return "CareerAlignment"
	default:
		return "any"
	}
}

// deref lets the typed formatters accept values and pointers alike
func deref[T any](data any) (T, bool) {
	switch v := data.(type) {
	case T:
		return v, true
	case *T:
		if v != nil {
			return *v, true
		}
	}
	var zero T
	return zero, false
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ReportTextFormatter handles text formatting for score reports
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, ok := deref[types.ATSScoreReport](data)
	if !ok {
		return "", fmt.Errorf("expected ATSScoreReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ATS SCORE ===\n\n")
	output.WriteString(fmt.Sprintf("General score: %d/100\n", report.GeneralScore))
	if report.JobSpecificScore != nil {
		output.WriteString(fmt.Sprintf("Job match score: %d/100\n", *report.JobSpecificScore))
	}
	if report.CareerAlignment != nil {
		output.WriteString(fmt.Sprintf("Career alignment: %s (%.2f%% title overlap)\n",
			report.CareerAlignment.Classification, report.CareerAlignment.OverlapPercentage))
	}
	output.WriteString("\n")

	output.WriteString("=== FEEDBACK ===\n\n")
	for _, item := range report.Feedback {
		output.WriteString(fmt.Sprintf("[%s] %s: %d/100\n", strings.ToUpper(string(item.Priority)), item.Category, item.Score))
		output.WriteString("   ")
		output.WriteString(item.Feedback)
		output.WriteString("\n\n")
	}

	if kf := report.KeywordsFeedback; kf != nil {
		output.WriteString("=== KEYWORDS ===\n\n")
		output.WriteString(fmt.Sprintf("Found (%d): %s\n", len(kf.Found), joinOrNone(kf.Found)))
		output.WriteString(fmt.Sprintf("Missing (%d): %s\n\n", len(kf.Missing), joinOrNone(kf.Missing)))
	}

	if len(report.OverallSuggestions) > 0 {
		output.WriteString("=== SUGGESTIONS ===\n\n")
		for i, s := range report.OverallSuggestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, s))
		}
	}

	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return "ATSScoreReport"
}

// ReportMarkdownFormatter handles markdown formatting for score reports
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := deref[types.ATSScoreReport](data)
	if !ok {
		return "", fmt.Errorf("expected ATSScoreReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# ATS Score Report\n\n")
	output.WriteString(fmt.Sprintf("**General score:** %d/100\n\n", report.GeneralScore))
	if report.JobSpecificScore != nil {
		output.WriteString(fmt.Sprintf("**Job match score:** %d/100\n\n", *report.JobSpecificScore))
	}
	if report.CareerAlignment != nil {
		output.WriteString(fmt.Sprintf("**Career alignment:** %s (%.2f%% title overlap)\n\n",
			report.CareerAlignment.Classification, report.CareerAlignment.OverlapPercentage))
	}

	output.WriteString("## Feedback\n\n")
	output.WriteString("| Category | Score | Priority | Feedback |\n")
	output.WriteString("|---|---|---|---|\n")
	for _, item := range report.Feedback {
		output.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n", item.Category, item.Score, item.Priority, item.Feedback))
	}
	output.WriteString("\n")

	if kf := report.KeywordsFeedback; kf != nil {
		output.WriteString("## Keywords\n\n")
		for _, category := range types.Categories {
			ck, ok := kf.Categories[category]
			if !ok || len(ck.All) == 0 {
				continue
			}
			output.WriteString(fmt.Sprintf("### %s\n\n", category))
			output.WriteString(fmt.Sprintf("- **Found:** %s\n", joinOrNone(ck.Found)))
			output.WriteString(fmt.Sprintf("- **Missing:** %s\n\n", joinOrNone(ck.Missing)))
		}
	}

	if len(report.OverallSuggestions) > 0 {
		output.WriteString("## Suggestions\n\n")
		for _, s := range report.OverallSuggestions {
			output.WriteString("- ")
			output.WriteString(s)
			output.WriteString("\n")
		}
	}

	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return "ATSScoreReport"
}

// KeywordsTextFormatter handles text formatting for job keyword sets
type KeywordsTextFormatter struct{}

func (ktf *KeywordsTextFormatter) Format(data any) (string, error) {
	set, ok := deref[types.JobKeywordSet](data)
	if !ok {
		return "", fmt.Errorf("expected JobKeywordSet, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== JOB KEYWORDS ===\n\n")
	for _, category := range types.Categories {
		output.WriteString(fmt.Sprintf("%s: %s\n", category, joinOrNone(set.Get(category))))
	}
	return output.String(), nil
}

func (ktf *KeywordsTextFormatter) SupportedType() string {
	return "JobKeywordSet"
}

// KeywordsMarkdownFormatter handles markdown formatting for job keyword sets
type KeywordsMarkdownFormatter struct{}

func (kmf *KeywordsMarkdownFormatter) Format(data any) (string, error) {
	set, ok := deref[types.JobKeywordSet](data)
	if !ok {
		return "", fmt.Errorf("expected JobKeywordSet, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Job Keywords\n\n")
	for _, category := range types.Categories {
		items := set.Get(category)
		if len(items) == 0 {
			continue
		}
		output.WriteString(fmt.Sprintf("## %s\n\n", category))
		for _, item := range items {
			output.WriteString("- ")
			output.WriteString(item)
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}
	return output.String(), nil
}

func (kmf *KeywordsMarkdownFormatter) SupportedType() string {
	return "JobKeywordSet"
}

// ResumeTextFormatter handles text formatting for structured resumes
type ResumeTextFormatter struct{}

func (rtf *ResumeTextFormatter) Format(data any) (string, error) {
	doc, ok := deref[types.ResumeDocument](data)
	if !ok {
		return "", fmt.Errorf("expected ResumeDocument, got %T", data)
	}

	var output strings.Builder
	info := doc.PersonalInfo

	output.WriteString("=== RESUME ===\n\n")
	if info.FullName != "" {
		output.WriteString(info.FullName)
		output.WriteString("\n")
	}
	contact := nonEmpty(info.Email, info.Phone, info.Location, info.LinkedIn, info.Website)
	if len(contact) > 0 {
		output.WriteString(strings.Join(contact, " | "))
		output.WriteString("\n")
	}
	if doc.Summary != "" {
		output.WriteString("\n")
		output.WriteString(doc.Summary)
		output.WriteString("\n")
	}

	if len(doc.WorkExperience) > 0 {
		output.WriteString("\n=== EXPERIENCE ===\n\n")
		for _, exp := range doc.WorkExperience {
			end := exp.EndDate
			if exp.Current {
				end = "Present"
			}
			output.WriteString(fmt.Sprintf("%s, %s (%s - %s)\n", exp.Position, exp.Company, exp.StartDate, end))
			for _, a := range exp.Achievements {
				output.WriteString("  - ")
				output.WriteString(a)
				output.WriteString("\n")
			}
		}
	}

	if len(doc.Education) > 0 {
		output.WriteString("\n=== EDUCATION ===\n\n")
		for _, edu := range doc.Education {
			output.WriteString(strings.Join(nonEmpty(edu.Degree, edu.FieldOfStudy, edu.Institution), ", "))
			output.WriteString("\n")
		}
	}

	if skills := doc.AllSkills(); len(skills) > 0 {
		output.WriteString("\n=== SKILLS ===\n\n")
		output.WriteString(strings.Join(skills, ", "))
		output.WriteString("\n")
	}

	if len(doc.Certifications) > 0 {
		output.WriteString("\n=== CERTIFICATIONS ===\n\n")
		for _, cert := range doc.Certifications {
			output.WriteString(strings.Join(nonEmpty(cert.Name, cert.Issuer, cert.Date), ", "))
			output.WriteString("\n")
		}
	}

	if doc.Note != "" {
		output.WriteString("\nNote: ")
		output.WriteString(doc.Note)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (rtf *ResumeTextFormatter) SupportedType() string {
	return "ResumeDocument"
}

// AlignmentTextFormatter prints a career alignment on one line
type AlignmentTextFormatter struct{}

func (atf *AlignmentTextFormatter) Format(data any) (string, error) {
	a, ok := deref[types.CareerAlignment](data)
	if !ok {
		return "", fmt.Errorf("expected CareerAlignment, got %T", data)
	}
	return fmt.Sprintf("%s (%.2f%% title overlap)\n", a.Classification, a.OverlapPercentage), nil
}

func (atf *AlignmentTextFormatter) SupportedType() string {
	return "CareerAlignment"
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
