package types

import "strings"

// Category names a bucket of a JobKeywordSet
type Category string

const (
	CategoryTechnicalSkills Category = "technicalSkills"
	CategorySoftSkills      Category = "softSkills"
	CategoryTools           Category = "tools"
	CategoryMethodologies   Category = "methodologies"
	CategoryRequirements    Category = "requirements"
	CategoryCertificates    Category = "certificates"
	CategoryEducation       Category = "education"
	CategoryIndustryTerms   Category = "industryTerms"
	CategoryJobFunctions    Category = "jobFunctions"
)

// Categories lists every keyword category in report order
var Categories = []Category{
	CategoryTechnicalSkills,
	CategorySoftSkills,
	CategoryTools,
	CategoryMethodologies,
	CategoryRequirements,
	CategoryCertificates,
	CategoryEducation,
	CategoryIndustryTerms,
	CategoryJobFunctions,
}

// JobKeywordSet is the categorized extraction of keywords from a job description
type JobKeywordSet struct {
	TechnicalSkills []string `json:"technicalSkills"`
	SoftSkills      []string `json:"softSkills"`
	Tools           []string `json:"tools"`
	Methodologies   []string `json:"methodologies"`
	Requirements    []string `json:"requirements"`
	Certificates    []string `json:"certificates"`
	Education       []string `json:"education"`
	IndustryTerms   []string `json:"industryTerms"`
	JobFunctions    []string `json:"jobFunctions"`
}

// NewJobKeywordSet returns a set with every category present and empty
func NewJobKeywordSet() JobKeywordSet {
	var set JobKeywordSet
	set.EnsureCategories()
	return set
}

func (s *JobKeywordSet) field(c Category) *[]string {
	switch c {
	case CategoryTechnicalSkills:
		return &s.TechnicalSkills
	case CategorySoftSkills:
		return &s.SoftSkills
	case CategoryTools:
		return &s.Tools
	case CategoryMethodologies:
		return &s.Methodologies
	case CategoryRequirements:
		return &s.Requirements
	case CategoryCertificates:
		return &s.Certificates
	case CategoryEducation:
		return &s.Education
	case CategoryIndustryTerms:
		return &s.IndustryTerms
	case CategoryJobFunctions:
		return &s.JobFunctions
	}
	return nil
}

// Get returns the keywords of a category. Unknown categories are empty.
func (s JobKeywordSet) Get(c Category) []string {
	if f := s.field(c); f != nil {
		return *f
	}
	return nil
}

// Set replaces the keywords of a category
func (s *JobKeywordSet) Set(c Category, keywords []string) {
	if f := s.field(c); f != nil {
		if keywords == nil {
			keywords = []string{}
		}
		*f = keywords
	}
}

// Append adds a keyword to a category
func (s *JobKeywordSet) Append(c Category, keyword string) {
	if f := s.field(c); f != nil {
		*f = append(*f, keyword)
	}
}

// EnsureCategories replaces nil categories with empty slices so that
// every category serializes as an array
func (s *JobKeywordSet) EnsureCategories() {
	for _, c := range Categories {
		if f := s.field(c); *f == nil {
			*f = []string{}
		}
	}
}

// Total returns the number of keywords across all categories
func (s JobKeywordSet) Total() int {
	total := 0
	for _, c := range Categories {
		total += len(s.Get(c))
	}
	return total
}

// PersonalInfo holds candidate contact details
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
}

// WorkExperience is a single position held by the candidate
type WorkExperience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Current      bool     `json:"current"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

// Education is a single education entry
type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// Certification is a professional certification
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// Project is a personal or professional project
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url"`
}

// ResumeDocument is the structured form of a resume
type ResumeDocument struct {
	PersonalInfo    PersonalInfo     `json:"personalInfo"`
	Summary         string           `json:"summary"`
	WorkExperience  []WorkExperience `json:"workExperience"`
	Education       []Education      `json:"education"`
	Skills          []string         `json:"skills"`
	TechnicalSkills []string         `json:"technicalSkills"`
	SoftSkills      []string         `json:"softSkills"`
	Certifications  []Certification  `json:"certifications"`
	Projects        []Project        `json:"projects"`
	Note            string           `json:"note,omitempty"`
}

// EnsureCollections replaces every nil collection, including nested ones,
// with an empty slice
func (d *ResumeDocument) EnsureCollections() {
	if d.WorkExperience == nil {
		d.WorkExperience = []WorkExperience{}
	}
	for i := range d.WorkExperience {
		if d.WorkExperience[i].Achievements == nil {
			d.WorkExperience[i].Achievements = []string{}
		}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.TechnicalSkills == nil {
		d.TechnicalSkills = []string{}
	}
	if d.SoftSkills == nil {
		d.SoftSkills = []string{}
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	for i := range d.Projects {
		if d.Projects[i].Technologies == nil {
			d.Projects[i].Technologies = []string{}
		}
	}
}

// AllSkills returns the distinct, non-blank skills across the skills,
// technicalSkills and softSkills lists, compared case-insensitively
func (d ResumeDocument) AllSkills() []string {
	seen := make(map[string]struct{})
	var skills []string
	for _, list := range [][]string{d.Skills, d.TechnicalSkills, d.SoftSkills} {
		for _, skill := range list {
			skill = strings.TrimSpace(skill)
			if skill == "" {
				continue
			}
			key := strings.ToLower(skill)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			skills = append(skills, skill)
		}
	}
	return skills
}

// SearchableText concatenates every content field of the document
func (d ResumeDocument) SearchableText() string {
	var parts []string
	add := func(values ...string) {
		for _, v := range values {
			if v != "" {
				parts = append(parts, v)
			}
		}
	}

	add(d.Summary)
	for _, exp := range d.WorkExperience {
		add(exp.Position, exp.Company, exp.Description)
		add(exp.Achievements...)
	}
	for _, edu := range d.Education {
		add(edu.Degree, edu.FieldOfStudy, edu.Institution, edu.Description)
	}
	add(d.Skills...)
	add(d.TechnicalSkills...)
	add(d.SoftSkills...)
	for _, cert := range d.Certifications {
		add(cert.Name, cert.Issuer)
	}
	for _, p := range d.Projects {
		add(p.Name, p.Description)
		add(p.Technologies...)
	}
	return strings.Join(parts, " ")
}

// Priority ranks a feedback item
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// FeedbackItem is the scored outcome of one rubric category
type FeedbackItem struct {
	Category string   `json:"category"`
	Score    int      `json:"score"` // 0-100
	Feedback string   `json:"feedback"`
	Priority Priority `json:"priority"`
}

// CategoryKeywords splits the keywords of one category by presence
type CategoryKeywords struct {
	Found   []string `json:"found"`
	Missing []string `json:"missing"`
	All     []string `json:"all"`
}

// KeywordsFeedback reports keyword coverage of a resume against a job
type KeywordsFeedback struct {
	Found      []string                      `json:"found"`
	Missing    []string                      `json:"missing"`
	All        []string                      `json:"all"`
	Categories map[Category]CategoryKeywords `json:"categories"`
}

// AlignmentClass is the strength of the match between two job titles
type AlignmentClass string

const (
	CareerChange    AlignmentClass = "CareerChange"
	SomewhatRelated AlignmentClass = "SomewhatRelated"
	Related         AlignmentClass = "Related"
	HighlyAligned   AlignmentClass = "HighlyAligned"
)

// CareerAlignment compares a current position with a target job title
type CareerAlignment struct {
	OverlapPercentage float64        `json:"overlapPercentage"`
	Classification    AlignmentClass `json:"classification"`
}

// ATSScoreReport is the full outcome of scoring a resume
type ATSScoreReport struct {
	RequestID          string            `json:"requestId,omitempty"`
	GeneralScore       int               `json:"generalScore"`
	JobSpecificScore   *int              `json:"jobSpecificScore,omitempty"`
	Feedback           []FeedbackItem    `json:"feedback"`
	KeywordsFeedback   *KeywordsFeedback `json:"keywordsFeedback,omitempty"`
	OverallSuggestions []string          `json:"overallSuggestions"`
	CareerAlignment    *CareerAlignment  `json:"careerAlignment,omitempty"`
}
