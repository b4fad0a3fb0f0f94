package ai

import (
	"atsmatch/internal/types"

	"google.golang.org/genai"
)

func stringArray() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

func objectOf(required []string, props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func stringProps(names ...string) map[string]*genai.Schema {
	props := make(map[string]*genai.Schema, len(names))
	for _, n := range names {
		props[n] = &genai.Schema{Type: genai.TypeString}
	}
	return props
}

// keywordsSchema asks for the nine keyword categories as string arrays
func keywordsSchema() *genai.Schema {
	props := make(map[string]*genai.Schema, len(types.Categories))
	required := make([]string, 0, len(types.Categories))
	for _, c := range types.Categories {
		props[string(c)] = stringArray()
		required = append(required, string(c))
	}
	return objectOf(required, props)
}

// resumeSchema mirrors types.ResumeDocument
func resumeSchema() *genai.Schema {
	experience := stringProps("company", "position", "location", "startDate", "endDate", "description")
	experience["current"] = &genai.Schema{Type: genai.TypeBoolean}
	experience["achievements"] = stringArray()

	education := stringProps("institution", "degree", "fieldOfStudy", "startDate", "endDate", "description")
	education["current"] = &genai.Schema{Type: genai.TypeBoolean}

	project := stringProps("name", "description", "url")
	project["technologies"] = stringArray()

	return objectOf(
		[]string{"personalInfo", "summary", "workExperience", "education", "skills"},
		map[string]*genai.Schema{
			"personalInfo": objectOf(
				[]string{"fullName", "email", "phone"},
				stringProps("fullName", "email", "phone", "location", "linkedin", "website"),
			),
			"summary": {Type: genai.TypeString},
			"workExperience": {
				Type:  genai.TypeArray,
				Items: objectOf([]string{"company", "position"}, experience),
			},
			"education": {
				Type:  genai.TypeArray,
				Items: objectOf([]string{"institution", "degree"}, education),
			},
			"skills":          stringArray(),
			"technicalSkills": stringArray(),
			"softSkills":      stringArray(),
			"certifications": {
				Type:  genai.TypeArray,
				Items: objectOf([]string{"name"}, stringProps("name", "issuer", "date")),
			},
			"projects": {
				Type:  genai.TypeArray,
				Items: objectOf([]string{"name"}, project),
			},
		},
	)
}

// responseSchema returns the genai schema for a structured completion, or
// nil for free-form JSON
func responseSchema(name SchemaName) *genai.Schema {
	switch name {
	case SchemaKeywords:
		return keywordsSchema()
	case SchemaResume:
		return resumeSchema()
	}
	return nil
}
