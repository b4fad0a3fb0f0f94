package extraction

import (
	"reflect"
	"regexp"
	"strings"

	"atsmatch/internal/ai"
	"atsmatch/internal/errors"
	"atsmatch/internal/schemas"
	"atsmatch/internal/types"

	"github.com/mitchellh/mapstructure"
)

var (
	collectionKeys   = []string{"workExperience", "education", "skills", "technicalSkills", "softSkills", "certifications", "projects"}
	personalInfoKeys = []string{"fullName", "email", "phone", "location", "linkedin", "website"}

	// hash-like tokens sometimes returned in place of a summary
	hashLike = regexp.MustCompile(`^[A-Za-z0-9+/=_-]{24,}$|^[a-fA-F0-9]{16,}$`)
)

// notFoundMarkers are placeholder values the model writes for absent fields
var notFoundMarkers = map[string]struct{}{
	"not found":     {},
	"not provided":  {},
	"not specified": {},
	"n/a":           {},
	"none":          {},
	"unknown":       {},
}

// ParseDocument decodes a model payload into a repaired ResumeDocument.
// Missing collections and contact fields are defaulted before validation,
// so strict validation only rejects payloads of the wrong shape.
func ParseDocument(payload string, strict bool) (types.ResumeDocument, error) {
	obj, err := ai.DecodeObject(payload)
	if err != nil {
		return types.ResumeDocument{}, err
	}

	fillDefaults(obj)

	if err := schemas.Validate(schemas.Resume, obj, strict); err != nil {
		return types.ResumeDocument{}, err
	}

	var doc types.ResumeDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       looseBoolHook,
		Result:           &doc,
	})
	if err != nil {
		return types.ResumeDocument{}, errors.NewInternalError("DECODER_SETUP_FAILED", "Failed to create resume decoder", err)
	}
	if err := decoder.Decode(obj); err != nil {
		return types.ResumeDocument{}, errors.NewParseError(errors.ErrCodeSchemaMismatch,
			"Resume payload has fields of the wrong type", err)
	}

	repair(&doc)
	return doc, nil
}

// fillDefaults makes every collection an array and personalInfo an object
// with every contact key
func fillDefaults(obj map[string]any) {
	for _, key := range collectionKeys {
		if obj[key] == nil {
			obj[key] = []any{}
		}
	}

	info, ok := obj["personalInfo"].(map[string]any)
	if !ok {
		info = make(map[string]any, len(personalInfoKeys))
		obj["personalInfo"] = info
	}
	for _, key := range personalInfoKeys {
		if info[key] == nil {
			info[key] = ""
		}
	}
}

// looseBoolHook accepts the textual booleans models write for "current"
func looseBoolHook(from reflect.Kind, to reflect.Kind, data any) (any, error) {
	if from != reflect.String || to != reflect.Bool {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(data.(string))) {
	case "true", "yes", "y", "1", "present", "current":
		return true, nil
	default:
		return false, nil
	}
}

// repair blanks placeholder values and guarantees every collection exists
func repair(doc *types.ResumeDocument) {
	doc.EnsureCollections()

	info := &doc.PersonalInfo
	for _, field := range []*string{&info.FullName, &info.Email, &info.Phone, &info.Location, &info.LinkedIn, &info.Website} {
		*field = cleanValue(*field)
	}

	doc.Summary = cleanValue(doc.Summary)
	if hashLike.MatchString(doc.Summary) {
		doc.Summary = ""
	}

	for i := range doc.WorkExperience {
		exp := &doc.WorkExperience[i]
		for _, field := range []*string{&exp.Company, &exp.Position, &exp.Location, &exp.StartDate, &exp.EndDate, &exp.Description} {
			*field = cleanValue(*field)
		}
		exp.Achievements = cleanList(exp.Achievements)
	}
	for i := range doc.Education {
		edu := &doc.Education[i]
		for _, field := range []*string{&edu.Institution, &edu.Degree, &edu.FieldOfStudy, &edu.StartDate, &edu.EndDate, &edu.Description} {
			*field = cleanValue(*field)
		}
	}
	for i := range doc.Certifications {
		cert := &doc.Certifications[i]
		for _, field := range []*string{&cert.Name, &cert.Issuer, &cert.Date} {
			*field = cleanValue(*field)
		}
	}
	for i := range doc.Projects {
		p := &doc.Projects[i]
		for _, field := range []*string{&p.Name, &p.Description, &p.URL} {
			*field = cleanValue(*field)
		}
		p.Technologies = cleanList(p.Technologies)
	}

	doc.Skills = cleanList(doc.Skills)
	doc.TechnicalSkills = cleanList(doc.TechnicalSkills)
	doc.SoftSkills = cleanList(doc.SoftSkills)
}

func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	if isNotFound(s) {
		return ""
	}
	return s
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = cleanValue(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func isNotFound(s string) bool {
	_, ok := notFoundMarkers[strings.ToLower(strings.Trim(s, " .()[]*"))]
	return ok
}
