package ai

import (
	"fmt"

	"atsmatch/internal/config"
)

// Prompt names. The first three match the configurable operations; the
// single-pass prompt runs under the structure operation's settings.
const (
	PromptCategorize  = config.OperationCategorize
	PromptExtractText = config.OperationExtractText
	PromptStructure   = config.OperationStructure
	PromptSinglePass  = config.PromptSinglePass
)

// Prompts is a system instruction plus a user template filled with fmt
// verbs
type Prompts struct {
	System string
	User   string
}

// Format fills the user template
func (p Prompts) Format(args ...any) string {
	return fmt.Sprintf(p.User, args...)
}

// DefaultSystemPrompts provides the built-in system instructions
var DefaultSystemPrompts = map[string]string{
	PromptCategorize: `You are an applicant tracking system analyst. You read job postings and pull out the terms a recruiter would search for in a candidate's resume.

- Only return terms that could plausibly appear on a resume
- Never return company names, job titles, locations, salaries or benefits
- Never return generic phrases such as "fast-paced environment" or "team player"
- Keep each term short: a skill, tool, certificate or domain phrase, not a sentence`,

	PromptExtractText: `You are a meticulous resume parser. You copy information out of resumes exactly as written.

- Extract only information that is explicitly present in the text
- Never invent names, employers, dates, degrees or contact details
- When a field is absent, write NOT FOUND for it instead of guessing`,

	PromptStructure: `You convert resume notes into a strict JSON document. You never add information that is not in the notes you are given, and you leave fields empty rather than guessing.`,

	PromptSinglePass: `You convert raw resume text into a strict JSON document. Copy facts exactly as written, never invent missing details, and leave fields empty when the resume does not state them.`,
}

// DefaultUserPrompts provides the built-in user prompt templates
var DefaultUserPrompts = map[string]string{
	PromptCategorize: `Extract the resume-relevant keywords from this job posting and sort them into categories.

Return a single JSON object with exactly these keys, each an array of strings:
technicalSkills, softSkills, tools, methodologies, requirements, certificates, education, industryTerms, jobFunctions.
Use an empty array for a category with no terms. Do not repeat a term across categories.

**Job Title:** %s

**Job Description:**
-----
%s
-----`,

	PromptExtractText: `Read the resume below and write out, section by section, everything it states:
contact details, professional summary, each position (company, title, location, dates, whether it is current, duties, achievements), education, skills, certifications and projects.
Mark any section or field that is not present as NOT FOUND.

**Resume:**
-----
%s
-----`,

	PromptStructure: `Convert these resume notes into a single JSON object with the fields personalInfo, summary, workExperience, education, skills, technicalSkills, softSkills, certifications and projects.
Fields marked NOT FOUND must be left as empty strings or empty arrays.

**Resume Notes:**
-----
%s
-----`,

	PromptSinglePass: `Convert this resume into a single JSON object with the fields personalInfo, summary, workExperience, education, skills, technicalSkills, softSkills, certifications and projects.
Leave fields the resume does not state as empty strings or empty arrays.

**Resume:**
-----
%s
-----`,
}

// DefaultPrompts returns the built-in prompts for a prompt name
func DefaultPrompts(name string) Prompts {
	return Prompts{System: DefaultSystemPrompts[name], User: DefaultUserPrompts[name]}
}

// ResolvePrompts selects each prompt of an operation in priority order: a
// file loaded at startup, inline config, then the built-in default
func ResolvePrompts(name string, cfg config.OperationAIConfig) Prompts {
	return ResolvePromptConfig(name, cfg.Prompts)
}

// ResolvePromptConfig resolves the prompts of any named prompt slot,
// including the single-pass extraction prompts
func ResolvePromptConfig(name string, pc config.PromptConfig) Prompts {
	defaults := DefaultPrompts(name)
	loaded := config.GetPromptsForOperation(name)
	return Prompts{
		System: resolvePrompt(loaded.System, pc.System, defaults.System),
		User:   resolvePrompt(loaded.User, pc.User, defaults.User),
	}
}

func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
