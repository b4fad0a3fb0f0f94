// Package matching decides whether a keyword is present in resume text,
// tolerating plurals, synonyms, acronyms and separator variants.
package matching

import (
	"regexp"
	"strings"
	"unicode"

	"atsmatch/internal/rules"
)

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	whitespace  = regexp.MustCompile(`\s+`)
	symbolTerms = regexp.MustCompile(`c\+\+|[cf]#|\.net\b`)
)

// symbolSpellings keeps technology names whose identity lives in
// punctuation from collapsing to a bare letter
var symbolSpellings = map[string]string{
	"c++":  "cpp",
	"c#":   "csharp",
	"f#":   "fsharp",
	".net": " dotnet",
}

// Normalize lowercases text, spells out symbol technology names such as
// C++ and .NET, replaces punctuation with spaces, collapses whitespace
// and trims
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = symbolTerms.ReplaceAllStringFunc(text, func(m string) string { return symbolSpellings[m] })
	text = punctuation.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// shortAliasMax is the longest alias that must match as a whole word
const shortAliasMax = 3

// Matcher tests keyword presence against normalized text. It holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	// normalized term -> every member of its synonym group
	groups map[string][]string
}

// NewMatcher builds a matcher from the synonym tables of r
func NewMatcher(r *rules.Rules) *Matcher {
	m := &Matcher{groups: make(map[string][]string)}
	for _, g := range r.Synonyms {
		members := []string{Normalize(g.Canonical)}
		for _, alias := range g.Aliases {
			if a := Normalize(alias); a != "" {
				members = append(members, a)
			}
		}
		for _, member := range members {
			m.groups[member] = appendUnique(m.groups[member], members...)
		}
	}
	return m
}

// Matches reports whether keyword is present in haystack, which must
// already be normalized
func (m *Matcher) Matches(haystack, keyword string) bool {
	kw := Normalize(keyword)
	if kw == "" || haystack == "" {
		return false
	}

	if containsTerm(haystack, kw) {
		return true
	}

	if m.matchesPlural(haystack, kw) {
		return true
	}

	if m.matchesSynonym(haystack, kw) {
		return true
	}

	if isAcronym(keyword) && acronymPattern(keyword).MatchString(haystack) {
		return true
	}

	return matchesSeparatorVariants(haystack, keyword)
}

func (m *Matcher) matchesPlural(haystack, kw string) bool {
	alt := togglePlural(kw)
	return alt != "" && containsTerm(haystack, alt)
}

func (m *Matcher) matchesSynonym(haystack, kw string) bool {
	members, ok := m.groups[kw]
	if !ok {
		if singular := strings.TrimSuffix(kw, "s"); singular != kw {
			members, ok = m.groups[singular]
		}
	}
	if !ok {
		return false
	}
	for _, member := range members {
		if member == kw {
			continue
		}
		if containsTerm(haystack, member) {
			return true
		}
		if alt := togglePlural(member); alt != "" && containsTerm(haystack, alt) {
			return true
		}
	}
	return false
}

// containsTerm checks substring presence, requiring whole words for short
// terms so that "go" does not match "google"
func containsTerm(haystack, term string) bool {
	if len([]rune(term)) <= shortAliasMax {
		return containsWord(haystack, term)
	}
	return strings.Contains(haystack, term)
}

func containsWord(haystack, word string) bool {
	return strings.Contains(" "+haystack+" ", " "+word+" ")
}

func togglePlural(kw string) string {
	if strings.HasSuffix(kw, "s") {
		if len(kw) <= 2 {
			return ""
		}
		return strings.TrimSuffix(kw, "s")
	}
	return kw + "s"
}

// isAcronym reports whether the raw keyword is short, all uppercase
// letters and has no spaces
func isAcronym(keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	n := len([]rune(keyword))
	if n < 2 || n > 6 {
		return false
	}
	for _, r := range keyword {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// acronymPattern requires the letters of an acronym to lead consecutive
// words, so "AWS" matches "amazon web services"
func acronymPattern(acronym string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`\b`)
	for i, r := range strings.ToLower(acronym) {
		if i > 0 {
			b.WriteString(`\s+`)
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
		b.WriteString(`\w*`)
	}
	return regexp.MustCompile(b.String())
}

func matchesSeparatorVariants(haystack, keyword string) bool {
	lower := strings.ToLower(strings.TrimSpace(keyword))
	if !strings.ContainsAny(lower, "- ") {
		return false
	}

	parts := strings.FieldsFunc(lower, func(r rune) bool { return r == '-' || unicode.IsSpace(r) })
	if len(parts) < 2 {
		return false
	}

	concatenated := Normalize(strings.Join(parts, ""))
	spaced := Normalize(strings.Join(parts, " "))
	return (concatenated != "" && containsTerm(haystack, concatenated)) ||
		(spaced != "" && containsTerm(haystack, spaced))
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
