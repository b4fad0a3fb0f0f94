// Package keywords extracts and categorizes resume-relevant keywords from
// job descriptions.
package keywords

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"atsmatch/internal/rules"
)

// tokenPattern keeps letters and digits plus the + # . characters used in
// technology names such as C++, C# and Node.js
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}+#.]*`)

// minTokenLength is the shortest token extracted unless it is a known
// short technology token
const minTokenLength = 3

// Extractor performs basic, model-free keyword extraction
type Extractor struct {
	rules   *rules.Rules
	phrases []*phrasePattern
}

type phrasePattern struct {
	phrase string
	words  []string
	re     *regexp.Regexp
}

// NewExtractor compiles the known phrases of r
func NewExtractor(r *rules.Rules) *Extractor {
	e := &Extractor{rules: r}
	for _, phrase := range r.KnownPhrases {
		e.phrases = append(e.phrases, &phrasePattern{
			phrase: phrase,
			words:  strings.Fields(phrase),
			re:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`),
		})
	}
	return e
}

type candidate struct {
	display string
	count   int
	first   int
}

// Extract returns up to limit keywords found in text: known phrases in
// order of appearance, then single tokens ranked by frequency and first
// occurrence. Original casing of the first occurrence is kept.
func (e *Extractor) Extract(text string, limit int) []string {
	if limit <= 0 || strings.TrimSpace(text) == "" {
		return []string{}
	}

	var phrases []candidate
	phraseWords := make(map[string]struct{})
	for _, p := range e.phrases {
		matches := p.re.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		first := matches[0]
		phrases = append(phrases, candidate{
			display: text[first[0]:first[1]],
			count:   len(matches),
			first:   first[0],
		})
		for _, w := range p.words {
			phraseWords[w] = struct{}{}
		}
	}
	sort.SliceStable(phrases, func(i, j int) bool { return phrases[i].first < phrases[j].first })

	tokens := make(map[string]*candidate)
	for _, loc := range tokenPattern.FindAllStringIndex(text, -1) {
		token := strings.TrimRight(text[loc[0]:loc[1]], ".")
		lower := strings.ToLower(token)
		if !e.keepToken(lower) {
			continue
		}
		if _, inPhrase := phraseWords[lower]; inPhrase {
			continue
		}
		if c, ok := tokens[lower]; ok {
			c.count++
			continue
		}
		tokens[lower] = &candidate{display: token, count: 1, first: loc[0]}
	}

	ranked := make([]candidate, 0, len(tokens))
	for _, c := range tokens {
		ranked = append(ranked, *c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})

	out := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, c := range append(phrases, ranked...) {
		if len(out) == limit {
			break
		}
		key := strings.ToLower(c.display)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c.display)
	}
	return out
}

func (e *Extractor) keepToken(lower string) bool {
	if lower == "" || e.rules.IsStopWord(lower) {
		return false
	}
	if !strings.ContainsFunc(lower, unicode.IsLetter) {
		return false
	}
	if utf8.RuneCountInString(lower) < minTokenLength && !e.rules.IsShortToken(lower) {
		return false
	}
	return true
}
