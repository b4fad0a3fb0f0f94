// Package rules holds the declarative rule tables used by keyword
// categorization, cleaning, matching and scoring. The tables ship embedded
// as YAML and can be overridden by a file at startup.
package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"atsmatch/internal/types"

	"github.com/spf13/viper"
)

//go:embed rules.yaml
var defaultRules []byte

// PatternGroup is an ordered group of regular expressions for one category
type PatternGroup struct {
	Category string   `mapstructure:"category"`
	Patterns []string `mapstructure:"patterns"`
}

// SynonymGroup maps a canonical term to its aliases
type SynonymGroup struct {
	Canonical string   `mapstructure:"canonical"`
	Aliases   []string `mapstructure:"aliases"`
}

// CategoryWeight is the scoring weight of one keyword category
type CategoryWeight struct {
	Category string  `mapstructure:"category"`
	Weight   float64 `mapstructure:"weight"`
}

// Tables is the raw, uncompiled form of the rule tables
type Tables struct {
	Version            int              `mapstructure:"version"`
	CategoryPatterns   []PatternGroup   `mapstructure:"categoryPatterns"`
	DisallowedPatterns []string         `mapstructure:"disallowedPatterns"`
	Synonyms           []SynonymGroup   `mapstructure:"synonyms"`
	GenericKeywords    []string         `mapstructure:"genericKeywords"`
	KnownPhrases       []string         `mapstructure:"knownPhrases"`
	ShortTokens        []string         `mapstructure:"shortTokens"`
	StopWords          []string         `mapstructure:"stopWords"`
	TitleModifiers     []string         `mapstructure:"titleModifiers"`
	CategoryWeights    []CategoryWeight `mapstructure:"categoryWeights"`
	DefaultWeight      float64          `mapstructure:"defaultWeight"`
}

// CompiledGroup is a PatternGroup with its expressions compiled
type CompiledGroup struct {
	Category types.Category
	Patterns []*regexp.Regexp
}

// Rules is the compiled, read-only form of the rule tables.
// A Rules value is safe for concurrent use.
type Rules struct {
	Version         int
	Groups          []CompiledGroup
	Disallowed      []*regexp.Regexp
	Synonyms        []SynonymGroup
	GenericKeywords []string
	KnownPhrases    []string

	shortTokens    map[string]struct{}
	stopWords      map[string]struct{}
	titleModifiers map[string]struct{}
	weights        map[types.Category]float64
	defaultWeight  float64
}

var (
	defaultOnce     sync.Once
	defaultCompiled *Rules
	defaultErr      error
)

// Default returns the embedded rule tables. It panics if they fail to
// compile, which can only happen if the embedded file is broken.
func Default() *Rules {
	defaultOnce.Do(func() {
		defaultCompiled, defaultErr = Load("")
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded rule tables are invalid: %v", defaultErr))
	}
	return defaultCompiled
}

// Load reads the embedded rule tables and merges the optional override
// file on top of them. Lists in the override replace the embedded lists.
func Load(overridePath string) (*Rules, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultRules)); err != nil {
		return nil, fmt.Errorf("failed to read embedded rules: %w", err)
	}

	if overridePath != "" {
		v.SetConfigFile(overridePath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to merge rules override %s: %w", overridePath, err)
		}
	}

	var tables Tables
	if err := v.Unmarshal(&tables); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rules: %w", err)
	}

	return Compile(tables)
}

// Compile validates raw tables and compiles their expressions
func Compile(t Tables) (*Rules, error) {
	if t.Version <= 0 {
		return nil, fmt.Errorf("rules version must be positive, got %d", t.Version)
	}

	known := make(map[types.Category]bool, len(types.Categories))
	for _, c := range types.Categories {
		known[c] = true
	}

	r := &Rules{
		Version:         t.Version,
		Synonyms:        normalizeSynonyms(t.Synonyms),
		GenericKeywords: lowerAll(t.GenericKeywords),
		KnownPhrases:    lowerAll(t.KnownPhrases),
		shortTokens:     toSet(t.ShortTokens),
		stopWords:       toSet(t.StopWords),
		titleModifiers:  toSet(t.TitleModifiers),
		weights:         make(map[types.Category]float64, len(t.CategoryWeights)),
		defaultWeight:   t.DefaultWeight,
	}
	if r.defaultWeight <= 0 {
		r.defaultWeight = 1.0
	}

	for _, group := range t.CategoryPatterns {
		category := types.Category(group.Category)
		if !known[category] {
			return nil, fmt.Errorf("unknown category %q in category patterns", group.Category)
		}
		compiled := CompiledGroup{Category: category}
		for _, p := range group.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q for %s: %w", p, group.Category, err)
			}
			compiled.Patterns = append(compiled.Patterns, re)
		}
		r.Groups = append(r.Groups, compiled)
	}

	for _, p := range t.DisallowedPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid disallowed pattern %q: %w", p, err)
		}
		r.Disallowed = append(r.Disallowed, re)
	}

	for _, w := range t.CategoryWeights {
		category := types.Category(w.Category)
		if !known[category] {
			return nil, fmt.Errorf("unknown category %q in category weights", w.Category)
		}
		if w.Weight < 0 {
			return nil, fmt.Errorf("negative weight for %s", w.Category)
		}
		r.weights[category] = w.Weight
	}

	return r, nil
}

// Weight returns the scoring weight of a category
func (r *Rules) Weight(c types.Category) float64 {
	if w, ok := r.weights[c]; ok {
		return w
	}
	return r.defaultWeight
}

// IsDisallowed reports whether a keyword is a known non-skill phrase
func (r *Rules) IsDisallowed(keyword string) bool {
	for _, re := range r.Disallowed {
		if re.MatchString(keyword) {
			return true
		}
	}
	return false
}

// IsStopWord reports whether a lowercase token is a stop word
func (r *Rules) IsStopWord(token string) bool {
	_, ok := r.stopWords[token]
	return ok
}

// IsShortToken reports whether a lowercase token below the minimum
// length should still be extracted
func (r *Rules) IsShortToken(token string) bool {
	_, ok := r.shortTokens[token]
	return ok
}

// IsTitleModifier reports whether a lowercase title token is a seniority
// or level word
func (r *Rules) IsTitleModifier(token string) bool {
	_, ok := r.titleModifiers[token]
	return ok
}

func normalizeSynonyms(groups []SynonymGroup) []SynonymGroup {
	out := make([]SynonymGroup, 0, len(groups))
	for _, g := range groups {
		canonical := strings.ToLower(strings.TrimSpace(g.Canonical))
		if canonical == "" {
			continue
		}
		out = append(out, SynonymGroup{Canonical: canonical, Aliases: lowerAll(g.Aliases)})
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range lowerAll(values) {
		set[v] = struct{}{}
	}
	return set
}
