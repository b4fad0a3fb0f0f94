package rules

import (
	"os"
	"path/filepath"
	"testing"

	"atsmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesLoad(t *testing.T) {
	r := Default()

	assert.Positive(t, r.Version)
	assert.Len(t, r.GenericKeywords, 10)
	require.Len(t, r.Groups, 4)

	order := []types.Category{
		types.CategoryCertificates,
		types.CategoryTechnicalSkills,
		types.CategoryTools,
		types.CategorySoftSkills,
	}
	for i, c := range order {
		assert.Equal(t, c, r.Groups[i].Category, "group %d", i)
		assert.NotEmpty(t, r.Groups[i].Patterns)
	}
}

func TestWeights(t *testing.T) {
	r := Default()

	tests := []struct {
		category types.Category
		want     float64
	}{
		{types.CategoryTechnicalSkills, 1.5},
		{types.CategoryIndustryTerms, 1.5},
		{types.CategoryTools, 1.3},
		{types.CategoryEducation, 0.6},
		{types.CategorySoftSkills, 0.8},
		{types.Category("unlisted"), 1.0},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.InDelta(t, tt.want, r.Weight(tt.category), 1e-9)
		})
	}
}

func TestIsDisallowed(t *testing.T) {
	r := Default()

	disallowed := []string{
		"experience with Python",
		"Knowledge of accounting",
		"5+ years",
		"3 years of experience",
		"Degree in Computer Science",
		"Bachelor's degree in Finance",
		"fast-paced environment",
		"team player",
		"ability to travel",
	}
	for _, kw := range disallowed {
		assert.True(t, r.IsDisallowed(kw), kw)
	}

	allowed := []string{"Python", "Project Management", "AWS Certified Solutions Architect", "Communication"}
	for _, kw := range allowed {
		assert.False(t, r.IsDisallowed(kw), kw)
	}
}

func TestLookupSets(t *testing.T) {
	r := Default()

	assert.True(t, r.IsStopWord("the"))
	assert.False(t, r.IsStopWord("python"))
	assert.True(t, r.IsShortToken("go"))
	assert.True(t, r.IsShortToken("c#"))
	assert.True(t, r.IsTitleModifier("senior"))
	assert.False(t, r.IsTitleModifier("engineer"))
}

func TestLoadWithOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	override := `version: 4
genericKeywords: [alpha, beta]
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0600))

	r, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, r.Version)
	assert.Equal(t, []string{"alpha", "beta"}, r.GenericKeywords)
	// untouched tables keep their embedded values
	assert.NotEmpty(t, r.Synonyms)
}

func TestCompileRejectsBadTables(t *testing.T) {
	tests := []struct {
		name   string
		tables Tables
	}{
		{
			name:   "missing version",
			tables: Tables{},
		},
		{
			name: "unknown category",
			tables: Tables{Version: 1, CategoryPatterns: []PatternGroup{
				{Category: "hobbies", Patterns: []string{"chess"}},
			}},
		},
		{
			name: "invalid pattern",
			tables: Tables{Version: 1, CategoryPatterns: []PatternGroup{
				{Category: "tools", Patterns: []string{"("}},
			}},
		},
		{
			name: "negative weight",
			tables: Tables{Version: 1, CategoryWeights: []CategoryWeight{
				{Category: "tools", Weight: -1},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.tables)
			assert.Error(t, err)
		})
	}
}
