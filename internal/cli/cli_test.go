package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"atsmatch/internal/common"
	"atsmatch/internal/config"
	"atsmatch/internal/errors"
	"atsmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{
		DefaultFormat:    "json",
		SupportedFormats: []string{"json", "text", "markdown"},
	}}
}

func TestBuildScoreInputStructuredResume(t *testing.T) {
	files := []common.InputFile{
		{Path: "resume.json", Content: `{"personalInfo": {"fullName": "Jane Doe"}, "workExperience": [{"position": "Engineer"}]}`},
		{Path: "job.txt", Content: "We need Go."},
	}
	in, err := buildScoreInput(files, "Backend Engineer", "")
	require.NoError(t, err)

	assert.True(t, in.structured)
	assert.Empty(t, in.rawText)
	assert.Equal(t, "Jane Doe", in.request.Resume.PersonalInfo.FullName)
	assert.NotNil(t, in.request.Resume.Education)
	assert.NotNil(t, in.request.Resume.WorkExperience[0].Achievements)
	assert.Equal(t, "We need Go.", in.request.JobDescription)
	assert.Equal(t, "Backend Engineer", in.request.JobTitle)
}

func TestBuildScoreInputFreeText(t *testing.T) {
	in, err := buildScoreInput([]common.InputFile{{Path: "resume.txt", Content: "Jane Doe"}}, "", "Chef")
	require.NoError(t, err)
	assert.False(t, in.structured)
	assert.Equal(t, "Jane Doe", in.rawText)
	assert.Empty(t, in.request.JobDescription)
	assert.Equal(t, "Chef", in.request.CurrentPosition)
}

func TestBuildScoreInputInvalidJSON(t *testing.T) {
	_, err := buildScoreInput([]common.InputFile{{Path: "resume.json", Content: "{"}}, "", "")
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrorTypeParse, appErr.Type)
}

func TestAlignCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"align", "Software Engineer", "Senior Software Engineer"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute(context.Background(), testConfig(), errors.NewNop()))

	var got types.CareerAlignment
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, types.HighlyAligned, got.Classification)
	assert.Equal(t, 100.0, got.OverlapPercentage)
}

func TestGetConfigFromContextMissing(t *testing.T) {
	_, err := getConfigFromContext(context.Background())
	assert.Error(t, err)
	assert.NotNil(t, getLoggerFromContext(context.Background()))
}
