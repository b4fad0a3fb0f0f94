package common

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atsmatch/internal/ai"
	"atsmatch/internal/errors"
	"atsmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRunFileCommandWritesFormattedOutput(t *testing.T) {
	resume := writeTemp(t, "resume.txt", "Jane Doe\nGo developer")
	out := filepath.Join(t.TempDir(), "out", "report.json")

	cfg := CommandConfig{OutputFile: out, OutputFormat: "json", SupportedFormats: []string{"json", "text"}}
	var seen []InputFile
	err := RunFileCommand(context.Background(), errors.NewNop(), cfg, []string{resume},
		func(files []InputFile) (string, error) {
			seen = files
			return files[0].Content, nil
		},
		func(ctx context.Context, text string) (types.CareerAlignment, *ai.TokenUsage, error) {
			return types.CareerAlignment{OverlapPercentage: 50, Classification: types.Related},
				&ai.TokenUsage{TotalTokens: 3}, nil
		})
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, resume, seen[0].Path)
	assert.False(t, seen[0].IsJSON())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var got types.CareerAlignment
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, types.Related, got.Classification)
}

func TestRunFileCommandErrors(t *testing.T) {
	identity := func(files []InputFile) (string, error) { return files[0].Content, nil }
	noop := func(ctx context.Context, s string) (string, *ai.TokenUsage, error) { return s, nil, nil }

	t.Run("unsupported format", func(t *testing.T) {
		path := writeTemp(t, "job.txt", "Go")
		err := RunFileCommand(context.Background(), nil,
			CommandConfig{OutputFormat: "xml", SupportedFormats: []string{"json"}},
			[]string{path}, identity, noop)
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrCodeInvalidFormat, appErr.Code)
	})

	t.Run("file too large", func(t *testing.T) {
		path := writeTemp(t, "job.txt", strings.Repeat("x", 100))
		err := RunFileCommand(context.Background(), nil,
			CommandConfig{OutputFormat: "json", MaxFileSize: 10},
			[]string{path}, identity, noop)
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
		assert.Equal(t, path, appErr.Context["filename"])
	})

	t.Run("operation error is returned unchanged", func(t *testing.T) {
		path := writeTemp(t, "job.txt", "Go")
		want := errors.NewAIError(errors.ErrCodeAIServer, "down", nil)
		err := RunFileCommand(context.Background(), nil, CommandConfig{OutputFormat: "json"},
			[]string{path}, identity,
			func(ctx context.Context, s string) (string, *ai.TokenUsage, error) { return "", nil, want })
		assert.Same(t, want, err)
	})
}

func TestHandleOutputToWriter(t *testing.T) {
	var buf bytes.Buffer
	h := NewOutputHandler(nil).WithWriter(&buf)

	set := types.NewJobKeywordSet()
	set.Set(types.CategoryTools, []string{"Docker"})
	require.NoError(t, h.HandleOutput(set, CommandConfig{OutputFormat: "text"}))
	assert.Contains(t, buf.String(), "tools: Docker")
}

func TestReadFileNotFound(t *testing.T) {
	_, err := NewFileProcessor(nil, 0).ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeFileNotFound, appErr.Code)
}
