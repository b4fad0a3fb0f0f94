package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"atsmatch/internal/ai"
	"atsmatch/internal/analysis"
	"atsmatch/internal/common"
	"atsmatch/internal/errors"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume-file] [job-description-file]",
	Short: "Score a resume, optionally against a job description",
	Long: `Score a resume against general ATS best practices. When a job
description file is given, the resume is also scored against the job's
keywords and the report includes per-category found and missing keywords.

A resume file ending in .json is read as a structured resume document.
Any other file is treated as free text and structured first.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return applyOutputDefaults(cmd, &scoreConfig)
	},
	RunE: runScore,
}

var (
	scoreConfig          common.CommandConfig
	scoreTitle           string
	scoreCurrentPosition string
)

func init() {
	bindOutputFlags(scoreCmd, &scoreConfig)
	scoreCmd.Flags().StringVarP(&scoreTitle, "title", "t", "", "Target job title")
	scoreCmd.Flags().StringVar(&scoreCurrentPosition, "current-position", "",
		"Current job title (default: taken from the resume)")
}

// scoreInput is a scoring request plus the free text to structure first,
// if the resume was not already structured
type scoreInput struct {
	request    analysis.Request
	rawText    string
	structured bool
}

func buildScoreInput(files []common.InputFile, title, currentPosition string) (scoreInput, error) {
	in := scoreInput{request: analysis.Request{
		JobTitle:        title,
		CurrentPosition: currentPosition,
	}}
	if len(files) == 2 {
		in.request.JobDescription = files[1].Content
	}

	resume := files[0]
	if !resume.IsJSON() {
		in.rawText = resume.Content
		return in, nil
	}

	in.structured = true
	var doc types.ResumeDocument
	if err := json.Unmarshal([]byte(resume.Content), &doc); err != nil {
		return scoreInput{}, errors.NewParseError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Resume file %s is not a valid resume document", resume.Path), err)
	}
	doc.EnsureCollections()
	in.request.Resume = doc
	return in, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger := getLoggerFromContext(cmd.Context())

	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.close()

	buildInput := func(files []common.InputFile) (scoreInput, error) {
		return buildScoreInput(files, scoreTitle, scoreCurrentPosition)
	}

	score := func(ctx context.Context, in scoreInput) (*types.ATSScoreReport, *ai.TokenUsage, error) {
		logger.Info("Starting resume scoring",
			"structured", in.structured,
			"with_job", in.request.JobDescription != "",
			"output_format", scoreConfig.OutputFormat)
		if !in.structured {
			report, err := eng.service.ScoreText(ctx, in.rawText, in.request)
			return report, nil, err
		}
		report, err := eng.service.Score(ctx, in.request)
		return report, nil, err
	}

	if err := common.RunFileCommand(cmd.Context(), logger, scoreConfig, args, buildInput, score); err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}
	return nil
}
