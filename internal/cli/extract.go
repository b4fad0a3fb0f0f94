package cli

import (
	"context"
	"fmt"

	"atsmatch/internal/ai"
	"atsmatch/internal/common"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [resume-file]",
	Short: "Convert a free-text resume into a structured resume document",
	Long: `Convert a free-text resume into a structured resume document with
personal info, work experience, education, skills, certifications and
projects. Extraction strategies are tried in the configured order; if all
of them fail, a placeholder document with an explanatory note is printed.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return applyOutputDefaults(cmd, &extractConfig)
	},
	RunE: runExtract,
}

var extractConfig common.CommandConfig

func init() {
	bindOutputFlags(extractCmd, &extractConfig)
}

func runExtract(cmd *cobra.Command, args []string) error {
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

	buildInput := func(files []common.InputFile) (string, error) {
		return files[0].Content, nil
	}

	extract := func(ctx context.Context, resume string) (types.ResumeDocument, *ai.TokenUsage, error) {
		logger.Info("Starting resume extraction",
			"resume_chars", len(resume),
			"strategies", cfg.Extraction.Strategies)
		return eng.extractor.Extract(ctx, resume), nil, nil
	}

	if err := common.RunFileCommand(cmd.Context(), logger, extractConfig, args, buildInput, extract); err != nil {
		return fmt.Errorf("failed to extract resume: %w", err)
	}
	return nil
}
