package cli

import (
	"context"
	"fmt"

	"atsmatch/internal/ai"
	"atsmatch/internal/common"
	"atsmatch/internal/types"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [job-description-file]",
	Short: "Extract categorized keywords from a job description",
	Long: `Extract the keywords an applicant tracking system would look for in a
job description, grouped into technical skills, soft skills, tools,
methodologies, requirements, certificates, education, industry terms and
job functions. The language model does the categorization; when it fails,
a pattern-based categorizer takes over.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return applyOutputDefaults(cmd, &keywordsConfig)
	},
	RunE: runKeywords,
}

var (
	keywordsConfig common.CommandConfig
	keywordsTitle  string
)

func init() {
	bindOutputFlags(keywordsCmd, &keywordsConfig)
	keywordsCmd.Flags().StringVarP(&keywordsTitle, "title", "t", "", "Job title")
}

func runKeywords(cmd *cobra.Command, args []string) error {
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

	categorize := func(ctx context.Context, description string) (types.JobKeywordSet, *ai.TokenUsage, error) {
		logger.Info("Starting keyword extraction",
			"job_chars", len(description),
			"output_format", keywordsConfig.OutputFormat)
		outcome, err := eng.categorizer.CategorizeWithSource(ctx, keywordsTitle, description)
		return outcome.Keywords, outcome.Usage, err
	}

	if err := common.RunFileCommand(cmd.Context(), logger, keywordsConfig, args, buildInput, categorize); err != nil {
		return fmt.Errorf("failed to extract keywords: %w", err)
	}
	return nil
}
