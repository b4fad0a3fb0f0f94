package cli

import (
	"atsmatch/internal/alignment"
	"atsmatch/internal/common"
	"atsmatch/internal/errors"
	"atsmatch/internal/rules"

	"github.com/spf13/cobra"
)

var alignCmd = &cobra.Command{
	Use:   "align [current-position] [target-title]",
	Short: "Classify how closely two job titles align",
	Long: `Compare a current position with a target job title by their
significant words and classify the move as CareerChange, SomewhatRelated,
Related or HighlyAligned. No model call is made.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return applyOutputDefaults(cmd, &alignConfig)
	},
	RunE: runAlign,
}

var alignConfig common.CommandConfig

func init() {
	bindOutputFlags(alignCmd, &alignConfig)
}

func runAlign(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger := getLoggerFromContext(cmd.Context())

	r, err := rules.Load(cfg.Rules.OverrideFile)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to load rule tables", err)
	}

	result := alignment.NewClassifier(r).Classify(args[0], args[1])
	logger.Debug("Titles classified",
		"overlap", result.OverlapPercentage,
		"classification", result.Classification)

	return common.NewOutputHandler(logger).
		WithWriter(cmd.OutOrStdout()).
		HandleOutput(result, alignConfig)
}
