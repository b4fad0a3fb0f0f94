package cli

import (
	"context"

	"atsmatch/internal/config"
	"atsmatch/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "atsmatch",
	Short: "Score resumes the way applicant tracking systems do",
	Long: `atsmatch scores a resume against general ATS best practices and,
optionally, against a specific job posting. It extracts categorized keywords
from job descriptions, structures free-text resumes and reports where a
resume falls short with prioritized feedback.`,
	SilenceUsage: true,
}

// Execute runs the root command with cfg and logger attached to ctx
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok && cfg != nil {
		return cfg, nil
	}
	return nil, errors.NewInternalError(errors.ErrCodeInvalidConfig, "Configuration not found in command context", nil)
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok && logger != nil {
		return logger
	}
	return errors.NewNop()
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(alignCmd)
	rootCmd.AddCommand(versionCmd)
}
