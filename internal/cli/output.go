package cli

import (
	"strings"

	"atsmatch/internal/common"
	"atsmatch/internal/formatters"

	"github.com/spf13/cobra"
)

// bindOutputFlags registers the --output and --format flags shared by the
// commands that print a result
func bindOutputFlags(cmd *cobra.Command, cc *common.CommandConfig) {
	cmd.Flags().StringVarP(&cc.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cc.OutputFormat, "format", "", "Output format: "+strings.Join(formatters.GlobalRegistry.GetSupportedFormats(), ", "))

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

// applyOutputDefaults fills the format and file limits from the loaded
// configuration and rejects unsupported formats before any work is done
func applyOutputDefaults(cmd *cobra.Command, cc *common.CommandConfig) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	if cc.OutputFormat == "" {
		cc.OutputFormat = cfg.App.DefaultFormat
	}
	cc.SupportedFormats = cfg.App.SupportedFormats
	cc.MaxFileSize = cfg.App.MaxFileSize
	return common.ValidateOutputFormat(cc.OutputFormat, cc.SupportedFormats)
}
