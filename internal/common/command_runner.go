package common

import (
	"context"
	"fmt"

	"atsmatch/internal/ai"
	"atsmatch/internal/errors"
)

// BuildInputFunc turns the contents of the command's input files into the
// operation input
type BuildInputFunc[Input any] func(files []InputFile) (Input, error)

// OperationFunc runs one engine operation. Usage is nil when no model call
// was made.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, *ai.TokenUsage, error)

// RunFileCommand reads the given files, builds the operation input, runs
// the operation and writes its formatted result
func RunFileCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	paths []string,
	buildInput BuildInputFunc[Input],
	operation OperationFunc[Input, Output],
) error {
	if logger == nil {
		logger = errors.NewNop()
	}
	fileProcessor := NewFileProcessor(logger, cmdConfig.MaxFileSize)
	outputHandler := NewOutputHandler(logger)

	if err := ValidateOutputFormat(cmdConfig.OutputFormat, cmdConfig.SupportedFormats); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil)
	}

	files, err := fileProcessor.ValidateAndReadFiles(paths...)
	if err != nil {
		return err
	}

	input, err := buildInput(files)
	if err != nil {
		return fmt.Errorf("failed to build input from files: %w", err)
	}

	result, usage, err := operation(ctx, input)
	if err != nil {
		return err
	}

	if usage != nil {
		logger.Info("AI token usage",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total_tokens", usage.TotalTokens)
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
