package common

import (
	"context"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/observability"
)

// CommandRunner carries what every CLI command needs to drive the pipeline.
type CommandRunner struct {
	Config *config.Config
	Logger *errors.Logger
	Obs    *observability.ObservabilityManager
	Files  *FileProcessor
	Output *OutputHandler
}

// NewCommandRunner creates a runner. obs may be nil.
func NewCommandRunner(cfg *config.Config, logger *errors.Logger, obs *observability.ObservabilityManager) *CommandRunner {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &CommandRunner{
		Config: cfg,
		Logger: logger,
		Obs:    obs,
		Files:  NewFileProcessor(logger, cfg.App.MaxFileSize),
		Output: NewOutputHandler(logger),
	}
}

// PipelineOperation is one command's work against a ready pipeline.
type PipelineOperation[Output any] func(context.Context, *Pipeline) (Output, error)

// RunPipelineCommand validates the output format, builds the pipeline, runs
// op and writes its result. The pipeline is closed before returning.
func RunPipelineCommand[Output any](
	ctx context.Context,
	runner *CommandRunner,
	cmdConfig CommandConfig,
	operation string,
	op PipelineOperation[Output],
) error {
	if err := ValidateOutputFormat(cmdConfig.OutputFormat, runner.Config.App.SupportedFormats); err != nil {
		return err
	}

	pipeline, err := NewPipeline(runner.Config, runner.Logger, runner.Obs)
	if err != nil {
		return err
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			runner.Logger.Warn("Failed to close pipeline", "error", err)
		}
	}()

	start := time.Now()
	result, err := op(ctx, pipeline)
	runner.Logger.Debug("Command finished",
		"operation", operation,
		"duration", time.Since(start).String(),
		"success", err == nil)
	if err != nil {
		return err
	}

	return runner.Output.HandleOutput(result, cmdConfig)
}
