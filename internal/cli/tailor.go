package cli

import (
	"context"
	"fmt"
	"strings"

	"resumeforge/internal/common"
	"resumeforge/internal/errors"
	"resumeforge/internal/export"
	"resumeforge/internal/observability"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor [resume-file] [job-file]",
	Short: "Tailor a resume for a specific job posting",
	Long: `Tailor your resume for a specific job posting using AI.

The resume file may be structured (JSON or YAML) or a document (PDF, DOCX,
TXT or MD) that is parsed first. The job posting comes from a JSON or YAML
job description file, a plain text posting file, --job-url or --job-text.

The run generates a draft, checks it against ATS rules, reviews it against
the posting and revises it until no issues remain or workflow.maxIterations
is reached. Use --export to also write the result as PDF or DOCX.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyDefaultFormat(cmd, &tailorConfig); err != nil {
			return err
		}
		sources := 0
		if len(args) == 2 {
			sources++
		}
		if tailorJobURL != "" {
			sources++
		}
		if tailorJobText != "" {
			sources++
		}
		if sources != 1 {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"give exactly one of a job file, --job-url or --job-text", nil)
		}
		if tailorExport != "" {
			return checkExportFormat(tailorExport)
		}
		return nil
	},
	RunE: runTailor,
}

var (
	tailorConfig    common.CommandConfig
	tailorJobURL    string
	tailorJobText   string
	tailorExport    string
	tailorExportDir string
)

func init() {
	addOutputFlags(tailorCmd, &tailorConfig)
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "Fetch and parse the job posting at this URL")
	tailorCmd.Flags().StringVar(&tailorJobText, "job-text", "", "Parse this job posting text")
	tailorCmd.Flags().StringVar(&tailorExport, "export", "", "Also export the tailored resume: pdf or docx")
	tailorCmd.Flags().StringVar(&tailorExportDir, "export-dir", "", "Directory for exported documents (default from config)")
}

func runTailor(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	err := withRunner(cmd, func(runner *common.CommandRunner) error {
		req := types.TailorRequest{JobURL: tailorJobURL, JobText: tailorJobText}
		if len(args) == 2 {
			fromFile, err := runner.Files.LoadJobRequest(args[1])
			if err != nil {
				return err
			}
			req = fromFile
		}

		return common.RunPipelineCommand(cmd.Context(), runner, tailorConfig, "tailor",
			func(ctx context.Context, p *common.Pipeline) (types.TailorResult, error) {
				base, err := runner.Files.LoadResume(ctx, args[0], p)
				if err != nil {
					return types.TailorResult{}, err
				}
				job, err := p.ResolveJob(ctx, req)
				if err != nil {
					return types.TailorResult{}, err
				}

				logger.Info("Starting resume tailoring",
					"full_name", base.FullName,
					"job_title", job.JobTitle,
					"output_format", tailorConfig.OutputFormat)

				result, err := p.Tailor(ctx, base, job)
				if err != nil {
					return result, err
				}

				if tailorExport != "" {
					dir := tailorExportDir
					if dir == "" {
						dir = runner.Config.Export.OutputDir
					}
					path, err := export.Save(dir, result.Resume, tailorExport)
					p.Obs.RecordBusinessMetric(ctx, observability.MetricResumeExported, err == nil)
					if err != nil {
						return result, err
					}
					logger.Info("Tailored resume exported", "file", path)
				}
				return result, nil
			})
	})
	if err != nil {
		return fmt.Errorf("failed to tailor resume: %w", err)
	}
	logger.Info("Resume tailoring completed successfully")
	return nil
}

func checkExportFormat(format string) error {
	switch strings.ToLower(format) {
	case export.FormatPDF, export.FormatDOCX:
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported export format '%s' (supported: pdf, docx)", format), nil)
}
