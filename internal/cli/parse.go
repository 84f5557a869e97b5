package cli

import (
	"context"
	"fmt"

	"resumeforge/internal/common"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var parseJobCmd = &cobra.Command{
	Use:   "parse-job [job-file]",
	Short: "Parse a job posting into a structured job description",
	Long: `Parse a job posting into a structured job description with the job
poster, title, required skills, tasks and profile.

The posting comes from a text file argument, --url or --text. Web pages are
fetched politely, stripped of navigation and scripts, split into chunks and
parsed chunk by chunk before the results are merged.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyDefaultFormat(cmd, &parseJobConfig); err != nil {
			return err
		}
		sources := len(args)
		if parseJobURL != "" {
			sources++
		}
		if parseJobText != "" {
			sources++
		}
		if sources != 1 {
			return errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"give exactly one of a job file, --url or --text", nil)
		}
		return nil
	},
	RunE: runParseJob,
}

var (
	parseJobConfig common.CommandConfig
	parseJobURL    string
	parseJobText   string
)

func init() {
	addOutputFlags(parseJobCmd, &parseJobConfig)
	parseJobCmd.Flags().StringVar(&parseJobURL, "url", "", "Fetch and parse the job posting at this URL")
	parseJobCmd.Flags().StringVar(&parseJobText, "text", "", "Parse this job posting text")
}

func runParseJob(cmd *cobra.Command, args []string) error {
	err := withRunner(cmd, func(runner *common.CommandRunner) error {
		req := types.TailorRequest{JobURL: parseJobURL, JobText: parseJobText}
		if len(args) == 1 {
			fromFile, err := runner.Files.LoadJobRequest(args[0])
			if err != nil {
				return err
			}
			req = fromFile
		}

		return common.RunPipelineCommand(cmd.Context(), runner, parseJobConfig, "parse-job",
			func(ctx context.Context, p *common.Pipeline) (types.JobRequirement, error) {
				return p.ResolveJob(ctx, req)
			})
	})
	if err != nil {
		return fmt.Errorf("failed to parse job posting: %w", err)
	}
	return nil
}

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume [resume-file]",
	Short: "Parse a resume document into a structured resume",
	Long: `Parse a PDF, DOCX, TXT or MD resume into the structured resume format
used by the tailor command.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return applyDefaultFormat(cmd, &parseResumeConfig)
	},
	RunE: runParseResume,
}

var parseResumeConfig common.CommandConfig

func init() {
	addOutputFlags(parseResumeCmd, &parseResumeConfig)
}

func runParseResume(cmd *cobra.Command, args []string) error {
	err := withRunner(cmd, func(runner *common.CommandRunner) error {
		return common.RunPipelineCommand(cmd.Context(), runner, parseResumeConfig, "parse-resume",
			func(ctx context.Context, p *common.Pipeline) (types.CandidateResume, error) {
				return runner.Files.LoadResume(ctx, args[0], p)
			})
	})
	if err != nil {
		return fmt.Errorf("failed to parse resume: %w", err)
	}
	return nil
}
