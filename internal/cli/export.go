package cli

import (
	"context"
	"fmt"
	"strings"

	"resumeforge/internal/common"
	"resumeforge/internal/export"
	"resumeforge/internal/observability"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [resume-file]",
	Short: "Export a structured resume as PDF or DOCX",
	Long: `Export a JSON or YAML resume as a PDF or Word document.

The document is written to --output, or to <Full_Name>_resume.<format> in
--dir (default export.outputDir).`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkExportFormat(exportFormat)
	},
	RunE: runExport,
}

var (
	exportFormat string
	exportOutput string
	exportDir    string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatPDF, "Document format: pdf or docx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (default from config)")

	_ = exportCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{export.FormatPDF, export.FormatDOCX}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	format := strings.ToLower(exportFormat)

	err := withRunner(cmd, func(runner *common.CommandRunner) error {
		resume, err := runner.Files.LoadResume(cmd.Context(), args[0], nil)
		if err != nil {
			return err
		}

		path := exportOutput
		if path == "" {
			dir := exportDir
			if dir == "" {
				dir = runner.Config.Export.OutputDir
			}
			path, err = export.Save(dir, resume, format)
		} else {
			var data []byte
			data, err = export.Render(resume, format)
			if err == nil {
				err = runner.Output.WriteDocument(path, data)
			}
		}
		if runner.Obs != nil {
			runner.Obs.RecordBusinessMetric(context.WithoutCancel(cmd.Context()), observability.MetricResumeExported, err == nil)
		}
		if err != nil {
			return err
		}

		logger.Info("Resume exported", "file", path, "format", format)
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to export resume: %w", err)
	}
	return nil
}
