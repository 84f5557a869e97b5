package cli

import (
	"context"
	"fmt"

	"resumeforge/internal/common"
	"resumeforge/internal/observability"
	"resumeforge/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume tailoring",
	Long: `Start an HTTP server that exposes the tailoring pipeline as a REST API.

Available endpoints:
- POST /tailor: Tailor a resume for a job description, URL or posting text
- POST /parse-job: Parse a job posting from a URL or text
- POST /parse-resume: Parse resume text into a structured resume
- POST /export: Render a resume as PDF or DOCX
- GET /runs, GET /runs/{id}: Tailoring run history (requires store.enabled)
- GET /health: Health check with per-operation model status
- GET /stats: Server statistics and rate limiting info

Prompt files are reloaded on change when server.promptWatch.enabled is set.
API keys stored in Vault are refreshed when server.secretRefresh.enabled is set.`,
	RunE: runServe,
}

var (
	servePort string
	serveHost string
)

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger := getLoggerFromContext(cmd.Context())

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		if err := om.Shutdown(context.WithoutCancel(cmd.Context())); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	pipeline, err := common.NewPipeline(cfg, logger, om)
	if err != nil {
		return err
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.LogError(err, "Failed to close pipeline")
		}
	}()

	srv := server.NewServer(cfg, server.ServerConfigFrom(cfg, Version), pipeline, logger)
	return srv.Start(cmd.Context(), om)
}
