package cli

import (
	"fmt"

	"resumeforge/internal/common"
	"resumeforge/internal/errors"
	"resumeforge/internal/store"
	"resumeforge/internal/types"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recent tailoring runs",
	Long: `List recent tailoring runs recorded in the run history database, newest
first. Give a run id to show that run including its tailored resume.

Run history is recorded only when store.enabled is true.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return applyDefaultFormat(cmd, &historyConfig)
	},
	RunE: runHistory,
}

var (
	historyConfig common.CommandConfig
	historyLimit  int
)

func init() {
	addOutputFlags(historyCmd, &historyConfig)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", store.DefaultListLimit, "Maximum number of runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	if !cfg.Store.Enabled {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"run history is disabled (set store.enabled=true)", nil)
	}

	// History needs only the database, not the AI backends.
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	output := common.NewOutputHandler(getLoggerFromContext(cmd.Context())).WithWriter(cmd.OutOrStdout())
	ctx := cmd.Context()

	if len(args) == 1 {
		rec, err := db.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}
		if historyConfig.OutputFormat == "json" || historyConfig.OutputFormat == "yaml" {
			return output.HandleOutput(rec, historyConfig)
		}
		return output.HandleOutput([]types.RunRecord{rec}, historyConfig)
	}

	runs, err := db.List(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return output.HandleOutput(runs, historyConfig)
}
