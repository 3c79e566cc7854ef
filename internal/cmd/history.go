package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/firstrun/internal/config"
	"github.com/harrison/firstrun/internal/history"
)

// NewHistoryCommand creates the history command group
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded audit runs",
		Long: `Inspect the local history of completed audit runs.

Runs are recorded in a SQLite database under the firstrun home directory
($FIRSTRUN_HOME, defaulting to ~/.firstrun).`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryPruneCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded audit runs, newest first",
		RunE:  historyListCommand,
	}

	cmd.Flags().String("target", "", "Only show runs for this target path")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")

	return cmd
}

func newHistoryPruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete run records older than the retention window",
		RunE:  historyPruneCommand,
	}

	cmd.Flags().Int("keep-days", 0, "Retention window in days (default: config keep_days)")

	return cmd
}

func historyListCommand(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	target, _ := cmd.Flags().GetString("target")
	limit, _ := cmd.Flags().GetInt("limit")

	runs, err := store.List(cmd.Context(), target, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No recorded runs.\n")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-20s  %-5s  %-5s  %-5s  %-10s  %s\n",
		"WHEN", "SCORE", "GRADE", "FLAGS", "VALIDATION", "TARGET")
	for _, run := range runs {
		fmt.Fprintf(w, "%-20s  %-5.1f  %-5s  %-5d  %-10s  %s\n",
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Score, run.Grade, run.RedFlagCount, run.ValidationStatus, run.Target)
	}

	return nil
}

func historyPruneCommand(cmd *cobra.Command, args []string) error {
	keepDays, _ := cmd.Flags().GetInt("keep-days")
	if !cmd.Flags().Changed("keep-days") {
		cfg, err := config.LoadConfigFromDir(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		keepDays = cfg.History.KeepDays
	}
	if keepDays <= 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Retention is unlimited, nothing to prune.\n")
		return nil
	}

	store, err := openHistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	pruned, err := store.Prune(cmd.Context(), keepDays)
	if err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d run(s) older than %d day(s).\n", pruned, keepDays)
	return nil
}

// openHistoryStore opens the history database under the firstrun home,
// failing cleanly when the home directory cannot be resolved. A missing
// database file is not an error; the store creates an empty one.
func openHistoryStore() (*history.Store, error) {
	dbPath, err := config.GetHistoryDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve history database: %w", err)
	}
	return history.NewStore(dbPath)
}
