package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/firstrun/internal/config"
	"github.com/harrison/firstrun/internal/executor"
	"github.com/harrison/firstrun/internal/gate"
	"github.com/harrison/firstrun/internal/history"
	"github.com/harrison/firstrun/internal/logger"
	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/runner"
	"github.com/harrison/firstrun/internal/validation"
)

// NewAuditCommand creates the audit command
func NewAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <target-directory>",
		Short: "Audit a CLI tool from a fresh user's perspective",
		Long: `Audit the tool in the given directory as a brand-new user would.

The audit runs six phases in order: first impressions (documentation
scan), installation, functionality probing, claim verification, error
handling, and static analysis. Results aggregate into a 0-10 score and
a letter grade. Red flags found anywhere subtract from the score.

Configuration is loaded from .firstrun/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  # Basic audit
  firstrun audit ./my-tool

  # Audit with the validation pipeline and a JSON report
  firstrun audit --validate --output report.json ./my-tool

  # Other options
  firstrun audit --verbose ./my-tool             # Show detailed progress
  firstrun audit --log-dir ./logs ./my-tool      # Use custom log directory
  firstrun audit --config custom.yaml ./my-tool  # Use custom config file
  firstrun audit --tier pro --validate ./my-tool # Label the run with a plan tier`,
		Args: cobra.ExactArgs(1),
		RunE: auditCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .firstrun/config.yaml)")
	cmd.Flags().StringP("output", "o", "", "Write the full session report as JSON to this path")
	cmd.Flags().Bool("validate", false, "Run the three-cycle validation pipeline on the results")
	cmd.Flags().String("tier", "", "Plan tier label echoed into the report")
	cmd.Flags().Bool("verbose", false, "Show detailed progress information")
	cmd.Flags().String("context", "", "Free-text domain context passed through to the report")
	cmd.Flags().String("log-level", "", "Log verbosity (trace, debug, info, warn, error)")
	cmd.Flags().String("log-dir", "", "Directory for run log files")
	cmd.Flags().String("claude-path", "", "Claude CLI binary used by the validation pipeline")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history database")

	return cmd
}

// auditCommand implements the audit command logic
func auditCommand(cmd *cobra.Command, args []string) error {
	target := args[0]

	// Load configuration from file
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Build flag pointers for merge (only explicitly set values)
	var logLevelPtr, logDirPtr, claudePathPtr *string
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &v
	}
	if cmd.Flags().Changed("claude-path") {
		v, _ := cmd.Flags().GetString("claude-path")
		claudePathPtr = &v
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.MergeWithFlags(logLevelPtr, logDirPtr, claudePathPtr)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logLevel := cfg.LogLevel
	if verbose {
		logLevel = "debug"
	}

	outputPath, _ := cmd.Flags().GetString("output")
	validate, _ := cmd.Flags().GetBool("validate")
	tier, _ := cmd.Flags().GetString("tier")
	domainContext, _ := cmd.Flags().GetString("context")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	// Console logger for real-time progress, file logger for the run log
	consoleLog := logger.NewConsoleLogger(cmd.OutOrStdout(), logLevel)
	fileLog, err := logger.NewFileLogger(cfg.LogDir, logLevel)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer fileLog.Close()

	multiLog := &multiLogger{loggers: []logger.Logger{consoleLog, fileLog}}

	decision := gate.Unrestricted()
	decision.Tier = tier

	orch := executor.NewOrchestrator(executor.Options{
		Logger:           multiLog,
		Agent:            reviewAgent(cfg, multiLog, validate),
		Gate:             &decision,
		Timeouts:         cfg.Timeouts,
		PersistArtifacts: validate,
	})

	auditCfg := models.AuditConfig{
		OutputPath:    outputPath,
		Validate:      validate,
		Tier:          tier,
		Verbose:       verbose,
		DomainContext: domainContext,
	}

	start := time.Now()
	session, err := orch.Run(cmd.Context(), target, auditCfg)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}
	elapsed := time.Since(start)

	// History recording is best effort; a broken database never fails the
	// audit that just completed.
	if cfg.History.Enabled && !noHistory {
		if err := recordRun(cmd.Context(), cfg, session, elapsed); err != nil {
			multiLog.LogWarn(fmt.Sprintf("could not record run history: %v", err))
		}
	}

	if outputPath != "" {
		if err := writeReport(outputPath, session); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to: %s\n", outputPath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logs written to: %s\n", fileLog.Path())
	return nil
}

// reviewAgent picks the validation backend. Without the Claude CLI on the
// search path the offline stub keeps the pipeline deterministic instead of
// burning all three cycles on fallbacks.
func reviewAgent(cfg *config.Config, log logger.Logger, validate bool) validation.Agent {
	if !validate {
		return nil
	}
	if !runner.Available(cfg.ClaudePath) {
		log.LogWarn(fmt.Sprintf(
			"claude CLI %q not found, validation will use the offline reviewer", cfg.ClaudePath))
		return validation.StubAgent{}
	}
	agent := validation.NewClaudeAgent()
	agent.Invoker.ClaudePath = cfg.ClaudePath
	agent.Invoker.Timeout = 2 * time.Minute
	return agent
}

// recordRun persists the completed session and applies the retention policy.
func recordRun(ctx context.Context, cfg *config.Config, session *models.AuditSession, elapsed time.Duration) error {
	dbPath, err := config.GetHistoryDBPath()
	if err != nil {
		return err
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Record(ctx, session, elapsed); err != nil {
		return err
	}
	if cfg.History.KeepDays > 0 {
		if _, err := store.Prune(ctx, cfg.History.KeepDays); err != nil {
			return err
		}
	}
	return nil
}

// writeReport marshals the session to an indented JSON file.
func writeReport(path string, session *models.AuditSession) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// multiLogger implements logger.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []logger.Logger
}

// LogTrace forwards to all loggers
func (ml *multiLogger) LogTrace(message string) {
	for _, l := range ml.loggers {
		l.LogTrace(message)
	}
}

// LogDebug forwards to all loggers
func (ml *multiLogger) LogDebug(message string) {
	for _, l := range ml.loggers {
		l.LogDebug(message)
	}
}

// LogInfo forwards to all loggers
func (ml *multiLogger) LogInfo(message string) {
	for _, l := range ml.loggers {
		l.LogInfo(message)
	}
}

// LogWarn forwards to all loggers
func (ml *multiLogger) LogWarn(message string) {
	for _, l := range ml.loggers {
		l.LogWarn(message)
	}
}

// LogError forwards to all loggers
func (ml *multiLogger) LogError(message string) {
	for _, l := range ml.loggers {
		l.LogError(message)
	}
}

// LogPhaseStart forwards to all loggers
func (ml *multiLogger) LogPhaseStart(phase models.PhaseName) {
	for _, l := range ml.loggers {
		l.LogPhaseStart(phase)
	}
}

// LogPhaseComplete forwards to all loggers
func (ml *multiLogger) LogPhaseComplete(result models.PhaseResult) {
	for _, l := range ml.loggers {
		l.LogPhaseComplete(result)
	}
}

// LogAuditSummary forwards to all loggers
func (ml *multiLogger) LogAuditSummary(session *models.AuditSession) {
	for _, l := range ml.loggers {
		l.LogAuditSummary(session)
	}
}
