// Package cmd implements the firstrun command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "firstrun",
		Short: "Fresh-user audit for CLI tools",
		Long: `Firstrun audits a CLI tool the way a brand-new user would meet it.

It scans the documentation, attempts the documented installation, probes
the tool's commands, verifies the claims the docs make, throws hostile
input at the error paths, and inspects the tree for hygiene problems.
The phases aggregate into a single 0-10 score with a letter grade, and
an optional validation pipeline reviews the findings before they are
reported.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	rootCmd.AddCommand(NewAuditCommand())
	rootCmd.AddCommand(NewHistoryCommand())

	return rootCmd
}
