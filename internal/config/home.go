package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetFirstrunHome returns the directory holding cross-run state such as the
// history database.
// Priority order:
//  1. FIRSTRUN_HOME environment variable (if set)
//  2. $HOME/.firstrun
//  3. <working directory>/.firstrun (fallback)
//
// The directory is created if it doesn't exist.
func GetFirstrunHome() (string, error) {
	if home := os.Getenv("FIRSTRUN_HOME"); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create firstrun home directory: %w", err)
		}
		return home, nil
	}

	base, err := os.UserHomeDir()
	if err != nil {
		base, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
	}

	dir := filepath.Join(base, ".firstrun")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create firstrun home directory: %w", err)
	}
	return dir, nil
}

// GetHistoryDBPath returns the absolute path to the run history database.
// Always returns: $FIRSTRUN_HOME/history/runs.db
func GetHistoryDBPath() (string, error) {
	home, err := GetFirstrunHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history", "runs.db"), nil
}
