package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/firstrun/internal/filelock"
	"github.com/harrison/firstrun/internal/models"
)

// ArtifactDir is the subdirectory under the audited path holding persisted
// validation results. Artifacts are write-once and safe to delete.
const ArtifactDir = ".firstrun/validation"

// artifactTimeFormat is ISO-8601 with separators stripped for filenames.
const artifactTimeFormat = "20060102T150405Z"

// SaveArtifact persists one validation result under the audited path and
// returns the artifact's path. An artifact is never updated after creation;
// saving over an existing one is an error.
func SaveArtifact(target string, result *models.ValidationResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal validation artifact: %w", err)
	}

	name := result.Timestamp.UTC().Format(artifactTimeFormat) + ".json"
	path := filepath.Join(target, filepath.FromSlash(ArtifactDir), name)
	if err := filelock.WriteOnce(path, data); err != nil {
		return "", fmt.Errorf("persist validation artifact: %w", err)
	}
	return path, nil
}

// LoadArtifact reads back a persisted validation result.
func LoadArtifact(path string) (*models.ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read validation artifact: %w", err)
	}
	var result models.ValidationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse validation artifact %s: %w", filepath.Base(path), err)
	}
	return &result, nil
}
