package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExcludedDirs are directory names skipped during audited-tree walks:
// dependency caches, build output, and version control metadata. Hidden
// directories are excluded separately by name prefix.
var DefaultExcludedDirs = []string{
	"node_modules",
	"vendor",
	"dist",
	"build",
	"target",
	"venv",
	"__pycache__",
	"coverage",
	"bower_components",
}

// WalkOptions configures a tree walk.
type WalkOptions struct {
	// Extensions restricts results to the given extensions (case-insensitive,
	// with or without the leading dot). Empty means all files.
	Extensions []string

	// ExcludeDirs is the list of directory names to skip. Nil means
	// DefaultExcludedDirs. Hidden directories are always skipped.
	ExcludeDirs []string

	// MaxFiles stops the walk after collecting this many files.
	// Zero means unlimited.
	MaxFiles int
}

// WalkResult holds the collected files and any non-fatal errors.
type WalkResult struct {
	// Files are paths relative to the walk root, sorted.
	Files []string

	// Errors are non-fatal errors encountered while walking; the walk
	// continues past them.
	Errors []error
}

// Walk traverses root collecting regular files, applying the exclusion and
// extension rules in opts. Paths in the result are relative to root so that
// red-flag evidence reads the same regardless of where the tree is mounted.
func Walk(root string, opts WalkOptions) (*WalkResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	excluded := opts.ExcludeDirs
	if excluded == nil {
		excluded = DefaultExcludedDirs
	}
	excludeMap := make(map[string]bool, len(excluded))
	for _, d := range excluded {
		excludeMap[d] = true
	}

	extMap := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}

	result := &WalkResult{}
	limitReached := fmt.Errorf("file limit reached")

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			if excludeMap[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if len(extMap) > 0 && !extMap[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error resolving %s: %w", path, relErr))
			return nil
		}
		result.Files = append(result.Files, rel)

		if opts.MaxFiles > 0 && len(result.Files) >= opts.MaxFiles {
			return limitReached
		}
		return nil
	})
	if err != nil && err != limitReached {
		return nil, fmt.Errorf("walk failed: %w", err)
	}

	sort.Strings(result.Files)
	return result, nil
}

// ReadCapped reads at most limit bytes of the named file. Audited trees are
// untrusted, so callers never slurp target files unbounded.
func ReadCapped(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Exists reports whether the path exists at all.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether the path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FirstExisting returns the first of the candidate names that exists under
// dir, or an empty string when none do. Used for ordered filename-variant
// lookups such as README discovery.
func FirstExisting(dir string, candidates []string) string {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
