package static

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/firstrun/internal/docscan"
	"github.com/harrison/firstrun/internal/fileutil"
	"github.com/harrison/firstrun/internal/models"
)

// Per-file and per-tree read bounds.
const (
	fileReadCap = 1 << 20
	maxFiles    = 2000
)

// Findings is the static-analysis phase payload.
type Findings struct {
	FilesScanned int  `json:"files_scanned"`
	HasLicense   bool `json:"has_license"`
	HasGitignore bool `json:"has_gitignore"`
	HasTests     bool `json:"has_tests"`
}

// Phase implements the static red-flag scan. Like the error-handling phase
// it contributes flags and notes only, no numeric score.
type Phase struct{}

// NewPhase returns the static-analysis phase.
func NewPhase() *Phase {
	return &Phase{}
}

// Run walks the tree and applies each check independently; one check
// erroring is recorded and the rest continue. Flags are deduplicated by
// (category, title) with evidence merged.
func (p *Phase) Run(_ context.Context, target string, docs *docscan.Scan) *models.PhaseResult {
	start := time.Now()
	result := &models.PhaseResult{
		Phase:   models.PhaseStaticAnalysis,
		Success: true,
	}
	findings := &Findings{}
	result.Findings = findings

	walk, err := fileutil.Walk(target, fileutil.WalkOptions{MaxFiles: maxFiles})
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(start)
		return result
	}
	for _, werr := range walk.Errors {
		result.Errors = append(result.Errors, werr.Error())
	}
	findings.FilesScanned = len(walk.Files)

	var flags []models.RedFlag

	for _, rel := range walk.Files {
		if !hasScannableExtension(rel) && !isManifest(rel) {
			continue
		}
		data, err := fileutil.ReadCapped(filepath.Join(target, rel), fileReadCap)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("read %s: %v", rel, err))
			continue
		}
		content := string(data)
		flags = append(flags, scanContent(rel, content)...)
		if isManifest(rel) {
			flags = append(flags, scanManifest(rel, content)...)
		}
	}

	flags = append(flags, structureFlags(target, walk.Files, findings)...)
	flags = append(flags, testFlags(target, walk.Files, findings)...)
	flags = append(flags, licenseFlags(target, walk.Files, findings)...)

	if docs != nil && !mentionsAccessibility(docs.Content) {
		result.Notes = append(result.Notes,
			"documentation never mentions accessibility")
	}

	result.RedFlags = capEvidence(models.MergeFlags(flags))
	result.Duration = time.Since(start)
	return result
}

// structureFlags checks repository hygiene: root-level source sprawl.
func structureFlags(target string, files []string, _ *Findings) []models.RedFlag {
	var rootSources []string
	for _, rel := range files {
		if filepath.Dir(rel) == "." && isCodeFile(rel) {
			rootSources = append(rootSources, rel)
		}
	}
	if len(rootSources) < 8 {
		return nil
	}
	return []models.RedFlag{{
		Severity:    models.SeverityLow,
		Category:    "structure",
		Title:       "Source files sprawled at repository root",
		Description: fmt.Sprintf("%d source files sit at the root instead of a source directory", len(rootSources)),
		Evidence:    rootSources[:minInt(len(rootSources), maxEvidencePerFlag)],
		Fix:         "group sources under src/ or a package directory",
	}}
}

// testPathPattern matches conventional test locations and filenames.
var testPathPattern = []string{"test", "tests", "spec", "__tests__"}

// testFlags checks for a test convention and for near-empty test files.
func testFlags(target string, files []string, findings *Findings) []models.RedFlag {
	var flags []models.RedFlag
	var testFiles []string

	for _, rel := range files {
		if isTestPath(rel) {
			testFiles = append(testFiles, rel)
		}
	}
	findings.HasTests = len(testFiles) > 0

	if len(testFiles) == 0 {
		return []models.RedFlag{{
			Severity:    models.SeverityMedium,
			Category:    "testing",
			Title:       "No test convention found",
			Description: "no test directory or test-named files anywhere in the tree",
			Fix:         "add automated tests under a conventional location",
		}}
	}

	var nearEmpty []string
	for _, rel := range testFiles {
		data, err := fileutil.ReadCapped(filepath.Join(target, rel), 4096)
		if err != nil {
			continue
		}
		if len(strings.TrimSpace(string(data))) < 50 {
			nearEmpty = append(nearEmpty, rel)
		}
	}
	if len(nearEmpty) > 0 {
		flags = append(flags, models.RedFlag{
			Severity:    models.SeverityLow,
			Category:    "testing",
			Title:       "Near-empty test files",
			Description: "test files exist but contain almost nothing",
			Evidence:    nearEmpty[:minInt(len(nearEmpty), maxEvidencePerFlag)],
			Fix:         "fill placeholder test files with real assertions or remove them",
		})
	}
	return flags
}

// licenseFlags checks the presence checks: README, LICENSE, .gitignore, and
// a manifest license declaration.
func licenseFlags(target string, files []string, findings *Findings) []models.RedFlag {
	var flags []models.RedFlag

	if docscan.FindReadme(target) == "" {
		flags = append(flags, models.RedFlag{
			Severity:    models.SeverityCritical,
			Category:    "documentation",
			Title:       "Missing README",
			Description: "the tree ships no README in any recognized variant",
			Fix:         "add a README covering installation and usage",
		})
	}

	findings.HasLicense = fileutil.FirstExisting(target, []string{
		"LICENSE", "LICENSE.md", "LICENSE.txt", "COPYING", "LICENCE",
	}) != ""
	if !findings.HasLicense {
		flags = append(flags, models.RedFlag{
			Severity:    models.SeverityHigh,
			Category:    "legal",
			Title:       "Missing LICENSE file",
			Description: "no license file means users have no usage rights by default",
			Fix:         "add a LICENSE file with an OSI-approved license",
		})
	}

	findings.HasGitignore = fileutil.Exists(filepath.Join(target, ".gitignore"))
	if !findings.HasGitignore {
		flags = append(flags, models.RedFlag{
			Severity:    models.SeverityMedium,
			Category:    "structure",
			Title:       "Missing .gitignore",
			Description: "build output and local state will leak into version control",
			Fix:         "add a .gitignore for the ecosystem",
		})
	}

	if missingManifestLicense(target) {
		flags = append(flags, models.RedFlag{
			Severity:    models.SeverityMedium,
			Category:    "legal",
			Title:       "No license declared in manifest",
			Description: "the package manifest carries no license field",
			Fix:         "declare the license in the package manifest",
		})
	}

	return flags
}

// missingManifestLicense reports a package.json without a license field.
// Other ecosystems declare licensing in the LICENSE file itself, which the
// file-presence check already covers.
func missingManifestLicense(target string) bool {
	path := filepath.Join(target, "package.json")
	data, err := fileutil.ReadCapped(path, fileReadCap)
	if err != nil {
		return false
	}
	return !strings.Contains(string(data), `"license"`)
}

// mentionsAccessibility reports whether the docs acknowledge accessibility.
func mentionsAccessibility(doc string) bool {
	lower := strings.ToLower(doc)
	for _, kw := range accessibilityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isTestPath reports whether a relative path follows a test convention.
func isTestPath(rel string) bool {
	lower := strings.ToLower(rel)
	base := filepath.Base(lower)
	for _, dir := range testPathPattern {
		if strings.HasPrefix(lower, dir+string(filepath.Separator)) ||
			strings.Contains(lower, string(filepath.Separator)+dir+string(filepath.Separator)) {
			return true
		}
	}
	return strings.HasSuffix(base, "_test.go") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.HasPrefix(base, "test_")
}

// hasScannableExtension reports whether content checks should read the file.
func hasScannableExtension(rel string) bool {
	ext := strings.ToLower(filepath.Ext(rel))
	for _, s := range sourceExtensions {
		if ext == s {
			return true
		}
	}
	return filepath.Base(rel) == ".env"
}

// isManifest reports whether the file declares dependencies.
func isManifest(rel string) bool {
	switch filepath.Base(rel) {
	case "package.json", "requirements.txt", "Cargo.toml", "go.mod", "Gemfile":
		return filepath.Dir(rel) == "."
	}
	return false
}

// capEvidence bounds merged evidence lists.
func capEvidence(flags []models.RedFlag) []models.RedFlag {
	for i := range flags {
		if len(flags[i].Evidence) > maxEvidencePerFlag {
			flags[i].Evidence = flags[i].Evidence[:maxEvidencePerFlag]
		}
	}
	return flags
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
