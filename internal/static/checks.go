// Package static walks the audited source tree applying independent
// red-flag checks: secret patterns, vulnerable dependencies, repository
// structure, and licensing. Checks are isolated from one another; a failure
// in one never blocks the rest.
package static

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/harrison/firstrun/internal/models"
)

// secretPattern matches one provider-specific credential format.
type secretPattern struct {
	name    string
	pattern *regexp.Regexp
}

// secretPatterns is the fixed list of provider key formats plus the generic
// hardcoded-password pattern. All raise critical security flags.
var secretPatterns = []secretPattern{
	{"AWS access key", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{"GitHub token", regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`)},
	{"Slack token", regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`)},
	{"Google API key", regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{35}\b`)},
	{"Stripe secret key", regexp.MustCompile(`\bsk_live_[0-9a-zA-Z]{24,}\b`)},
	{"private key block", regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----`)},
	{"hardcoded password", regexp.MustCompile(`(?i)\bpassword\s*[:=]\s*["'][^"']{4,}["']`)},
}

// vulnerableDep is one known-bad dependency version range, matched textually
// against manifest declarations.
type vulnerableDep struct {
	ecosystem string
	pattern   *regexp.Regexp
	advisory  string
}

// vulnerableDeps is a small fixed table of widely known bad versions; it is
// a tripwire, not a vulnerability database.
var vulnerableDeps = []vulnerableDep{
	{"node", regexp.MustCompile(`"event-stream"\s*:\s*"[~^]?3\.3\.6"`), "event-stream 3.3.6 (compromised release)"},
	{"node", regexp.MustCompile(`"lodash"\s*:\s*"[~^]?([0-3]\.|4\.([0-9]|1[0-6])\.)`), "lodash < 4.17 (prototype pollution)"},
	{"node", regexp.MustCompile(`"minimist"\s*:\s*"[~^]?(0\.|1\.[01]\.|1\.2\.[0-5]\b)`), "minimist < 1.2.6 (prototype pollution)"},
	{"node", regexp.MustCompile(`"node-ipc"\s*:\s*"[~^]?(9\.2\.|10\.1\.[0-2]\b)`), "node-ipc 9.2.x/10.1.x (protestware)"},
	{"python", regexp.MustCompile(`(?i)^pyyaml\s*[=<]=\s*[0-4]\.`), "PyYAML < 5.1 (unsafe load RCE)"},
}

// dynamicEvalPattern flags dynamic code evaluation.
var dynamicEvalPattern = regexp.MustCompile(`\beval\s*\(|\bnew Function\s*\(|\bexec\s*\(\s*compile\s*\(`)

// unsafeSpawnPattern flags process spawning built from concatenated or
// interpolated strings.
var unsafeSpawnPattern = regexp.MustCompile(
	`(?:execSync|exec|system|popen|spawn)\s*\(\s*(?:[\x60"'][^)\n]*\+|[\x60][^)\x60]*\$\{)`)

// accessibilityKeywords signal the documentation considered accessibility at
// all. Absence is informational only, never a flag.
var accessibilityKeywords = []string{"accessibility", "a11y", "screen reader", "wcag"}

// sourceExtensions are the file types content checks read.
var sourceExtensions = []string{
	".js", ".ts", ".jsx", ".tsx", ".mjs", ".cjs",
	".py", ".rb", ".go", ".rs", ".sh", ".bash",
	".json", ".yaml", ".yml", ".toml", ".env", ".txt", ".cfg", ".ini",
}

// maxEvidencePerFlag caps evidence growth on pathological trees.
const maxEvidencePerFlag = 20

// scanContent applies the per-file content checks to one file's text and
// returns any flags raised. rel is the file's path relative to the tree root.
func scanContent(rel, content string) []models.RedFlag {
	var flags []models.RedFlag

	for _, sp := range secretPatterns {
		matches := sp.pattern.FindAllString(content, 3)
		if len(matches) == 0 {
			continue
		}
		evidence := make([]string, 0, len(matches))
		for _, m := range matches {
			evidence = append(evidence, fmt.Sprintf("%s: %s", rel, redact(m)))
		}
		flags = append(flags, models.RedFlag{
			Severity:    models.SeverityCritical,
			Category:    "security",
			Title:       fmt.Sprintf("Possible %s in source", sp.name),
			Description: "a credential-shaped string is committed to the tree",
			Evidence:    evidence,
			Fix:         "remove the credential, rotate it, and load secrets from the environment",
			File:        rel,
		})
	}

	if isCodeFile(rel) {
		if loc := firstMatchLine(content, dynamicEvalPattern); loc != "" {
			flags = append(flags, models.RedFlag{
				Severity:    models.SeverityHigh,
				Category:    "security",
				Title:       "Dynamic code evaluation",
				Description: "the tool evaluates dynamically constructed code",
				Evidence:    []string{fmt.Sprintf("%s:%s", rel, loc)},
				Fix:         "replace eval with explicit parsing or dispatch",
				File:        rel,
			})
		}
		if loc := firstMatchLine(content, unsafeSpawnPattern); loc != "" {
			flags = append(flags, models.RedFlag{
				Severity:    models.SeverityMedium,
				Category:    "security",
				Title:       "Unsanitized process spawning",
				Description: "a subprocess command is built from interpolated strings",
				Evidence:    []string{fmt.Sprintf("%s:%s", rel, loc)},
				Fix:         "pass arguments as a list instead of interpolating into a command string",
				File:        rel,
			})
		}
	}

	return flags
}

// scanManifest applies dependency checks to a manifest file's text.
func scanManifest(rel, content string) []models.RedFlag {
	var flags []models.RedFlag

	for _, vd := range vulnerableDeps {
		if vd.pattern.MatchString(content) {
			flags = append(flags, models.RedFlag{
				Severity:    models.SeverityHigh,
				Category:    "dependencies",
				Title:       "Known-vulnerable dependency version",
				Description: "a pinned dependency version has a published advisory",
				Evidence:    []string{fmt.Sprintf("%s: %s", rel, vd.advisory)},
				Fix:         "upgrade past the advisory's fixed version",
				File:        rel,
			})
		}
	}

	if zeroVer := countZeroVersionDeps(content); zeroVer >= 5 {
		flags = append(flags, models.RedFlag{
			Severity:    models.SeverityLow,
			Category:    "dependencies",
			Title:       "Many pre-1.0 dependencies",
			Description: fmt.Sprintf("%d dependencies are pinned below 1.0", zeroVer),
			Evidence:    []string{fmt.Sprintf("%s: %d dependencies below 1.0", rel, zeroVer)},
			Fix:         "review pre-1.0 dependencies for maintenance and stability",
			File:        rel,
		})
	}

	return flags
}

var zeroVersionPattern = regexp.MustCompile(`"[~^]?0\.\d+[.\d]*"`)

// countZeroVersionDeps counts version values pinned below 1.0.
func countZeroVersionDeps(content string) int {
	return len(zeroVersionPattern.FindAllString(content, -1))
}

// redact keeps enough of a matched secret to locate it without reproducing
// the credential in the report.
func redact(s string) string {
	if len(s) <= 12 {
		return s[:len(s)/2] + "..."
	}
	return s[:8] + "..." + s[len(s)-4:]
}

// firstMatchLine returns the 1-based line number of the first pattern match
// as a string, or empty when there is none.
func firstMatchLine(content string, pattern *regexp.Regexp) string {
	loc := pattern.FindStringIndex(content)
	if loc == nil {
		return ""
	}
	return fmt.Sprintf("%d", 1+strings.Count(content[:loc[0]], "\n"))
}

// isCodeFile reports whether the file's extension marks executable source.
func isCodeFile(rel string) bool {
	for _, ext := range []string{".js", ".ts", ".jsx", ".tsx", ".mjs", ".cjs", ".py", ".rb", ".sh", ".bash"} {
		if strings.HasSuffix(rel, ext) {
			return true
		}
	}
	return false
}
