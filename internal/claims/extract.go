// Package claims extracts checkable claims from documentation text and
// verifies each one by the strategy appropriate to its type.
//
// Extraction is pattern-based and inherently approximate; that is a stated
// limitation of the audit, not a defect to fix.
package claims

import (
	"regexp"
	"strings"
)

// ClaimType selects the verification strategy.
type ClaimType string

const (
	// ClaimVersion is a documented version string, verified by running
	// --version and substring matching.
	ClaimVersion ClaimType = "version"

	// ClaimFeature is a supports/can/enables phrase. Natural-language
	// feature claims are not automatically checkable and are always left
	// unverified.
	ClaimFeature ClaimType = "feature"

	// ClaimCommand is a documented shell example, verified by running it
	// literally and checking the exit status.
	ClaimCommand ClaimType = "command"

	// ClaimConfig is a configuration-file mention, verified by existence.
	ClaimConfig ClaimType = "config"
)

// Claim is one documentation-derived assertion.
type Claim struct {
	Type ClaimType `json:"type"`

	// Text is the claim as extracted from the documentation.
	Text string `json:"text"`

	// Subject is the checkable payload: the version string, the command
	// line, or the config filename.
	Subject string `json:"subject"`
}

// Extractor pulls claims of one type out of documentation text. The strategy
// table keys extractors by claim type so new heuristics slot in without
// touching verification dispatch.
type Extractor func(doc string) []Claim

// Extractors is the pluggable strategy table.
var Extractors = map[ClaimType]Extractor{
	ClaimVersion: extractVersions,
	ClaimFeature: extractFeatures,
	ClaimCommand: extractCommands,
	ClaimConfig:  extractConfigs,
}

// extractionOrder keeps output deterministic across runs.
var extractionOrder = []ClaimType{ClaimVersion, ClaimFeature, ClaimCommand, ClaimConfig}

// Extract runs every registered extractor over the documentation text.
func Extract(doc string) []Claim {
	var all []Claim
	for _, typ := range extractionOrder {
		if ex, ok := Extractors[typ]; ok {
			all = append(all, ex(doc)...)
		}
	}
	return all
}

var versionPattern = regexp.MustCompile(`(?i)\bv(?:ersion\s+)?(\d+\.\d+(?:\.\d+)?)\b`)

// extractVersions finds documented version strings.
func extractVersions(doc string) []Claim {
	var claims []Claim
	seen := make(map[string]bool)
	for _, m := range versionPattern.FindAllStringSubmatch(doc, 5) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		claims = append(claims, Claim{Type: ClaimVersion, Text: m[0], Subject: m[1]})
	}
	return claims
}

var featurePattern = regexp.MustCompile(`(?im)^.*\b(?:supports|can|enables)\s+([^.\n]{3,80})`)

// extractFeatures finds supports/can/enables phrases.
func extractFeatures(doc string) []Claim {
	var claims []Claim
	for _, m := range featurePattern.FindAllStringSubmatch(doc, 10) {
		subject := strings.TrimSpace(m[1])
		claims = append(claims, Claim{
			Type:    ClaimFeature,
			Text:    strings.TrimSpace(m[0]),
			Subject: subject,
		})
	}
	return claims
}

var fencePattern = regexp.MustCompile("(?s)```(?:sh|bash|shell|console|)\\n(.*?)```")

// extractCommands pulls up to the first three non-comment lines from each
// fenced shell block.
func extractCommands(doc string) []Claim {
	var claims []Claim
	for _, block := range fencePattern.FindAllStringSubmatch(doc, -1) {
		taken := 0
		for _, line := range strings.Split(block[1], "\n") {
			cmd := strings.TrimSpace(line)
			cmd = strings.TrimPrefix(cmd, "$ ")
			if cmd == "" || strings.HasPrefix(cmd, "#") {
				continue
			}
			claims = append(claims, Claim{Type: ClaimCommand, Text: cmd, Subject: cmd})
			taken++
			if taken == 3 {
				break
			}
		}
	}
	return claims
}

var configPattern = regexp.MustCompile(`([\w-][\w.-]*\.(?:ya?ml|json|toml|ini|conf|cfg)|\.[\w]+rc)\b`)

// extractConfigs finds configuration-file mentions.
func extractConfigs(doc string) []Claim {
	var claims []Claim
	seen := make(map[string]bool)
	for _, m := range configPattern.FindAllStringSubmatch(doc, 10) {
		name := m[1]
		// Manifest files are ecosystem plumbing, not claims about the tool.
		if name == "package.json" || name == "Cargo.toml" || seen[name] {
			continue
		}
		seen[name] = true
		claims = append(claims, Claim{Type: ClaimConfig, Text: name, Subject: name})
	}
	return claims
}
