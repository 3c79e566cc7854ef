package docscan

import (
	"context"
	"strings"
	"time"

	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/score"
)

// Weights of the first-impressions score components.
const (
	readmeExistsPoints = 1.5
	readmeScoreWeight  = 0.35
	installDocsPoints  = 2.0
	examplesPoints     = 2.0
	clarityScoreWeight = 0.35
)

// Findings is the first-impressions phase payload.
type Findings struct {
	ReadmeFound     bool    `json:"readme_found"`
	Readme          *Scan   `json:"readme,omitempty"`
	ReadmeScore     float64 `json:"readme_score"`
	ClarityScore    float64 `json:"clarity_score"`
	HasInstallDocs  bool    `json:"has_install_docs"`
	HasExamples     bool    `json:"has_examples"`
	MissingSections []string `json:"missing_sections,omitempty"`
}

// Phase implements the first-impressions audit step.
type Phase struct{}

// NewPhase returns the first-impressions phase.
func NewPhase() *Phase {
	return &Phase{}
}

// Run scans the target's README and scores documentation quality. The phase
// always returns a score: absent documentation is reported as a critical
// note, never as a failure.
//
// The returned Scan (nil when no README exists) is reused by later phases
// for claim extraction and feature cross-referencing.
func (p *Phase) Run(_ context.Context, target string) (*models.PhaseResult, *Scan) {
	start := time.Now()
	result := &models.PhaseResult{
		Phase:   models.PhaseFirstImpressions,
		Success: true,
		Scored:  true,
	}

	readmePath := FindReadme(target)
	if readmePath == "" {
		result.Notes = append(result.Notes,
			"CRITICAL: no README found - a fresh user has nothing to read")
		result.Findings = &Findings{}
		result.Score = 0
		result.Duration = time.Since(start)
		return result, nil
	}

	scan, err := ScanReadme(target, readmePath)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Findings = &Findings{ReadmeFound: true}
		// README exists but is unreadable; credit existence only.
		result.Score = score.Clamp(readmeExistsPoints)
		result.Duration = time.Since(start)
		return result, nil
	}

	findings := &Findings{
		ReadmeFound:    true,
		Readme:         scan,
		ReadmeScore:    readmeQuality(scan),
		ClarityScore:   clarity(scan.Content),
		HasInstallDocs: hasInstallDocs(scan),
		HasExamples:    hasExamples(scan),
	}
	for _, section := range canonicalSections {
		if !scan.Sections[section] {
			findings.MissingSections = append(findings.MissingSections, section)
		}
	}

	total := readmeExistsPoints +
		findings.ReadmeScore*readmeScoreWeight +
		findings.ClarityScore*clarityScoreWeight
	if findings.HasInstallDocs {
		total += installDocsPoints
	} else {
		result.Notes = append(result.Notes,
			"CRITICAL: README has no installation instructions")
	}
	if findings.HasExamples {
		total += examplesPoints
	} else {
		result.Notes = append(result.Notes, "README shows no usage examples")
	}

	result.Findings = findings
	result.Score = score.Clamp(total)
	result.Duration = time.Since(start)
	return result, scan
}

// readmeQuality scores README structure on [0,10]: line-count tiers (0-3),
// canonical sections proportionally (0-3), fenced code blocks (2),
// links/images (1), heading density (1).
func readmeQuality(scan *Scan) float64 {
	var s float64

	switch {
	case scan.Lines >= 100:
		s += 3
	case scan.Lines >= 30:
		s += 2
	case scan.Lines >= 10:
		s += 1
	}

	s += float64(len(scan.Sections)) / float64(len(canonicalSections)) * 3

	if scan.CodeBlocks > 0 {
		s += 2
	}
	if scan.Links > 0 || scan.Images > 0 {
		s += 1
	}
	if scan.Headings >= 3 {
		s += 1
	}

	return score.Clamp(s)
}

// Keyword families behind the description-clarity sub-score.
var (
	purposeKeywords = []string{
		"is a", "is an", "a tool", "a cli", "a library", "allows you",
		"provides", "helps you", "designed to", "enables",
	}
	benefitKeywords = []string{
		"fast", "simple", "easy", "lightweight", "powerful", "flexible",
		"secure", "reliable", "minimal", "efficient",
	}
	quickStartKeywords = []string{
		"quick start", "quickstart", "getting started", "npm install",
		"pip install", "cargo install", "go install", "brew install",
	}
	badgeKeywords = []string{
		"shields.io", "badge", "version", "v0.", "v1.", "release",
	}
)

// clarity scores how clearly the documentation communicates what the tool is
// and why to use it: 2.5 points per keyword family present.
func clarity(content string) float64 {
	lower := strings.ToLower(content)

	var s float64
	for _, family := range [][]string{purposeKeywords, benefitKeywords, quickStartKeywords, badgeKeywords} {
		for _, kw := range family {
			if strings.Contains(lower, kw) {
				s += 2.5
				break
			}
		}
	}
	return score.Clamp(s)
}

// hasInstallDocs reports whether the README documents installation.
func hasInstallDocs(scan *Scan) bool {
	if scan.HasSection("installation") {
		return true
	}
	return strings.Contains(strings.ToLower(scan.Content), "install")
}

// hasExamples reports whether the README demonstrates usage.
func hasExamples(scan *Scan) bool {
	return scan.CodeBlocks > 0 || scan.HasSection("usage")
}
