package models

import "fmt"

// Severity classifies a red flag's impact, ordered from most to least severe.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityRank orders severities for sorting; lower rank sorts first.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// Rank returns the sort rank of the severity. Unknown severities rank last.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// RedFlag is a discrete, categorized defect finding.
type RedFlag struct {
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence,omitempty"`
	Fix         string   `json:"fix,omitempty"`
	File        string   `json:"file,omitempty"`
}

// Validate checks required fields.
func (f *RedFlag) Validate() error {
	if !f.Severity.Valid() {
		return fmt.Errorf("invalid severity %q", f.Severity)
	}
	if f.Title == "" {
		return fmt.Errorf("title is required")
	}
	if f.Category == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}

// dedupeKey identifies a flag for merging. Two flags reporting the same
// (category, title) pair describe the same defect.
type dedupeKey struct {
	category string
	title    string
}

// MergeFlags flattens the given flag lists and deduplicates by (category,
// title), merging evidence lists on collision. Evidence order is
// first-occurrence order with duplicates dropped; all other fields keep the
// first occurrence's values. Input order of distinct flags is preserved.
func MergeFlags(lists ...[]RedFlag) []RedFlag {
	total := 0
	for _, flags := range lists {
		total += len(flags)
	}
	merged := make([]RedFlag, 0, total)
	index := make(map[dedupeKey]int)

	for _, flags := range lists {
		for _, f := range flags {
			key := dedupeKey{category: f.Category, title: f.Title}
			if i, ok := index[key]; ok {
				merged[i].Evidence = appendUnique(merged[i].Evidence, f.Evidence)
				continue
			}
			index[key] = len(merged)
			// Copy evidence so later merges never alias the caller's slice.
			cp := f
			cp.Evidence = appendUnique(nil, f.Evidence)
			merged = append(merged, cp)
		}
	}

	return merged
}

// appendUnique appends items from src to dst, skipping values already present.
func appendUnique(dst []string, src []string) []string {
	seen := make(map[string]bool, len(dst)+len(src))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			dst = append(dst, s)
		}
	}
	return dst
}
