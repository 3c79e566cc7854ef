// Package docscan locates and inspects README-style documentation and scores
// the first-impressions audit phase from its structural signals.
package docscan

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/firstrun/internal/fileutil"
)

// readCap bounds how much of a README is read; anything past this tells us
// nothing new about documentation quality.
const readCap = 2 << 20

// readmeVariants is the ordered set of filenames checked for a README.
// The first match wins; multiple READMEs are never merged.
var readmeVariants = []string{
	"README.md",
	"README.markdown",
	"README.rst",
	"README.txt",
	"README",
	"readme.md",
}

// canonicalSections are the five sections a fresh user expects to find.
var canonicalSections = []string{
	"installation",
	"usage",
	"features",
	"contributing",
	"license",
}

// sectionAliases maps alternative heading spellings onto canonical sections.
var sectionAliases = map[string]string{
	"install":         "installation",
	"getting started": "installation",
	"setup":           "installation",
	"quick start":     "usage",
	"quickstart":      "usage",
	"examples":        "usage",
	"how to use":      "usage",
	"what it does":    "features",
	"contribute":      "contributing",
	"licence":         "license",
}

// Scan holds the structural signals extracted from one README.
type Scan struct {
	// Path is the README's path relative to the audited tree root.
	Path string `json:"path"`

	// Content is the raw README text, reused by later phases for claim
	// extraction and feature cross-referencing.
	Content string `json:"-"`

	Lines      int `json:"lines"`
	Headings   int `json:"headings"`
	CodeBlocks int `json:"code_blocks"`
	Links      int `json:"links"`
	Images     int `json:"images"`

	// Sections marks which of the five canonical sections are present.
	Sections map[string]bool `json:"sections"`
}

// HasSection reports presence of a canonical section.
func (s *Scan) HasSection(name string) bool {
	return s != nil && s.Sections[name]
}

// FindReadme returns the first matching README variant under dir, or an
// empty string when none exists.
func FindReadme(dir string) string {
	return fileutil.FirstExisting(dir, readmeVariants)
}

// ScanReadme parses the README at path and extracts its structural signals.
// Markdown structure (headings, fenced blocks, links, images) is read from
// the goldmark AST; non-markdown variants fall back to line heuristics.
func ScanReadme(root, path string) (*Scan, error) {
	data, err := fileutil.ReadCapped(path, readCap)
	if err != nil {
		return nil, fmt.Errorf("failed to read readme: %w", err)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	scan := &Scan{
		Path:     rel,
		Content:  string(data),
		Lines:    countLines(data),
		Sections: make(map[string]bool),
	}

	source := data
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			scan.Headings++
			markSection(scan, headingText(node, source))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			scan.CodeBlocks++
		case *ast.Link, *ast.AutoLink:
			scan.Links++
		case *ast.Image:
			scan.Images++
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk readme ast: %w", err)
	}

	// Plain-text READMEs yield no headings from the markdown parser; fall
	// back to underlined/upper-case section heuristics so they still get
	// section credit.
	if scan.Headings == 0 {
		scanPlainSections(scan)
	}

	return scan, nil
}

// markSection records a canonical section hit for the given heading text.
func markSection(scan *Scan, heading string) {
	normalized := strings.ToLower(strings.TrimSpace(heading))
	if normalized == "" {
		return
	}
	for _, section := range canonicalSections {
		if strings.Contains(normalized, section) {
			scan.Sections[section] = true
			return
		}
	}
	for alias, section := range sectionAliases {
		if strings.Contains(normalized, alias) {
			scan.Sections[section] = true
			return
		}
	}
}

// headingText extracts the plain text of a heading node.
func headingText(node *ast.Heading, source []byte) string {
	var sb strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
	}
	return sb.String()
}

// scanPlainSections applies line-based section detection for non-markdown
// READMEs: a short line matching a section keyword counts as a heading.
func scanPlainSections(scan *Scan) {
	for _, line := range strings.Split(scan.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 || len(trimmed) > 40 {
			continue
		}
		markSection(scan, trimmed)
	}
}

// countLines counts newline-delimited lines, tolerating a missing trailing
// newline.
func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := strings.Count(string(data), "\n")
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}
