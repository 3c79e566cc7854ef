// Package install detects the audited tool's ecosystem, verifies build
// prerequisites, attempts the install, and scores the installation phase.
package install

import (
	"path/filepath"

	"github.com/harrison/firstrun/internal/fileutil"
)

// Ecosystem describes how a detected project type is installed.
type Ecosystem struct {
	// Name is the ecosystem label (node, go, rust, ...).
	Name string `json:"name"`

	// Marker is the file whose presence selected this ecosystem.
	Marker string `json:"marker"`

	// Tool is the build tool the install depends on.
	Tool string `json:"tool"`

	// InstallArgs is the install command (tool + args). Nil marks an
	// ecosystem with no known install step.
	InstallArgs []string `json:"install_args,omitempty"`

	// BinaryDirs are conventional build-output directories checked during
	// binary discovery, relative to the target root.
	BinaryDirs []string `json:"-"`

	// EntryPointFiles are manifest-declared or conventional entry points
	// checked first during binary discovery.
	EntryPointFiles []string `json:"-"`
}

// Installable reports whether the ecosystem has a known install step.
func (e *Ecosystem) Installable() bool {
	return e != nil && len(e.InstallArgs) > 0
}

// ecosystems is the ordered marker table. Detection walks it top to bottom
// and the first marker present in the target wins, so more specific markers
// (e.g. Cargo.toml) sit above generic ones (Makefile).
var ecosystems = []Ecosystem{
	{
		Name:            "node",
		Marker:          "package.json",
		Tool:            "npm",
		InstallArgs:     []string{"npm", "install"},
		BinaryDirs:      []string{"bin", "dist", "build"},
		EntryPointFiles: []string{"index.js", "cli.js", "bin/cli.js"},
	},
	{
		Name:            "rust",
		Marker:          "Cargo.toml",
		Tool:            "cargo",
		InstallArgs:     []string{"cargo", "build", "--release"},
		BinaryDirs:      []string{"target/release", "target/debug"},
		EntryPointFiles: []string{"src/main.rs"},
	},
	{
		Name:            "go",
		Marker:          "go.mod",
		Tool:            "go",
		InstallArgs:     []string{"go", "build", "./..."},
		BinaryDirs:      []string{"bin", "dist", "."},
		EntryPointFiles: []string{"main.go"},
	},
	{
		Name:            "python",
		Marker:          "pyproject.toml",
		Tool:            "pip",
		InstallArgs:     []string{"pip", "install", "."},
		BinaryDirs:      []string{"bin"},
		EntryPointFiles: []string{"main.py", "__main__.py"},
	},
	{
		Name:            "python",
		Marker:          "setup.py",
		Tool:            "pip",
		InstallArgs:     []string{"pip", "install", "."},
		BinaryDirs:      []string{"bin"},
		EntryPointFiles: []string{"main.py", "setup.py"},
	},
	{
		Name:            "ruby",
		Marker:          "Gemfile",
		Tool:            "bundle",
		InstallArgs:     []string{"bundle", "install"},
		BinaryDirs:      []string{"bin", "exe"},
		EntryPointFiles: []string{},
	},
	{
		Name:            "make",
		Marker:          "Makefile",
		Tool:            "make",
		InstallArgs:     []string{"make"},
		BinaryDirs:      []string{"bin", "build", "."},
		EntryPointFiles: []string{},
	},
	{
		// A bare requirements.txt gives dependencies but no install story
		// for the tool itself.
		Name:       "python-requirements",
		Marker:     "requirements.txt",
		Tool:       "pip",
		BinaryDirs: []string{"bin"},
	},
}

// Detect returns the ecosystem for the first marker file present under the
// target root, or nil when no marker matches.
func Detect(target string) *Ecosystem {
	for i := range ecosystems {
		if fileutil.Exists(filepath.Join(target, ecosystems[i].Marker)) {
			eco := ecosystems[i]
			return &eco
		}
	}
	return nil
}
