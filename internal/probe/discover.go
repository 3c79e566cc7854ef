// Package probe discovers the audited binary, runs a fixed command matrix
// against it, and scores the functionality phase by cross-referencing
// documented features against demonstrated behavior.
package probe

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/harrison/firstrun/internal/fileutil"
	"github.com/harrison/firstrun/internal/install"
	"github.com/harrison/firstrun/internal/runner"
)

// Invocation is how the discovered tool is executed: a path plus any base
// arguments (an interpreter entry point needs its interpreter in front).
type Invocation struct {
	Path     string   `json:"path"`
	BaseArgs []string `json:"base_args,omitempty"`

	// Source records which heuristic found the binary, for the report.
	Source string `json:"source"`
}

// Command builds the full spec for running the invocation with extra args.
func (inv *Invocation) Command(args ...string) (string, []string) {
	return inv.Path, append(append([]string{}, inv.BaseArgs...), args...)
}

// interpreters maps entry-point extensions to the interpreter that runs them.
var interpreters = map[string]string{
	".js": "node",
	".py": "python3",
	".rb": "ruby",
}

// Discover locates the audited tool's executable using ecosystem-specific
// heuristics, in order: the manifest-declared entry point, conventional
// build-output paths, then convention-based naming (the tree's basename on
// the search path or at the tree root). Returns nil when nothing is found.
func Discover(target, binaryName string, eco *install.Ecosystem) *Invocation {
	if eco != nil {
		if inv := declaredEntryPoint(target, eco); inv != nil {
			return inv
		}
		for _, dir := range eco.BinaryDirs {
			candidate := filepath.Join(target, dir, binaryName)
			if isExecutable(candidate) {
				return &Invocation{Path: candidate, Source: "build output"}
			}
		}
	}

	if path := runner.Resolve(binaryName); path != "" {
		return &Invocation{Path: path, Source: "search path"}
	}
	if candidate := filepath.Join(target, binaryName); isExecutable(candidate) {
		return &Invocation{Path: candidate, Source: "tree root"}
	}
	return nil
}

// declaredEntryPoint checks manifest-declared and conventional entry points.
// For node the package.json bin field is authoritative; other ecosystems use
// the fixed per-ecosystem entry file list.
func declaredEntryPoint(target string, eco *install.Ecosystem) *Invocation {
	if eco.Name == "node" {
		if inv := nodeBinEntry(target); inv != nil {
			return inv
		}
	}
	for _, entry := range eco.EntryPointFiles {
		path := filepath.Join(target, entry)
		if !fileutil.Exists(path) {
			continue
		}
		if interp, ok := interpreters[filepath.Ext(path)]; ok {
			if runner.Available(interp) {
				return &Invocation{Path: interp, BaseArgs: []string{path}, Source: "entry point"}
			}
			continue
		}
		if isExecutable(path) {
			return &Invocation{Path: path, Source: "entry point"}
		}
	}
	return nil
}

// nodeBinEntry reads the package.json bin field, which is either a string
// or a name-to-path map.
func nodeBinEntry(target string) *Invocation {
	data, err := fileutil.ReadCapped(filepath.Join(target, "package.json"), 1<<20)
	if err != nil {
		return nil
	}
	var manifest struct {
		Bin json.RawMessage `json:"bin"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil || len(manifest.Bin) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(manifest.Bin, &single); err == nil {
		return nodeInvocation(target, single)
	}
	var many map[string]string
	if err := json.Unmarshal(manifest.Bin, &many); err == nil {
		for _, rel := range many {
			if inv := nodeInvocation(target, rel); inv != nil {
				return inv
			}
		}
	}
	return nil
}

func nodeInvocation(target, rel string) *Invocation {
	path := filepath.Join(target, rel)
	if !fileutil.Exists(path) || !runner.Available("node") {
		return nil
	}
	return &Invocation{Path: "node", BaseArgs: []string{path}, Source: "package.json bin"}
}

// isExecutable reports whether path is a regular file with an execute bit.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}
