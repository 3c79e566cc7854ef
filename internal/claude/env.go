package claude

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// tmpDir is a dedicated temp directory for Claude CLI invocations. A clean
// TMPDIR avoids editor socket files that crash the CLI when settings flags
// are in play.
var tmpDir string

func init() {
	tmpDir = filepath.Join(os.TempDir(), "firstrun-claude")
	os.MkdirAll(tmpDir, 0755)
}

// SetCleanEnv points a command's TMPDIR at the dedicated directory while
// preserving the rest of the environment.
func SetCleanEnv(cmd *exec.Cmd) {
	cmd.Env = os.Environ()
	for i, env := range cmd.Env {
		if strings.HasPrefix(env, "TMPDIR=") {
			cmd.Env[i] = "TMPDIR=" + tmpDir
			return
		}
	}
	cmd.Env = append(cmd.Env, "TMPDIR="+tmpDir)
}
