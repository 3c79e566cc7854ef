// Package runner executes external commands with bounded timeouts, capturing
// separate output streams and an exit status or explicit failure.
//
// Every phase that invokes the audited tool or a package manager goes through
// this package. Invocations are at-most-once: there are no retries, and the
// timeout is a policy decision owned by each call site, not by the runner.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/harrison/firstrun/internal/models"
)

// Spec describes one external-process invocation.
type Spec struct {
	// Path is the executable path or bare name resolved via PATH.
	Path string

	// Args are the command arguments, excluding the executable itself.
	Args []string

	// Dir is the working directory. Empty means the caller's directory.
	Dir string

	// Timeout bounds the invocation. Zero or negative disables the bound;
	// call sites in this codebase always set one.
	Timeout time.Duration
}

// Runner runs external commands. The interface exists so phases can be
// tested against fakes without spawning processes.
type Runner interface {
	Run(ctx context.Context, spec Spec) models.CommandOutcome
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// New returns the production runner.
func New() ExecRunner {
	return ExecRunner{}
}

// Run executes the spec with stdin closed and stdout/stderr accumulated
// separately. On timeout or spawn failure the returned outcome has a nil
// exit code and whatever output was captured before the failure. Run never
// returns an error: an unobservable exit is a data point, not a fault.
func (ExecRunner) Run(ctx context.Context, spec Spec) models.CommandOutcome {
	runCtx := ctx
	var cancel context.CancelFunc
	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir

	// Leaving Stdin nil gives the child /dev/null; an audited tool that
	// blocks reading stdin then fails fast instead of hanging the probe.
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	outcome := models.CommandOutcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		outcome.TimedOut = true
		return outcome
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			code := exitErr.ExitCode()
			outcome.ExitCode = &code
			return outcome
		}
		// Spawn failure or a kill without an observable exit status.
		return outcome
	}

	code := 0
	outcome.ExitCode = &code
	return outcome
}

// Available reports whether the named tool resolves on the system search
// path. Used by phases to verify prerequisites and installed binaries.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Resolve returns the full path of a tool on the system search path, or an
// empty string when it cannot be found.
func Resolve(name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}
