// Package claude invokes the Claude CLI as the reasoning backend for
// validation cycles.
package claude

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// DefaultSystemPrompt enforces JSON-only output so responses parse without
// prose, markdown, or fences breaking the decoder.
const DefaultSystemPrompt = "You are a code audit reviewer. Your ONLY output must be valid JSON matching the provided schema. No markdown, no code fences, no prose. Output raw JSON only."

// Invoker is a reusable client for Claude CLI invocations. It follows the
// http.Client pattern: create once, use many times. Safe for concurrent use.
type Invoker struct {
	// ClaudePath is the claude CLI binary. Defaults to "claude" on PATH.
	ClaudePath string

	// Timeout is the default per-invocation timeout.
	Timeout time.Duration

	// SystemPrompt overrides DefaultSystemPrompt when set.
	SystemPrompt string
}

// Request holds per-invocation configuration.
type Request struct {
	// Prompt is the user prompt (required).
	Prompt string

	// Schema is a JSON schema enforcing response structure (optional).
	Schema string
}

// Response holds the raw output of one invocation. The caller unmarshals
// RawOutput into the expected type via ParseResponse.
type Response struct {
	RawOutput []byte
}

// NewInvoker creates an Invoker with defaults.
func NewInvoker() *Invoker {
	return &Invoker{
		ClaudePath:   "claude",
		SystemPrompt: DefaultSystemPrompt,
	}
}

// Invoke executes one Claude CLI call bounded by the Invoker's timeout.
func (inv *Invoker) Invoke(ctx context.Context, req Request) (*Response, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if inv.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	systemPrompt := inv.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	args := []string{
		"--system-prompt", systemPrompt,
		"-p", req.Prompt,
	}
	if req.Schema != "" {
		args = append(args, "--json-schema", req.Schema)
	}
	args = append(args, "--output-format", "json")

	claudePath := inv.ClaudePath
	if claudePath == "" {
		claudePath = "claude"
	}

	cmd := exec.CommandContext(runCtx, claudePath, args...)
	SetCleanEnv(cmd)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("claude invocation failed: %w (output: %s)", err, truncate(string(output), 300))
	}

	return &Response{RawOutput: output}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
