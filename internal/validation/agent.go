// Package validation re-examines an assembled audit through three
// agent-backed critique cycles and computes a confidence-weighted verdict.
package validation

import (
	"context"
	"fmt"

	"github.com/harrison/firstrun/internal/claude"
	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/score"
)

// Task is one structured unit of review work submitted to an agent.
type Task struct {
	// Cycle names the validation cycle this task belongs to.
	Cycle string

	// Prompt is the full task description, including any prior cycle
	// output the cycle chains from.
	Prompt string
}

// Assessment is an agent's parsed verdict on a task.
type Assessment struct {
	Score    float64          `json:"score"`
	Feedback []string         `json:"feedback"`
	RedFlags []models.RedFlag `json:"redFlags"`
}

// Agent reviews tasks and returns scored assessments. Implementations must
// be safe for sequential reuse across cycles.
type Agent interface {
	// Name identifies the backend in cycle results.
	Name() string

	// Review submits one task and returns the agent's assessment. An error
	// means the backend could not be reached or produced nothing usable;
	// the pipeline substitutes the neutral fallback result in that case.
	Review(ctx context.Context, task Task) (*Assessment, error)
}

// assessmentSchema constrains agent responses to the shape Review parses.
const assessmentSchema = `{
  "type": "object",
  "properties": {
    "score": {"type": "number", "minimum": 0, "maximum": 10},
    "feedback": {"type": "array", "items": {"type": "string"}},
    "redFlags": {"type": "array"}
  },
  "required": ["score"]
}`

// ClaudeAgent backs reviews with the Claude CLI.
type ClaudeAgent struct {
	Invoker *claude.Invoker
}

// NewClaudeAgent creates a ClaudeAgent with a default invoker.
func NewClaudeAgent() *ClaudeAgent {
	return &ClaudeAgent{Invoker: claude.NewInvoker()}
}

// Name implements Agent.
func (a *ClaudeAgent) Name() string { return "claude" }

// Review implements Agent. Malformed responses degrade to a best-effort
// score extraction before the caller's fallback takes over.
func (a *ClaudeAgent) Review(ctx context.Context, task Task) (*Assessment, error) {
	inv := a.Invoker
	if inv == nil {
		inv = claude.NewInvoker()
	}

	resp, err := inv.Invoke(ctx, claude.Request{
		Prompt: task.Prompt,
		Schema: assessmentSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("cycle %s: %w", task.Cycle, err)
	}

	content, _, err := claude.ParseResponse(resp.RawOutput)
	if err != nil {
		return nil, fmt.Errorf("cycle %s: %w", task.Cycle, err)
	}

	var assessment Assessment
	if err := claude.Unmarshal(content, &assessment); err != nil {
		extracted, ok := claude.ExtractScore(content)
		if !ok {
			return nil, fmt.Errorf("cycle %s: unparseable response: %w", task.Cycle, err)
		}
		assessment = Assessment{Score: extracted}
	}
	assessment.Score = score.Clamp(assessment.Score)
	return &assessment, nil
}

// StubAgent is a deterministic offline backend. It returns the same neutral
// assessment for every task, which keeps audits reproducible in tests and in
// environments without the Claude CLI.
type StubAgent struct{}

// Name implements Agent.
func (StubAgent) Name() string { return "stub" }

// Review implements Agent.
func (StubAgent) Review(_ context.Context, task Task) (*Assessment, error) {
	return &Assessment{
		Score:    7.0,
		Feedback: []string{fmt.Sprintf("%s: offline review, no external agent consulted", task.Cycle)},
	}, nil
}
