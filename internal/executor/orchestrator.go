// Package executor orchestrates the six audit phases, aggregates their
// results into a final score, and optionally runs the validation pipeline.
package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/firstrun/internal/adversarial"
	"github.com/harrison/firstrun/internal/claims"
	"github.com/harrison/firstrun/internal/config"
	"github.com/harrison/firstrun/internal/docscan"
	"github.com/harrison/firstrun/internal/fileutil"
	"github.com/harrison/firstrun/internal/gate"
	"github.com/harrison/firstrun/internal/install"
	"github.com/harrison/firstrun/internal/logger"
	"github.com/harrison/firstrun/internal/models"
	"github.com/harrison/firstrun/internal/probe"
	"github.com/harrison/firstrun/internal/runner"
	"github.com/harrison/firstrun/internal/score"
	"github.com/harrison/firstrun/internal/static"
	"github.com/harrison/firstrun/internal/validation"
)

// Options configures an Orchestrator. Zero-value fields get working
// defaults, so tests can construct one with only what they care about.
type Options struct {
	// Runner executes probed processes. Defaults to the real ExecRunner.
	Runner runner.Runner

	// Logger receives progress events. Defaults to a NoOpLogger.
	Logger logger.Logger

	// Agent backs the validation cycles. Defaults to the offline stub.
	Agent validation.Agent

	// Gate is the caller's usage decision. Defaults to unrestricted.
	Gate *gate.Decision

	// Timeouts overrides the per-call process timeouts. Zero fields keep
	// each phase's default bound.
	Timeouts config.TimeoutConfig

	// PersistArtifacts writes the validation result under the audited
	// path when the pipeline runs.
	PersistArtifacts bool
}

// Orchestrator runs one audit end to end. It is the sole writer of the
// session it produces; phases only return results.
type Orchestrator struct {
	runner   runner.Runner
	logger   logger.Logger
	agent    validation.Agent
	gate     gate.Decision
	timeouts config.TimeoutConfig
	persist  bool
}

// NewOrchestrator creates an Orchestrator from options.
func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{
		runner:   opts.Runner,
		logger:   opts.Logger,
		agent:    opts.Agent,
		gate:     gate.Unrestricted(),
		timeouts: opts.Timeouts,
		persist:  opts.PersistArtifacts,
	}
	if o.runner == nil {
		o.runner = &runner.ExecRunner{}
	}
	if o.logger == nil {
		o.logger = logger.NewNoOpLogger()
	}
	if o.agent == nil {
		o.agent = validation.StubAgent{}
	}
	if opts.Gate != nil {
		o.gate = *opts.Gate
	}
	return o
}

// Run audits the tool at target. The only fatal errors are a missing target
// and an exhausted quota, both raised before any phase executes; after that
// the caller always receives a complete session. Phase-level failures are
// recorded in the session, never propagated.
func (o *Orchestrator) Run(ctx context.Context, target string, cfg models.AuditConfig) (*models.AuditSession, error) {
	if !fileutil.IsDir(target) {
		return nil, fmt.Errorf("audit target %q does not exist or is not a directory", target)
	}
	if !o.gate.AuditAllowed {
		return nil, fmt.Errorf("audit not permitted: usage quota exhausted")
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolve audit target: %w", err)
	}

	validate, warning := o.gate.Resolve(cfg.Validate)
	if warning != "" {
		o.logger.LogWarn(warning)
	}

	session := &models.AuditSession{
		ID:     uuid.NewString(),
		Target: absTarget,
		Config: cfg,
	}
	binaryName := filepath.Base(absTarget)

	// Phases run strictly in order: later phases consume the docs scan,
	// the detected ecosystem, and the discovered invocation from earlier
	// ones. A panicking phase leaves its output nil, and the survivors
	// carry on with what they have.
	var docs *docscan.Scan
	o.runPhase(ctx, session, models.PhaseFirstImpressions, func(ctx context.Context) *models.PhaseResult {
		result, scan := docscan.NewPhase().Run(ctx, absTarget)
		docs = scan
		return result
	})

	var eco *install.Ecosystem
	o.runPhase(ctx, session, models.PhaseInstallation, func(ctx context.Context) *models.PhaseResult {
		phase := install.NewPhase(o.runner)
		phase.Timeout = o.timeouts.Install
		result, detected := phase.Run(ctx, absTarget, binaryName)
		eco = detected
		return result
	})

	var inv *probe.Invocation
	o.runPhase(ctx, session, models.PhaseFunctionality, func(ctx context.Context) *models.PhaseResult {
		phase := probe.NewPhase(o.runner)
		phase.Timeout = o.timeouts.Probe
		result, discovered := phase.Run(ctx, absTarget, binaryName, eco, docs)
		inv = discovered
		return result
	})

	o.runPhase(ctx, session, models.PhaseVerification, func(ctx context.Context) *models.PhaseResult {
		phase := claims.NewPhase(o.runner)
		phase.Timeout = o.timeouts.Probe
		return phase.Run(ctx, absTarget, docs, inv)
	})

	o.runPhase(ctx, session, models.PhaseErrorHandling, func(ctx context.Context) *models.PhaseResult {
		phase := adversarial.NewPhase(o.runner)
		phase.Timeout = o.timeouts.Adversarial
		return phase.Run(ctx, absTarget, inv)
	})

	o.runPhase(ctx, session, models.PhaseStaticAnalysis, func(ctx context.Context) *models.PhaseResult {
		return static.NewPhase().Run(ctx, absTarget, docs)
	})

	session.Score = FinalScore(session.PhaseResults, len(session.RedFlags))
	session.Grade = score.Grade(session.Score)

	if validate {
		session.Validation = validation.NewPipeline(o.agent).Run(ctx, session)
		if o.persist {
			if _, err := validation.SaveArtifact(absTarget, session.Validation); err != nil {
				o.logger.LogWarn(fmt.Sprintf("could not persist validation artifact: %v", err))
			}
		}
	} else if cfg.Validate {
		session.Validation = &models.ValidationResult{
			Status:    models.ValidationSkipped,
			Timestamp: time.Now().UTC(),
		}
	}

	session.CompletedAt = time.Now().UTC()
	o.logger.LogAuditSummary(session)
	return session, nil
}

// runPhase executes one phase with panic containment. A panic becomes a
// failed PhaseResult and the audit continues.
func (o *Orchestrator) runPhase(ctx context.Context, session *models.AuditSession, name models.PhaseName, fn func(context.Context) *models.PhaseResult) {
	o.logger.LogPhaseStart(name)
	start := time.Now()

	result := func() (result *models.PhaseResult) {
		defer func() {
			if r := recover(); r != nil {
				result = &models.PhaseResult{
					Phase:    name,
					Success:  false,
					Duration: time.Since(start),
					Errors:   []string{fmt.Sprintf("phase panic: %v", r)},
				}
			}
		}()
		return fn(ctx)
	}()

	session.PhaseResults = append(session.PhaseResults, *result)
	session.RedFlags = models.MergeFlags(session.RedFlags, result.RedFlags)
	o.logger.LogPhaseComplete(*result)
}
