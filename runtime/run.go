package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/ashetkar/scalarun/log"
	"github.com/ashetkar/scalarun/metrics"
	"github.com/ashetkar/scalarun/types"
)

// RunResult represents the result of one runner invocation.
type RunResult struct {
	// Args is the exact runner argument list that was (or would be) used.
	Args []string
	// ExitCode is the runner process exit code.
	ExitCode int
	// Outcome is the evaluated outcome.
	Outcome types.Outcome
	// Duration is the total invocation duration.
	Duration time.Duration
}

// Orchestrator drives a single invocation end-to-end:
// prepare -> build args -> launch -> wait -> evaluate.
//
// State machine: Idle -> Launching -> Completed(exitCode) ->
// {Success | Warned | Failed}, all three terminal. An Orchestrator is
// single-use; build a new one per invocation.
type Orchestrator struct {
	config    *types.RunConfig
	logger    *log.Logger
	collector *metrics.Collector

	// LauncherFactory overrides launcher creation (for testing).
	// If nil, uses NewProcessLauncher.
	LauncherFactory LauncherFactory

	startTime time.Time
}

// NewOrchestrator creates an orchestrator for one invocation.
// Returns an error if the configuration is invalid. The collector may be
// nil to disable metrics.
func NewOrchestrator(cfg *types.RunConfig, logger *log.Logger, collector *metrics.Collector) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run configuration: %w", err)
	}
	return &Orchestrator{
		config:    cfg,
		logger:    logger,
		collector: collector,
	}, nil
}

// Execute runs the invocation and returns its result.
//
// A nonzero exit code is NOT an error: it becomes a Warned or Failed
// outcome in the result. The returned error is non-nil only when the
// runner could not be invoked at all (preparation failure or
// *LaunchError), and such errors are never downgraded by IgnoreFailures.
// Output sinks are closed before the outcome is evaluated, so diagnostic
// content is durable when failure messages are composed.
func (o *Orchestrator) Execute(ctx context.Context) (*RunResult, error) {
	o.startTime = time.Now()
	o.collector.IncRunStarted()

	if err := Prepare(o.config); err != nil {
		return nil, err
	}

	args := BuildArgs(o.config)

	o.logger.Info("launching runner", map[string]any{
		"java":      o.config.Java(),
		"test_root": o.config.TestRoot,
		"args":      args,
	})

	var launcher Launcher
	if o.LauncherFactory != nil {
		launcher = o.LauncherFactory(o.config)
	} else {
		launcher = NewProcessLauncher(o.config)
	}

	procResult, err := launcher.Run(ctx, args)
	if err != nil {
		o.collector.IncLaunchFailure()
		o.logger.Error("runner launch failed", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}
	o.collector.IncLaunchSuccess()

	outcome := EvaluateOutcome(procResult.ExitCode, o.config.IgnoreFailures, o.config.Reports)
	duration := time.Since(o.startTime)

	switch outcome.Status {
	case types.OutcomeSuccess:
		o.collector.IncRunSucceeded()
		o.logger.Info("run completed", map[string]any{
			"exit_code": procResult.ExitCode,
			"duration":  duration.String(),
		})
	case types.OutcomeWarned:
		o.collector.IncRunWarned()
		o.logger.Warn(outcome.Message, map[string]any{
			"exit_code": procResult.ExitCode,
			"duration":  duration.String(),
		})
	case types.OutcomeFailed:
		o.collector.IncRunFailed()
		o.logger.Error(outcome.Message, map[string]any{
			"exit_code": procResult.ExitCode,
			"duration":  duration.String(),
		})
	}

	return &RunResult{
		Args:     args,
		ExitCode: procResult.ExitCode,
		Outcome:  outcome,
		Duration: duration,
	}, nil
}
