package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ExoZora/exozora-core/internal/core"
	"github.com/ExoZora/exozora-core/internal/core/execution"
	"github.com/ExoZora/exozora-core/internal/core/planner"
	"github.com/ExoZora/exozora-core/internal/core/policy"
	"github.com/ExoZora/exozora-core/internal/core/runs"
)

// ErrTaskFailed is returned by Process when an approved task fails during
// execution.
var ErrTaskFailed = errors.New("task failed")

// Engine runs input through planner, policy gate and executor.
type Engine struct {
	planner   planner.Planner
	validator *policy.Validator
	executor  *execution.Executor
	runs      *runs.Manager
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRuns records every processed plan in m.
func WithRuns(m *runs.Manager) Option {
	return func(e *Engine) { e.runs = m }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a new engine
func NewEngine(p planner.Planner, v *policy.Validator, x *execution.Executor, opts ...Option) *Engine {
	e := &Engine{
		planner:   p,
		validator: v,
		executor:  x,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome describes what happened to one input.
type Outcome struct {
	RunID      string
	Tasks      []core.Task
	Violations []policy.Violation
	Rejection  error
	Results    []*execution.Result
}

// Approved reports whether the plan passed the gate.
func (o *Outcome) Approved() bool {
	return o.Rejection == nil && len(o.Violations) == 0
}

// Check plans input and lists every policy violation without executing
// anything or recording a run.
func (e *Engine) Check(ctx context.Context, source, input, workingDir string) (*Outcome, error) {
	plan, err := e.planner.Plan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to build plan: %w", err)
	}

	outcome := &Outcome{
		Tasks:      plan.Tasks(),
		Violations: e.validator.Violations(plan, workingDir),
	}
	for _, v := range outcome.Violations {
		if !policy.IsPolicyError(v.Err) {
			return outcome, v.Err
		}
	}

	e.logger.Info("plan checked", "source", source, "task_count", len(outcome.Tasks), "violations", len(outcome.Violations))
	return outcome, nil
}

// Process plans input, validates the plan and executes it if approved.
// A policy rejection is returned as the error and recorded in the outcome.
func (e *Engine) Process(ctx context.Context, source, input, workingDir string) (*Outcome, error) {
	plan, err := e.planner.Plan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to build plan: %w", err)
	}

	outcome := &Outcome{Tasks: plan.Tasks()}
	e.logger.Info("plan received", "source", source, "task_count", plan.Len(), "working_dir", workingDir)

	record := e.startRun(source, workingDir, outcome.Tasks)
	if record != nil {
		outcome.RunID = record.ID
	}

	approved, err := e.validator.Validate(plan, workingDir)
	if err != nil {
		outcome.Rejection = err
		e.logger.Warn("plan rejected", "source", source, "reason", err)
		e.transition(record, runs.StatusRejected, err.Error())
		return outcome, err
	}
	e.logger.Info("plan approved", "source", source, "task_count", approved.Len())
	e.transition(record, runs.StatusApproved, "")
	e.transition(record, runs.StatusExecuting, "")

	results, err := e.executor.Execute(ctx, approved)
	outcome.Results = results
	if err == nil {
		err = firstFailure(results)
	}
	e.finishRun(record, results, err)

	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

func firstFailure(results []*execution.Result) error {
	for _, r := range results {
		if r.Failed() {
			return fmt.Errorf("%w: task %d (%s %s): %v", ErrTaskFailed, r.Index, r.Kind, r.Target, r.Error)
		}
	}
	return nil
}

func (e *Engine) startRun(source, workingDir string, tasks []core.Task) *runs.Record {
	if e.runs == nil {
		return nil
	}
	record := runs.NewRecord(source, workingDir, tasks)
	if err := e.runs.Add(record); err != nil {
		e.logger.Warn("failed to record run", "error", err)
		return nil
	}
	return record
}

func (e *Engine) transition(record *runs.Record, status runs.Status, reason string) {
	if record == nil {
		return
	}
	if err := e.runs.Transition(record.ID, status, reason); err != nil {
		e.logger.Warn("failed to update run", "run_id", record.ID, "status", status, "error", err)
	}
}

func (e *Engine) finishRun(record *runs.Record, results []*execution.Result, runErr error) {
	if record == nil {
		return
	}

	outcomes := make([]runs.TaskOutcome, 0, len(results))
	for _, r := range results {
		o := runs.TaskOutcome{Index: r.Index, ExitCode: r.ExitCode, Output: r.Output, Skipped: r.Skipped}
		if r.Error != nil {
			o.Error = r.Error.Error()
		}
		outcomes = append(outcomes, o)
	}

	reason := ""
	if runErr != nil {
		reason = runErr.Error()
	}
	if err := e.runs.Finish(record.ID, outcomes, reason); err != nil {
		e.logger.Warn("failed to update run", "run_id", record.ID, "error", err)
	}
}
