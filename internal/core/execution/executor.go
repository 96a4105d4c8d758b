package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ExoZora/exozora-core/internal/core"
	"github.com/ExoZora/exozora-core/internal/core/policy"
)

var (
	// ErrUnapprovedPlan is returned for an ApprovedPlan that did not come
	// out of a successful validation.
	ErrUnapprovedPlan = errors.New("plan was not approved by policy validation")

	// ErrPlanConsumed is returned when an approved plan is executed twice.
	ErrPlanConsumed = core.ErrPlanConsumed
)

// Executor performs approved tasks.
type Executor struct {
	timeout time.Duration
	dryRun  bool
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithDryRun makes the executor report tasks without performing them.
func WithDryRun(dryRun bool) Option {
	return func(e *Executor) { e.dryRun = dryRun }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// NewExecutor creates a new executor. timeout bounds each RunCommand; zero
// means no per-command limit.
func NewExecutor(timeout time.Duration, opts ...Option) *Executor {
	e := &Executor{
		timeout: timeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one task.
type Result struct {
	Index    int
	Kind     core.TaskKind
	Target   string
	Output   string
	ExitCode int
	Skipped  bool
	Error    error
}

// Failed reports whether the task did not complete.
func (r *Result) Failed() bool {
	return r.Error != nil
}

// Execute consumes plan and performs its tasks in order inside the working
// directory the plan was approved for.
// It stops at the first failing task; the returned results cover every
// task attempted, the failed one last. A non-nil error means the plan
// itself was unusable or ctx was canceled before the next task.
func (e *Executor) Execute(ctx context.Context, plan *policy.ApprovedPlan) ([]*Result, error) {
	if !plan.Issued() {
		return nil, ErrUnapprovedPlan
	}
	workingDir := plan.WorkingDir()
	tasks, err := plan.IntoTasks()
	if err != nil {
		return nil, err
	}

	e.logger.Info("execution start", "task_count", len(tasks), "working_dir", workingDir, "dry_run", e.dryRun)

	results := make([]*Result, 0, len(tasks))
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		kind, target := core.Describe(task)
		result := &Result{Index: i, Kind: kind, Target: target}
		if e.dryRun {
			result.Skipped = true
		} else {
			e.perform(ctx, task, workingDir, result)
		}
		results = append(results, result)

		if result.Failed() {
			e.logger.Warn("task failed", "index", i, "kind", kind, "target", target, "exit_code", result.ExitCode, "error", result.Error)
			break
		}
		e.logger.Debug("task done", "index", i, "kind", kind, "target", target, "skipped", result.Skipped)
	}

	e.logger.Info("execution end", "task_count", len(tasks), "attempted", len(results))
	return results, nil
}

func (e *Executor) perform(ctx context.Context, task core.Task, workingDir string, result *Result) {
	switch t := task.(type) {
	case core.CreateDir:
		if err := os.MkdirAll(resolve(workingDir, t.Path), 0755); err != nil {
			result.Error = fmt.Errorf("failed to create directory: %w", err)
		}

	case core.WriteFile:
		if err := os.WriteFile(resolve(workingDir, t.Path), []byte(t.Contents), 0644); err != nil {
			result.Error = fmt.Errorf("failed to write file: %w", err)
		}

	case core.RunCommand:
		e.run(ctx, t, workingDir, result)

	default:
		result.Error = fmt.Errorf("%w: %T", core.ErrUnsupportedTask, task)
	}

	if result.Error != nil && result.ExitCode == 0 {
		result.ExitCode = 1
	}
}

func (e *Executor) run(ctx context.Context, cmd core.RunCommand, workingDir string, result *Result) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(ctx, cmd.Command, cmd.Args...)
	execCmd.Dir = workingDir

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n" + stderr.String()
	}
	result.Output = strings.TrimSpace(output)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		result.Error = err
	}
}

func resolve(workingDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(workingDir, p)
}
