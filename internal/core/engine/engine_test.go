package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ExoZora/exozora-core/internal/core"
	"github.com/ExoZora/exozora-core/internal/core/execution"
	"github.com/ExoZora/exozora-core/internal/core/planner"
	"github.com/ExoZora/exozora-core/internal/core/policy"
	"github.com/ExoZora/exozora-core/internal/core/runs"
)

const safePlan = `
tasks:
  - create_dir: build
  - write_file: {path: build/output.txt, contents: hello}
  - run: cat build/output.txt
`

func newTestEngine(t *testing.T, opts ...execution.Option) (*Engine, *runs.Manager) {
	t.Helper()
	m, err := runs.NewManager(filepath.Join(t.TempDir(), "runs.json"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	e := NewEngine(
		planner.NewDocumentPlanner(),
		policy.NewValidator(nil),
		execution.NewExecutor(5*time.Second, opts...),
		WithRuns(m),
	)
	return e, m
}

func TestEngine_ProcessApproved(t *testing.T) {
	e, m := newTestEngine(t)
	wd := t.TempDir()

	outcome, err := e.Process(context.Background(), "plan.yaml", safePlan, wd)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !outcome.Approved() {
		t.Error("Expected approved outcome")
	}
	if len(outcome.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(outcome.Results))
	}
	if outcome.Results[2].Output != "hello" {
		t.Errorf("Expected 'hello', got '%s'", outcome.Results[2].Output)
	}
	if _, err := os.Stat(filepath.Join(wd, "build", "output.txt")); err != nil {
		t.Errorf("Expected output file: %v", err)
	}

	record, err := m.Get(outcome.RunID)
	if err != nil {
		t.Fatalf("Run not recorded: %v", err)
	}
	if record.Status != runs.StatusCompleted {
		t.Errorf("Expected completed run, got %s", record.Status)
	}
	if len(record.Outcomes) != 3 {
		t.Errorf("Expected 3 recorded outcomes, got %d", len(record.Outcomes))
	}
}

func TestEngine_ProcessRejected(t *testing.T) {
	e, m := newTestEngine(t)
	wd := t.TempDir()

	input := `
tasks:
  - create_dir: build
  - run: sudo rm -rf /
  - write_file: {path: ../../etc/passwd, contents: x}
`
	outcome, err := e.Process(context.Background(), "evil.yaml", input, wd)
	if !errors.Is(err, policy.ErrSudoDetected) {
		t.Fatalf("Expected ErrSudoDetected, got %v", err)
	}
	if outcome.Approved() {
		t.Error("Expected rejected outcome")
	}
	if len(outcome.Results) != 0 {
		t.Error("Nothing may execute after rejection")
	}
	if _, err := os.Stat(filepath.Join(wd, "build")); !os.IsNotExist(err) {
		t.Error("Rejected plan must not create anything")
	}

	record, err := m.Get(outcome.RunID)
	if err != nil {
		t.Fatalf("Run not recorded: %v", err)
	}
	if record.Status != runs.StatusRejected {
		t.Errorf("Expected rejected run, got %s", record.Status)
	}
	if record.Reason != "sudo detected in command: sudo" {
		t.Errorf("Unexpected reason %q", record.Reason)
	}
}

func TestEngine_ProcessTaskFailure(t *testing.T) {
	e, m := newTestEngine(t)

	input := "tasks:\n  - run: sh -c 'exit 4'\n  - create_dir: after\n"
	outcome, err := e.Process(context.Background(), "fail.yaml", input, t.TempDir())
	if !errors.Is(err, ErrTaskFailed) {
		t.Fatalf("Expected ErrTaskFailed, got %v", err)
	}
	if len(outcome.Results) != 1 || outcome.Results[0].ExitCode != 4 {
		t.Errorf("Unexpected results: %+v", outcome.Results)
	}

	record, _ := m.Get(outcome.RunID)
	if record.Status != runs.StatusFailed {
		t.Errorf("Expected failed run, got %s", record.Status)
	}
}

func TestEngine_ProcessDryRun(t *testing.T) {
	e, _ := newTestEngine(t, execution.WithDryRun(true))
	wd := t.TempDir()

	outcome, err := e.Process(context.Background(), "plan.yaml", safePlan, wd)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	for _, r := range outcome.Results {
		if !r.Skipped {
			t.Errorf("Expected task %d to be skipped", r.Index)
		}
	}
	if _, err := os.Stat(filepath.Join(wd, "build")); !os.IsNotExist(err) {
		t.Error("Dry run must not create anything")
	}
}

func TestEngine_ProcessInvalidDocument(t *testing.T) {
	e, m := newTestEngine(t)

	_, err := e.Process(context.Background(), "bad.yaml", "tasks:\n  - delete: x\n", t.TempDir())
	if !errors.Is(err, planner.ErrInvalidPlan) {
		t.Errorf("Expected ErrInvalidPlan, got %v", err)
	}
	if len(m.All()) != 0 {
		t.Error("Planner failures must not be recorded as runs")
	}
}

func TestEngine_Check(t *testing.T) {
	e, m := newTestEngine(t)
	wd := t.TempDir()

	input := `
tasks:
  - run: /usr/bin/CURL http://example.com
  - create_dir: ok
  - write_file: {path: /etc/shadow, contents: x}
`
	outcome, err := e.Check(context.Background(), "plan.yaml", input, wd)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if outcome.Approved() {
		t.Error("Expected violations")
	}
	if len(outcome.Violations) != 2 {
		t.Fatalf("Expected 2 violations, got %d", len(outcome.Violations))
	}
	if !errors.Is(outcome.Violations[0].Err, policy.ErrNetworkOperation) {
		t.Errorf("Expected network violation first, got %v", outcome.Violations[0].Err)
	}
	if !errors.Is(outcome.Violations[1].Err, policy.ErrPathEscape) {
		t.Errorf("Expected path violation second, got %v", outcome.Violations[1].Err)
	}
	if len(m.All()) != 0 {
		t.Error("Check must not record runs")
	}
}

func TestEngine_CheckRelativeWorkingDir(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Check(context.Background(), "-", "tasks:\n  - create_dir: a\n", "relative")
	if !errors.Is(err, policy.ErrRelativeWorkingDir) {
		t.Errorf("Expected ErrRelativeWorkingDir, got %v", err)
	}
}

func TestEngine_WithoutHistory(t *testing.T) {
	e := NewEngine(planner.NewDocumentPlanner(), policy.NewValidator(nil), execution.NewExecutor(0))

	outcome, err := e.Process(context.Background(), "-", "tasks: []", t.TempDir())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if outcome.RunID != "" {
		t.Errorf("Expected no run ID without history, got %s", outcome.RunID)
	}
}

func TestEngine_EndToEndScenario(t *testing.T) {
	e := NewEngine(planner.NewDocumentPlanner(), policy.NewValidator(nil), execution.NewExecutor(0, execution.WithDryRun(true)))

	outcome, err := e.Process(context.Background(), "-", `
tasks:
  - create_dir: build
  - write_file: {path: build/output.txt, contents: hello}
  - run: echo hello
`, "/home/user/project")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := []core.Task{
		core.CreateDir{Path: "build"},
		core.WriteFile{Path: "build/output.txt", Contents: "hello"},
		core.RunCommand{Command: "echo", Args: []string{"hello"}},
	}
	if len(outcome.Tasks) != len(want) {
		t.Fatalf("Expected %d tasks, got %d", len(want), len(outcome.Tasks))
	}
	for i := range want {
		gotKind, gotTarget := core.Describe(outcome.Tasks[i])
		wantKind, wantTarget := core.Describe(want[i])
		if gotKind != wantKind || gotTarget != wantTarget {
			t.Errorf("task %d = %s %s, want %s %s", i, gotKind, gotTarget, wantKind, wantTarget)
		}
	}
}
