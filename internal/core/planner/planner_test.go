package planner

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ExoZora/exozora-core/internal/core"
)

func TestParseDocument(t *testing.T) {
	doc := `
tasks:
  - create_dir: build
  - create_dir: {path: dist}
  - write_file:
      path: build/output.txt
      contents: hello
  - write_file: {path: empty.txt}
  - run: echo 'hello world'
  - run:
      command: go
      args: [test, ./...]
  - run: {command: pwd}
`
	plan, err := ParseDocument([]byte(doc))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	want := []core.Task{
		core.CreateDir{Path: "build"},
		core.CreateDir{Path: "dist"},
		core.WriteFile{Path: "build/output.txt", Contents: "hello"},
		core.WriteFile{Path: "empty.txt"},
		core.RunCommand{Command: "echo", Args: []string{"hello world"}},
		core.RunCommand{Command: "go", Args: []string{"test", "./..."}},
		core.RunCommand{Command: "pwd"},
	}
	if got := plan.Tasks(); !reflect.DeepEqual(got, want) {
		t.Errorf("ParseDocument() tasks =\n%#v\nwant\n%#v", got, want)
	}
}

func TestParseDocument_Empty(t *testing.T) {
	for _, doc := range []string{"", "   \n", "tasks: []", "tasks:\n", "# nothing yet\n"} {
		plan, err := ParseDocument([]byte(doc))
		if err != nil {
			t.Fatalf("ParseDocument(%q) failed: %v", doc, err)
		}
		if plan.Len() != 0 {
			t.Errorf("ParseDocument(%q) returned %d tasks, want 0", doc, plan.Len())
		}
	}
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "tasks: [unterminated"},
		{"unknown task", "tasks:\n  - delete: build\n"},
		{"two keys", "tasks:\n  - create_dir: a\n    run: ls\n"},
		{"scalar task", "tasks:\n  - ls\n"},
		{"unknown field", "tasks:\n  - write_file: {path: a, mode: 0644}\n"},
		{"write without path", "tasks:\n  - write_file: {contents: x}\n"},
		{"empty create_dir", "tasks:\n  - create_dir:\n"},
		{"run without command", "tasks:\n  - run: {args: [x]}\n"},
		{"args not a list", "tasks:\n  - run: {command: echo, args: {a: b}}\n"},
		{"shell pipe", "tasks:\n  - run: ls | wc -l\n"},
		{"empty run", "tasks:\n  - run: ''\n"},
		{"misspelled tasks key", "taks:\n  - run: rm -rf build\n"},
		{"unknown top-level key", "tasks: []\nsteps:\n  - run: ls\n"},
		{"null create_dir", "tasks:\n  - create_dir: ~\n"},
		{"null create_dir path", "tasks:\n  - create_dir: {path: null}\n"},
		{"null write_file path", "tasks:\n  - write_file: {path: ~, contents: x}\n"},
		{"null run", "tasks:\n  - run: ~\n"},
		{"null command", "tasks:\n  - run: {command: ~}\n"},
		{"second document", "tasks:\n  - create_dir: a\n---\ntasks:\n  - run: curl x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidPlan) {
				t.Errorf("ParseDocument() error = %v, want ErrInvalidPlan", err)
			}
		})
	}
}

func TestParseDocument_NullOptionalFields(t *testing.T) {
	doc := `
tasks:
  - write_file: {path: empty.txt, contents: ~}
  - run: {command: pwd, args: ~}
`
	plan, err := ParseDocument([]byte(doc))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	want := []core.Task{
		core.WriteFile{Path: "empty.txt"},
		core.RunCommand{Command: "pwd"},
	}
	if got := plan.Tasks(); !reflect.DeepEqual(got, want) {
		t.Errorf("ParseDocument() tasks =\n%#v\nwant\n%#v", got, want)
	}
}

func TestDocumentPlanner_Plan(t *testing.T) {
	var p Planner = NewDocumentPlanner()

	plan, err := p.Plan(context.Background(), "tasks:\n  - run: ls -la\n")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan.Len() != 1 {
		t.Errorf("Expected 1 task, got %d", plan.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Plan(ctx, "tasks: []"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
