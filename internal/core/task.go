package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnsupportedTask is returned when a task value is nil or not one of
// the known variants.
var ErrUnsupportedTask = errors.New("unsupported task")

// TaskKind names a task variant.
type TaskKind string

const (
	KindCreateDir  TaskKind = "create_dir"
	KindWriteFile  TaskKind = "write_file"
	KindRunCommand TaskKind = "run_command"
)

// Task is one atomic operation. The set of variants is closed:
// CreateDir, WriteFile and RunCommand.
type Task interface {
	Kind() TaskKind
	isTask()
	clone() Task
}

// CreateDir creates a directory at Path.
type CreateDir struct {
	Path string
}

// WriteFile writes Contents to the file at Path.
type WriteFile struct {
	Path     string
	Contents string
}

// RunCommand runs Command with Args.
type RunCommand struct {
	Command string
	Args    []string
}

func (CreateDir) Kind() TaskKind  { return KindCreateDir }
func (WriteFile) Kind() TaskKind  { return KindWriteFile }
func (RunCommand) Kind() TaskKind { return KindRunCommand }

func (CreateDir) isTask()  {}
func (WriteFile) isTask()  {}
func (RunCommand) isTask() {}

func (t CreateDir) clone() Task { return t }
func (t WriteFile) clone() Task { return t }

func (t RunCommand) clone() Task {
	t.Args = slices.Clone(t.Args)
	return t
}

// Describe returns the task kind and its main target (a path or a
// command line) for logs and reports.
func Describe(task Task) (TaskKind, string) {
	switch t := task.(type) {
	case CreateDir:
		return t.Kind(), t.Path
	case WriteFile:
		return t.Kind(), t.Path
	case RunCommand:
		if len(t.Args) == 0 {
			return t.Kind(), t.Command
		}
		return t.Kind(), t.Command + " " + strings.Join(t.Args, " ")
	case nil:
		return "", ""
	default:
		return task.Kind(), fmt.Sprintf("%T", task)
	}
}

func cloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t != nil {
			out[i] = t.clone()
		}
	}
	return out
}
