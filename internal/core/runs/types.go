package runs

import (
	"time"

	"github.com/ExoZora/exozora-core/internal/core"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPlanned   Status = "planned"   // Plan built, not yet validated
	StatusApproved  Status = "approved"  // Passed policy validation
	StatusRejected  Status = "rejected"  // Failed policy validation
	StatusExecuting Status = "executing" // Executor running
	StatusCompleted Status = "completed" // Every task succeeded
	StatusFailed    Status = "failed"    // A task failed during execution
)

// TaskEntry is the persisted description of a task.
type TaskEntry struct {
	Kind   core.TaskKind `json:"kind"`
	Target string        `json:"target"`
}

// TaskOutcome is the persisted result of one executed task.
type TaskOutcome struct {
	Index    int    `json:"index"`
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output,omitempty"`
	Skipped  bool   `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Record tracks one plan from validation to execution.
type Record struct {
	ID         string        `json:"id"`
	Source     string        `json:"source"`
	WorkingDir string        `json:"working_dir"`
	Tasks      []TaskEntry   `json:"tasks"`
	Status     Status        `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Outcomes   []TaskOutcome `json:"outcomes,omitempty"`
}

// NewRecord creates a planned record for tasks.
func NewRecord(source, workingDir string, tasks []core.Task) *Record {
	entries := make([]TaskEntry, 0, len(tasks))
	for _, t := range tasks {
		kind, target := core.Describe(t)
		entries = append(entries, TaskEntry{Kind: kind, Target: target})
	}

	now := time.Now()
	return &Record{
		ID:         uuid.New().String(),
		Source:     source,
		WorkingDir: workingDir,
		Tasks:      entries,
		Status:     StatusPlanned,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CanTransitionTo checks if a status transition is valid
func (r *Record) CanTransitionTo(newStatus Status) bool {
	validTransitions := map[Status][]Status{
		StatusPlanned:   {StatusApproved, StatusRejected},
		StatusApproved:  {StatusExecuting},
		StatusExecuting: {StatusCompleted, StatusFailed},
	}

	for _, status := range validTransitions[r.Status] {
		if status == newStatus {
			return true
		}
	}
	return false
}

// TransitionStatus updates the status if the transition is valid.
func (r *Record) TransitionStatus(newStatus Status, reason string) bool {
	if !r.CanTransitionTo(newStatus) {
		return false
	}
	r.Status = newStatus
	r.Reason = reason
	r.UpdatedAt = time.Now()
	return true
}

// Terminal reports whether no further transition is possible.
func (r *Record) Terminal() bool {
	switch r.Status {
	case StatusRejected, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// ShortID returns the first eight characters of the ID.
func (r *Record) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}
