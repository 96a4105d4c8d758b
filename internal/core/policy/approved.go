package policy

import "github.com/ExoZora/exozora-core/internal/core"

// ApprovedPlan is a plan that passed validation. It has no exported
// constructor: holding an issued ApprovedPlan means every task in it passed
// every rule against WorkingDir. The zero value is not issued.
type ApprovedPlan struct {
	tasks      []core.Task
	workingDir string
	issued     bool
	consumed   bool
}

func newApprovedPlan(tasks []core.Task, workingDir string) *ApprovedPlan {
	return &ApprovedPlan{tasks: tasks, workingDir: workingDir, issued: true}
}

// WorkingDir returns the directory the tasks were confined to during
// validation. Paths in the plan are relative to it.
func (a *ApprovedPlan) WorkingDir() string {
	if a == nil {
		return ""
	}
	return a.workingDir
}

// Issued reports whether the plan was produced by a successful validation.
func (a *ApprovedPlan) Issued() bool {
	return a != nil && a.issued
}

// Tasks returns a copy of the approved task list.
func (a *ApprovedPlan) Tasks() []core.Task {
	if a == nil {
		return nil
	}
	return core.NewPlan(a.tasks...).Tasks()
}

// Len returns the number of approved tasks.
func (a *ApprovedPlan) Len() int {
	if a == nil {
		return 0
	}
	return len(a.tasks)
}

// Consumed reports whether IntoTasks has been called.
func (a *ApprovedPlan) Consumed() bool {
	return a == nil || a.consumed
}

// IntoTasks hands over the approved task list and leaves the plan
// consumed, so it cannot be executed twice.
func (a *ApprovedPlan) IntoTasks() ([]core.Task, error) {
	if a.Consumed() {
		return nil, core.ErrPlanConsumed
	}
	tasks := a.tasks
	a.tasks = nil
	a.consumed = true
	return tasks, nil
}
