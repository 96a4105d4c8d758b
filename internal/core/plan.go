package core

import "errors"

// ErrPlanConsumed is returned when a plan is used after its tasks were
// handed over.
var ErrPlanConsumed = errors.New("plan already consumed")

// Plan is an ordered sequence of tasks awaiting policy validation.
// It represents untrusted intent. The task list is private; callers read
// it through Tasks (a copy) or take ownership through IntoTasks.
type Plan struct {
	tasks    []Task
	consumed bool
}

// NewPlan creates a plan from tasks in execution order.
func NewPlan(tasks ...Task) *Plan {
	return &Plan{tasks: cloneTasks(tasks)}
}

// Tasks returns a copy of the task list.
func (p *Plan) Tasks() []Task {
	if p == nil {
		return nil
	}
	return cloneTasks(p.tasks)
}

// Len returns the number of tasks.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.tasks)
}

// Consumed reports whether IntoTasks has been called.
func (p *Plan) Consumed() bool {
	return p == nil || p.consumed
}

// IntoTasks hands over the task list and leaves the plan consumed.
// A second call returns ErrPlanConsumed.
func (p *Plan) IntoTasks() ([]Task, error) {
	if p.Consumed() {
		return nil, ErrPlanConsumed
	}
	tasks := p.tasks
	p.tasks = nil
	p.consumed = true
	return tasks, nil
}
