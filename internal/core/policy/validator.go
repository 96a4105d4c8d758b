package policy

import (
	"errors"
	"fmt"

	"github.com/ExoZora/exozora-core/internal/core"
)

// Validator applies the rule set to plans. It holds no mutable state and
// may be shared between goroutines.
type Validator struct {
	network denyList
}

// NewValidator creates a validator for policy. A nil policy means the
// built-in rules only.
func NewValidator(p *Policy) *Validator {
	if p == nil {
		p = DefaultPolicy()
	}
	return &Validator{network: newDenyList(p.ExtraNetworkCommands)}
}

var defaultValidator = &Validator{network: defaultDenyList}

// Validate checks plan against the built-in rules. See Validator.Validate.
func Validate(plan *core.Plan, workingDir string) (*ApprovedPlan, error) {
	return defaultValidator.Validate(plan, workingDir)
}

// Validate consumes plan, checks every task in order and returns the first
// violation as a *PolicyError. If all tasks pass, the tasks are promoted
// into an ApprovedPlan. workingDir must be absolute and already resolved by
// the caller.
//
// The plan is consumed whatever the verdict; validating it again returns
// core.ErrPlanConsumed.
func (v *Validator) Validate(plan *core.Plan, workingDir string) (*ApprovedPlan, error) {
	tasks, err := plan.IntoTasks()
	if err != nil {
		return nil, err
	}

	for _, task := range tasks {
		if err := v.checkTask(task, workingDir); err != nil {
			return nil, err
		}
	}

	// All tasks passed: promote.
	return newApprovedPlan(tasks, workingDir), nil
}

// Violation is one rule violation found by Violations.
type Violation struct {
	Index int
	Task  core.Task
	Err   error
}

// Violations lists every violation in plan, in task order, without
// consuming it. An empty result does not approve anything; only Validate
// produces an ApprovedPlan.
func (v *Validator) Violations(plan *core.Plan, workingDir string) []Violation {
	var out []Violation
	for i, task := range plan.Tasks() {
		if err := v.checkTask(task, workingDir); err != nil {
			out = append(out, Violation{Index: i, Task: task, Err: err})
		}
	}
	return out
}

func (v *Validator) checkTask(task core.Task, workingDir string) error {
	switch t := task.(type) {
	case core.RunCommand:
		// sudo first: it is the more severe violation.
		if err := CheckSudo(t.Command, t.Args); err != nil {
			return err
		}
		return v.network.check(t.Command)

	case core.CreateDir:
		return CheckConfinement(t.Path, workingDir)

	case core.WriteFile:
		return CheckConfinement(t.Path, workingDir)

	default:
		return fmt.Errorf("%w: %T", core.ErrUnsupportedTask, task)
	}
}

// IsPolicyError reports whether err is a rule violation, as opposed to a
// usage error such as a consumed plan or a relative working directory.
func IsPolicyError(err error) bool {
	var pe *PolicyError
	return errors.As(err, &pe)
}
