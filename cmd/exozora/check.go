package main

import (
	"errors"
	"fmt"

	"github.com/ExoZora/exozora-core/internal/storage"
	"github.com/spf13/cobra"
)

// errViolations is returned by check when a plan would be rejected.
var errViolations = errors.New("plan violates policy")

func getCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <plan>",
		Short: "Validate a plan without executing it",
		Long: `Validate a plan document against the security policy and list every
violation. Nothing is executed. Use "-" to read the plan from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := storage.GetConfig()

	wd, err := resolveWorkingDir(workDirFlag)
	if err != nil {
		return err
	}
	source, input, err := readPlanSource(cmd, args[0])
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg, true)
	if err != nil {
		return err
	}
	outcome, err := eng.Check(cmd.Context(), source, input, wd)
	if err != nil {
		return err
	}

	renderer := newRenderer(cfg)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderer.PlanReport(source, outcome.Tasks, outcome.Violations))

	if n := len(outcome.Violations); n > 0 {
		return fmt.Errorf("%w: %d violation(s)", errViolations, n)
	}
	fmt.Fprintln(out, renderer.Verdict(len(outcome.Tasks), nil))
	return nil
}
