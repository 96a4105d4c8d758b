package main

import (
	"fmt"

	"github.com/ExoZora/exozora-core/internal/storage"
	"github.com/spf13/cobra"
)

var runDryRun bool

func getRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <plan>",
		Short: "Validate a plan and execute it if approved",
		Long: `Validate a plan document against the security policy. If every task
passes, execute the tasks in order inside the working directory, stopping at
the first failure. Use "-" to read the plan from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: runPlan,
	}

	cmd.Flags().BoolVar(&runDryRun, "dry-run", false, "validate and report tasks without performing them")
	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg := storage.GetConfig()

	wd, err := resolveWorkingDir(workDirFlag)
	if err != nil {
		return err
	}
	source, input, err := readPlanSource(cmd, args[0])
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg, runDryRun || cfg.Executor.DryRun)
	if err != nil {
		return err
	}

	renderer := newRenderer(cfg)
	out := cmd.OutOrStdout()

	outcome, err := eng.Process(cmd.Context(), source, input, wd)
	if outcome == nil {
		return err
	}

	fmt.Fprintln(out, renderer.Verdict(len(outcome.Tasks), outcome.Rejection))
	if outcome.Rejection != nil {
		return err
	}

	fmt.Fprint(out, renderer.Results(outcome.Results))
	if outcome.RunID != "" {
		fmt.Fprintf(out, "run %s\n", outcome.RunID)
	}
	return err
}
