package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ExoZora/exozora-core/internal/core/policy"
	"github.com/ExoZora/exozora-core/internal/storage"
	"github.com/spf13/cobra"
)

// exitRejected is the process status for a plan that fails the policy gate.
const exitRejected = 2

var (
	workDirFlag string
	verbose     bool
	noRender    bool
	logger      = slog.New(slog.DiscardHandler)
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "exozora",
		Short: "Policy-gated task runner",
		Long: `exozora - validates a plan of tasks against a fixed security policy
and executes it only if every task is approved.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = newLogger(cmd.ErrOrStderr(), verbose)
			_, err := storage.InitConfig()
			return err
		},
	}

	root.PersistentFlags().StringVarP(&workDirFlag, "workdir", "w", "", "working directory tasks are confined to (default: current directory)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().BoolVar(&noRender, "no-render", false, "disable markdown rendering")

	root.AddCommand(getCheckCommand(), getRunCommand(), getRunsCommand())
	return root
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func exitCode(err error) int {
	if policy.IsPolicyError(err) || errors.Is(err, errViolations) {
		return exitRejected
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}
