package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ExoZora/exozora-core/internal/core/engine"
	"github.com/ExoZora/exozora-core/internal/core/execution"
	"github.com/ExoZora/exozora-core/internal/core/planner"
	"github.com/ExoZora/exozora-core/internal/core/policy"
	"github.com/ExoZora/exozora-core/internal/core/runs"
	"github.com/ExoZora/exozora-core/internal/storage"
	"github.com/ExoZora/exozora-core/internal/terminal"
	"github.com/spf13/cobra"
)

// resolveWorkingDir turns dir (or the current directory when empty) into
// the absolute, symlink-free directory the policy gate confines tasks to.
func resolveWorkingDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to stat working directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("working directory %s is not a directory", resolved)
	}
	return resolved, nil
}

// readPlanSource reads a plan document from path, or from stdin for "-".
func readPlanSource(cmd *cobra.Command, path string) (string, string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read plan from stdin: %w", err)
		}
		return "stdin", string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read plan: %w", err)
	}
	return path, string(data), nil
}

func newEngine(cfg *storage.Config, dryRun bool) (*engine.Engine, error) {
	executor := execution.NewExecutor(
		cfg.Executor.CommandTimeout(),
		execution.WithDryRun(dryRun),
		execution.WithLogger(logger),
	)

	opts := []engine.Option{engine.WithLogger(logger)}
	if cfg.History.Enabled {
		m, err := openHistory()
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithRuns(m))
	}

	return engine.NewEngine(
		planner.NewDocumentPlanner(),
		policy.NewValidator(&cfg.Policy),
		executor,
		opts...,
	), nil
}

func openHistory() (*runs.Manager, error) {
	path, err := storage.GetHistoryPath()
	if err != nil {
		return nil, err
	}
	m, err := runs.NewManager(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return m, nil
}

func newRenderer(cfg *storage.Config) *terminal.Renderer {
	return terminal.NewRenderer(cfg.Output.Width, cfg.Output.RenderMarkdown && !noRender)
}
