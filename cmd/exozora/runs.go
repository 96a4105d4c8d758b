package main

import (
	"fmt"

	"github.com/ExoZora/exozora-core/internal/storage"
	"github.com/spf13/cobra"
)

var runsLimit int

func getRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Long:  "List the most recent plans processed by 'exozora run' and their verdicts.",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	cmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to show (0 for all)")
	return cmd
}

func listRuns(cmd *cobra.Command, args []string) error {
	m, err := openHistory()
	if err != nil {
		return err
	}

	records := m.All()
	if runsLimit > 0 && len(records) > runsLimit {
		records = records[len(records)-runsLimit:]
	}

	fmt.Fprint(cmd.OutOrStdout(), newRenderer(storage.GetConfig()).Runs(records))
	return nil
}
