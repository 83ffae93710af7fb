package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"worktoolkit/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past unify runs recorded in the journal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return fmt.Errorf("open run journal: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return printRunGroups(cmd, store, args[0])
			}
			return printRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func printRuns(cmd *cobra.Command, store *journal.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.TargetDir,
			strconv.Itoa(run.Groups),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"RUN", "STARTED", "TARGET", "GROUPS", "SKIPPED", "FAILED"},
		rows, 3, 4, 5))
	return nil
}

func printRunGroups(cmd *cobra.Command, store *journal.Store, runID string) error {
	groups, err := store.Groups(cmd.Context(), runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(groups) == 0 {
		fmt.Fprintf(out, "No groups recorded for run %s.\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.Key,
			strconv.Itoa(g.Sources),
			strconv.Itoa(g.Replaced),
			g.Status,
			g.Message,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"FEATURE", "SOURCES", "IMAGES", "STATUS", "MESSAGE"},
		rows, 1, 2))
	return nil
}
