package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"discforge/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past transcoding jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, ctx, 20)
		},
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, ctx, limit)
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")

	var keep int
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(journal *history.Store) error {
				removed, err := journal.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records\n", removed)
				return nil
			})
		},
	}
	pruneCmd.Flags().IntVarP(&keep, "keep", "k", 50, "Number of records to keep")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole job history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(journal *history.Store) error {
				if err := journal.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
				return nil
			})
		},
	}

	historyCmd.AddCommand(listCmd, pruneCmd, clearCmd)
	return historyCmd
}

func withJournal(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	journal, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer journal.Close()
	return fn(journal)
}

func runHistoryList(cmd *cobra.Command, ctx *commandContext, limit int) error {
	return withJournal(ctx, func(journal *history.Store) error {
		records, err := journal.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded yet")
			return nil
		}

		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			rows = append(rows, []string{
				fmt.Sprintf("%d", rec.ID),
				rec.CreatedAt.Local().Format("2006-01-02 15:04"),
				rec.InputSpec,
				rec.OutputType,
				string(rec.Status),
				rec.Duration().Round(time.Second).String(),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "Started", "Input", "Output", "Status", "Duration"},
			rows, 1, 6))
		return nil
	})
}
