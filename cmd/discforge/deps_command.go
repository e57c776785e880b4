package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"discforge/internal/deps"
	"discforge/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external tools discforge depends on",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				switch {
				case status.Available:
				case status.Optional:
					state = "missing (optional)"
				default:
					state = "MISSING"
				}
				version := ""
				if status.Available {
					version = deps.ToolVersion(cmd.Context(), status.Command)
				}
				detail := status.Description
				if status.Detail != "" {
					detail = status.Detail
				}
				rows = append(rows, []string{status.Name, status.Command, state, version, detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"Tool", "Command", "Status", "Version", "Notes"}, rows))

			checkRows := [][]string{}
			for _, result := range preflight.RunAll(cfg) {
				state := "ok"
				if !result.Passed {
					state = "FAILED"
				}
				checkRows = append(checkRows, []string{result.Name, state, result.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"Check", "Status", "Detail"}, checkRows))

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("required tools missing: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
