package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"discforge/internal/drive"
)

func newDriveCommand(ctx *commandContext) *cobra.Command {
	driveCmd := &cobra.Command{
		Use:   "drive",
		Short: "Inspect the configured optical drive",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report the drive and media state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, err := drive.CheckStatus(cfg.DVD.Device)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.DVD.Device, status)
			return nil
		},
	}

	labelCmd := &cobra.Command{
		Use:   "label",
		Short: "Print the inserted disc's volume label",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			label, err := drive.ReadLabel(cmd.Context(), cfg.DVD.Device, 10*time.Second)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}

	waitCmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until a disc is inserted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			monitor := drive.NewMonitor(cfg.DVD.Device, ctx.loggerValue())
			if monitor == nil {
				return fmt.Errorf("no drive device configured")
			}
			timeout := time.Duration(cfg.DVD.WaitForDiscTimeoutSecs) * time.Second
			if err := monitor.WaitForDisc(cmd.Context(), timeout); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Disc ready")
			return nil
		},
	}

	driveCmd.AddCommand(statusCmd, labelCmd, waitCmd)
	return driveCmd
}
