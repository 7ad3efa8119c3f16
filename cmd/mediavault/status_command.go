package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediavault/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon runtime information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(reqCtx context.Context, client *api.Client) error {
				status, err := client.Status(reqCtx)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, status)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Mediavault Daemon", colorize) {
					fmt.Fprintln(out, line)
				}

				runKind := statusOK
				runText := "running"
				if !status.Running {
					runKind = statusError
					runText = "stopped"
				}
				fmt.Fprintln(out, renderStatusLine("Daemon", runKind, runText, colorize))
				fmt.Fprintln(out, renderStatusLine("PID", statusInfo, strconv.Itoa(status.PID), colorize))
				fmt.Fprintln(out, renderStatusLine("Catalog", statusInfo, status.CatalogDBPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, status.LockFilePath, colorize))
				fmt.Fprintln(out, renderStatusLine("Sweep interval", statusInfo, status.SweepInterval, colorize))
				fmt.Fprintln(out, renderStatusLine("Retention", statusInfo, fmt.Sprintf("%d days", status.RetentionDays), colorize))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw JSON response")
	return cmd
}
