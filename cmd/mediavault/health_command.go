package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediavault/internal/api"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check catalog database health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(reqCtx context.Context, client *api.Client) error {
				health, err := client.Health(reqCtx)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, health)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatusLine("Database file", boolKind(health.DatabaseExists), "", colorize))
				fmt.Fprintln(out, renderStatusLine("Readable", boolKind(health.DatabaseReadable), "", colorize))
				fmt.Fprintln(out, renderStatusLine("Schema", boolKind(health.TableExists), "", colorize))
				fmt.Fprintln(out, renderStatusLine("Integrity", boolKind(health.IntegrityCheck), "", colorize))
				fmt.Fprintln(out, renderStatusLine("Records", statusInfo, fmt.Sprintf("%d", health.TotalRecords), colorize))
				if health.Error != "" {
					fmt.Fprintln(out, renderStatusLine("Detail", statusError, health.Error, colorize))
				}
				if !health.Healthy {
					return errors.New("catalog database is unhealthy")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw JSON response")
	return cmd
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}
