package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediavault/internal/api"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Look a query up in the cache without acquiring anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			return ctx.withClient(cmd, func(reqCtx context.Context, client *api.Client) error {
				result, err := client.Search(reqCtx, query)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, result)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				if !result.Found {
					fmt.Fprintln(out, renderStatusLine("Match", statusWarn, "no cached record", colorize))
					return nil
				}
				detail := fmt.Sprintf("%s (confidence %.2f)", result.MatchTier, result.Confidence)
				fmt.Fprintln(out, renderStatusLine("Match", statusOK, detail, colorize))
				if record := result.Record; record != nil {
					fmt.Fprintln(out, renderStatusLine("Title", statusInfo, record.Title, colorize))
					fmt.Fprintln(out, renderStatusLine("Blob", statusInfo, record.BlobRef, colorize))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw JSON response")
	return cmd
}
