package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediavault/internal/api"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List the cached catalog records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(reqCtx context.Context, client *api.Client) error {
				listing, err := client.Records(reqCtx)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, listing)
				}

				out := cmd.OutOrStdout()
				if len(listing.Records) == 0 {
					fmt.Fprintln(out, "No cached records")
					return nil
				}
				fmt.Fprintln(out, renderRecordsTable(listing.Records))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw JSON response")
	cmd.AddCommand(newRecordsPurgeCommand(ctx))
	return cmd
}

func newRecordsPurgeCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every cached catalog record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to purge the catalog without --yes")
			}
			return ctx.withClient(cmd, func(reqCtx context.Context, client *api.Client) error {
				result, err := client.PurgeRecords(reqCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records\n", result.Removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the purge")
	return cmd
}

func renderRecordsTable(records []api.Artifact) string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.FormatInt(record.ID, 10),
			truncateText(record.Title, 40),
			record.MediaKind,
			strconv.FormatInt(record.AccessCount, 10),
			record.CreatedAt,
		})
	}
	return renderTable([]string{"ID", "Title", "Kind", "Accesses", "Created"}, rows, 0, 3)
}

func truncateText(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
