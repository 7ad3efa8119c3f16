package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"mediavault/internal/api"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog counters and the most requested records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(reqCtx context.Context, client *api.Client) error {
				stats, err := client.Stats(reqCtx)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, stats)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Records: %d\n", stats.TotalRecords)
				fmt.Fprintf(out, "Accesses: %d\n", stats.TotalAccesses)

				kinds := make([]string, 0, len(stats.ByKind))
				for kind := range stats.ByKind {
					kinds = append(kinds, kind)
				}
				sort.Strings(kinds)
				for _, kind := range kinds {
					fmt.Fprintf(out, "  %s: %d\n", kind, stats.ByKind[kind])
				}

				if len(stats.MostAccessed) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Most requested:")
					fmt.Fprintln(out, renderMostAccessedTable(stats.MostAccessed))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw JSON response")
	return cmd
}

func renderMostAccessedTable(records []api.Artifact) string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Title,
			record.MediaKind,
			strconv.FormatInt(record.AccessCount, 10),
		})
	}
	return renderTable([]string{"Title", "Kind", "Accesses"}, rows, 2)
}
