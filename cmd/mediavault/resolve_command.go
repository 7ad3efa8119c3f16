package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediavault/internal/api"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var video bool
	var refresh bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "resolve <query>...",
		Short: "Resolve a media request, acquiring the payload on a cache miss",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			kind := "audio"
			if video {
				kind = "video"
			}

			return ctx.withClient(cmd, func(reqCtx context.Context, client *api.Client) error {
				resolution, err := client.Resolve(reqCtx, api.ResolveRequest{
					Query:   query,
					Kind:    kind,
					Refresh: refresh,
				})
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resolution)
				}
				printResolution(cmd, resolution)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&video, "video", false, "Resolve as video instead of audio")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Skip the cache and force a fresh acquisition")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the raw JSON response")
	return cmd
}

func printResolution(cmd *cobra.Command, resolution *api.ResolveResponse) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	kind := statusOK
	summary := "acquired fresh payload"
	if resolution.Cached {
		summary = fmt.Sprintf("cache hit (%s, confidence %.2f)", resolution.MatchTier, resolution.Confidence)
	}
	fmt.Fprintln(out, renderStatusLine("Resolution", kind, summary, colorize))

	if record := resolution.Record; record != nil {
		fmt.Fprintln(out, renderStatusLine("Title", statusInfo, record.Title, colorize))
		fmt.Fprintln(out, renderStatusLine("Kind", statusInfo, record.MediaKind, colorize))
		fmt.Fprintln(out, renderStatusLine("Fingerprint", statusInfo, record.Fingerprint, colorize))
		fmt.Fprintln(out, renderStatusLine("Blob", statusInfo, record.BlobRef, colorize))
		fmt.Fprintln(out, renderStatusLine("Accesses", statusInfo, fmt.Sprintf("%d", record.AccessCount), colorize))
	}
}
