package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"discd/internal/metadata"
)

func newInfoCommand(addrFlag *string, jsonFlag *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the inserted disc's track list",
		RunE: func(cmd *cobra.Command, args []string) error {
			var info metadata.Disc
			if err := newClient(*addrFlag).getJSON("/api/cd/info", &info); err != nil {
				return err
			}
			if *jsonFlag {
				return printJSON(cmd.OutOrStdout(), info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s - %s (%d tracks, %s)\n",
				info.Artist, info.Title, len(info.Tracks), formatDuration(info.TotalSeconds()))

			rows := make([][]string, 0, len(info.Tracks))
			for _, track := range info.Tracks {
				rows = append(rows, []string{
					strconv.Itoa(track.Number),
					track.Title,
					formatDuration(track.DurationSeconds),
				})
			}
			aligns := []columnAlignment{alignRight, alignLeft, alignRight}
			fmt.Fprintln(out, renderTable([]string{"#", "TITLE", "LENGTH"}, rows, aligns))
			return nil
		},
	}
}

func formatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
