package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"discd/internal/daemon"
)

func newStatusCommand(addrFlag *string, jsonFlag *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and playback status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status daemon.Status
			if err := newClient(*addrFlag).getJSON("/api/status", &status); err != nil {
				return err
			}
			if *jsonFlag {
				return printJSON(cmd.OutOrStdout(), status)
			}

			rows := [][]string{
				{"Running", strconv.FormatBool(status.Running)},
				{"PID", strconv.Itoa(status.PID)},
				{"Device", status.Device},
				{"Drive", status.DriveStatus},
				{"Player", string(status.Player.State)},
			}
			if status.Player.Track > 0 {
				rows = append(rows, []string{"Track", strconv.Itoa(status.Player.Track)})
			}
			if status.Player.SessionID != "" {
				rows = append(rows, []string{"Session", status.Player.SessionID})
			}
			rows = append(rows,
				[]string{"Lock file", status.LockFilePath},
				[]string{"Library", status.LibraryPath},
			)

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"FIELD", "VALUE"}, rows, nil))
			return nil
		},
	}
}
