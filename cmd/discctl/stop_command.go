package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"discd/internal/player"
)

func newStopCommand(addrFlag *string, jsonFlag *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop playback",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status player.Status
			if err := newClient(*addrFlag).postJSON("/api/cd/stop", &status); err != nil {
				return err
			}
			if *jsonFlag {
				return printJSON(cmd.OutOrStdout(), status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Playback stopped (player %s)\n", status.State)
			return nil
		},
	}
}

func newEjectCommand(addrFlag *string, jsonFlag *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "eject",
		Short: "Stop playback and eject the tray",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status player.Status
			if err := newClient(*addrFlag).postJSON("/api/cd/eject", &status); err != nil {
				return err
			}
			if *jsonFlag {
				return printJSON(cmd.OutOrStdout(), status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tray ejected")
			return nil
		},
	}
}
