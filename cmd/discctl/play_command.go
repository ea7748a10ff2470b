package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayCommand(addrFlag *string) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "play <track>",
		Short: "Stream a track as WAV audio",
		Long: "Stream a track as WAV audio to stdout or a file. Playback continues\n" +
			"through the remaining tracks on the disc until interrupted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := strconv.Atoi(args[0])
			if err != nil || track < 1 {
				return fmt.Errorf("invalid track number %q", args[0])
			}

			var out io.Writer = os.Stdout
			if outputPath != "" {
				file, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				out = file
			} else if stdoutIsTerminal() {
				return errors.New("refusing to write WAV audio to a terminal; pipe to a player or use --output")
			}

			resp, err := newClient(*addrFlag).stream("/api/cd/play/" + strconv.Itoa(track))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if _, err := io.Copy(out, resp.Body); err != nil {
				return fmt.Errorf("stream interrupted: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write audio to a file instead of stdout")
	return cmd
}
