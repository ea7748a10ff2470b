package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"discd/internal/metadata"
)

func newNameCommand(addrFlag *string, jsonFlag *bool) *cobra.Command {
	var artist string
	var title string
	var trackFlags []string

	cmd := &cobra.Command{
		Use:   "name",
		Short: "Store names for the inserted disc",
		Long: "Store artist, album, and track names for the inserted disc. Names are\n" +
			"keyed by the disc's fingerprint and reused whenever it is inserted again.",
		Example: `  discctl name --artist "Miles Davis" --title "Kind of Blue"
  discctl name --track "1=So What" --track "2=Freddie Freeloader"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if artist == "" && title == "" && len(trackFlags) == 0 {
				return fmt.Errorf("nothing to store; pass --artist, --title, or --track")
			}

			tracks := make(map[string]string, len(trackFlags))
			for _, raw := range trackFlags {
				number, trackTitle, ok := strings.Cut(raw, "=")
				if !ok {
					return fmt.Errorf("invalid --track value %q, want N=Title", raw)
				}
				if _, err := strconv.Atoi(strings.TrimSpace(number)); err != nil {
					return fmt.Errorf("invalid track number in %q", raw)
				}
				tracks[strings.TrimSpace(number)] = trackTitle
			}

			payload := map[string]any{
				"artist": artist,
				"title":  title,
				"tracks": tracks,
			}
			var info metadata.Disc
			if err := newClient(*addrFlag).putJSON("/api/cd/metadata", payload, &info); err != nil {
				return err
			}
			if *jsonFlag {
				return printJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored names for %s - %s (%d tracks)\n",
				info.Artist, info.Title, len(info.Tracks))
			return nil
		},
	}

	cmd.Flags().StringVar(&artist, "artist", "", "Disc artist")
	cmd.Flags().StringVar(&title, "title", "", "Disc title")
	cmd.Flags().StringArrayVar(&trackFlags, "track", nil, "Track title as N=Title (repeatable)")
	return cmd
}
