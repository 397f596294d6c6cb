package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zeusync/laneracer/internal/core/track"
)

func newLevelsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "lists the configured levels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "#\tNAME\tLAPS\tPIECES\tLENGTH\tTRACK")
			for i, lvl := range cfg.Levels {
				t, err := cfg.Track.Generate(lvl.Track)
				if err != nil {
					return fmt.Errorf("level %d: %w", i+1, err)
				}
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.0f\t%s\n",
					i+1, lvl.Name, lvl.Laps, track.PieceCount(lvl.Track), t.Length(0), lvl.Track)
			}
			return tw.Flush()
		},
	}
}
