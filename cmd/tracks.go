package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidctl/vidctl/color"
	"github.com/vidctl/vidctl/icon"
	"github.com/vidctl/vidctl/player"
	"github.com/vidctl/vidctl/style"
	"github.com/vidctl/vidctl/util"
)

func init() {
	rootCmd.AddCommand(tracksCmd)
	addSourceFlags(tracksCmd)
	tracksCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	tracksCmd.Flags().Duration("timeout", 30*time.Second, "How long to wait for the media to load")
	tracksCmd.SetOut(os.Stdout)
}

var tracksCmd = &cobra.Command{
	Use:   "tracks [uri]",
	Short: "List the video, audio and text tracks of a media URI",
	Long:  "Load a media URI without output devices and list its tracks. A partial list is printed when inspection fails part way.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(cmd.Context(), lo.Must(cmd.Flags().GetDuration("timeout")))
		defer cancel()

		s, err := newSession(ctx, sourceRequest(cmd, args[0]), sessionOptions{headless: true})
		handleErr(err)

		erase := util.PrintErasable(fmt.Sprintf("%s Loading %s...", icon.Get(icon.Progress), s.Descriptor().URI))
		err = s.waitReady(ctx)
		erase()

		var report player.TrackReport
		if err == nil {
			report = s.Tracks()
		}
		s.close(false)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(report))
		} else {
			printTracks(cmd, report)
		}

		handleErr(report.Err)
	},
}

func printTracks(cmd *cobra.Command, report player.TrackReport) {
	for _, category := range player.Categories() {
		tracks, ok := report.Tracks[category]
		if !ok {
			continue
		}

		cmd.Printf("%s %s\n",
			style.New().Bold(true).Foreground(color.HiPurple).Render(category.String()),
			style.Faint(util.Quantify(len(tracks), "track", "tracks")),
		)
		if len(tracks) == 0 {
			cmd.Println(style.Faint("  none"))
		}

		for _, t := range tracks {
			cmd.Printf("  %s %s %s\n",
				style.Fg(color.Yellow)("#"+t.ID),
				lo.CoalesceOrEmpty(t.Label, style.Faint("untitled")),
				style.Faint(lo.CoalesceOrEmpty(t.Language, "und")),
			)
		}
	}
}
