package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vidctl/vidctl/config"
	"github.com/vidctl/vidctl/event"
	"github.com/vidctl/vidctl/history"
	"github.com/vidctl/vidctl/icon"
	"github.com/vidctl/vidctl/key"
	"github.com/vidctl/vidctl/log"
	"github.com/vidctl/vidctl/metrics"
	"github.com/vidctl/vidctl/player"
	"github.com/vidctl/vidctl/tui"
	"github.com/vidctl/vidctl/util"
	"golang.org/x/sync/errgroup"
)

func init() {
	rootCmd.AddCommand(playCmd)
	addSourceFlags(playCmd)

	playCmd.Flags().Float64("volume", 1, "Volume from 0 to 1")
	lo.Must0(viper.BindPFlag(key.PlayerDefaultVolume, playCmd.Flags().Lookup("volume")))

	playCmd.Flags().BoolP("loop", "l", false, "Repeat the media indefinitely")
	lo.Must0(viper.BindPFlag(key.PlayerLooping, playCmd.Flags().Lookup("loop")))

	playCmd.Flags().Bool("resume", true, "Resume from the last known position of this URI")
	lo.Must0(viper.BindPFlag(key.PlayerResume, playCmd.Flags().Lookup("resume")))

	playCmd.Flags().Bool("mix", false, "Mix audio with other applications")
	lo.Must0(viper.BindPFlag(key.PlayerMixWithOthers, playCmd.Flags().Lookup("mix")))

	playCmd.Flags().String("metrics", "", "Expose Prometheus metrics on this address while playing")
	lo.Must0(viper.BindPFlag(key.MetricsAddress, playCmd.Flags().Lookup("metrics")))

	playCmd.Flags().Float64("speed", 1, "Playback speed, greater than 0")
	lo.Must0(viper.BindPFlag(key.PlayerDefaultSpeed, playCmd.Flags().Lookup("speed")))
	playCmd.Flags().Duration("start", 0, "Start position, e.g. 1m30s. Overrides resume")
	playCmd.Flags().Bool("paused", false, "Stay paused once the media is ready")
	playCmd.Flags().StringP("subtitle", "s", "", "Subtitle language (BCP 47) or label to select")
	playCmd.Flags().Bool("pick-subtitle", false, "Choose a subtitle track interactively")
	playCmd.Flags().String("title", "", "Title shown by the playback view")
	playCmd.Flags().BoolP("json", "j", false, "Write events as JSON lines instead of showing the playback view")

	playCmd.MarkFlagsMutuallyExclusive("subtitle", "pick-subtitle")
	playCmd.SetOut(os.Stdout)
}

var playCmd = &cobra.Command{
	Use:   "play [uri]",
	Short: "Play a media URI",
	Long: `Play a media URI through the configured engine.

On a terminal an interactive playback view is shown. Otherwise, or with --json,
every playback event is written to stdout as one JSON record per line (see "vidctl schema").`,
	Example: "  vidctl play https://example.com/video.m3u8 --subtitle en\n  vidctl play ./movie.mkv --json --metrics :9090",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(config.Validate(
			key.PlayerDefaultVolume,
			key.PlayerDefaultSpeed,
			key.MetricsAddress,
		))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := newSession(ctx, sourceRequest(cmd, args[0]), sessionOptions{
			looping: viper.GetBool(key.PlayerLooping),
		})
		handleErr(err)

		err = runPlayback(ctx, cmd, s)
		s.close(viper.GetBool(key.PlayerResume))
		handleErr(err)
	},
}

// runPlayback plays s alongside the optional metrics endpoint. Whichever
// ends first stops the other.
func runPlayback(ctx context.Context, cmd *cobra.Command, s *session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if addr := viper.GetString(key.MetricsAddress); addr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, addr)
		})
	}

	g.Go(func() error {
		defer cancel()
		return play(ctx, cmd, s)
	})

	return g.Wait()
}

func play(ctx context.Context, cmd *cobra.Command, s *session) error {
	var (
		asJSON      = lo.Must(cmd.Flags().GetBool("json")) || !util.IsTerminal()
		speed       = viper.GetFloat64(key.PlayerDefaultSpeed)
		paused      = lo.Must(cmd.Flags().GetBool("paused"))
		interactive = !asJSON
	)

	if err := s.SetVolume(viper.GetFloat64(key.PlayerDefaultVolume)); err != nil {
		return err
	}

	if s.looping {
		if err := s.SetLooping(true); err != nil {
			return err
		}
	}

	if speed != 1 {
		if err := s.SetPlaybackSpeed(speed); err != nil {
			return err
		}
	}

	erase := func() {}
	if interactive {
		erase = util.PrintErasable(fmt.Sprintf("%s Loading %s...", icon.Get(icon.Progress), s.Descriptor().URI))
	}
	err := s.waitReady(ctx)
	erase()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if err := seekStart(cmd, s); err != nil {
		return err
	}

	if err := selectSubtitle(cmd, s); err != nil {
		return err
	}

	if !paused {
		if err := s.Play(); err != nil {
			return err
		}
	}

	if interactive {
		return tui.Run(ctx, &tui.Options{
			Controller: s,
			Title:      lo.Must(cmd.Flags().GetString("title")),
			Looping:    s.looping,
		})
	}

	return printEvents(ctx, cmd.OutOrStdout(), s)
}

// seekStart moves to --start, or to the resume position of a previous session.
func seekStart(cmd *cobra.Command, s *session) error {
	if cmd.Flags().Changed("start") {
		return s.SeekTo(lo.Must(cmd.Flags().GetDuration("start")).Milliseconds())
	}

	if !viper.GetBool(key.PlayerResume) {
		return nil
	}

	found, err := history.Lookup(s.Descriptor().URI)
	if err != nil {
		log.Warnf("read history: %v", err)
		return nil
	}

	entry, ok := found.Get()
	if !ok || entry.ResumeAt() <= 0 {
		return nil
	}

	log.Infof("resuming %s", entry)
	return s.SeekTo(entry.ResumeAt())
}

// selectSubtitle applies --subtitle, or asks for a track with --pick-subtitle.
// A missing track is not fatal.
func selectSubtitle(cmd *cobra.Command, s *session) error {
	lang := lo.Must(cmd.Flags().GetString("subtitle"))

	if lo.Must(cmd.Flags().GetBool("pick-subtitle")) {
		picked, err := pickSubtitle(s)
		if err != nil {
			return err
		}
		if picked.IsAbsent() {
			return s.SetTextTrack("")
		}
		lang = picked.MustGet()
	}

	if lang == "" {
		return nil
	}

	err := s.SetTextTrack(lang)
	if errors.Is(err, player.ErrNoTextTrack) {
		log.Warn(err)
		return nil
	}
	return err
}

func printEvents(ctx context.Context, w io.Writer, s *session) error {
	s.Attach(event.ListenerFunc(func(e event.Event) {
		data, err := event.Marshal(e)
		if err != nil {
			log.Error(err)
			return
		}
		_, _ = fmt.Fprintln(w, string(data))
	}))
	defer s.Detach()

	return s.wait(ctx)
}
