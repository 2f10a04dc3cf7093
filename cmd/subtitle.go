package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vidctl/vidctl/log"
	"github.com/vidctl/vidctl/player"
	"github.com/vidctl/vidctl/util"
)

const subtitlesOff = "Off"

// pickSubtitle asks which text track to show. None means subtitles off.
func pickSubtitle(s *session) (mo.Option[string], error) {
	if !util.IsTerminal() {
		return mo.None[string](), errors.New("--pick-subtitle needs an interactive terminal")
	}

	report := s.Tracks()
	if !report.Complete() {
		log.Warnf("track inspection: %v", report.Err)
	}

	tracks := lo.Filter(report.Tracks[player.CategoryText], func(t player.Track, _ int) bool {
		return t.Language != "" || t.Label != ""
	})
	if len(tracks) == 0 {
		log.Warn("no selectable subtitle tracks")
		return mo.None[string](), nil
	}

	options := append([]string{subtitlesOff}, lo.Map(tracks, func(t player.Track, _ int) string {
		return describeTrack(t)
	})...)

	var picked int
	err := survey.AskOne(&survey.Select{
		Message: "Subtitles",
		Options: options,
		Default: subtitlesOff,
	}, &picked)
	if err != nil {
		return mo.None[string](), err
	}

	if picked == 0 {
		return mo.None[string](), nil
	}

	t := tracks[picked-1]
	return mo.Some(lo.CoalesceOrEmpty(t.Language, t.Label)), nil
}

func describeTrack(t player.Track) string {
	switch {
	case t.Label != "" && t.Language != "":
		return fmt.Sprintf("%s (%s)", t.Label, t.Language)
	case t.Label != "":
		return t.Label
	default:
		return t.Language
	}
}
