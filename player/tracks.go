package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

var (
	ErrTrackInspection = errors.New("track inspection failed")
	ErrNoTextTrack     = errors.New("no matching text track")
)

// Category classifies a track group.
type Category int

const (
	CategoryVideo Category = iota + 1
	CategoryAudio
	CategoryText
)

// Categories returns the categories in report order.
func Categories() []Category {
	return []Category{CategoryVideo, CategoryAudio, CategoryText}
}

func (c Category) String() string {
	switch c {
	case CategoryVideo:
		return "Video"
	case CategoryAudio:
		return "Audio"
	case CategoryText:
		return "Text"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Track is the representative format of one track group.
type Track struct {
	Category Category `json:"-"`
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Language string   `json:"language"`
}

// TrackReport is the result of inspecting an engine's tracks.
// A report with a non-nil Err is partial: only the categories inspected
// before the failure are present.
type TrackReport struct {
	Tracks map[Category][]Track
	Err    error
}

// Complete reports whether every category was inspected.
func (r TrackReport) Complete() bool {
	return r.Err == nil
}

// MarshalJSON encodes the tracks keyed by category name, in category order.
func (r TrackReport) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')

	first := true
	for _, c := range Categories() {
		tracks, ok := r.Tracks[c]
		if !ok {
			continue
		}
		if tracks == nil {
			tracks = []Track{}
		}

		data, err := json.Marshal(tracks)
		if err != nil {
			return nil, err
		}

		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&b, "%q:%s", c.String(), data)
	}

	b.WriteByte('}')
	return []byte(b.String()), nil
}

// inspectTracks extracts one descriptor per group, grouped by category in
// engine order. Every category of a complete report is present, empty ones
// as empty slices.
func inspectTracks(engine Engine) TrackReport {
	report := TrackReport{Tracks: make(map[Category][]Track)}

	groups, err := engine.CurrentTracks()
	if err != nil {
		report.Err = fmt.Errorf("%w: %w", ErrTrackInspection, err)
		return report
	}

	for _, category := range Categories() {
		tracks := make([]Track, 0)

		for i, group := range groups {
			if group.Category != category {
				continue
			}
			if len(group.Formats) == 0 {
				report.Err = fmt.Errorf("%w: %s group %d has no formats", ErrTrackInspection, category, i)
				return report
			}

			format := group.Formats[0]
			tracks = append(tracks, Track{
				Category: category,
				ID:       format.ID,
				Label:    format.Label,
				Language: format.Language,
			})
		}

		report.Tracks[category] = tracks
	}

	return report
}

// matchTextTrack picks the text track best matching query, first by
// language tag and then by a fuzzy match on labels.
func matchTextTrack(tracks []Track, query string) (Track, bool) {
	query = strings.TrimSpace(query)
	if query == "" || len(tracks) == 0 {
		return Track{}, false
	}

	if want, err := language.Parse(query); err == nil {
		var (
			tags    []language.Tag
			indices []int
		)
		for i, track := range tracks {
			tag, err := language.Parse(track.Language)
			if err != nil || tag == language.Und {
				continue
			}
			tags = append(tags, tag)
			indices = append(indices, i)
		}

		if len(tags) > 0 {
			_, index, confidence := language.NewMatcher(tags).Match(want)
			if confidence >= language.High {
				return tracks[indices[index]], true
			}
		}
	}

	return lo.Find(tracks, func(track Track) bool {
		return track.Label != "" && fuzzy.MatchFold(query, track.Label)
	})
}
