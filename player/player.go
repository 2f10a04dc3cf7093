// Package player drives an external playback engine and normalizes its raw
// callbacks into the event vocabulary of package event.
// The bundled engine is mpv, controlled through its JSON-IPC interface.
package player

import (
	"context"

	"github.com/samber/mo"
	"github.com/vidctl/vidctl/source"
)

// EngineState is the raw playback state reported by an engine.
type EngineState int

const (
	EngineIdle EngineState = iota + 1
	EngineBuffering
	EngineReady
	EngineEnded
)

func (s EngineState) String() string {
	switch s {
	case EngineIdle:
		return "idle"
	case EngineBuffering:
		return "buffering"
	case EngineReady:
		return "ready"
	case EngineEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// VideoFormat describes the decoded video stream.
type VideoFormat struct {
	Width  int
	Height int
	// RotationDegrees is the clockwise rotation the content must be displayed with.
	RotationDegrees int
}

// Format is one selectable stream within a track group.
type Format struct {
	ID       string
	Label    string
	Language string
}

// TrackGroup is a set of formats carrying the same content.
type TrackGroup struct {
	Category Category
	Formats  []Format
}

// Cue is one text cue.
type Cue struct {
	Text string
}

// RepeatMode controls what happens when playback reaches the end.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
)

// AudioContentType describes the audio being played.
type AudioContentType int

const (
	AudioContentMovie AudioContentType = iota + 1
)

// PlaybackParameters are the engine's rate controls.
type PlaybackParameters struct {
	Speed       float64
	Pitch       float64
	SkipSilence bool
}

// TrackSelection constrains which tracks the engine renders.
type TrackSelection struct {
	// PreferredTextLanguage is a BCP 47 tag, empty for no preference.
	PreferredTextLanguage string
	// TextTrackID pins a text track, empty to let the engine choose.
	TextTrackID  string
	TextDisabled bool
}

// Callbacks is the single set of raw callbacks an engine reports through.
// Engines must not invoke them synchronously from within their own methods.
type Callbacks struct {
	PlaybackStateChanged func(EngineState)
	PlayerError          func(error)
	IsPlayingChanged     func(bool)
	Cues                 func([]Cue)
}

// Surface is the rendering target an engine draws into.
type Surface interface {
	Release() error
}

// Engine is an external decoding and rendering engine.
//
// Query methods return the last values the engine observed and must not block.
type Engine interface {
	// Prepare starts loading the source the engine was built with.
	Prepare(ctx context.Context) error
	AttachSurface(Surface) error
	SetAudioAttributes(contentType AudioContentType, exclusive bool) error
	SetTrackSelection(TrackSelection) error
	// SetCallbacks registers the raw callbacks, replacing any previous set.
	SetCallbacks(Callbacks)

	SetPlayWhenReady(bool) error
	SetRepeatMode(RepeatMode) error
	SetVolume(float64) error
	SetPlaybackParameters(PlaybackParameters) error
	// SeekTo requests a seek to the given position in milliseconds.
	SeekTo(ms int64) error
	Stop() error
	Release() error

	// BufferedPosition in milliseconds.
	BufferedPosition() int64
	// CurrentPosition in milliseconds.
	CurrentPosition() int64
	// Duration in milliseconds, zero when unknown.
	Duration() int64
	// VideoFormat is absent for audio-only sources or before the first frame.
	VideoFormat() mo.Option[VideoFormat]
	CurrentTracks() ([]TrackGroup, error)
}

// EngineFactory builds an engine for a resolved source.
type EngineFactory func(ctx context.Context, d source.Descriptor) (Engine, error)

// SurfaceFactory allocates the surface a session renders into.
type SurfaceFactory func(ctx context.Context) (Surface, error)
