// Package event defines the normalized playback event vocabulary and the
// queued sink that delivers it to a single, possibly late, listener.
package event

import "github.com/samber/mo"

// Kind discriminates events on the wire.
type Kind string

const (
	KindInitialized      Kind = "initialized"
	KindBufferingStart   Kind = "bufferingStart"
	KindBufferingEnd     Kind = "bufferingEnd"
	KindBufferingUpdate  Kind = "bufferingUpdate"
	KindCompleted        Kind = "completed"
	KindIsPlayingChanged Kind = "isPlayingStateUpdate"
	KindCueUpdate        Kind = "cueUpdate"
	KindError            Kind = "error"
)

// Kinds returns every event kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindInitialized,
		KindBufferingStart,
		KindBufferingEnd,
		KindBufferingUpdate,
		KindCompleted,
		KindIsPlayingChanged,
		KindCueUpdate,
		KindError,
	}
}

// Event is one normalized playback event. The set of implementations is closed.
type Event interface {
	Kind() Kind
	event()
}

// Initialized is emitted once per session, the first time the engine becomes ready.
type Initialized struct {
	// Duration in milliseconds.
	Duration int64
	Width    int
	Height   int
	// RotationCorrection is present only for content rotated by exactly 180 degrees.
	RotationCorrection mo.Option[int]
}

type BufferingStart struct{}

type BufferingEnd struct{}

// Range is a buffered interval in milliseconds.
type Range struct {
	Start int64
	End   int64
}

// BufferingUpdate snapshots the buffered ranges when buffering begins.
type BufferingUpdate struct {
	Ranges []Range
}

// Completed is emitted when playback reaches the end of the media.
type Completed struct{}

type IsPlayingChanged struct {
	IsPlaying bool
}

// CueUpdate carries the text of the first active subtitle cue.
type CueUpdate struct {
	Text string
}

// Error reports an engine failure. Playback is halted; the session should be disposed.
type Error struct {
	Code    string
	Message string
	Details any
}

func (Initialized) Kind() Kind      { return KindInitialized }
func (BufferingStart) Kind() Kind   { return KindBufferingStart }
func (BufferingEnd) Kind() Kind     { return KindBufferingEnd }
func (BufferingUpdate) Kind() Kind  { return KindBufferingUpdate }
func (Completed) Kind() Kind        { return KindCompleted }
func (IsPlayingChanged) Kind() Kind { return KindIsPlayingChanged }
func (CueUpdate) Kind() Kind        { return KindCueUpdate }
func (Error) Kind() Kind            { return KindError }

func (Initialized) event()      {}
func (BufferingStart) event()   {}
func (BufferingEnd) event()     {}
func (BufferingUpdate) event()  {}
func (Completed) event()        {}
func (IsPlayingChanged) event() {}
func (CueUpdate) event()        {}
func (Error) event()            {}
