package event

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

// Record is the discriminated wire form of an Event, e.g.
// {"event":"initialized","duration":5000,"width":1920,"height":1080}.
type Record struct {
	Event              Kind       `json:"event" jsonschema:"enum=initialized,enum=bufferingStart,enum=bufferingEnd,enum=bufferingUpdate,enum=completed,enum=isPlayingStateUpdate,enum=cueUpdate,enum=error"`
	Duration           *int64     `json:"duration,omitempty" jsonschema:"description=Media duration in milliseconds"`
	Width              *int       `json:"width,omitempty"`
	Height             *int       `json:"height,omitempty"`
	RotationCorrection *int       `json:"rotationCorrection,omitempty" jsonschema:"description=Present only for 180 degree rotated content"`
	Values             [][2]int64 `json:"values,omitempty" jsonschema:"description=Buffered ranges as [start, end] in milliseconds"`
	IsPlaying          *bool      `json:"isPlaying,omitempty"`
	Cue                *string    `json:"cue,omitempty"`
	Code               string     `json:"code,omitempty"`
	Message            string     `json:"message,omitempty"`
	Details            any        `json:"details,omitempty"`
}

// ToRecord converts an event to its wire form.
func ToRecord(e Event) Record {
	r := Record{Event: e.Kind()}

	switch e := e.(type) {
	case Initialized:
		r.Duration = lo.ToPtr(e.Duration)
		r.Width = lo.ToPtr(e.Width)
		r.Height = lo.ToPtr(e.Height)
		if rotation, ok := e.RotationCorrection.Get(); ok {
			r.RotationCorrection = lo.ToPtr(rotation)
		}
	case BufferingUpdate:
		r.Values = lo.Map(e.Ranges, func(rg Range, _ int) [2]int64 {
			return [2]int64{rg.Start, rg.End}
		})
	case IsPlayingChanged:
		r.IsPlaying = lo.ToPtr(e.IsPlaying)
	case CueUpdate:
		r.Cue = lo.ToPtr(e.Text)
	case Error:
		r.Code = e.Code
		r.Message = e.Message
		r.Details = e.Details
	}

	return r
}

// Marshal encodes an event as its JSON record.
func Marshal(e Event) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("marshal event: nil")
	}
	return json.Marshal(ToRecord(e))
}
