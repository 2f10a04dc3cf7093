package history

import (
	"fmt"
	"time"

	"github.com/vidctl/vidctl/source"
	"github.com/vidctl/vidctl/util"
)

// finishedPercentage is how far into a source playback counts as finished.
const finishedPercentage = 95

// Entry is where playback of one source left off.
type Entry struct {
	URI               string      `json:"uri"`
	Type              source.Type `json:"type"`
	Position          int64       `json:"position"`
	Duration          int64       `json:"duration"`
	WatchedPercentage float64     `json:"watched_percentage"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// ResumeAt returns the position to resume from, zero when the source was
// finished or never really started.
func (e *Entry) ResumeAt() int64 {
	if e.Finished() || e.Position <= 0 {
		return 0
	}
	return e.Position
}

// Finished reports whether the last session played through.
func (e *Entry) Finished() bool {
	return e.Duration > 0 && percentage(e.Position, e.Duration) >= finishedPercentage
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s : %s / %s", e.URI, util.FormatMillis(e.Position), util.FormatMillis(e.Duration))
}

func newEntry(d source.Descriptor, position, duration int64) *Entry {
	return &Entry{
		URI:               d.URI,
		Type:              d.Type,
		Position:          position,
		Duration:          duration,
		WatchedPercentage: percentage(position, duration),
		UpdatedAt:         now(),
	}
}

func percentage(position, duration int64) float64 {
	if duration <= 0 {
		return 0
	}
	return util.Clamp(float64(position)/float64(duration)*100, 0, 100)
}
