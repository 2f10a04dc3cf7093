package player

import "github.com/vidctl/vidctl/event"

// bufferingDetector turns raw buffering reports into start/end edges.
type bufferingDetector struct {
	buffering bool
}

// set moves the detector to target and returns the edge event, if any.
func (d *bufferingDetector) set(target bool) []event.Event {
	if d.buffering == target {
		return nil
	}
	d.buffering = target

	if target {
		return []event.Event{event.BufferingStart{}}
	}
	return []event.Event{event.BufferingEnd{}}
}

// update handles one raw state report. The start edge is followed by a
// snapshot of the buffered range; repeated buffering reports emit nothing.
func (d *bufferingDetector) update(state EngineState, bufferedPosition int64) []event.Event {
	if state != EngineBuffering {
		return d.set(false)
	}

	edge := d.set(true)
	if len(edge) == 0 {
		return nil
	}

	return append(edge, event.BufferingUpdate{
		Ranges: []event.Range{{Start: 0, End: bufferedPosition}},
	})
}
