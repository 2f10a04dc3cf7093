package player

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vidctl/vidctl/log"
)

// EventCallback is the function signature for mpv event notifications.
// Property changes pass the property name and value; other events pass
// the event name and the whole event object.
type EventCallback func(property string, data interface{})

// observed lists the properties an EventListener subscribes to.
var observed = []string{
	"pause",
	"core-idle",
	"paused-for-cache",
	"seeking",
	"eof-reached",
	"sub-text",
	"time-pos",
	"duration",
	"demuxer-cache-time",
	"video-params",
	"track-list",
}

// EventListener provides real-time mpv event monitoring via observe_property.
type EventListener struct {
	socketPath string
	conn       net.Conn
	callback   EventCallback
	stopCh     chan struct{}
	done       chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		callback:   callback,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start subscribes to property changes on a persistent connection and
// starts a dedicated read loop. Observers live as long as that connection.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{Command: []interface{}{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true

	go el.readLoop()

	log.Infof("mpv event listener started on %s (observing: %s)", el.socketPath, strings.Join(observed, ", "))
	return nil
}

// Stop terminates the event listener and waits for its read loop to exit.
func (el *EventListener) Stop() {
	el.mu.Lock()
	if !el.listening {
		el.mu.Unlock()
		return
	}
	el.listening = false

	close(el.stopCh)
	el.conn.Close()
	el.mu.Unlock()

	<-el.done
}

// readLoop continuously reads events from the persistent mpv connection.
// mpv sends newline-delimited JSON events when observed properties change.
func (el *EventListener) readLoop() {
	defer close(el.done)

	buf := make([]byte, 4096)
	var remainder []byte

	for {
		select {
		case <-el.stopCh:
			return
		default:
		}

		// Set read deadline to avoid blocking forever
		if err := el.conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return
		}

		n, err := el.conn.Read(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue // timeout is normal, keep listening
			}
			select {
			case <-el.stopCh:
			default:
				log.Warnf("event listener read error: %v", err)
			}
			return
		}

		// mpv sends multiple JSON objects separated by newlines
		data := append(remainder, buf[:n]...)
		remainder = nil

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			// Last incomplete line goes to remainder for next read
			if i == len(lines)-1 {
				if line != "" {
					remainder = []byte(line)
				}
				continue
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			el.processEvent(line)
		}
	}
}

// processEvent parses and dispatches a single mpv event JSON line.
func (el *EventListener) processEvent(line string) {
	var event map[string]interface{}
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return // Skip unparseable lines
	}

	// Property change events have "event": "property-change" and "name" + "data"
	if eventType, ok := event["event"].(string); ok {
		switch eventType {
		case "property-change":
			name, _ := event["name"].(string)
			data := event["data"]
			if name != "" && el.callback != nil {
				el.callback(name, data)
			}
		default:
			// Forward other events (e.g., "file-loaded", "end-file")
			if el.callback != nil {
				el.callback(eventType, event)
			}
		}
	}
}

// onEvent folds one mpv event into the observed properties and reports the
// resulting raw callbacks, outside the lock.
func (m *MPV) onEvent(name string, data interface{}) {
	if name == "file-loaded" {
		m.refresh()
	}

	m.state.Lock()
	if m.released {
		m.state.Unlock()
		return
	}

	cb := m.callbacks
	var notify []func()

	p := &m.props
	switch name {
	case "pause":
		p.paused = asBool(data)
	case "core-idle":
		p.coreIdle = asBool(data)
	case "paused-for-cache":
		p.pausedForCache = asBool(data)
	case "seeking":
		p.seeking = asBool(data)
	case "eof-reached":
		p.eof = asBool(data)
	case "time-pos":
		p.position = asFloat(data)
	case "duration":
		p.duration = asFloat(data)
	case "demuxer-cache-time":
		p.cached = asFloat(data)
	case "video-params":
		p.format = parseVideoParams(data)
	case "track-list":
		p.tracks = parseTrackList(data)
	case "sub-text":
		if cb.Cues != nil {
			var cues []Cue
			if text := asString(data); text != "" {
				cues = []Cue{{Text: text}}
			}
			notify = append(notify, func() { cb.Cues(cues) })
		}
	case "file-loaded":
		p.loaded = true
		p.eof = false
	case "end-file":
		event, _ := data.(map[string]interface{})
		if asString(event["reason"]) == "error" {
			p.loaded = false
			err := fmt.Errorf("%w: %s", ErrPlayback, lo.CoalesceOrEmpty(asString(event["file_error"]), "unknown error"))
			if cb.PlayerError != nil {
				notify = append(notify, func() { cb.PlayerError(err) })
			}
		}
	}

	if state := p.engineState(); state != p.state {
		p.state = state
		if cb.PlaybackStateChanged != nil {
			notify = append(notify, func() { cb.PlaybackStateChanged(state) })
		}
	}

	if playing := p.isPlaying(); playing != p.playing {
		p.playing = playing
		if cb.IsPlayingChanged != nil {
			notify = append(notify, func() { cb.IsPlayingChanged(playing) })
		}
	}
	m.state.Unlock()

	for _, f := range notify {
		f()
	}
}

// refresh reads the properties Initialized depends on, since their change
// notifications may trail file-loaded.
func (m *MPV) refresh() {
	duration, err := m.getFloatProperty("duration")
	if err != nil {
		return
	}

	params, _ := m.sendCommand([]interface{}{"get_property", "video-params"})
	tracks, _ := m.sendCommand([]interface{}{"get_property", "track-list"})

	m.state.Lock()
	defer m.state.Unlock()

	m.props.duration = duration
	m.props.format = parseVideoParams(params)
	m.props.tracks = parseTrackList(tracks)
}

func parseVideoParams(data interface{}) mo.Option[VideoFormat] {
	params, ok := data.(map[string]interface{})
	if !ok {
		return mo.None[VideoFormat]()
	}

	format := VideoFormat{
		Width:           int(asFloat(params["w"])),
		Height:          int(asFloat(params["h"])),
		RotationDegrees: int(asFloat(params["rotate"])),
	}
	if format.Width == 0 || format.Height == 0 {
		return mo.None[VideoFormat]()
	}
	return mo.Some(format)
}

func parseTrackList(data interface{}) []TrackGroup {
	list, _ := data.([]interface{})

	var groups []TrackGroup
	for _, item := range list {
		track, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		var category Category
		switch asString(track["type"]) {
		case "video":
			category = CategoryVideo
		case "audio":
			category = CategoryAudio
		case "sub":
			category = CategoryText
		default:
			continue
		}

		groups = append(groups, TrackGroup{
			Category: category,
			Formats: []Format{{
				ID:       strconv.Itoa(int(asFloat(track["id"]))),
				Label:    asString(track["title"]),
				Language: asString(track["lang"]),
			}},
		})
	}
	return groups
}

func asBool(data interface{}) bool {
	b, _ := data.(bool)
	return b
}

func asFloat(data interface{}) float64 {
	f, _ := data.(float64)
	return f
}

func asString(data interface{}) string {
	s, _ := data.(string)
	return s
}
