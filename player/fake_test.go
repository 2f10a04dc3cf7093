package player

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/mo"
	"github.com/vidctl/vidctl/event"
	"github.com/vidctl/vidctl/source"
)

// fakeEngine records commands and lets tests fire raw callbacks.
type fakeEngine struct {
	mu sync.Mutex

	descriptor source.Descriptor
	callbacks  Callbacks
	calls      []string

	selection   TrackSelection
	exclusive   bool
	surface     Surface
	playing     bool
	repeat      RepeatMode
	volume      float64
	params      PlaybackParameters
	seekedTo    int64
	releases    int
	stops       int
	buffered    int64
	position    int64
	duration    int64
	format      mo.Option[VideoFormat]
	tracks      []TrackGroup
	tracksErr   error
	prepareErr  error
	commandErr  error
	releaseErr  error
	onRelease   func()
	releaseHook *[]string
}

func (f *fakeEngine) record(call string) {
	f.calls = append(f.calls, call)
	if f.releaseHook != nil && call == "release" {
		*f.releaseHook = append(*f.releaseHook, "engine")
	}
}

func (f *fakeEngine) Prepare(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("prepare")
	return f.prepareErr
}

func (f *fakeEngine) AttachSurface(s Surface) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("attach")
	f.surface = s
	return nil
}

func (f *fakeEngine) SetAudioAttributes(_ AudioContentType, exclusive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("audio")
	f.exclusive = exclusive
	return nil
}

func (f *fakeEngine) SetTrackSelection(s TrackSelection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("selection")
	f.selection = s
	return nil
}

func (f *fakeEngine) SetCallbacks(cb Callbacks) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("callbacks")
	f.callbacks = cb
}

func (f *fakeEngine) SetPlayWhenReady(play bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("playWhenReady")
	f.playing = play
	return f.commandErr
}

func (f *fakeEngine) SetRepeatMode(mode RepeatMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("repeat")
	f.repeat = mode
	return f.commandErr
}

func (f *fakeEngine) SetVolume(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("volume")
	f.volume = v
	return f.commandErr
}

func (f *fakeEngine) SetPlaybackParameters(p PlaybackParameters) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("params")
	f.params = p
	return f.commandErr
}

func (f *fakeEngine) SeekTo(ms int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("seek")
	f.seekedTo = ms
	return f.commandErr
}

func (f *fakeEngine) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stop")
	f.stops++
	return nil
}

func (f *fakeEngine) Release() error {
	f.mu.Lock()
	f.record("release")
	f.releases++
	hook := f.onRelease
	err := f.releaseErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return err
}

func (f *fakeEngine) BufferedPosition() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffered
}

func (f *fakeEngine) CurrentPosition() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fakeEngine) Duration() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *fakeEngine) VideoFormat() mo.Option[VideoFormat] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.format
}

func (f *fakeEngine) CurrentTracks() ([]TrackGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tracks, f.tracksErr
}

func (f *fakeEngine) cb() Callbacks {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callbacks
}

func (f *fakeEngine) state(s EngineState) {
	f.cb().PlaybackStateChanged(s)
}

func (f *fakeEngine) fail(err error) {
	f.cb().PlayerError(err)
}

func (f *fakeEngine) has(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeEngine) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeSurface struct {
	releases    int
	err         error
	releaseHook *[]string
}

func (s *fakeSurface) Release() error {
	s.releases++
	if s.releaseHook != nil {
		*s.releaseHook = append(*s.releaseHook, "surface")
	}
	return s.err
}

func factoryOf(engine *fakeEngine) EngineFactory {
	return func(_ context.Context, d source.Descriptor) (Engine, error) {
		engine.descriptor = d
		return engine, nil
	}
}

func surfaceOf(surface *fakeSurface) SurfaceFactory {
	return func(context.Context) (Surface, error) {
		return surface, nil
	}
}

// recorder collects delivered events.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) OnEvent(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

func (r *recorder) kinds() []event.Kind {
	var kinds []event.Kind
	for _, e := range r.all() {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}

func (r *recorder) count(kind event.Kind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

var errBoom = errors.New("boom")
