package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/vidctl/vidctl/event"
	"github.com/vidctl/vidctl/log"
	"github.com/vidctl/vidctl/metrics"
	"github.com/vidctl/vidctl/source"
	"github.com/vidctl/vidctl/util"
)

// VideoErrorCode is the code of every engine error event.
const VideoErrorCode = "VideoError"

var (
	ErrInvalidSpeed = errors.New("playback speed must be a positive finite number")
	ErrNoEngine     = errors.New("no engine factory")
	ErrDisposed     = errors.New("session disposed")
)

// Options tune a session.
type Options struct {
	// MixWithOthers lets other audio keep playing alongside this session.
	MixWithOthers bool
}

// CreateParams describe a session to create.
type CreateParams struct {
	URI        string
	FormatHint mo.Option[string]
	Headers    map[string]string
	UserAgent  string
	Options    Options

	Engine EngineFactory
	// Surface is optional; sessions without one render wherever the engine decides.
	Surface SurfaceFactory
	// Sink receives the session's events. A new sink is used when nil.
	Sink *event.Sink
}

// Controller is one playback session. It owns its engine and surface.
type Controller struct {
	mu sync.Mutex

	engine     Engine
	surface    Surface
	descriptor source.Descriptor
	options    Options
	sink       *event.Sink
	logger     *logrus.Entry

	state     State
	buffering bufferingDetector
	gate      initGate
	volume    float64
	position  int64
	duration  int64
}

// Create resolves the source, builds the engine and surface, and prepares
// playback. Source resolution runs before anything is allocated; a later
// failure releases what was allocated so far, newest first.
func Create(ctx context.Context, params CreateParams) (*Controller, error) {
	descriptor, err := source.Resolve(source.Request{
		URI:       params.URI,
		Hint:      params.FormatHint,
		Headers:   params.Headers,
		UserAgent: params.UserAgent,
	})
	if err != nil {
		metrics.SessionCreateFailures.WithLabelValues(metrics.ReasonSource).Inc()
		return nil, err
	}

	if params.Engine == nil {
		metrics.SessionCreateFailures.WithLabelValues(metrics.ReasonEngine).Inc()
		return nil, ErrNoEngine
	}

	sink := params.Sink
	if sink == nil {
		sink = event.NewSink()
	}

	c := &Controller{
		descriptor: descriptor,
		options:    params.Options,
		sink:       sink,
		state:      StatePreparing,
		volume:     1,
		logger: log.WithFields(logrus.Fields{
			"uri":  descriptor.URI,
			"type": descriptor.Type.String(),
		}),
	}

	engine, err := params.Engine(ctx, descriptor)
	if err != nil {
		metrics.SessionCreateFailures.WithLabelValues(metrics.ReasonEngine).Inc()
		return nil, fmt.Errorf("create engine: %w", err)
	}
	c.engine = engine

	if err := c.setUp(ctx, params.Surface); err != nil {
		c.release()
		return nil, err
	}

	metrics.SessionsCreated.WithLabelValues(descriptor.Type.String()).Inc()
	metrics.ActiveSessions.Inc()
	c.logger.Info("session created")

	return c, nil
}

func (c *Controller) setUp(ctx context.Context, newSurface SurfaceFactory) error {
	if err := c.engine.SetTrackSelection(TrackSelection{}); err != nil {
		metrics.SessionCreateFailures.WithLabelValues(metrics.ReasonEngine).Inc()
		return fmt.Errorf("set track selection: %w", err)
	}

	if newSurface != nil {
		surface, err := newSurface(ctx)
		if err != nil {
			metrics.SessionCreateFailures.WithLabelValues(metrics.ReasonSurface).Inc()
			return fmt.Errorf("create surface: %w", err)
		}
		c.surface = surface

		if err := c.engine.AttachSurface(surface); err != nil {
			metrics.SessionCreateFailures.WithLabelValues(metrics.ReasonSurface).Inc()
			return fmt.Errorf("attach surface: %w", err)
		}
	}

	if err := c.engine.SetAudioAttributes(AudioContentMovie, !c.options.MixWithOthers); err != nil {
		metrics.SessionCreateFailures.WithLabelValues(metrics.ReasonEngine).Inc()
		return fmt.Errorf("set audio attributes: %w", err)
	}

	c.engine.SetCallbacks(Callbacks{
		PlaybackStateChanged: c.onPlaybackStateChanged,
		PlayerError:          c.onPlayerError,
		IsPlayingChanged:     c.onIsPlayingChanged,
		Cues:                 c.onCues,
	})

	if err := c.engine.Prepare(ctx); err != nil {
		metrics.SessionCreateFailures.WithLabelValues(metrics.ReasonPrepare).Inc()
		return fmt.Errorf("prepare: %w", err)
	}

	return nil
}

// Descriptor returns the resolved source.
func (c *Controller) Descriptor() source.Descriptor {
	return c.descriptor
}

// Sink returns the sink the session's events flow into.
func (c *Controller) Sink() *event.Sink {
	return c.sink
}

// Attach sets the session's listener. Events emitted so far are delivered first.
func (c *Controller) Attach(l event.Listener) {
	c.sink.SetDelegate(l)
}

// Detach removes the listener. Later events are kept until the next Attach.
func (c *Controller) Detach() {
	c.sink.SetDelegate(nil)
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Volume returns the last volume set, in [0, 1].
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Play sets the intent to play once ready.
func (c *Controller) Play() error {
	return c.command("play", func(e Engine) error {
		return e.SetPlayWhenReady(true)
	})
}

// Pause clears the intent to play.
func (c *Controller) Pause() error {
	return c.command("pause", func(e Engine) error {
		return e.SetPlayWhenReady(false)
	})
}

// SetLooping switches between repeating the source and stopping at its end.
func (c *Controller) SetLooping(looping bool) error {
	mode := RepeatOff
	if looping {
		mode = RepeatAll
	}

	return c.command("set looping", func(e Engine) error {
		return e.SetRepeatMode(mode)
	})
}

// SetVolume clamps v to [0, 1], stores it and forwards it to the engine.
func (c *Controller) SetVolume(v float64) error {
	if math.IsNaN(v) {
		v = 0
	}
	v = util.Clamp(v, 0, 1)

	return c.command("set volume", func(e Engine) error {
		c.volume = v
		return e.SetVolume(v)
	})
}

// SetPlaybackSpeed changes the playback rate. Pitch and silence skipping stay fixed.
func (c *Controller) SetPlaybackSpeed(speed float64) error {
	if !(speed > 0) || math.IsInf(speed, 1) {
		return ErrInvalidSpeed
	}

	return c.command("set speed", func(e Engine) error {
		return e.SetPlaybackParameters(PlaybackParameters{Speed: speed, Pitch: 1})
	})
}

// SeekTo requests a seek to ms. Its effects arrive as later events.
func (c *Controller) SeekTo(ms int64) error {
	return c.command("seek", func(e Engine) error {
		return e.SeekTo(ms)
	})
}

// Position returns the last known playback position in milliseconds.
func (c *Controller) Position() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDisposed {
		c.position = c.engine.CurrentPosition()
	}
	return c.position
}

// Duration returns the media duration in milliseconds, 0 while unknown.
func (c *Controller) Duration() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDisposed {
		c.duration = util.Max(c.engine.Duration(), 0)
	}
	return c.duration
}

// Tracks inspects the engine's current tracks.
func (c *Controller) Tracks() TrackReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisposed {
		return TrackReport{Tracks: map[Category][]Track{}, Err: ErrDisposed}
	}

	report := inspectTracks(c.engine)
	if !report.Complete() {
		c.logger.WithError(report.Err).Warn("partial track report")
	}
	return report
}

// SetTextTrack selects the text track matching lang, a BCP 47 tag or a
// track label. An empty lang disables text tracks.
func (c *Controller) SetTextTrack(lang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisposed {
		return nil
	}

	if lang == "" {
		return c.engine.SetTrackSelection(TrackSelection{TextDisabled: true})
	}

	report := inspectTracks(c.engine)
	track, ok := matchTextTrack(report.Tracks[CategoryText], lang)
	if !ok {
		if report.Err != nil {
			return errors.Join(fmt.Errorf("%w: %q", ErrNoTextTrack, lang), report.Err)
		}
		return fmt.Errorf("%w: %q", ErrNoTextTrack, lang)
	}

	c.logger.WithField("track", track.ID).Debug("text track selected")
	return c.engine.SetTrackSelection(TrackSelection{
		PreferredTextLanguage: track.Language,
		TextTrackID:           track.ID,
	})
}

// Dispose stops playback and releases the surface, then the engine, and
// detaches the listener. It is idempotent and never fails; release errors
// are logged.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.state == StateDisposed {
		c.mu.Unlock()
		return
	}

	initialized := c.gate.fired
	c.position = c.engine.CurrentPosition()
	c.duration = util.Max(c.engine.Duration(), 0)
	c.state = StateDisposed
	c.mu.Unlock()

	if initialized {
		if err := c.engine.Stop(); err != nil {
			c.logger.WithError(err).Warn("stop engine")
		}
	}

	c.release()
	c.sink.SetDelegate(nil)

	metrics.ActiveSessions.Dec()
	c.logger.Info("session disposed")
}

// release frees the surface, then the engine. Callers must ensure no other
// goroutine touches either afterwards.
func (c *Controller) release() {
	if c.surface != nil {
		if err := c.surface.Release(); err != nil {
			c.logger.WithError(err).Warn("release surface")
		}
	}

	if c.engine != nil {
		if err := c.engine.Release(); err != nil {
			c.logger.WithError(err).Warn("release engine")
		}
	}
}

// command runs f against the engine unless the session is disposed.
func (c *Controller) command(name string, f func(Engine) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisposed {
		return nil
	}

	if err := f(c.engine); err != nil {
		c.logger.WithError(err).Warnf("%s failed", name)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// dispatch runs handle under the lock, queues what it returns, and delivers
// after unlocking. Raw callbacks after Dispose are dropped.
func (c *Controller) dispatch(handle func() []event.Event) {
	c.mu.Lock()
	if c.state == StateDisposed {
		c.mu.Unlock()
		return
	}

	events := handle()
	c.sink.Enqueue(events...)
	c.mu.Unlock()

	for _, e := range events {
		metrics.EventsEmitted.WithLabelValues(string(e.Kind())).Inc()
	}
	c.sink.Flush()
}

func (c *Controller) onPlaybackStateChanged(raw EngineState) {
	c.dispatch(func() []event.Event {
		c.logger.WithField("raw", raw.String()).Debug("playback state changed")

		var events []event.Event
		switch raw {
		case EngineBuffering:
			c.state = StateBuffering
		case EngineReady:
			if e, ok := c.gate.open(c.engine.Duration(), c.engine.VideoFormat()); ok {
				events = append(events, e)
			}
			c.state = StateReady
		case EngineEnded:
			events = append(events, event.Completed{})
			c.state = StateEnded
		}

		return append(events, c.buffering.update(raw, c.engine.BufferedPosition())...)
	})
}

func (c *Controller) onPlayerError(err error) {
	c.dispatch(func() []event.Event {
		c.logger.WithError(err).Error("engine error")
		metrics.EngineErrors.Inc()

		events := c.buffering.set(false)
		c.state = StateError

		return append(events, event.Error{
			Code:    VideoErrorCode,
			Message: fmt.Sprintf("Video player had error %v", err),
		})
	})
}

func (c *Controller) onIsPlayingChanged(playing bool) {
	c.dispatch(func() []event.Event {
		return []event.Event{event.IsPlayingChanged{IsPlaying: playing}}
	})
}

func (c *Controller) onCues(cues []Cue) {
	c.dispatch(func() []event.Event {
		if len(cues) == 0 {
			return nil
		}
		return []event.Event{event.CueUpdate{Text: cues[0].Text}}
	})
}
