package player

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vidctl/vidctl/log"
	"github.com/vidctl/vidctl/source"
	"github.com/vidctl/vidctl/where"
	"golang.org/x/exp/slices"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
)

var (
	ErrNotRunning      = errors.New("mpv is not running")
	ErrPlayback        = errors.New("mpv playback error")
	ErrProcessExited   = errors.New("mpv exited unexpectedly")
	ErrAlreadyPrepared = errors.New("mpv already prepared")
)

// WindowSurface is a surface mpv can embed its video output into.
type WindowSurface interface {
	Surface
	WindowID() int64
}

// MPVOptions configure the mpv engine.
type MPVOptions struct {
	// Path to the mpv executable. Defaults to "mpv" looked up in PATH.
	Path string
	// Headless disables video and audio output, for inspecting media only.
	Headless bool
}

// MPVFactory returns an EngineFactory building mpv engines.
// It fails early when the executable cannot be found.
func MPVFactory(opts MPVOptions) EngineFactory {
	return func(_ context.Context, d source.Descriptor) (Engine, error) {
		path := lo.Ternary(opts.Path == "", "mpv", opts.Path)

		resolved, err := exec.LookPath(path)
		if err != nil {
			return nil, fmt.Errorf("find mpv: %w", err)
		}

		opts.Path = resolved
		return NewMPV(d, opts), nil
	}
}

// launch holds settings applied on the command line when mpv starts.
type launch struct {
	windowID      mo.Option[int64]
	exclusive     bool
	selection     TrackSelection
	playWhenReady bool
	volume        float64
	repeat        RepeatMode
	speed         float64
}

// properties are the last observed values of mpv properties.
type properties struct {
	loaded         bool
	paused         bool
	coreIdle       bool
	pausedForCache bool
	seeking        bool
	eof            bool

	position float64
	duration float64
	cached   float64
	format   mo.Option[VideoFormat]
	tracks   []TrackGroup

	state   EngineState
	playing bool
}

// engineState derives the raw playback state from observed properties.
func (p properties) engineState() EngineState {
	switch {
	case !p.loaded:
		return EngineIdle
	case p.eof:
		return EngineEnded
	case p.pausedForCache, p.seeking, !p.paused && p.coreIdle:
		return EngineBuffering
	default:
		return EngineReady
	}
}

func (p properties) isPlaying() bool {
	return p.loaded && !p.paused && !p.coreIdle && !p.eof
}

// MPV implements Engine using mpv's JSON-IPC protocol.
type MPV struct {
	path       string
	headless   bool
	descriptor source.Descriptor

	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	mu         sync.Mutex    // Protects socket writes
	listener   *EventListener

	state     sync.Mutex // Protects everything below
	callbacks Callbacks
	launch    launch
	props     properties
	prepared  bool
	released  bool
}

// NewMPV creates an mpv engine for d. Nothing is started until Prepare.
func NewMPV(d source.Descriptor, opts MPVOptions) *MPV {
	return &MPV{
		path:       lo.Ternary(opts.Path == "", "mpv", opts.Path),
		headless:   opts.Headless,
		descriptor: d,
		exited:     make(chan struct{}),
		launch:     launch{volume: 1, speed: 1},
		props:      properties{paused: true, coreIdle: true, state: EngineIdle},
	}
}

// Prepare starts mpv idle and paused, waits for its IPC socket, starts
// observing it and loads the source.
func (m *MPV) Prepare(ctx context.Context) error {
	m.state.Lock()
	if m.prepared || m.released {
		m.state.Unlock()
		return ErrAlreadyPrepared
	}
	m.prepared = true
	m.state.Unlock()

	target, err := sanitizeMediaTarget(m.descriptor.URI)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("mpv-%x.sock", randomBytes))

	m.cmd = exec.Command(m.path, m.args()...)

	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// Reap the process and report exits nobody asked for.
	go func() {
		_ = m.cmd.Wait()
		close(m.exited)

		m.state.Lock()
		released, cb := m.released, m.callbacks
		m.state.Unlock()

		if !released && cb.PlayerError != nil {
			cb.PlayerError(ErrProcessExited)
		}
	}()

	if err := m.start(ctx, target); err != nil {
		m.kill()
		return err
	}

	log.Infof("mpv started for %s (%s)", m.descriptor.URI, m.descriptor.Type)
	return nil
}

func (m *MPV) start(ctx context.Context, target string) error {
	if err := m.waitForSocket(ctx); err != nil {
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(m.socketPath, m.onEvent)
	if err := m.listener.Start(); err != nil {
		return err
	}

	if _, err := m.sendCommand([]interface{}{"loadfile", target, "replace"}); err != nil {
		return fmt.Errorf("load %s: %w", target, err)
	}

	return nil
}

// args builds the mpv command line from the descriptor and launch settings.
func (m *MPV) args() []string {
	m.state.Lock()
	l := m.launch
	m.state.Unlock()

	// Do NOT pass --vo, --profile, --hwdec: respect user's mpv.conf.
	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--idle=yes",
		"--keep-open=yes",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--pause=%s", yesNo(!l.playWhenReady)),
		fmt.Sprintf("--volume=%s", formatFloat(l.volume*100)),
		fmt.Sprintf("--speed=%s", formatFloat(l.speed)),
		fmt.Sprintf("--loop-file=%s", loopFile(l.repeat)),
		fmt.Sprintf("--user-agent=%s", m.descriptor.UserAgent()),
	}

	switch id, ok := l.windowID.Get(); {
	case m.headless:
		args = append(args, "--vo=null", "--ao=null")
	case ok:
		args = append(args, fmt.Sprintf("--wid=%d", id))
	default:
		args = append(args, "--force-window=yes")
	}

	if l.exclusive {
		args = append(args, "--audio-exclusive=yes")
	}

	args = append(args, headerFields(m.descriptor)...)

	switch m.descriptor.Type {
	case source.TypeHLS:
		args = append(args, "--demuxer-lavf-format=hls")
	case source.TypeDASH:
		args = append(args, "--demuxer-lavf-format=dash")
	}

	s := l.selection
	switch {
	case s.TextDisabled:
		args = append(args, "--sid=no")
	case s.TextTrackID != "":
		args = append(args, fmt.Sprintf("--sid=%s", s.TextTrackID))
	}
	if s.PreferredTextLanguage != "" {
		args = append(args, fmt.Sprintf("--slang=%s", s.PreferredTextLanguage))
	}

	return args
}

// headerFields passes every header other than User-Agent as its own
// argument, in a stable order. The append form takes the value verbatim,
// so commas inside values survive.
func headerFields(d source.Descriptor) []string {
	header := d.HTTPHeader()
	header.Del(source.UserAgentHeader)

	names := lo.Keys(header)
	slices.Sort(names)

	return lo.FlatMap(names, func(name string, _ int) []string {
		return lo.Map(header.Values(name), func(value string, _ int) string {
			return fmt.Sprintf("--http-header-fields-append=%s: %s", name, value)
		})
	})
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// kill stops a process that never became usable.
func (m *MPV) kill() {
	if m.listener != nil {
		m.listener.Stop()
	}

	m.state.Lock()
	m.released = true
	m.state.Unlock()

	select {
	case <-m.exited:
	default:
		log.Warnf("killing mpv: startup failed")
		_ = killProcess(m.cmd)
		<-m.exited
	}
	_ = os.Remove(m.socketPath)
}

func (m *MPV) AttachSurface(s Surface) error {
	m.state.Lock()
	defer m.state.Unlock()

	if m.prepared {
		return ErrAlreadyPrepared
	}
	if ws, ok := s.(WindowSurface); ok {
		m.launch.windowID = mo.Some(ws.WindowID())
	}
	return nil
}

func (m *MPV) SetAudioAttributes(_ AudioContentType, exclusive bool) error {
	m.state.Lock()
	defer m.state.Unlock()

	if m.prepared {
		return ErrAlreadyPrepared
	}
	m.launch.exclusive = exclusive
	return nil
}

func (m *MPV) SetTrackSelection(s TrackSelection) error {
	if !m.setLaunch(func(l *launch) { l.selection = s }) {
		return nil
	}

	sid := "auto"
	switch {
	case s.TextDisabled:
		sid = "no"
	case s.TextTrackID != "":
		sid = s.TextTrackID
	}

	if s.PreferredTextLanguage != "" {
		if err := m.Set("slang", s.PreferredTextLanguage); err != nil {
			return err
		}
	}
	return m.Set("sid", sid)
}

func (m *MPV) SetCallbacks(cb Callbacks) {
	m.state.Lock()
	defer m.state.Unlock()
	m.callbacks = cb
}

func (m *MPV) SetPlayWhenReady(play bool) error {
	if !m.setLaunch(func(l *launch) { l.playWhenReady = play }) {
		return nil
	}
	return m.Set("pause", !play)
}

func (m *MPV) SetRepeatMode(mode RepeatMode) error {
	if !m.setLaunch(func(l *launch) { l.repeat = mode }) {
		return nil
	}
	return m.Set("loop-file", loopFile(mode))
}

func (m *MPV) SetVolume(v float64) error {
	if !m.setLaunch(func(l *launch) { l.volume = v }) {
		return nil
	}
	return m.Set("volume", v*100)
}

func (m *MPV) SetPlaybackParameters(p PlaybackParameters) error {
	if !m.setLaunch(func(l *launch) { l.speed = p.Speed }) {
		return nil
	}
	if err := m.Set("speed", p.Speed); err != nil {
		return err
	}
	if p.Pitch > 0 {
		return m.Set("pitch", p.Pitch)
	}
	return nil
}

// SeekTo moves playback to an absolute position in milliseconds.
func (m *MPV) SeekTo(ms int64) error {
	_, err := m.sendCommand([]interface{}{"seek", float64(ms) / 1000, "absolute"})
	return err
}

// Stop unloads the current file, leaving mpv idle.
func (m *MPV) Stop() error {
	_, err := m.sendCommand([]interface{}{"stop"})
	return err
}

// Release shuts down the mpv process and cleans up resources.
func (m *MPV) Release() error {
	m.state.Lock()
	if m.released {
		m.state.Unlock()
		return nil
	}
	m.released = true
	m.state.Unlock()

	if m.listener != nil {
		m.listener.Stop()
	}

	if m.cmd == nil {
		return nil
	}

	// Try graceful quit via IPC
	_, _ = m.sendCommand([]interface{}{"quit"})

	var err error
	select {
	case <-m.exited:
	case <-time.After(quitTimeout):
		// Force kill if graceful quit didn't work
		err = killProcess(m.cmd)
		<-m.exited
	}

	_ = os.Remove(m.socketPath)
	return err
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

func (m *MPV) BufferedPosition() int64 {
	m.state.Lock()
	defer m.state.Unlock()
	return millis(lo.Max([]float64{m.props.cached, m.props.position}))
}

func (m *MPV) CurrentPosition() int64 {
	m.state.Lock()
	defer m.state.Unlock()
	return millis(m.props.position)
}

func (m *MPV) Duration() int64 {
	m.state.Lock()
	defer m.state.Unlock()
	return millis(m.props.duration)
}

func (m *MPV) VideoFormat() mo.Option[VideoFormat] {
	m.state.Lock()
	defer m.state.Unlock()
	return m.props.format
}

func (m *MPV) CurrentTracks() ([]TrackGroup, error) {
	m.state.Lock()
	defer m.state.Unlock()

	if !m.props.loaded {
		return nil, ErrNotRunning
	}
	return slices.Clone(m.props.tracks), nil
}

// Set a property
func (m *MPV) Set(property string, value interface{}) error {
	_, err := m.sendCommand([]interface{}{"set_property", property, value})
	return err
}

// setLaunch records a launch setting and reports whether mpv is already
// running, in which case the caller must apply it over IPC.
func (m *MPV) setLaunch(f func(*launch)) bool {
	m.state.Lock()
	defer m.state.Unlock()

	f(&m.launch)
	return m.prepared && !m.released
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand([]interface{}{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	// Reject control characters
	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// Prevent flag injection: URLs must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		if u.Scheme == "" {
			return "", fmt.Errorf("missing URL scheme")
		}
		return l, nil
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}

func yesNo(b bool) string {
	return lo.Ternary(b, "yes", "no")
}

func loopFile(mode RepeatMode) string {
	return lo.Ternary(mode == RepeatAll, "inf", "no")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// millis converts mpv seconds to milliseconds.
func millis(s float64) int64 {
	return int64(s * 1000)
}
