package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidctl/vidctl/event"
	"github.com/vidctl/vidctl/key"
	"github.com/vidctl/vidctl/style"
	"github.com/vidctl/vidctl/util"
)

// statefulBubble folds controller events into what the playback view shows.
type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	controller Controller
	title      string

	eventsChannel chan event.Event
	done          chan struct{}
	stopOnce      sync.Once

	duration, position, buffered int64
	videoWidth, videoHeight      int

	playing, buffering, completed, looping bool

	volume, speed float64
	cue           string
	notice        string
	lastError     error

	seekStep    time.Duration
	volumeStep  float64
	refreshRate time.Duration

	width, height int
}

// push hands an event over to the program. It gives up once the view has stopped.
func (b *statefulBubble) push(e event.Event) {
	select {
	case b.eventsChannel <- e:
	case <-b.done:
	}
}

// stop detaches the listener and unblocks pending pushes.
func (b *statefulBubble) stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.controller.Detach()
	})
}

// raiseError records a terminal playback failure and switches to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y
	b.progressC.Width = b.width
	b.helpC.Width = b.width
}

// percent is the played share of the media, in [0, 1].
func (b *statefulBubble) percent() float64 {
	if b.duration <= 0 {
		return 0
	}
	return util.Clamp(float64(b.position)/float64(b.duration), 0, 1)
}

func newBubble(options *Options) *statefulBubble {
	bubble := statefulBubble{
		keymap:        newStatefulKeymap(),
		controller:    options.Controller,
		title:         lo.CoalesceOrEmpty(options.Title, options.Controller.Descriptor().URI),
		looping:       options.Looping,
		eventsChannel: make(chan event.Event, 16),
		done:          make(chan struct{}),
		volume:        options.Controller.Volume(),
		speed:         1,
		seekStep:      time.Duration(viper.GetInt(key.TUISeekStep)) * time.Second,
		volumeStep:    viper.GetFloat64(key.TUIVolumeStep),
		refreshRate:   time.Duration(viper.GetInt(key.TUIRefreshRate)) * time.Millisecond,
	}

	if bubble.seekStep <= 0 {
		bubble.seekStep = 10 * time.Second
	}
	if bubble.volumeStep <= 0 {
		bubble.volumeStep = 0.05
	}
	if bubble.refreshRate <= 0 {
		bubble.refreshRate = 250 * time.Millisecond
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.BufferedColor)

	bubble.progressC = progress.New(
		progress.WithGradient(string(style.AccentColor), string(style.SecondaryColor)),
		progress.WithoutPercentage(),
	)

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}
