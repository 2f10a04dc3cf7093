package tui

import (
	"fmt"
	"time"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidctl/vidctl/event"
	"github.com/vidctl/vidctl/log"
	"github.com/vidctl/vidctl/util"
)

const (
	minSpeed  = 0.25
	maxSpeed  = 4
	speedStep = 0.25
)

type eventMsg struct {
	event event.Event
}

type tickMsg time.Time

// commandErrMsg reports a failed control command. Playback goes on.
type commandErrMsg struct {
	name string
	err  error
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case eventMsg:
		b.fold(msg.event)
		return b, b.waitForEvent()
	case tickMsg:
		b.position = b.controller.Position()
		return b, b.tick()
	case commandErrMsg:
		log.Warnf("%s: %v", msg.name, msg.err)
		b.notice = fmt.Sprintf("%s failed: %v", msg.name, msg.err)
		return b, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.forceQuit), bubblesKey.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.showHelp):
			b.helpC.ShowAll = !b.helpC.ShowAll
			return b, nil
		}
	}

	switch b.state {
	case loadingState, playbackState:
		return b.updatePlayback(msg)
	}

	return b, nil
}

// fold applies one session event to the view.
func (b *statefulBubble) fold(e event.Event) {
	switch e := e.(type) {
	case event.Initialized:
		b.duration = e.Duration
		b.videoWidth, b.videoHeight = e.Width, e.Height
		if b.state == loadingState {
			b.setState(playbackState)
		}
	case event.BufferingStart:
		b.buffering = true
	case event.BufferingEnd:
		b.buffering = false
	case event.BufferingUpdate:
		for _, r := range e.Ranges {
			b.buffered = util.Max(b.buffered, r.End)
		}
	case event.Completed:
		b.completed = true
		b.position = b.duration
	case event.IsPlayingChanged:
		b.playing = e.IsPlaying
		if e.IsPlaying {
			b.completed = false
		}
	case event.CueUpdate:
		b.cue = e.Text
	case event.Error:
		b.raiseError(fmt.Errorf("%s: %s", e.Code, e.Message))
	}
}

func (b *statefulBubble) updatePlayback(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	b.notice = ""

	switch {
	case bubblesKey.Matches(keyMsg, b.keymap.playPause):
		if b.playing {
			return b, b.command("pause", b.controller.Pause)
		}
		if b.completed {
			return b, b.command("replay", func() error {
				if err := b.controller.SeekTo(0); err != nil {
					return err
				}
				return b.controller.Play()
			})
		}
		return b, b.command("play", b.controller.Play)
	case bubblesKey.Matches(keyMsg, b.keymap.seekForward):
		return b, b.seek(b.seekStep)
	case bubblesKey.Matches(keyMsg, b.keymap.seekBackward):
		return b, b.seek(-b.seekStep)
	case bubblesKey.Matches(keyMsg, b.keymap.volumeUp):
		return b, b.setVolume(b.volume + b.volumeStep)
	case bubblesKey.Matches(keyMsg, b.keymap.volumeDown):
		return b, b.setVolume(b.volume - b.volumeStep)
	case bubblesKey.Matches(keyMsg, b.keymap.speedUp):
		return b, b.setSpeed(b.speed + speedStep)
	case bubblesKey.Matches(keyMsg, b.keymap.speedDown):
		return b, b.setSpeed(b.speed - speedStep)
	case bubblesKey.Matches(keyMsg, b.keymap.speedReset):
		return b, b.setSpeed(1)
	case bubblesKey.Matches(keyMsg, b.keymap.loop):
		b.looping = !b.looping
		looping := b.looping
		return b, b.command("loop", func() error {
			return b.controller.SetLooping(looping)
		})
	}

	return b, nil
}

func (b *statefulBubble) seek(by time.Duration) tea.Cmd {
	target := util.Max(b.position+by.Milliseconds(), 0)
	if b.duration > 0 {
		target = util.Min(target, b.duration)
	}

	b.position = target
	return b.command("seek", func() error {
		return b.controller.SeekTo(target)
	})
}

func (b *statefulBubble) setVolume(v float64) tea.Cmd {
	b.volume = util.Clamp(v, 0, 1)
	volume := b.volume
	return b.command("volume", func() error {
		return b.controller.SetVolume(volume)
	})
}

func (b *statefulBubble) setSpeed(v float64) tea.Cmd {
	b.speed = util.Clamp(v, minSpeed, maxSpeed)
	speed := b.speed
	return b.command("speed", func() error {
		return b.controller.SetPlaybackSpeed(speed)
	})
}

// command runs a control command off the update loop.
func (b *statefulBubble) command(name string, f func() error) tea.Cmd {
	return func() tea.Msg {
		if err := f(); err != nil {
			return commandErrMsg{name: name, err: err}
		}
		return nil
	}
}

func (b *statefulBubble) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-b.eventsChannel:
			return eventMsg{event: e}
		case <-b.done:
			return nil
		}
	}
}

func (b *statefulBubble) tick() tea.Cmd {
	return tea.Tick(b.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
