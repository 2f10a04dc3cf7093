package tui

import (
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidctl/vidctl/event"
	"github.com/vidctl/vidctl/player"
	"github.com/vidctl/vidctl/source"
)

type fakeController struct {
	mu       sync.Mutex
	state    player.State
	volume   float64
	position int64
	listener event.Listener
	detached int
	calls    []string
	seekedTo int64
	looping  bool
	speed    float64
	err      error
}

func (f *fakeController) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeController) Descriptor() source.Descriptor {
	return source.Descriptor{URI: "https://example.com/video.mp4", Type: source.TypeOther}
}

func (f *fakeController) Attach(l event.Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = l
}

func (f *fakeController) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = nil
	f.detached++
}

func (f *fakeController) State() player.State { return f.state }
func (f *fakeController) Volume() float64     { return f.volume }
func (f *fakeController) Position() int64     { return f.position }
func (f *fakeController) Play() error         { return f.record("play") }
func (f *fakeController) Pause() error        { return f.record("pause") }

func (f *fakeController) SetLooping(looping bool) error {
	f.looping = looping
	return f.record("loop")
}

func (f *fakeController) SetVolume(v float64) error {
	f.volume = v
	return f.record("volume")
}

func (f *fakeController) SetPlaybackSpeed(speed float64) error {
	f.speed = speed
	return f.record("speed")
}

func (f *fakeController) SeekTo(ms int64) error {
	f.seekedTo = ms
	return f.record("seek")
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(b *statefulBubble, msg tea.KeyMsg) tea.Msg {
	_, cmd := b.Update(msg)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestFold(t *testing.T) {
	Convey("Given a playback view", t, func() {
		controller := &fakeController{volume: 1}
		b := newBubble(&Options{Controller: controller})

		So(b.state, ShouldEqual, loadingState)
		So(b.title, ShouldEqual, "https://example.com/video.mp4")

		Convey("Initialized switches to playback", func() {
			b.fold(event.Initialized{Duration: 60_000, Width: 1920, Height: 1080})

			So(b.state, ShouldEqual, playbackState)
			So(b.duration, ShouldEqual, 60_000)
			So(b.View(), ShouldContainSubstring, "1920x1080")
			So(b.View(), ShouldContainSubstring, "1:00")
		})

		Convey("Buffering edges toggle the buffering status", func() {
			b.fold(event.Initialized{Duration: 60_000})
			b.fold(event.BufferingStart{})
			b.fold(event.BufferingUpdate{Ranges: []event.Range{{Start: 0, End: 5_000}}})

			So(b.buffering, ShouldBeTrue)
			So(b.buffered, ShouldEqual, 5_000)
			So(b.View(), ShouldContainSubstring, "Buffering")

			b.fold(event.BufferingEnd{})
			So(b.buffering, ShouldBeFalse)
			So(b.View(), ShouldContainSubstring, "Paused")
		})

		Convey("Playing state follows the engine", func() {
			b.fold(event.Initialized{Duration: 60_000})
			b.fold(event.IsPlayingChanged{IsPlaying: true})
			So(b.View(), ShouldContainSubstring, "Playing")

			b.fold(event.Completed{})
			b.fold(event.IsPlayingChanged{IsPlaying: false})
			So(b.completed, ShouldBeTrue)
			So(b.position, ShouldEqual, 60_000)
			So(b.View(), ShouldContainSubstring, "Completed")
		})

		Convey("Cues are shown until cleared", func() {
			b.fold(event.Initialized{})
			b.fold(event.CueUpdate{Text: "Hello there"})
			So(b.View(), ShouldContainSubstring, "Hello there")

			b.fold(event.CueUpdate{})
			So(b.View(), ShouldNotContainSubstring, "Hello there")
		})

		Convey("An error event shows the failure view", func() {
			b.fold(event.Error{Code: player.VideoErrorCode, Message: "Video player had error boom"})

			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, "Video player had error boom")
		})
	})
}

func TestKeys(t *testing.T) {
	Convey("Given a playing view", t, func() {
		controller := &fakeController{volume: 0.5}
		b := newBubble(&Options{Controller: controller, Title: "Movie"})
		b.fold(event.Initialized{Duration: 60_000})

		Convey("Play and pause follow the playing state", func() {
			So(press(b, runes("p")), ShouldBeNil)
			b.fold(event.IsPlayingChanged{IsPlaying: true})
			So(press(b, runes("p")), ShouldBeNil)

			So(controller.calls, ShouldResemble, []string{"play", "pause"})
		})

		Convey("Playing again after completion restarts from the beginning", func() {
			b.fold(event.Completed{})
			press(b, runes("p"))

			So(controller.calls, ShouldResemble, []string{"seek", "play"})
			So(controller.seekedTo, ShouldEqual, 0)
		})

		Convey("Seeking is clamped to the media", func() {
			b.position = 55_000
			press(b, tea.KeyMsg{Type: tea.KeyRight})
			So(controller.seekedTo, ShouldEqual, 60_000)

			b.position = 3_000
			press(b, tea.KeyMsg{Type: tea.KeyLeft})
			So(controller.seekedTo, ShouldEqual, 0)
		})

		Convey("Volume is clamped", func() {
			for i := 0; i < 20; i++ {
				press(b, tea.KeyMsg{Type: tea.KeyUp})
			}
			So(controller.volume, ShouldEqual, 1)
			So(b.View(), ShouldContainSubstring, "100%")
		})

		Convey("Speed stays within bounds", func() {
			for i := 0; i < 10; i++ {
				press(b, runes("["))
			}
			So(controller.speed, ShouldEqual, minSpeed)

			press(b, runes("="))
			So(controller.speed, ShouldEqual, 1)
		})

		Convey("Looping toggles", func() {
			press(b, runes("r"))
			So(controller.looping, ShouldBeTrue)
			So(b.View(), ShouldContainSubstring, "loop")

			press(b, runes("r"))
			So(controller.looping, ShouldBeFalse)
		})

		Convey("A failed command is reported without stopping playback", func() {
			controller.err = errors.New("ipc down")

			msg := press(b, runes("p"))
			So(msg, ShouldHaveSameTypeAs, commandErrMsg{})

			b.Update(msg)
			So(b.state, ShouldEqual, playbackState)
			So(b.View(), ShouldContainSubstring, "ipc down")
		})

		Convey("Quit ends the program", func() {
			_, cmd := b.Update(runes("q"))
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})
	})
}

func TestLifecycle(t *testing.T) {
	Convey("Given a playback view", t, func() {
		controller := &fakeController{}
		b := newBubble(&Options{Controller: controller})

		Convey("Attaching routes session events to the update loop", func() {
			b.attach()()
			So(controller.listener, ShouldNotBeNil)

			go controller.listener.OnEvent(event.Completed{})
			msg := b.waitForEvent()()
			So(msg, ShouldResemble, eventMsg{event: event.Completed{}})
		})

		Convey("Stopping detaches once and unblocks pending deliveries", func() {
			b.attach()()
			listener := controller.listener

			b.stop()
			b.stop()
			So(controller.detached, ShouldEqual, 1)

			for i := 0; i < cap(b.eventsChannel)+1; i++ {
				listener.OnEvent(event.BufferingStart{})
			}
			So(len(b.eventsChannel), ShouldBeLessThanOrEqualTo, cap(b.eventsChannel))
		})

		Convey("A disposed session shows the failure view", func() {
			controller.state = player.StateDisposed

			So(b.Init(), ShouldBeNil)
			So(b.state, ShouldEqual, errorState)
		})
	})
}
