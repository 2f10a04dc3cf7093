package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidctl/vidctl/source"
	"go.uber.org/goleak"
)

type windowSurface struct{ id int64 }

func (windowSurface) Release() error { return nil }

func (w windowSurface) WindowID() int64 { return w.id }

func headerArgs(args []string) []string {
	var headers []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "--http-header-fields") {
			headers = append(headers, arg)
		}
	}
	return headers
}

func TestMPVHeaderArgs(t *testing.T) {
	Convey("Given a client User-Agent in lowercase", t, func() {
		d, err := source.Resolve(source.Request{
			URI:     "https://cdn.example.com/video.mp4",
			Headers: map[string]string{"user-agent": "MyApp/1.0", "x-token": "t"},
		})
		So(err, ShouldBeNil)

		args := NewMPV(d, MPVOptions{}).args()

		Convey("mpv presents the client's agent and no duplicate header", func() {
			So(args, ShouldContain, "--user-agent=MyApp/1.0")
			So(headerArgs(args), ShouldResemble, []string{"--http-header-fields-append=X-Token: t"})
		})
	})
}

func TestMPVArgs(t *testing.T) {
	Convey("Given an mpv engine for an HLS source", t, func() {
		d, err := source.Resolve(source.Request{
			URI: "https://cdn.example.com/live/index.m3u8",
			Headers: map[string]string{
				"Referer": "http://example.com",
				"Cookie":  "a=1,b=2",
			},
			UserAgent: "agent/1.0",
		})
		So(err, ShouldBeNil)

		m := NewMPV(d, MPVOptions{})

		Convey("The launch arguments carry the source settings", func() {
			args := m.args()
			So(args, ShouldContain, "--idle=yes")
			So(args, ShouldContain, "--pause=yes")
			So(args, ShouldContain, "--volume=100")
			So(args, ShouldContain, "--loop-file=no")
			So(args, ShouldContain, "--user-agent=agent/1.0")
			So(headerArgs(args), ShouldResemble, []string{
				"--http-header-fields-append=Cookie: a=1,b=2",
				"--http-header-fields-append=Referer: http://example.com",
			})
			So(args, ShouldContain, "--demuxer-lavf-format=hls")
			So(args, ShouldContain, "--force-window=yes")
		})

		Convey("Settings made before prepare are launch arguments", func() {
			So(m.AttachSurface(windowSurface{id: 42}), ShouldBeNil)
			So(m.SetAudioAttributes(AudioContentMovie, true), ShouldBeNil)
			So(m.SetTrackSelection(TrackSelection{PreferredTextLanguage: "de", TextTrackID: "3"}), ShouldBeNil)
			So(m.SetPlayWhenReady(true), ShouldBeNil)
			So(m.SetVolume(0.5), ShouldBeNil)
			So(m.SetRepeatMode(RepeatAll), ShouldBeNil)
			So(m.SetPlaybackParameters(PlaybackParameters{Speed: 1.25, Pitch: 1}), ShouldBeNil)

			args := m.args()
			So(args, ShouldContain, "--wid=42")
			So(args, ShouldNotContain, "--force-window=yes")
			So(args, ShouldContain, "--audio-exclusive=yes")
			So(args, ShouldContain, "--sid=3")
			So(args, ShouldContain, "--slang=de")
			So(args, ShouldContain, "--pause=no")
			So(args, ShouldContain, "--volume=50")
			So(args, ShouldContain, "--loop-file=inf")
			So(args, ShouldContain, "--speed=1.25")
		})

		Convey("A headless engine has no outputs", func() {
			args := NewMPV(d, MPVOptions{Headless: true}).args()
			So(args, ShouldContain, "--vo=null")
			So(args, ShouldContain, "--ao=null")
			So(args, ShouldNotContain, "--force-window=yes")
		})

		Convey("Commands fail while mpv is not running", func() {
			So(errors.Is(m.SeekTo(1000), ErrNotRunning), ShouldBeTrue)
			_, err := m.CurrentTracks()
			So(err, ShouldEqual, ErrNotRunning)
		})

		Convey("Releasing an engine that never started is a no-op", func() {
			So(m.Release(), ShouldBeNil)
			So(m.Release(), ShouldBeNil)
			So(m.Prepare(context.Background()), ShouldEqual, ErrAlreadyPrepared)
		})
	})

	Convey("Media targets are sanitized", t, func() {
		_, err := sanitizeMediaTarget("--script=evil.lua")
		So(err, ShouldNotBeNil)
		_, err = sanitizeMediaTarget("https://a/b\nc")
		So(err, ShouldNotBeNil)

		target, err := sanitizeMediaTarget(" clips/../clips/a.mp4 ")
		So(err, ShouldBeNil)
		So(target, ShouldEqual, filepath.Clean("clips/a.mp4"))
	})
}

func TestMPVEvents(t *testing.T) {
	Convey("Given an mpv engine with callbacks", t, func() {
		m := NewMPV(source.Descriptor{URI: "video.mp4"}, MPVOptions{})

		var (
			states  []EngineState
			playing []bool
			cues    [][]Cue
			errs    []error
		)
		m.SetCallbacks(Callbacks{
			PlaybackStateChanged: func(s EngineState) { states = append(states, s) },
			PlayerError:          func(err error) { errs = append(errs, err) },
			IsPlayingChanged:     func(b bool) { playing = append(playing, b) },
			Cues:                 func(c []Cue) { cues = append(cues, c) },
		})

		m.onEvent("duration", 12.5)
		m.onEvent("video-params", map[string]interface{}{"w": 1920.0, "h": 1080.0, "rotate": 90.0})
		m.onEvent("file-loaded", map[string]interface{}{"event": "file-loaded"})

		Convey("Loading a paused file makes it ready", func() {
			So(states, ShouldResemble, []EngineState{EngineReady})
			So(m.Duration(), ShouldEqual, 12500)
			So(m.VideoFormat(), ShouldResemble, mo.Some(VideoFormat{Width: 1920, Height: 1080, RotationDegrees: 90}))
		})

		Convey("Unpausing while the core idles is buffering, then playing", func() {
			m.onEvent("pause", false)
			m.onEvent("core-idle", false)

			So(states, ShouldResemble, []EngineState{EngineReady, EngineBuffering, EngineReady})
			So(playing, ShouldResemble, []bool{true})
		})

		Convey("Cache stalls and seeks are buffering", func() {
			m.onEvent("paused-for-cache", true)
			m.onEvent("paused-for-cache", false)
			m.onEvent("seeking", true)

			So(states, ShouldResemble, []EngineState{EngineReady, EngineBuffering, EngineReady, EngineBuffering})
		})

		Convey("Reaching the end is ended", func() {
			m.onEvent("eof-reached", true)
			So(states[len(states)-1], ShouldEqual, EngineEnded)
		})

		Convey("Subtitle text becomes cues", func() {
			m.onEvent("sub-text", "Hello")
			m.onEvent("sub-text", "")
			So(cues, ShouldResemble, [][]Cue{{{Text: "Hello"}}, nil})
		})

		Convey("Positions are reported in milliseconds", func() {
			m.onEvent("time-pos", 3.25)
			m.onEvent("demuxer-cache-time", 9.0)
			So(m.CurrentPosition(), ShouldEqual, 3250)
			So(m.BufferedPosition(), ShouldEqual, 9000)
		})

		Convey("Track lists become groups", func() {
			m.onEvent("track-list", []interface{}{
				map[string]interface{}{"id": 1.0, "type": "video", "title": "main"},
				map[string]interface{}{"id": 1.0, "type": "audio", "lang": "eng"},
				map[string]interface{}{"id": 2.0, "type": "sub", "lang": "ger", "title": "Deutsch"},
				map[string]interface{}{"id": 3.0, "type": "attachment"},
			})

			groups, err := m.CurrentTracks()
			So(err, ShouldBeNil)
			So(groups, ShouldResemble, []TrackGroup{
				{Category: CategoryVideo, Formats: []Format{{ID: "1", Label: "main"}}},
				{Category: CategoryAudio, Formats: []Format{{ID: "1", Language: "eng"}}},
				{Category: CategoryText, Formats: []Format{{ID: "2", Label: "Deutsch", Language: "ger"}}},
			})
		})

		Convey("Failed files are player errors", func() {
			m.onEvent("end-file", map[string]interface{}{"event": "end-file", "reason": "error", "file_error": "loading failed"})

			So(errs, ShouldHaveLength, 1)
			So(errors.Is(errs[0], ErrPlayback), ShouldBeTrue)
			So(errs[0].Error(), ShouldContainSubstring, "loading failed")
			So(states[len(states)-1], ShouldEqual, EngineIdle)
		})

		Convey("Events after release are dropped", func() {
			So(m.Release(), ShouldBeNil)
			m.onEvent("eof-reached", true)
			So(states, ShouldResemble, []EngineState{EngineReady})
		})
	})
}

// fakeMPV is a unix socket server speaking enough of mpv's IPC protocol.
type fakeMPV struct {
	listener net.Listener
	wg       sync.WaitGroup

	mu       sync.Mutex
	commands [][]interface{}
	events   chan string
}

func newFakeMPV(t *testing.T) *fakeMPV {
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	listener, err := net.Listen("unix", filepath.Join(dir, "s.sock"))
	if err != nil {
		t.Fatal(err)
	}

	f := &fakeMPV{listener: listener, events: make(chan string, 16)}
	f.wg.Add(1)
	go f.serve()
	return f
}

func (f *fakeMPV) path() string {
	return f.listener.Addr().String()
}

func (f *fakeMPV) close() {
	f.listener.Close()
	f.wg.Wait()
}

func (f *fakeMPV) serve() {
	defer f.wg.Done()
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		f.wg.Add(1)
		go f.handle(conn)
	}
}

func (f *fakeMPV) handle(conn net.Conn) {
	defer f.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var cmd ipcCommand
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			return
		}

		f.mu.Lock()
		f.commands = append(f.commands, cmd.Command)
		f.mu.Unlock()

		// a broadcast ahead of the reply
		conn.Write([]byte(`{"event":"audio-reconfig"}` + "\n"))

		switch cmd.Command[0] {
		case "get_property":
			reply, _ := json.Marshal(map[string]interface{}{"data": 12.5, "error": "success", "request_id": cmd.RequestID})
			conn.Write(append(reply, '\n'))
		case "observe_property":
			if cmd.Command[2] == "track-list" {
				go func() {
					for line := range f.events {
						if _, err := conn.Write([]byte(line)); err != nil {
							return
						}
					}
				}()
			}
		case "fail":
			conn.Write([]byte(`{"error":"invalid parameter","request_id":` + jsonInt(cmd.RequestID) + "}\n"))
		default:
			conn.Write([]byte(`{"error":"success","request_id":` + jsonInt(cmd.RequestID) + "}\n"))
		}
	}
}

func (f *fakeMPV) sent() [][]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]interface{}(nil), f.commands...)
}

func jsonInt(i int64) string {
	data, _ := json.Marshal(i)
	return string(data)
}

func TestIPC(t *testing.T) {
	Convey("Given a fake mpv socket", t, func() {
		server := newFakeMPV(t)
		defer server.close()

		m := NewMPV(source.Descriptor{URI: "video.mp4"}, MPVOptions{})
		m.socketPath = server.path()

		Convey("Replies are matched past broadcast events", func() {
			pos, err := m.getFloatProperty("time-pos")
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 12.5)
		})

		Convey("mpv errors are returned", func() {
			_, err := doSendCommand(server.path(), []interface{}{"fail"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid parameter")
		})

		Convey("Commands after prepare are sent over IPC", func() {
			m.prepared = true
			So(m.SetPlayWhenReady(true), ShouldBeNil)
			So(m.SeekTo(1500), ShouldBeNil)
			So(m.SetTrackSelection(TrackSelection{TextDisabled: true}), ShouldBeNil)

			So(server.sent(), ShouldResemble, [][]interface{}{
				{"set_property", "pause", false},
				{"seek", 1.5, "absolute"},
				{"set_property", "sid", "no"},
			})
		})
	})
}

func TestEventListener(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given a listener on a fake mpv socket", t, func() {
		server := newFakeMPV(t)

		type change struct {
			name string
			data interface{}
		}
		received := make(chan change, 16)

		el := NewEventListener(server.path(), func(name string, data interface{}) {
			if name != "audio-reconfig" {
				received <- change{name, data}
			}
		})
		So(el.Start(), ShouldBeNil)

		Convey("Every property is observed and changes are forwarded", func() {
			// split across writes
			server.events <- `{"event":"property-change","id":1,"name":"pause","da`
			server.events <- `ta":false}` + "\n" + `{"event":"file-loaded"}` + "\n"

			first := <-received
			So(first.name, ShouldEqual, "pause")
			So(first.data, ShouldEqual, false)

			second := <-received
			So(second.name, ShouldEqual, "file-loaded")

			observes := 0
			for _, cmd := range server.sent() {
				if cmd[0] == "observe_property" {
					observes++
				}
			}
			So(observes, ShouldEqual, len(observed))
		})

		el.Stop()
		el.Stop()
		close(server.events)
		server.close()
		time.Sleep(10 * time.Millisecond)
	})
}
