package event

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) cues() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, e := range r.events {
		if cue, ok := e.(CueUpdate); ok {
			out = append(out, cue.Text)
		}
	}
	return out
}

func TestSink(t *testing.T) {
	Convey("Given a sink without a listener", t, func() {
		sink := NewSink()
		sink.Success(CueUpdate{Text: "a"})
		sink.Success(CueUpdate{Text: "b"})
		sink.Error("VideoError", "boom", nil)

		Convey("Events are buffered", func() {
			So(sink.Len(), ShouldEqual, 3)
		})

		Convey("When a listener attaches", func() {
			rec := &recorder{}
			sink.SetDelegate(rec)

			Convey("Buffered events are flushed once, in order", func() {
				So(sink.Len(), ShouldEqual, 0)
				So(rec.events, ShouldHaveLength, 3)
				So(rec.cues(), ShouldResemble, []string{"a", "b"})
				So(rec.events[2], ShouldResemble, Error{Code: "VideoError", Message: "boom"})
			})

			Convey("Later events pass straight through", func() {
				sink.Success(Completed{})
				So(rec.events, ShouldHaveLength, 4)
				So(rec.events[3], ShouldResemble, Completed{})
			})

			Convey("Re-attaching the same listener does not redeliver", func() {
				sink.SetDelegate(rec)
				So(rec.events, ShouldHaveLength, 3)
			})

			Convey("And then detaches", func() {
				sink.SetDelegate(nil)
				sink.Success(CueUpdate{Text: "c"})
				sink.Success(CueUpdate{Text: "d"})

				Convey("Events are kept for the next listener", func() {
					So(sink.Len(), ShouldEqual, 2)
					So(rec.cues(), ShouldResemble, []string{"a", "b"})

					next := &recorder{}
					sink.SetDelegate(next)
					So(next.cues(), ShouldResemble, []string{"c", "d"})
					So(rec.cues(), ShouldResemble, []string{"a", "b"})
				})
			})
		})
	})

	Convey("Given a listener that feeds the sink while handling an event", t, func() {
		sink := NewSink()
		rec := &recorder{}
		sink.SetDelegate(ListenerFunc(func(e Event) {
			if cue, ok := e.(CueUpdate); ok && cue.Text == "first" {
				sink.Success(CueUpdate{Text: "nested"})
			}
			rec.OnEvent(e)
		}))

		sink.Success(CueUpdate{Text: "first"})
		sink.Success(CueUpdate{Text: "second"})

		Convey("Nested events are delivered after the current one without deadlock", func() {
			So(rec.cues(), ShouldResemble, []string{"first", "nested", "second"})
		})
	})

	Convey("Given a listener that detaches itself mid-flush", t, func() {
		sink := NewSink()
		for _, text := range []string{"a", "b", "c"} {
			sink.Success(CueUpdate{Text: text})
		}

		rec := &recorder{}
		sink.SetDelegate(ListenerFunc(func(e Event) {
			rec.OnEvent(e)
			sink.SetDelegate(nil)
		}))

		Convey("The remaining events stay queued", func() {
			So(rec.cues(), ShouldResemble, []string{"a"})
			So(sink.Len(), ShouldEqual, 2)
		})
	})

	Convey("Given concurrent producers", t, func() {
		sink := NewSink()
		rec := &recorder{}

		const producers, perProducer = 8, 200
		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					sink.Success(Completed{})
				}
			}()
			if p == producers/2 {
				sink.SetDelegate(rec)
			}
		}
		wg.Wait()
		sink.SetDelegate(rec)

		Convey("Every event is delivered exactly once", func() {
			So(sink.Len(), ShouldEqual, 0)
			So(rec.events, ShouldHaveLength, producers*perProducer)
		})
	})
}

func TestSinkEnqueue(t *testing.T) {
	Convey("Given a sink with a listener", t, func() {
		sink := NewSink()
		rec := &recorder{}
		sink.SetDelegate(rec)

		Convey("Enqueued events wait for a flush", func() {
			sink.Enqueue(CueUpdate{Text: "a"}, CueUpdate{Text: "b"})
			sink.Enqueue()
			So(rec.cues(), ShouldBeEmpty)
			So(sink.Len(), ShouldEqual, 2)

			sink.Flush()
			So(rec.cues(), ShouldResemble, []string{"a", "b"})
			So(sink.Len(), ShouldEqual, 0)
		})
	})
}
