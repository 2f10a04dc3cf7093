package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestCounters(t *testing.T) {
	Convey("Given the session counters", t, func() {
		Convey("Events are counted per kind", func() {
			before := testutil.ToFloat64(EventsEmitted.WithLabelValues("completed"))
			EventsEmitted.WithLabelValues("completed").Inc()
			So(testutil.ToFloat64(EventsEmitted.WithLabelValues("completed")), ShouldEqual, before+1)
		})

		Convey("The active session gauge moves both ways", func() {
			before := GetActiveSessions()
			ActiveSessions.Inc()
			So(GetActiveSessions(), ShouldEqual, before+1)
			ActiveSessions.Dec()
			So(GetActiveSessions(), ShouldEqual, before)
		})
	})
}

func TestServe(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given a metrics server", t, func() {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		So(err, ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- serve(ctx, listener)
		}()

		EngineErrors.Inc()

		Convey("The exposition lists the counters", func() {
			client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
			resp, err := client.Get("http://" + listener.Addr().String() + "/metrics")
			So(err, ShouldBeNil)
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			So(err, ShouldBeNil)
			So(string(body), ShouldContainSubstring, "vidctl_engine_errors_total")

			cancel()
			So(<-done, ShouldBeNil)
		})
	})
}
