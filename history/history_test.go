package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidctl/vidctl/filesystem"
	"github.com/vidctl/vidctl/source"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a source", t, func() {
		So(Clear(), ShouldBeNil)

		d := source.Descriptor{URI: "https://cdn.example.com/vod/stream.mpd", Type: source.TypeDASH}

		Convey("When saving a position", func() {
			err := Save(d, 60_000, 120_000)
			Convey("Then the error should be nil", func() {
				So(err, ShouldBeNil)

				Convey("And the entry should be saved", func() {
					entry, err := Lookup(d.URI)
					So(err, ShouldBeNil)
					So(entry.IsPresent(), ShouldBeTrue)
					So(entry.MustGet().Position, ShouldEqual, 60_000)
					So(entry.MustGet().WatchedPercentage, ShouldEqual, 50.0)
					So(entry.MustGet().ResumeAt(), ShouldEqual, 60_000)
				})

				Convey("And watching the start again keeps the furthest progress", func() {
					So(Save(d, 6_000, 120_000), ShouldBeNil)

					entry, err := Lookup(d.URI)
					So(err, ShouldBeNil)
					So(entry.MustGet().Position, ShouldEqual, 6_000)
					So(entry.MustGet().WatchedPercentage, ShouldEqual, 50.0)
				})

				Convey("And a finished source resumes from the start", func() {
					So(Save(d, 119_000, 120_000), ShouldBeNil)

					entry, _ := Lookup(d.URI)
					So(entry.MustGet().Finished(), ShouldBeTrue)
					So(entry.MustGet().ResumeAt(), ShouldEqual, 0)
				})

				Convey("And it can be removed", func() {
					So(Remove(d.URI), ShouldBeNil)
					entry, err := Lookup(d.URI)
					So(err, ShouldBeNil)
					So(entry.IsAbsent(), ShouldBeTrue)
				})
			})
		})

		Convey("Recent entries come newest first", func() {
			other := source.Descriptor{URI: "clip.mp4", Type: source.TypeOther}
			So(Save(d, 1, 10), ShouldBeNil)
			So(Save(other, 1, 10), ShouldBeNil)

			entries, err := Recent()
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].URI, ShouldEqual, other.URI)
		})
	})
}
