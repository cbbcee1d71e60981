package player

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/otaku-mn/otaku/playback"
)

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("Media target sanitization", t, func() {
		Convey("Should accept http and https URLs", func() {
			for _, target := range []string{
				"http://example.com/video.mp4",
				"https://cdn.example.com/ep/1080.m3u8",
			} {
				got, err := sanitizeMediaTarget(target)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, target)
			}
		})

		Convey("Should reject targets starting with a dash", func() {
			_, err := sanitizeMediaTarget("--input-conf=/etc/passwd")
			So(err, ShouldNotBeNil)
		})

		Convey("Should reject unsupported schemes", func() {
			_, err := sanitizeMediaTarget("ftp://example.com/video.mp4")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestHeaderString(t *testing.T) {
	Convey("Header encoding", t, func() {
		Convey("Should return empty for no headers", func() {
			So(headerString(nil), ShouldBeEmpty)
		})

		Convey("Should encode a single header", func() {
			got := headerString(map[string]string{"Referer": "http://example.com"})
			So(got, ShouldEqual, "Referer: http://example.com")
		})

		Convey("Should escape embedded commas", func() {
			got := headerString(map[string]string{"Cookie": "a=1,b=2"})
			So(got, ShouldEqual, "Cookie: a=1%2Cb=2")
		})

		Convey("Should join multiple headers with commas", func() {
			got := headerString(map[string]string{
				"Referer": "http://example.com",
				"Origin":  "http://example.com",
			})
			So(strings.Count(got, ","), ShouldEqual, 1)
			So(got, ShouldContainSubstring, "Referer: http://example.com")
			So(got, ShouldContainSubstring, "Origin: http://example.com")
		})
	})
}

func TestWatcherStatus(t *testing.T) {
	Convey("Watcher status accumulation", t, func() {
		var reports []playback.Status
		w := NewWatcher(nil, func(st playback.Status) {
			reports = append(reports, st)
		})

		Convey("Duration marks the stream as loaded", func() {
			w.processEvent(`{"event":"property-change","id":2,"name":"duration","data":84.5}`)

			So(reports, ShouldHaveLength, 1)
			So(reports[0].Loaded, ShouldBeTrue)
			So(reports[0].DurationMs, ShouldEqual, 84500)
		})

		Convey("Position updates carry earlier duration", func() {
			w.processEvent(`{"event":"property-change","id":2,"name":"duration","data":60}`)
			w.processEvent(`{"event":"property-change","id":1,"name":"time-pos","data":12.25}`)

			So(reports, ShouldHaveLength, 2)
			So(reports[1].PositionMs, ShouldEqual, 12250)
			So(reports[1].DurationMs, ShouldEqual, 60000)
		})

		Convey("Pause reports invert into the playing flag", func() {
			w.processEvent(`{"event":"property-change","id":3,"name":"pause","data":false}`)
			So(reports[len(reports)-1].Playing, ShouldBeTrue)

			w.processEvent(`{"event":"property-change","id":3,"name":"pause","data":true}`)
			So(reports[len(reports)-1].Playing, ShouldBeFalse)
		})

		Convey("Cache starvation reports buffering", func() {
			w.processEvent(`{"event":"property-change","id":4,"name":"paused-for-cache","data":true}`)
			So(reports[len(reports)-1].Buffering, ShouldBeTrue)

			w.processEvent(`{"event":"property-change","id":4,"name":"paused-for-cache","data":false}`)
			So(reports[len(reports)-1].Buffering, ShouldBeFalse)
		})

		Convey("Completion fires once and does not repeat", func() {
			w.processEvent(`{"event":"property-change","id":6,"name":"eof-reached","data":true}`)
			So(reports[len(reports)-1].JustFinished, ShouldBeTrue)

			w.processEvent(`{"event":"property-change","id":1,"name":"time-pos","data":1}`)
			So(reports[len(reports)-1].JustFinished, ShouldBeFalse)
		})

		Convey("End-file errors surface in the report", func() {
			w.processEvent(`{"event":"end-file","reason":"error"}`)
			So(reports[len(reports)-1].Err, ShouldNotBeNil)
		})

		Convey("Null property data is ignored", func() {
			w.processEvent(`{"event":"property-change","id":1,"name":"time-pos","data":null}`)
			So(reports, ShouldBeEmpty)
		})

		Convey("Unparseable lines are skipped", func() {
			w.processEvent("not json at all")
			So(reports, ShouldBeEmpty)
		})
	})
}
