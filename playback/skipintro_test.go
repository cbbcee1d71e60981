package playback

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSkipIntroWindow(t *testing.T) {
	Convey("Given a playing session with the default 30s-90s window", t, func() {
		session, decoder := newTestSession(nil)
		So(session.Start(), ShouldBeNil)
		session.HandleStatus(loaded(0, 1_200_000))
		window := NewSkipIntroWindow(session)

		Convey("The affordance should be hidden before the minimum offset", func() {
			session.HandleStatus(loaded(20_000, 1_200_000))
			So(window.Visible(), ShouldBeFalse)
		})

		Convey("The affordance should be shown inside the window", func() {
			session.HandleStatus(loaded(60_000, 1_200_000))
			So(window.Visible(), ShouldBeTrue)
		})

		Convey("The affordance should be hidden past the window", func() {
			session.HandleStatus(loaded(95_000, 1_200_000))
			So(window.Visible(), ShouldBeFalse)
		})

		Convey("Skip should seek to the window end and dismiss for the session", func() {
			session.HandleStatus(loaded(45_000, 1_200_000))
			So(window.Visible(), ShouldBeTrue)

			So(window.Skip(), ShouldBeNil)
			So(decoder.calls[len(decoder.calls)-1], ShouldEqual, "seek:90000")
			So(window.Visible(), ShouldBeFalse)

			Convey("And stay hidden even back inside the window", func() {
				session.HandleStatus(loaded(50_000, 1_200_000))
				So(window.Visible(), ShouldBeFalse)
			})
		})

		Convey("SetInterval should adopt a known opening interval", func() {
			window.SetInterval(120_000, 210_000)
			session.HandleStatus(loaded(60_000, 1_200_000))
			So(window.Visible(), ShouldBeFalse)

			session.HandleStatus(loaded(150_000, 1_200_000))
			So(window.Visible(), ShouldBeTrue)
		})

		Convey("SetInterval should ignore degenerate intervals", func() {
			window.SetInterval(90_000, 90_000)
			session.HandleStatus(loaded(60_000, 1_200_000))
			So(window.Visible(), ShouldBeTrue)
		})
	})

	Convey("Given an episode shorter than the window", t, func() {
		session, decoder := newTestSession(nil)
		So(session.Start(), ShouldBeNil)
		session.HandleStatus(loaded(0, 60_000))
		window := NewSkipIntroWindow(session)

		Convey("Skip must clamp the seek to the episode duration", func() {
			session.HandleStatus(loaded(45_000, 60_000))
			So(window.Skip(), ShouldBeNil)
			So(decoder.calls[len(decoder.calls)-1], ShouldEqual, "seek:60000")
		})
	})
}
