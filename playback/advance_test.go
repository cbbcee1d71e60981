package playback

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAutoAdvance(t *testing.T) {
	Convey("AutoAdvance", t, func() {
		Convey("Should fire the supplier exactly once on Ended", func() {
			fired := 0
			advance := NewAutoAdvance(func() { fired++ })

			advance.Notify(Ended)
			advance.Notify(Ended)
			advance.Notify(Ended)

			So(fired, ShouldEqual, 1)
			So(advance.Fired(), ShouldBeTrue)
		})

		Convey("Should ignore non-terminal notifications", func() {
			fired := 0
			advance := NewAutoAdvance(func() { fired++ })

			advance.Notify(Playing)
			advance.Notify(Buffering)
			advance.Notify(Failed)

			So(fired, ShouldEqual, 0)
		})

		Convey("Should never fire after Cancel", func() {
			fired := 0
			advance := NewAutoAdvance(func() { fired++ })

			advance.Cancel()
			advance.Notify(Ended)

			So(fired, ShouldEqual, 0)
		})

		Convey("Should tolerate a nil supplier", func() {
			advance := NewAutoAdvance(nil)
			So(func() { advance.Notify(Ended) }, ShouldNotPanic)
		})
	})
}
