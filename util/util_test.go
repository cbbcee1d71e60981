package util

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5, 0, 10), ShouldEqual, 5)
		So(Clamp(-3, 0, 10), ShouldEqual, 0)
		So(Clamp(42, 0, 10), ShouldEqual, 10)
		So(Clamp(int64(7500), int64(0), int64(7500)), ShouldEqual, int64(7500))
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "entry", "entries"), ShouldEqual, "1 entry")
		So(Quantify(2, "entry", "entries"), ShouldEqual, "2 entries")
	})
}

func TestFormatDurationMs(t *testing.T) {
	Convey("FormatDurationMs", t, func() {
		So(FormatDurationMs(0), ShouldEqual, "0:00")
		So(FormatDurationMs(62_000), ShouldEqual, "1:02")
		So(FormatDurationMs(600_000), ShouldEqual, "10:00")
		So(FormatDurationMs(3_723_000), ShouldEqual, "1:02:03")
		So(FormatDurationMs(-500), ShouldEqual, "0:00")
	})
}
