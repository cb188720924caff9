package engine

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSignal(t *testing.T) {
	Convey("Signals", t, func() {
		Convey("Status should be attached first", func() {
			So(Signals(), ShouldHaveLength, 5)
			So(Signals()[0], ShouldEqual, Status)
		})

		Convey("Names should be stable", func() {
			So(EndOfItem.String(), ShouldEqual, "end-of-item")
			So(Signal(42).String(), ShouldEqual, "signal(42)")
			So(StatusFailed.String(), ShouldEqual, "failed")
		})

		Convey("Handles should be valid unless zero", func() {
			So(Handle(0).Valid(), ShouldBeFalse)
			So(Handle(7).Valid(), ShouldBeTrue)
		})

		Convey("A time range should end after its duration", func() {
			tr := TimeRange{Start: 2 * time.Second, Duration: 3 * time.Second}
			So(tr.End(), ShouldEqual, 5*time.Second)
		})
	})
}
