package playback

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestState(t *testing.T) {
	Convey("State transitions", t, func() {
		Convey("Resume should be allowed from Ready, Paused and Ended", func() {
			for _, s := range []State{Ready, Paused, Ended} {
				So(s.CanResume(), ShouldBeTrue)
			}
			for _, s := range []State{Idle, Loading, Playing, Failed} {
				So(s.CanResume(), ShouldBeFalse)
			}
		})

		Convey("Only Playing can pause", func() {
			So(Playing.CanPause(), ShouldBeTrue)
			So(Paused.CanPause(), ShouldBeFalse)
			So(Ready.CanPause(), ShouldBeFalse)
		})

		Convey("Only Playing and Paused can end", func() {
			So(Playing.CanEnd(), ShouldBeTrue)
			So(Paused.CanEnd(), ShouldBeTrue)
			for _, s := range []State{Idle, Loading, Ready, Ended, Failed} {
				So(s.CanEnd(), ShouldBeFalse)
			}
		})

		Convey("Replay needs a loaded resource", func() {
			So(Ended.CanReplay(), ShouldBeTrue)
			So(Playing.CanReplay(), ShouldBeTrue)
			So(Idle.CanReplay(), ShouldBeFalse)
			So(Failed.CanReplay(), ShouldBeFalse)
			So(Loading.CanReplay(), ShouldBeFalse)
		})

		Convey("States should have readable names", func() {
			So(Idle.String(), ShouldEqual, "Idle")
			So(Failed.String(), ShouldEqual, "Failed")
		})
	})
}
