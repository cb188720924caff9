package constant

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMpvInstallHint(t *testing.T) {
	Convey("Given a platform", t, func() {
		Convey("Known platforms should get a package manager command", func() {
			So(MpvInstallHint("darwin"), ShouldEqual, "brew install mpv")
			So(MpvInstallHint("android"), ShouldEqual, "pkg install mpv")
		})

		Convey("Unknown platforms should get no hint", func() {
			So(MpvInstallHint("plan9"), ShouldBeEmpty)
		})
	})

	Convey("The banner should be embedded", t, func() {
		So(Banner, ShouldNotBeEmpty)
	})
}
