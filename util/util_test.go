package util

import (
	"testing"
	"time"

	"github.com/anisan-cli/playerview/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "play", "plays"), ShouldEqual, "1 play")
		So(Quantify(2, "play", "plays"), ShouldEqual, "2 plays")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("history"), ShouldEqual, "History")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFormatClock(t *testing.T) {
	Convey("FormatClock", t, func() {
		So(FormatClock(0), ShouldEqual, "0:00")
		So(FormatClock(-time.Second), ShouldEqual, "0:00")
		So(FormatClock(75*time.Second), ShouldEqual, "1:15")
		So(FormatClock(time.Hour+2*time.Minute+3*time.Second), ShouldEqual, "1:02:03")
		So(FormatClock(1499*time.Millisecond), ShouldEqual, "0:01")
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		fs := filesystem.API()
		So(fs.MkdirAll("/data/nested", 0o755), ShouldBeNil)
		So(fs.WriteFile("/data/nested/file.txt", []byte("x"), 0o644), ShouldBeNil)

		Convey("Should remove directories recursively", func() {
			So(Delete("/data"), ShouldBeNil)
			So(lo.Must(fs.Exists("/data")), ShouldBeFalse)
		})

		Convey("Should fail for missing paths", func() {
			So(Delete("/missing"), ShouldNotBeNil)
		})
	})
}
