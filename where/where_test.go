package where

import (
	"path/filepath"
	"testing"

	"github.com/anisan-cli/playerview/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config() should honour the override", func() {
			t.Setenv(EnvConfigPath, "/custom/playerview")
			So(Config(), ShouldEqual, "/custom/playerview")
			So(lo.Must(filesystem.API().IsDir("/custom/playerview")), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("History() should live in the config directory", func() {
			So(filepath.Dir(History()), ShouldEqual, Config())
		})

		Convey("Temp()", func() {
			So(lo.Must(filesystem.API().IsDir(Temp())), ShouldBeTrue)
		})
	})
}
