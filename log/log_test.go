package log

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/anisan-cli/playerview/filesystem"
	"github.com/anisan-cli/playerview/key"
	"github.com/anisan-cli/playerview/where"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Log Setup", t, func() {
		Reset(func() {
			viper.Set(key.LogsWrite, false)
			enabled = false
		})

		Convey("Should stay disabled by default", func() {
			viper.Set(key.LogsWrite, false)
			So(Setup(), ShouldBeNil)
			So(Enabled(), ShouldBeFalse)
		})

		Convey("Should create today's log file when enabled", func() {
			viper.Set(key.LogsWrite, true)
			viper.Set(key.LogsLevel, "not-a-level")
			So(Setup(), ShouldBeNil)
			So(Enabled(), ShouldBeTrue)

			Infof("hello %s", "world")
			path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
			So(lo.Must(filesystem.API().Exists(path)), ShouldBeTrue)
		})
	})
}
