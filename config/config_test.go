package config

import (
	"testing"

	"github.com/anisan-cli/playerview/filesystem"
	"github.com/anisan-cli/playerview/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should register every defined key", func() {
			So(Default, ShouldHaveLength, key.DefinedFieldsCount)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetBool(key.PlayerAutoPlay), ShouldBeTrue)
			So(viper.GetInt(key.PlayerTimeInterval), ShouldEqual, 1000)
		})

		Convey("Should read overrides from the environment", func() {
			t.Setenv("PLAYERVIEW_PLAYER_AUTO_REPLAY", "false")
			_ = Setup()
			So(viper.GetBool(key.PlayerAutoReplay), ShouldBeFalse)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("player.auto_play"), ShouldEqual, "player_auto_play")
		})

		Convey("Field.Env should carry the application prefix", func() {
			f := Default[key.PlayerMpvPath]
			So(f.Env(), ShouldEqual, "PLAYERVIEW_PLAYER_MPV_PATH")
		})
	})
}
