package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/key"
	"github.com/anisan-cli/playerview/playback"
	"github.com/anisan-cli/playerview/resource"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestPrinter(t *testing.T) {
	Convey("Given a printer", t, func() {
		viper.Set(key.IconsVariant, "plain")

		var buf bytes.Buffer
		state := playback.Playing
		p := New(&buf, func() playback.State { return state })
		p.width = func() int { return 60 }
		r := resource.New(1, "/media/clip.mp4")

		Convey("Ready should print the locator", func() {
			p.PlaybackStatus(r, engine.StatusReady, nil)
			So(buf.String(), ShouldContainSubstring, "Ready")
			So(buf.String(), ShouldContainSubstring, "/media/clip.mp4")
			So(buf.String(), ShouldEndWith, "\n")
		})

		Convey("Failures should print the error", func() {
			p.PlaybackStatus(r, engine.StatusFailed, errors.New("unreachable"))
			So(buf.String(), ShouldContainSubstring, "Failed")
			So(buf.String(), ShouldContainSubstring, "unreachable")
		})

		Convey("Unknown statuses print nothing", func() {
			p.PlaybackStatus(r, engine.StatusUnknown, nil)
			So(buf.Len(), ShouldEqual, 0)
		})

		Convey("Time should render position against duration", func() {
			p.PlaybackDuration(r, 90*time.Second)
			p.PlaybackBuffered(r, engine.TimeRange{Duration: 40 * time.Second})
			p.Time(12 * time.Second)

			out := buf.String()
			So(out, ShouldStartWith, "\r")
			So(out, ShouldContainSubstring, "0:12 / 1:30")
			So(out, ShouldContainSubstring, "0:40 buffered")
			So(out, ShouldContainSubstring, ">")
		})

		Convey("A permanent line should erase the progress line", func() {
			p.Time(time.Second)
			buf.Reset()
			p.PlaybackEnded(r)
			So(buf.String(), ShouldStartWith, "\r\033[K")
			So(buf.String(), ShouldContainSubstring, "Ended")
		})

		Convey("A new resource should reset the tracked duration", func() {
			p.PlaybackDuration(r, time.Minute)
			other := resource.New(2, "/media/other.mp4")
			p.PlaybackStatus(other, engine.StatusReady, nil)
			buf.Reset()
			p.Time(5 * time.Second)
			So(buf.String(), ShouldNotContainSubstring, "/ 1:00")
		})

		Convey("Long locators should be truncated", func() {
			long := resource.New(3, "/media/"+strings.Repeat("x", 200)+".mp4")
			p.PlaybackStatus(long, engine.StatusReady, nil)
			So(buf.String(), ShouldNotContainSubstring, ".mp4")
			So(buf.String(), ShouldContainSubstring, "…")
		})
	})
}
