package player

import (
	"testing"
	"time"

	"github.com/anisan-cli/playerview/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCollectGarbage(t *testing.T) {
	Convey("Given a socket directory", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		So(fs.MkdirAll("/tmp/playerview", 0o755), ShouldBeNil)

		old := time.Now().Add(-2 * SocketTTL)
		for _, name := range []string{"mpv-old.sock", "notes.txt"} {
			So(fs.WriteFile("/tmp/playerview/"+name, nil, 0o600), ShouldBeNil)
			So(fs.Chtimes("/tmp/playerview/"+name, old, old), ShouldBeNil)
		}
		So(fs.WriteFile("/tmp/playerview/mpv-live.sock", nil, 0o600), ShouldBeNil)

		Convey("Only stale sockets should be removed", func() {
			So(CollectGarbage("/tmp/playerview"), ShouldEqual, 1)
			So(lo.Must(fs.Exists("/tmp/playerview/mpv-old.sock")), ShouldBeFalse)
			So(lo.Must(fs.Exists("/tmp/playerview/mpv-live.sock")), ShouldBeTrue)
			So(lo.Must(fs.Exists("/tmp/playerview/notes.txt")), ShouldBeTrue)
		})
	})
}
