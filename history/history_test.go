package history

import (
	"testing"
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/filesystem"
	"github.com/anisan-cli/playerview/resource"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func newStore(path string) *Store {
	store := Open(path)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return store
}

func TestStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		store := newStore("/history/store.json")
		So(store.Clear(), ShouldBeNil)

		Convey("Latest should be empty", func() {
			latest, err := store.Latest()
			So(err, ShouldBeNil)
			So(latest.IsAbsent(), ShouldBeTrue)
		})

		Convey("When recording plays", func() {
			So(store.RecordPlay("/media/a.mkv"), ShouldBeNil)
			So(store.RecordPlay("/media/b.mkv"), ShouldBeNil)
			So(store.RecordPlay("/media/a.mkv"), ShouldBeNil)
			So(store.RecordEnd("/media/a.mkv"), ShouldBeNil)
			So(store.RecordDuration("/media/a.mkv", 90*time.Second), ShouldBeNil)

			Convey("Then the entry should accumulate", func() {
				entry, err := store.Get("/media/a.mkv")
				So(err, ShouldBeNil)
				So(entry.IsPresent(), ShouldBeTrue)
				So(entry.MustGet().Plays, ShouldEqual, 2)
				So(entry.MustGet().Ends, ShouldEqual, 1)
				So(entry.MustGet().LastDuration, ShouldEqual, 90*time.Second)
			})

			Convey("Then entries should be ordered by recency", func() {
				entries, err := store.Entries()
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Locator, ShouldEqual, "/media/a.mkv")

				latest, err := store.Latest()
				So(err, ShouldBeNil)
				So(latest.MustGet().Locator, ShouldEqual, "/media/a.mkv")
			})

			Convey("Then a reopened store should see them", func() {
				entries, err := Open("/history/store.json").Entries()
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
			})

			Convey("Then remove should drop one entry", func() {
				So(store.Remove("/media/b.mkv"), ShouldBeNil)
				entry, err := store.Get("/media/b.mkv")
				So(err, ShouldBeNil)
				So(entry.IsAbsent(), ShouldBeTrue)
			})
		})
	})
}

func TestRecorder(t *testing.T) {
	Convey("Given a recorder", t, func() {
		store := newStore("/history/recorder.json")
		So(store.Clear(), ShouldBeNil)
		recorder := NewRecorder(store)
		res := resource.New(1, "/media/clip.mp4")

		Convey("A resource should count as played once across ready statuses", func() {
			recorder.PlaybackStatus(res, engine.StatusReady, nil)
			recorder.PlaybackStatus(res, engine.StatusReady, nil)
			recorder.PlaybackStatus(res, engine.StatusFailed, nil)

			entry, err := store.Get(res.Locator)
			So(err, ShouldBeNil)
			So(entry.MustGet().Plays, ShouldEqual, 1)
		})

		Convey("Durations and ends should be persisted", func() {
			recorder.PlaybackDuration(res, 0)
			recorder.PlaybackDuration(res, time.Minute)
			recorder.PlaybackEnded(res)

			entry, err := store.Get(res.Locator)
			So(err, ShouldBeNil)
			So(entry.MustGet().LastDuration, ShouldEqual, time.Minute)
			So(entry.MustGet().Ends, ShouldEqual, 1)
		})
	})
}
