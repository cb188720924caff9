package inline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/resource"
	. "github.com/smartystreets/goconvey/convey"
)

func decode(buf *bytes.Buffer) []Event {
	var events []Event
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var ev Event
		So(json.Unmarshal(scanner.Bytes(), &ev), ShouldBeNil)
		events = append(events, ev)
	}
	return events
}

func TestWriter(t *testing.T) {
	Convey("Given a writer", t, func() {
		var buf bytes.Buffer
		w := New(&buf)
		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		w.now = func() time.Time { return at }
		r := resource.New(3, "https://example.com/a.m3u8")

		Convey("Every notification should become one line", func() {
			w.PlaybackStatus(r, engine.StatusReady, nil)
			w.PlaybackDuration(r, 90*time.Second)
			w.PlaybackBuffered(r, engine.TimeRange{Start: time.Second, Duration: 4 * time.Second})
			w.Time(1500 * time.Millisecond)
			w.PlaybackEnded(r)

			events := decode(&buf)
			So(events, ShouldHaveLength, 5)

			So(events[0].Kind, ShouldEqual, KindStatus)
			So(events[0].Status, ShouldEqual, "ready")
			So(events[0].Resource, ShouldEqual, r.ID)
			So(events[0].At.Equal(at), ShouldBeTrue)

			So(*events[1].Duration, ShouldEqual, 90)

			So(events[2].Buffered.Start, ShouldEqual, 1)
			So(events[2].Buffered.End, ShouldEqual, 5)

			So(events[3].Kind, ShouldEqual, KindTime)
			So(events[3].Resource, ShouldBeEmpty)
			So(*events[3].Time, ShouldEqual, 1.5)

			So(events[4].Kind, ShouldEqual, KindEnded)
			So(events[4].Locator, ShouldEqual, r.Locator)
		})

		Convey("Failures should carry the error text", func() {
			w.PlaybackStatus(r, engine.StatusFailed, errors.New("no such file"))

			events := decode(&buf)
			So(events, ShouldHaveLength, 1)
			So(events[0].Status, ShouldEqual, "failed")
			So(events[0].Error, ShouldEqual, "no such file")
		})
	})
}
