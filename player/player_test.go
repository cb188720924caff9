package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

const wait = 2 * time.Second

// fakeMPV answers IPC commands on the far end of a pipe.
type fakeMPV struct {
	conn net.Conn
	wmu  sync.Mutex

	mu       sync.Mutex
	commands [][]any
	props    map[string]any
	failures map[string]string
}

func newFakeMPV(conn net.Conn) *fakeMPV {
	f := &fakeMPV{
		conn:     conn,
		props:    make(map[string]any),
		failures: make(map[string]string),
	}
	go f.serve()
	return f
}

func (f *fakeMPV) serve() {
	reader := bufio.NewReader(f.conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}

		var req struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if json.Unmarshal(line, &req) != nil || len(req.Command) == 0 {
			continue
		}

		name, _ := req.Command[0].(string)
		reply := map[string]any{"request_id": req.RequestID, "error": "success"}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		if msg, ok := f.failures[name]; ok {
			reply["error"] = msg
		}
		if name == "get_property" && len(req.Command) > 1 {
			if prop, ok := req.Command[1].(string); ok {
				reply["data"] = f.props[prop]
			}
		}
		f.mu.Unlock()

		f.send(reply)
	}
}

func (f *fakeMPV) send(v any) {
	f.wmu.Lock()
	defer f.wmu.Unlock()
	_, _ = f.conn.Write(append(lo.Must(json.Marshal(v)), '\n'))
}

func (f *fakeMPV) event(name string, fields map[string]any) {
	msg := map[string]any{"event": name}
	for k, v := range fields {
		msg[k] = v
	}
	f.send(msg)
}

func (f *fakeMPV) property(name string, data any) {
	f.event("property-change", map[string]any{"name": name, "data": data})
}

func (f *fakeMPV) last() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commands[len(f.commands)-1]
}

func (f *fakeMPV) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.Map(f.commands, func(c []any, _ int) string { return c[0].(string) })
}

func (f *fakeMPV) set(prop string, v any) {
	f.mu.Lock()
	f.props[prop] = v
	f.mu.Unlock()
}

func (f *fakeMPV) fail(command, msg string) {
	f.mu.Lock()
	f.failures[command] = msg
	f.mu.Unlock()
}

func connected() (*MPV, *fakeMPV) {
	client, server := net.Pipe()
	fake := newFakeMPV(server)
	m := New(Options{})
	So(m.connect(context.Background(), client), ShouldBeNil)
	return m, fake
}

func collect(m *MPV, h engine.Handle) chan engine.Event {
	ch := make(chan engine.Event, 32)
	for _, s := range engine.Signals() {
		if s == engine.PeriodicTime {
			continue
		}
		lo.Must(m.Subscribe(h, s, func(ev engine.Event) { offer(ch, ev) }))
	}
	return ch
}

// offer never blocks, so a full channel cannot stall a delivery that holds a subscription gate.
func offer(ch chan engine.Event, ev engine.Event) {
	select {
	case ch <- ev:
	default:
	}
}

func next(ch chan engine.Event) engine.Event {
	select {
	case ev := <-ch:
		return ev
	case <-time.After(wait):
		return engine.Event{}
	}
}

func TestArguments(t *testing.T) {
	Convey("Given launch options", t, func() {
		m := New(Options{ForceWindow: true, Args: []string{"--volume=50"}})
		args := m.arguments("/tmp/mpv.sock")

		Convey("mpv should stay idle, paused and open at the end", func() {
			So(args, ShouldContain, "--idle=yes")
			So(args, ShouldContain, "--keep-open=yes")
			So(args, ShouldContain, "--pause=yes")
			So(args, ShouldContain, "--input-ipc-server=/tmp/mpv.sock")
			So(args, ShouldContain, "--force-window=yes")
			So(args[len(args)-1], ShouldEqual, "--volume=50")
		})

		Convey("Defaults should be applied", func() {
			So(m.opts.Path, ShouldEqual, "mpv")
			So(m.opts.SocketRetries, ShouldEqual, defaultSocketRetries)
			So(New(Options{}).arguments("s"), ShouldNotContain, "--force-window=yes")
		})
	})
}

func TestEngine(t *testing.T) {
	Convey("Given an engine connected to mpv", t, func() {
		m, fake := connected()
		Reset(func() { _ = m.Close() })

		So(fake.names()[:3], ShouldResemble, []string{"observe_property", "observe_property", "observe_property"})

		h, err := m.CreateResource(context.Background(), "/media/a.mkv")
		So(err, ShouldBeNil)
		So(h.Valid(), ShouldBeTrue)
		events := collect(m, h)

		Convey("Subscribing to periodic time should require ObservePeriodic", func() {
			_, err := m.Subscribe(h, engine.PeriodicTime, func(engine.Event) {})
			So(err, ShouldNotBeNil)
			_, err = m.ObservePeriodic(h, 0, func(engine.Event) {})
			So(err, ShouldNotBeNil)
		})

		Convey("Transport needs the handle to be loaded", func() {
			So(m.Start(h), ShouldEqual, engine.ErrNoActiveResource)
			So(m.Seek(h, 0, 0, 0, nil), ShouldEqual, engine.ErrNoActiveResource)
		})

		Convey("When it is loaded", func() {
			So(m.Load(h), ShouldBeNil)
			So(fake.names()[3:], ShouldResemble, []string{"set_property", "loadfile"})
			So(fake.last(), ShouldResemble, []any{"loadfile", "/media/a.mkv", "replace"})

			Convey("Events before the file starts should be ignored", func() {
				fake.event("end-file", map[string]any{"reason": "error", "file_error": "stale"})
				fake.event("start-file", nil)
				fake.event("file-loaded", nil)

				ev := next(events)
				So(ev.Signal, ShouldEqual, engine.Status)
				So(ev.Status, ShouldEqual, engine.StatusReady)
				So(ev.Handle, ShouldEqual, h)
				So(m.Status(h), ShouldEqual, engine.StatusReady)
			})

			Convey("Load errors should report the file error", func() {
				fake.event("start-file", nil)
				fake.event("end-file", map[string]any{"reason": "error", "file_error": "loading failed"})

				ev := next(events)
				So(ev.Status, ShouldEqual, engine.StatusFailed)
				So(ev.Err, ShouldBeError, "loading failed")
				So(m.Status(h), ShouldEqual, engine.StatusFailed)
			})

			Convey("Observed properties should become signals", func() {
				fake.event("start-file", nil)
				fake.property("duration", 90.5)
				fake.property("demuxer-cache-state", map[string]any{
					"seekable-ranges": []any{
						map[string]any{"start": 2.0, "end": 12.0},
						map[string]any{"start": 30.0, "end": 40.0},
					},
				})
				fake.property("eof-reached", true)
				fake.property("eof-reached", true)
				fake.property("duration", nil)
				fake.property("duration", 91.0)

				ev := next(events)
				So(ev.Signal, ShouldEqual, engine.Duration)
				So(ev.Duration, ShouldEqual, 90500*time.Millisecond)

				ev = next(events)
				So(ev.Signal, ShouldEqual, engine.BufferRange)
				So(ev.Range.Start, ShouldEqual, 2*time.Second)
				So(ev.Range.End(), ShouldEqual, 12*time.Second)

				ev = next(events)
				So(ev.Signal, ShouldEqual, engine.EndOfItem)

				ev = next(events)
				So(ev.Signal, ShouldEqual, engine.Duration)
				So(ev.Duration, ShouldEqual, 91*time.Second)
			})

			Convey("Start and pause should toggle the pause property", func() {
				So(m.Start(h), ShouldBeNil)
				So(fake.last(), ShouldResemble, []any{"set_property", "pause", false})
				So(m.Pause(h), ShouldBeNil)
				So(fake.last(), ShouldResemble, []any{"set_property", "pause", true})
			})

			Convey("Seeks should complete on playback restart", func() {
				fake.event("start-file", nil)
				done := make(chan bool, 1)

				So(m.Seek(h, 0, 0, 0, func(ok bool) { done <- ok }), ShouldBeNil)
				So(fake.last(), ShouldResemble, []any{"seek", 0.0, "absolute+exact"})

				fake.event("playback-restart", nil)
				select {
				case ok := <-done:
					So(ok, ShouldBeTrue)
				case <-time.After(wait):
					So("seek never completed", ShouldBeEmpty)
				}

				So(m.Seek(h, 5*time.Second, time.Second, time.Second, nil), ShouldBeNil)
				So(fake.last(), ShouldResemble, []any{"seek", 5.0, "absolute+keyframes"})
			})

			Convey("Failed commands should surface mpv's error", func() {
				fake.fail("seek", "invalid parameter")
				done := make(chan bool, 1)
				err := m.Seek(h, time.Second, 0, 0, func(ok bool) { done <- ok })
				So(errors.Is(err, ErrCommand), ShouldBeTrue)
				So(<-done, ShouldBeFalse)
			})

			Convey("Periodic observers should poll the position once ready", func() {
				fake.set("time-pos", 12.5)
				ticks := make(chan engine.Event, 8)
				token, err := m.ObservePeriodic(h, 10*time.Millisecond, func(ev engine.Event) { offer(ticks, ev) })
				So(err, ShouldBeNil)

				fake.event("start-file", nil)
				fake.event("file-loaded", nil)

				ev := next(ticks)
				So(ev.Signal, ShouldEqual, engine.PeriodicTime)
				So(ev.Time, ShouldEqual, 12500*time.Millisecond)

				So(m.Unsubscribe(token), ShouldBeNil)
				So(m.Unsubscribe(token), ShouldBeNil)
			})

			Convey("Release should stop playback and cancel pending seeks", func() {
				done := make(chan bool, 1)
				So(m.Seek(h, 0, 0, 0, func(ok bool) { done <- ok }), ShouldBeNil)

				So(m.Release(h), ShouldBeNil)
				So(fake.last(), ShouldResemble, []any{"stop"})
				So(<-done, ShouldBeFalse)
				So(m.Status(h), ShouldEqual, engine.StatusUnknown)
				So(m.Start(h), ShouldEqual, engine.ErrNoActiveResource)
				So(m.Release(h), ShouldBeNil)
			})

			Convey("Events should only reach the current handle", func() {
				other, err := m.CreateResource(context.Background(), "/media/b.mkv")
				So(err, ShouldBeNil)
				otherEvents := collect(m, other)
				So(m.Load(other), ShouldBeNil)

				fake.event("start-file", nil)
				fake.event("file-loaded", nil)

				ev := next(otherEvents)
				So(ev.Handle, ShouldEqual, other)
				So(events, ShouldBeEmpty)
			})
		})

		Convey("Closing should quit mpv and refuse new resources", func() {
			So(m.Close(), ShouldBeNil)
			So(fake.last(), ShouldResemble, []any{"quit"})

			select {
			case <-m.Wait():
			case <-time.After(wait):
				So("engine never reported exit", ShouldBeEmpty)
			}

			_, err := m.CreateResource(context.Background(), "/media/c.mkv")
			So(err, ShouldEqual, engine.ErrClosed)
			So(m.Close(), ShouldBeNil)
		})
	})
}
