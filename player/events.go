package player

import (
	"encoding/json"
	"errors"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/log"
)

type cacheState struct {
	SeekableRanges []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"seekable-ranges"`
}

// handleEvent maps one mpv event onto signals of the current handle. It runs on the IPC read goroutine.
func (m *MPV) handleEvent(msg *ipcMessage) {
	m.mu.Lock()
	h := m.current
	it, ok := m.items[h]
	if !ok {
		m.mu.Unlock()
		return
	}

	if msg.Event == "start-file" {
		it.started = true
		m.mu.Unlock()
		return
	}
	if !it.started {
		m.mu.Unlock()
		return
	}

	var events []engine.Event
	var seeks []pendingSeek

	switch msg.Event {
	case "file-loaded":
		it.status = engine.StatusReady
		events = append(events, engine.Event{Signal: engine.Status, Status: engine.StatusReady})

	case "end-file":
		switch msg.Reason {
		case "error":
			it.status = engine.StatusFailed
			reason := msg.FileError
			if reason == "" {
				reason = "unknown error"
			}
			events = append(events, engine.Event{Signal: engine.Status, Status: engine.StatusFailed, Err: errors.New(reason)})
			seeks = m.takeSeeks(func(s pendingSeek) bool { return s.handle != h })
		case "eof":
			if !it.ended {
				it.ended = true
				events = append(events, engine.Event{Signal: engine.EndOfItem})
			}
		}

	case "playback-restart":
		seeks = m.takeSeeks(func(s pendingSeek) bool { return s.handle != h })

	case "property-change":
		if ev, ok := m.propertyEvent(it, msg); ok {
			events = append(events, ev)
		}
	}

	finished := msg.Event == "playback-restart"
	m.mu.Unlock()

	finish(seeks, finished)
	for _, ev := range events {
		ev.Handle = h
		m.emit(ev)
	}
}

// propertyEvent converts an observed property change. Callers hold mu.
func (m *MPV) propertyEvent(it *item, msg *ipcMessage) (engine.Event, bool) {
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return engine.Event{}, false
	}

	switch msg.Name {
	case "duration":
		var seconds float64
		if err := json.Unmarshal(msg.Data, &seconds); err != nil {
			log.Tracef("player: duration: %v", err)
			return engine.Event{}, false
		}
		return engine.Event{Signal: engine.Duration, Duration: fromSeconds(seconds)}, true

	case "demuxer-cache-state":
		var state cacheState
		if err := json.Unmarshal(msg.Data, &state); err != nil || len(state.SeekableRanges) == 0 {
			return engine.Event{}, false
		}
		first := state.SeekableRanges[0]
		start := fromSeconds(first.Start)
		return engine.Event{
			Signal: engine.BufferRange,
			Range:  engine.TimeRange{Start: start, Duration: fromSeconds(first.End) - start},
		}, true

	case "eof-reached":
		var reached bool
		if err := json.Unmarshal(msg.Data, &reached); err != nil {
			return engine.Event{}, false
		}
		if !reached {
			it.ended = false
			return engine.Event{}, false
		}
		if it.ended {
			return engine.Event{}, false
		}
		it.ended = true
		return engine.Event{Signal: engine.EndOfItem}, true
	}

	return engine.Event{}, false
}

// emit delivers ev to every live subscription of its handle and signal.
func (m *MPV) emit(ev engine.Event) {
	m.mu.Lock()
	var targets []*subscription
	for _, sub := range m.subs {
		if sub.handle == ev.Handle && sub.signal == ev.Signal {
			targets = append(targets, sub)
		}
	}
	m.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(ev)
	}
}
