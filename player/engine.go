package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/log"
)

// CreateResource launches mpv if needed and registers locator under a new handle.
func (m *MPV) CreateResource(ctx context.Context, locator string) (engine.Handle, error) {
	if locator == "" {
		return 0, engine.ErrInvalidLocator
	}

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return 0, engine.ErrClosed
	}

	if err := m.ensure(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", engine.ErrEngineCreate, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, engine.ErrClosed
	}

	m.nextHandle++
	m.items[m.nextHandle] = &item{locator: locator}
	return m.nextHandle, nil
}

// Load replaces the playing file with h. The file is loaded paused.
func (m *MPV) Load(h engine.Handle) error {
	m.mu.Lock()
	it, ok := m.items[h]
	if !ok {
		m.mu.Unlock()
		return engine.ErrNoActiveResource
	}

	m.current = h
	it.status = engine.StatusUnknown
	it.started = false
	it.ended = false
	seeks := m.takeSeeks(func(pendingSeek) bool { return false })
	locator := it.locator
	m.mu.Unlock()

	finish(seeks, false)

	if err := m.send("set_property", "pause", true); err != nil {
		return fmt.Errorf("pause before load: %w", err)
	}
	if err := m.send("loadfile", locator, "replace"); err != nil {
		return fmt.Errorf("load %s: %w", locator, err)
	}
	return nil
}

func (m *MPV) Subscribe(h engine.Handle, s engine.Signal, cb engine.Callback) (engine.Token, error) {
	if s == engine.PeriodicTime {
		return 0, errors.New("periodic time requires ObservePeriodic")
	}

	t, _, err := m.subscribe(h, s, 0, cb)
	return t, err
}

// ObservePeriodic polls the playback position of h every interval while h is loaded.
func (m *MPV) ObservePeriodic(h engine.Handle, interval time.Duration, cb engine.Callback) (engine.Token, error) {
	if interval <= 0 {
		return 0, errors.New("interval must be positive")
	}

	t, sub, err := m.subscribe(h, engine.PeriodicTime, interval, cb)
	if err != nil {
		return 0, err
	}

	go m.poll(sub)
	return t, nil
}

func (m *MPV) subscribe(h engine.Handle, s engine.Signal, interval time.Duration, cb engine.Callback) (engine.Token, *subscription, error) {
	if cb == nil {
		return 0, nil, errors.New("nil callback")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, nil, engine.ErrClosed
	}
	if _, ok := m.items[h]; !ok {
		return 0, nil, engine.ErrNoActiveResource
	}

	m.nextToken++
	sub := newSubscription(h, s, interval, cb)
	m.subs[m.nextToken] = sub
	return m.nextToken, sub, nil
}

// Unsubscribe cancels t and waits for a delivery of t in flight. Unknown tokens are ignored.
func (m *MPV) Unsubscribe(t engine.Token) error {
	m.mu.Lock()
	sub, ok := m.subs[t]
	delete(m.subs, t)
	m.mu.Unlock()

	if ok {
		sub.revoke()
	}
	return nil
}

func (m *MPV) Start(h engine.Handle) error {
	if err := m.requireCurrent(h); err != nil {
		return err
	}
	return m.send("set_property", "pause", false)
}

func (m *MPV) Pause(h engine.Handle) error {
	if err := m.requireCurrent(h); err != nil {
		return err
	}
	return m.send("set_property", "pause", true)
}

// Seek issues an absolute seek, exact when both tolerances are zero and keyframe-snapped otherwise.
// done runs with true on the next playback restart, or with false if h is replaced first.
func (m *MPV) Seek(h engine.Handle, position, before, after time.Duration, done func(bool)) error {
	m.mu.Lock()
	if h != m.current || !h.Valid() {
		m.mu.Unlock()
		return engine.ErrNoActiveResource
	}
	if done != nil {
		m.seeks = append(m.seeks, pendingSeek{handle: h, done: done})
	}
	m.mu.Unlock()

	flags := "absolute+keyframes"
	if before == 0 && after == 0 {
		flags = "absolute+exact"
	}

	if err := m.send("seek", position.Seconds(), flags); err != nil {
		if done != nil {
			m.mu.Lock()
			seeks := m.takeSeeks(func(s pendingSeek) bool { return s.handle != h })
			m.mu.Unlock()
			finish(seeks, false)
		}
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

func (m *MPV) Status(h engine.Handle) engine.ItemStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if it, ok := m.items[h]; ok {
		return it.status
	}
	return engine.StatusUnknown
}

// Release forgets h and its subscriptions, stopping playback if h is loaded.
func (m *MPV) Release(h engine.Handle) error {
	m.mu.Lock()
	if _, ok := m.items[h]; !ok {
		m.mu.Unlock()
		return nil
	}

	delete(m.items, h)
	wasCurrent := m.current == h
	if wasCurrent {
		m.current = 0
	}

	var revoked []*subscription
	for t, sub := range m.subs {
		if sub.handle == h {
			revoked = append(revoked, sub)
			delete(m.subs, t)
		}
	}
	seeks := m.takeSeeks(func(s pendingSeek) bool { return s.handle != h })
	m.mu.Unlock()

	for _, sub := range revoked {
		sub.revoke()
	}
	finish(seeks, false)

	if wasCurrent {
		if err := m.send("stop"); err != nil && !errors.Is(err, engine.ErrClosed) {
			return fmt.Errorf("stop: %w", err)
		}
	}
	return nil
}

func (m *MPV) requireCurrent(h engine.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !h.Valid() || h != m.current {
		return engine.ErrNoActiveResource
	}
	return nil
}

// takeSeeks removes the pending seeks not matching keep and returns them. Callers hold mu.
func (m *MPV) takeSeeks(keep func(pendingSeek) bool) []pendingSeek {
	var taken, kept []pendingSeek
	for _, s := range m.seeks {
		if keep(s) {
			kept = append(kept, s)
		} else {
			taken = append(taken, s)
		}
	}
	m.seeks = kept
	return taken
}

func finish(seeks []pendingSeek, finished bool) {
	for _, s := range seeks {
		s.done(finished)
	}
}

// poll delivers the playback position of sub's handle until the subscription is revoked.
func (m *MPV) poll(sub *subscription) {
	ticker := time.NewTicker(sub.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sub.stop:
			return
		case <-m.exited:
			return
		case <-ticker.C:
		}

		if !m.ready(sub.handle) {
			continue
		}

		pos, err := m.timePos(sub.stop)
		if err != nil {
			log.Tracef("player: time-pos: %v", err)
			continue
		}

		sub.deliver(engine.Event{
			Signal: engine.PeriodicTime,
			Handle: sub.handle,
			Time:   pos,
		})
	}
}

// ready reports whether h is loaded and mpv has opened its file.
func (m *MPV) ready(h engine.Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[h]
	return ok && h == m.current && it.started && it.status == engine.StatusReady
}

func (m *MPV) timePos(stop <-chan struct{}) (time.Duration, error) {
	ipc, err := m.conn()
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	data, err := ipc.command(ctx, "get_property", "time-pos")
	if err != nil {
		return 0, err
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return 0, fmt.Errorf("time-pos: %w", err)
	}
	return fromSeconds(seconds), nil
}

func fromSeconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
