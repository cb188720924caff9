// Package enginetest provides an in-memory engine.Engine for tests.
//
// Nothing is decoded. Tests drive signals by hand with Emit and friends and
// inspect the recorded transport calls afterwards.
package enginetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/anisan-cli/playerview/engine"
)

// SeekCall records one Seek invocation.
type SeekCall struct {
	Handle          engine.Handle
	Position        time.Duration
	ToleranceBefore time.Duration
	ToleranceAfter  time.Duration
}

type item struct {
	locator string
	status  engine.ItemStatus
}

type subscription struct {
	handle   engine.Handle
	signal   engine.Signal
	interval time.Duration
	cb       engine.Callback
}

// Engine is a test double for engine.Engine.
type Engine struct {
	mu sync.Mutex

	nextHandle engine.Handle
	nextToken  engine.Token
	items      map[engine.Handle]*item
	subs       map[engine.Token]*subscription
	current    engine.Handle
	closed     bool
	createErr  error

	loads        []engine.Handle
	starts       []engine.Handle
	pauses       []engine.Handle
	released     []engine.Handle
	seeks        []SeekCall
	pendingSeeks []func(bool)
}

// New creates an empty fake engine.
func New() *Engine {
	return &Engine{
		items: make(map[engine.Handle]*item),
		subs:  make(map[engine.Token]*subscription),
	}
}

func (e *Engine) CreateResource(_ context.Context, locator string) (engine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, engine.ErrClosed
	}
	if e.createErr != nil {
		return 0, e.createErr
	}
	if locator == "" {
		return 0, engine.ErrInvalidLocator
	}

	e.nextHandle++
	e.items[e.nextHandle] = &item{locator: locator}
	return e.nextHandle, nil
}

func (e *Engine) Load(h engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.items[h]; !ok {
		return engine.ErrNoActiveResource
	}
	e.current = h
	e.loads = append(e.loads, h)
	return nil
}

func (e *Engine) Subscribe(h engine.Handle, s engine.Signal, cb engine.Callback) (engine.Token, error) {
	if s == engine.PeriodicTime {
		return 0, errors.New("periodic time requires ObservePeriodic")
	}
	return e.subscribe(h, s, 0, cb)
}

func (e *Engine) ObservePeriodic(h engine.Handle, interval time.Duration, cb engine.Callback) (engine.Token, error) {
	if interval <= 0 {
		return 0, errors.New("interval must be positive")
	}
	return e.subscribe(h, engine.PeriodicTime, interval, cb)
}

func (e *Engine) subscribe(h engine.Handle, s engine.Signal, interval time.Duration, cb engine.Callback) (engine.Token, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, engine.ErrClosed
	}
	if _, ok := e.items[h]; !ok {
		return 0, engine.ErrNoActiveResource
	}

	e.nextToken++
	e.subs[e.nextToken] = &subscription{handle: h, signal: s, interval: interval, cb: cb}
	return e.nextToken, nil
}

func (e *Engine) Unsubscribe(t engine.Token) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.subs, t)
	return nil
}

func (e *Engine) Start(h engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if h != e.current {
		return engine.ErrNoActiveResource
	}
	e.starts = append(e.starts, h)
	return nil
}

func (e *Engine) Pause(h engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if h != e.current {
		return engine.ErrNoActiveResource
	}
	e.pauses = append(e.pauses, h)
	return nil
}

func (e *Engine) Seek(h engine.Handle, position, before, after time.Duration, done func(bool)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if h != e.current {
		return engine.ErrNoActiveResource
	}
	e.seeks = append(e.seeks, SeekCall{Handle: h, Position: position, ToleranceBefore: before, ToleranceAfter: after})
	if done != nil {
		e.pendingSeeks = append(e.pendingSeeks, done)
	}
	return nil
}

func (e *Engine) Status(h engine.Handle) engine.ItemStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	if it, ok := e.items[h]; ok {
		return it.status
	}
	return engine.StatusUnknown
}

func (e *Engine) Release(h engine.Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.items[h]; !ok {
		return nil
	}
	delete(e.items, h)
	if e.current == h {
		e.current = 0
	}
	e.released = append(e.released, h)
	return nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.subs = make(map[engine.Token]*subscription)
	return nil
}

// Test helpers

// SetCreateError makes every following CreateResource fail with err. Pass nil to reset.
func (e *Engine) SetCreateError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.createErr = err
}

// SetStatus changes what Status reports for h without emitting a signal.
func (e *Engine) SetStatus(h engine.Handle, s engine.ItemStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if it, ok := e.items[h]; ok {
		it.status = s
	}
}

// Emit synchronously delivers ev to every live subscription of h for ev.Signal
// and returns how many callbacks ran.
func (e *Engine) Emit(h engine.Handle, ev engine.Event) int {
	ev.Handle = h

	e.mu.Lock()
	var targets []engine.Callback
	for _, sub := range e.subs {
		if sub.handle == h && sub.signal == ev.Signal {
			targets = append(targets, sub.cb)
		}
	}
	e.mu.Unlock()

	for _, cb := range targets {
		cb(ev)
	}
	return len(targets)
}

// EmitStatus updates the status of h and emits a Status signal.
func (e *Engine) EmitStatus(h engine.Handle, s engine.ItemStatus, err error) int {
	e.SetStatus(h, s)
	return e.Emit(h, engine.Event{Signal: engine.Status, Status: s, Err: err})
}

// EmitEnd emits an EndOfItem signal for h.
func (e *Engine) EmitEnd(h engine.Handle) int {
	return e.Emit(h, engine.Event{Signal: engine.EndOfItem})
}

// Tick emits a PeriodicTime signal for h at t.
func (e *Engine) Tick(h engine.Handle, t time.Duration) int {
	return e.Emit(h, engine.Event{Signal: engine.PeriodicTime, Time: t})
}

// CompleteSeeks resolves every pending seek with finished.
func (e *Engine) CompleteSeeks(finished bool) int {
	e.mu.Lock()
	pending := e.pendingSeeks
	e.pendingSeeks = nil
	e.mu.Unlock()

	for _, done := range pending {
		done(finished)
	}
	return len(pending)
}

// Current returns the handle passed to the last successful Load, or zero.
func (e *Engine) Current() engine.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Locator returns the locator h was created from.
func (e *Engine) Locator(h engine.Handle) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if it, ok := e.items[h]; ok {
		return it.locator
	}
	return ""
}

// Subscriptions counts live subscriptions of h.
func (e *Engine) Subscriptions(h engine.Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var n int
	for _, sub := range e.subs {
		if sub.handle == h {
			n++
		}
	}
	return n
}

// TotalSubscriptions counts every live subscription.
func (e *Engine) TotalSubscriptions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Subscribed reports whether h has a live subscription for s.
func (e *Engine) Subscribed(h engine.Handle, s engine.Signal) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, sub := range e.subs {
		if sub.handle == h && sub.signal == s {
			return true
		}
	}
	return false
}

// Interval returns the interval of the periodic subscription of h, or zero.
func (e *Engine) Interval(h engine.Handle) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, sub := range e.subs {
		if sub.handle == h && sub.signal == engine.PeriodicTime {
			return sub.interval
		}
	}
	return 0
}

func (e *Engine) Loads() []engine.Handle    { return e.copyHandles(&e.loads) }
func (e *Engine) Starts() []engine.Handle   { return e.copyHandles(&e.starts) }
func (e *Engine) Pauses() []engine.Handle   { return e.copyHandles(&e.pauses) }
func (e *Engine) Released() []engine.Handle { return e.copyHandles(&e.released) }

// Seeks returns every recorded Seek call.
func (e *Engine) Seeks() []SeekCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]SeekCall(nil), e.seeks...)
}

func (e *Engine) copyHandles(src *[]engine.Handle) []engine.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.Handle(nil), (*src)...)
}

// Verify Engine implements engine.Engine at compile time.
var _ engine.Engine = (*Engine)(nil)
