// Package playback implements the controller that sits between application code and a media engine.
//
// The controller owns the current resource and its subscriptions, applies the
// auto-play and auto-replay policy, and republishes engine signals to a
// listener it does not own. Every state transition and every listener call
// runs on one dispatch queue, so engine callbacks and caller requests are
// serialized without any operation blocking its caller.
package playback

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/anisan-cli/playerview/dispatch"
	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/log"
	"github.com/anisan-cli/playerview/observe"
	"github.com/anisan-cli/playerview/resource"
	"github.com/samber/mo"
)

// keyframeTolerance lets the engine snap a seek to the nearest keyframe.
const keyframeTolerance = time.Duration(math.MaxInt64)

// Options configures the playback policy.
type Options struct {
	// AutoPlay starts playback as soon as the resource reports ready.
	AutoPlay bool
	// AutoReplay restarts the resource from the beginning when it ends.
	AutoReplay bool
	// Interval is the periodic time observation interval.
	Interval time.Duration
}

// Controller drives one engine on behalf of one owner.
// The owner must call Close (or Teardown) before discarding it.
type Controller struct {
	engine   engine.Engine
	queue    *dispatch.Queue
	set      *observe.Set
	notifier Notifier

	ctx    context.Context
	cancel context.CancelFunc

	// Snapshot fields, written on the queue and read from anywhere.
	mu      sync.RWMutex
	state   State
	current *resource.Resource
	opts    Options

	// Queue-owned fields.
	generation    uint64
	pendingResume bool
	timeObserver  mo.Option[func(time.Duration)]
}

// New creates an idle controller bound to eng.
func New(eng engine.Engine, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = observe.DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		engine:       eng,
		queue:        dispatch.New(),
		set:          observe.New(eng, opts.Interval),
		ctx:          ctx,
		cancel:       cancel,
		opts:         opts,
		timeObserver: mo.None[func(time.Duration)](),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Current returns the active resource, or nil when idle.
func (c *Controller) Current() *resource.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Options returns the active policy.
func (c *Controller) Options() Options {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts
}

// SetListener registers the listener reference. Use Weak to avoid keeping the listener alive.
func (c *Controller) SetListener(ref Ref) {
	c.notifier.Set(ref)
}

// ClearListener unregisters the listener.
func (c *Controller) ClearListener() {
	c.notifier.Clear()
}

// SetAutoPlay toggles the auto-play policy for subsequent ready signals.
func (c *Controller) SetAutoPlay(enabled bool) {
	c.queue.Async(func() {
		c.mu.Lock()
		c.opts.AutoPlay = enabled
		c.mu.Unlock()
	})
}

// SetAutoReplay toggles the auto-replay policy for subsequent end-of-item signals.
func (c *Controller) SetAutoReplay(enabled bool) {
	c.queue.Async(func() {
		c.mu.Lock()
		c.opts.AutoReplay = enabled
		c.mu.Unlock()
	})
}

// Play replaces the current resource with one resolved from locator.
// An invalid locator or an engine failure leaves the controller idle; nothing is returned to the caller.
func (c *Controller) Play(locator string) {
	c.queue.Async(func() { c.play(locator) })
}

// PlayResource replaces the current resource with r.
// Passing the current resource reloads it from the start without releasing its handle.
func (c *Controller) PlayResource(r *resource.Resource) {
	c.queue.Async(func() {
		if r != nil && r == c.Current() {
			c.detach()
		} else {
			c.release()
		}
		c.activate(r)
	})
}

// Resume starts playback of the current resource.
func (c *Controller) Resume() {
	c.queue.Async(c.resume)
}

// Pause suspends playback.
func (c *Controller) Pause() {
	c.queue.Async(c.pause)
}

// Replay restarts the current resource from its beginning.
func (c *Controller) Replay() {
	c.queue.Async(c.replay)
}

// Seek moves the current resource to position, snapping to a keyframe. The state is kept.
func (c *Controller) Seek(position time.Duration) {
	c.queue.Async(func() { c.seek(position) })
}

// ObserveTime delivers the playback position to fn every interval. It replaces any previous observer.
func (c *Controller) ObserveTime(interval time.Duration, fn func(time.Duration)) {
	c.queue.Async(func() {
		if fn == nil {
			c.timeObserver = mo.None[func(time.Duration)]()
			return
		}
		c.timeObserver = mo.Some(fn)

		if interval <= 0 || interval == c.set.Interval() {
			return
		}

		c.set.SetInterval(interval)
		c.mu.Lock()
		c.opts.Interval = interval
		r := c.current
		c.mu.Unlock()

		if r != nil {
			c.set.Attach(r, engine.PeriodicTime, c.relay(c.generation, r))
		}
	})
}

// RemoveTimeObserver stops delivering positions to the time observer.
func (c *Controller) RemoveTimeObserver() {
	c.queue.Async(func() {
		c.timeObserver = mo.None[func(time.Duration)]()
	})
}

// Teardown releases every subscription and the current resource.
func (c *Controller) Teardown() {
	c.queue.Async(c.release)
}

// Flush waits until every request made before the call has been applied.
// It must not be called from a Listener method.
func (c *Controller) Flush(ctx context.Context) error {
	return c.queue.Flush(ctx)
}

// Close tears the controller down and stops its queue. Further requests are dropped.
func (c *Controller) Close() {
	c.queue.Async(func() {
		c.release()
		c.cancel()
	})
	c.queue.Close()
}

// Done is closed once Close has finished draining the queue.
func (c *Controller) Done() <-chan struct{} {
	return c.queue.Done()
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()

	if prev != s {
		log.Debugf("playback: %s -> %s", prev, s)
	}
}

func (c *Controller) play(locator string) {
	c.release()

	loc, err := resource.ParseLocator(locator)
	if err != nil {
		log.Warnf("playback: %v", err)
		return
	}

	h, err := c.engine.CreateResource(c.ctx, loc)
	if err != nil {
		log.Warnf("playback: create %s: %v", loc, err)
		return
	}

	c.activate(resource.New(h, loc))
}

// activate attaches every signal to r before handing it to the engine, so none is missed.
func (c *Controller) activate(r *resource.Resource) {
	if !r.Valid() {
		log.Warnf("playback: ignoring invalid resource %s", r)
		return
	}

	c.generation++
	for _, s := range engine.Signals() {
		c.set.Attach(r, s, c.relay(c.generation, r))
	}

	c.mu.Lock()
	c.current = r
	c.mu.Unlock()
	c.setState(Loading)

	if err := c.engine.Load(r.Handle); err != nil {
		log.Warnf("playback: load %s: %v", r, err)
		c.release()
		return
	}

	log.Infof("playback: loading %s", r)
}

// release detaches everything and frees the current resource in the engine.
func (c *Controller) release() {
	if r := c.detach(); r != nil {
		if err := c.engine.Release(r.Handle); err != nil {
			log.Warnf("playback: release %s: %v", r, err)
		}
	}
}

// detach drops every subscription and forgets the current resource, leaving its
// handle alive. Late signals of the detached resource fail the generation check in relay.
func (c *Controller) detach() *resource.Resource {
	c.generation++
	c.pendingResume = false
	c.set.DetachAll()

	c.mu.Lock()
	r := c.current
	c.current = nil
	c.mu.Unlock()

	c.setState(Idle)
	return r
}

// relay moves an engine callback onto the queue, dropping it if the resource was replaced meanwhile.
func (c *Controller) relay(generation uint64, r *resource.Resource) engine.Callback {
	return func(ev engine.Event) {
		c.queue.Async(func() {
			if generation != c.generation {
				log.Tracef("playback: dropping stale %s for %s", ev.Signal, r)
				return
			}
			c.handle(r, ev)
		})
	}
}

func (c *Controller) handle(r *resource.Resource, ev engine.Event) {
	switch ev.Signal {
	case engine.Status:
		c.handleStatus(r, ev)
	case engine.Duration:
		c.notifier.Duration(r, ev.Duration)
	case engine.BufferRange:
		c.notifier.Buffered(r, ev.Range)
	case engine.PeriodicTime:
		if fn, ok := c.timeObserver.Get(); ok {
			fn(ev.Time)
		}
	case engine.EndOfItem:
		c.handleEnd(r)
	}
}

func (c *Controller) handleStatus(r *resource.Resource, ev engine.Event) {
	switch ev.Status {
	case engine.StatusReady:
		if c.State() == Loading {
			c.setState(Ready)
		}
	case engine.StatusFailed:
		c.pendingResume = false
		c.setState(Failed)
		log.Errorf("playback: %s failed: %v", r, ev.Err)
	}

	c.notifier.Status(r, ev.Status, ev.Err)

	// The listener may have replaced or torn down the resource.
	if c.Current() != r || ev.Status != engine.StatusReady {
		return
	}

	if c.pendingResume || (c.State() == Ready && c.Options().AutoPlay) {
		c.resume()
	}
}

// handleEnd only accepts end-of-item while the resource is playing or paused.
// A failed resource stays failed, and a pending replay is not restarted twice.
func (c *Controller) handleEnd(r *resource.Resource) {
	if state := c.State(); !state.CanEnd() {
		log.Debugf("playback: ignoring end of %s while %s", r, state)
		return
	}

	c.setState(Ended)
	c.notifier.Ended(r)

	if c.Current() == r && c.Options().AutoReplay {
		c.replay()
	}
}

func (c *Controller) resume() {
	r := c.Current()
	if r == nil {
		return
	}

	switch state := c.State(); {
	case state == Loading:
		c.pendingResume = true
		return
	case !state.CanResume():
		return
	}

	if err := c.engine.Start(r.Handle); err != nil {
		log.Warnf("playback: start %s: %v", r, err)
		return
	}

	c.pendingResume = false
	c.setState(Playing)
}

func (c *Controller) pause() {
	r := c.Current()
	if r == nil {
		return
	}

	c.pendingResume = false
	if !c.State().CanPause() {
		return
	}

	if err := c.engine.Pause(r.Handle); err != nil {
		log.Warnf("playback: pause %s: %v", r, err)
		return
	}
	c.setState(Paused)
}

// replay seeks exactly to zero. Playback resumes right away if the engine is
// ready, otherwise once the seek completes or the next ready status arrives.
func (c *Controller) replay() {
	r := c.Current()
	if r == nil || !c.State().CanReplay() {
		return
	}

	generation := c.generation
	done := func(finished bool) {
		c.queue.Async(func() {
			if generation != c.generation {
				return
			}
			c.seekDone(r, finished)
		})
	}

	if err := c.engine.Seek(r.Handle, 0, 0, 0, done); err != nil {
		log.Warnf("playback: replay %s: %v", r, err)
		return
	}

	c.pendingResume = true
	c.setState(Loading)

	if c.engine.Status(r.Handle) == engine.StatusReady {
		c.setState(Ready)
		c.resume()
	}
}

func (c *Controller) seekDone(r *resource.Resource, finished bool) {
	if !finished || !c.pendingResume || c.Current() != r {
		return
	}

	if c.engine.Status(r.Handle) == engine.StatusReady {
		if c.State() == Loading {
			c.setState(Ready)
		}
		c.resume()
	}
}

func (c *Controller) seek(position time.Duration) {
	r := c.Current()
	if r == nil {
		return
	}

	if position < 0 {
		position = 0
	}

	if err := c.engine.Seek(r.Handle, position, keyframeTolerance, keyframeTolerance, nil); err != nil {
		log.Warnf("playback: seek %s to %s: %v", r, position, err)
	}
}
