package playback

import (
	"sync"
	"time"
	"weak"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/resource"
)

// Listener receives the notifications republished by a Controller.
// Methods run on the controller's dispatch goroutine, one at a time.
type Listener interface {
	PlaybackStatus(r *resource.Resource, status engine.ItemStatus, err error)
	PlaybackDuration(r *resource.Resource, d time.Duration)
	PlaybackBuffered(r *resource.Resource, tr engine.TimeRange)
	PlaybackEnded(r *resource.Resource)
}

// Ref resolves a listener the controller does not own. It returns nil once the listener is gone.
type Ref func() Listener

// Weak references p without keeping it alive. Once p is collected the reference resolves to nil.
func Weak[T any, P interface {
	*T
	Listener
}](p P) Ref {
	wp := weak.Make((*T)(p))
	return func() Listener {
		if v := wp.Value(); v != nil {
			return P(v)
		}
		return nil
	}
}

// Strong references l for callers that manage its lifetime and clear it themselves.
func Strong(l Listener) Ref {
	return func() Listener { return l }
}

// Notifier forwards signals to the registered listener, doing nothing when there is none.
type Notifier struct {
	mu  sync.RWMutex
	ref Ref
}

// Set registers ref, replacing any previous listener.
func (n *Notifier) Set(ref Ref) {
	n.mu.Lock()
	n.ref = ref
	n.mu.Unlock()
}

// Clear drops the listener reference.
func (n *Notifier) Clear() {
	n.Set(nil)
}

func (n *Notifier) listener() Listener {
	n.mu.RLock()
	ref := n.ref
	n.mu.RUnlock()

	if ref == nil {
		return nil
	}
	return ref()
}

func (n *Notifier) Status(r *resource.Resource, status engine.ItemStatus, err error) {
	if l := n.listener(); l != nil {
		l.PlaybackStatus(r, status, err)
	}
}

func (n *Notifier) Duration(r *resource.Resource, d time.Duration) {
	if l := n.listener(); l != nil {
		l.PlaybackDuration(r, d)
	}
}

func (n *Notifier) Buffered(r *resource.Resource, tr engine.TimeRange) {
	if l := n.listener(); l != nil {
		l.PlaybackBuffered(r, tr)
	}
}

func (n *Notifier) Ended(r *resource.Resource) {
	if l := n.listener(); l != nil {
		l.PlaybackEnded(r)
	}
}

// Tee fans every notification out to ls in order.
func Tee(ls ...Listener) Listener {
	return tee(ls)
}

type tee []Listener

func (t tee) PlaybackStatus(r *resource.Resource, status engine.ItemStatus, err error) {
	for _, l := range t {
		l.PlaybackStatus(r, status, err)
	}
}

func (t tee) PlaybackDuration(r *resource.Resource, d time.Duration) {
	for _, l := range t {
		l.PlaybackDuration(r, d)
	}
}

func (t tee) PlaybackBuffered(r *resource.Resource, tr engine.TimeRange) {
	for _, l := range t {
		l.PlaybackBuffered(r, tr)
	}
}

func (t tee) PlaybackEnded(r *resource.Resource) {
	for _, l := range t {
		l.PlaybackEnded(r)
	}
}
