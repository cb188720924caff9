// Package observe manages the signal subscriptions held against a playback resource.
//
// A Set owns at most one live subscription per engine.Signal. Attaching a
// signal first releases the previous subscription for it, and detaching is
// idempotent. Once Detach or DetachAll returns, the released callbacks are
// never invoked again, even if the engine still had a delivery in flight.
package observe

import (
	"sync"
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/log"
	"github.com/anisan-cli/playerview/resource"
)

// DefaultInterval is used for PeriodicTime when no interval is configured.
const DefaultInterval = time.Second

// attachment is one registered callback. live is guarded by mu, which is also
// held while the callback runs, so clearing it waits out in-flight deliveries.
type attachment struct {
	mu     sync.Mutex
	live   bool
	token  engine.Token
	handle engine.Handle
}

func (a *attachment) deliver(cb engine.Callback) engine.Callback {
	return func(ev engine.Event) {
		a.mu.Lock()
		defer a.mu.Unlock()

		if !a.live {
			return
		}
		cb(ev)
	}
}

func (a *attachment) revoke() {
	a.mu.Lock()
	a.live = false
	a.mu.Unlock()
}

// Set is a table of optional subscriptions keyed by signal.
// Callbacks run on engine goroutines and must not call back into the Set synchronously.
type Set struct {
	mu       sync.Mutex
	engine   engine.Engine
	interval time.Duration
	subs     map[engine.Signal]*attachment
}

// New creates an empty set bound to eng. PeriodicTime subscriptions use interval.
func New(eng engine.Engine, interval time.Duration) *Set {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Set{
		engine:   eng,
		interval: interval,
		subs:     make(map[engine.Signal]*attachment),
	}
}

// SetInterval changes the PeriodicTime interval used by the next Attach.
func (s *Set) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}

	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

// Interval returns the PeriodicTime interval.
func (s *Set) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Attach releases any subscription for signal, then registers cb against r.
// An invalid resource or an engine refusal leaves the signal unobserved without reporting an error.
func (s *Set) Attach(r *resource.Resource, signal engine.Signal, cb engine.Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detachLocked(signal)

	if !r.Valid() || cb == nil {
		log.Debugf("observe: skipping %s, no valid resource", signal)
		return
	}

	a := &attachment{live: true, handle: r.Handle}

	var (
		token engine.Token
		err   error
	)
	if signal == engine.PeriodicTime {
		token, err = s.engine.ObservePeriodic(r.Handle, s.interval, a.deliver(cb))
	} else {
		token, err = s.engine.Subscribe(r.Handle, signal, a.deliver(cb))
	}

	if err != nil {
		a.revoke()
		log.Debugf("observe: engine refused %s on %s: %v", signal, r, err)
		return
	}

	a.token = token
	s.subs[signal] = a
	log.Tracef("observe: attached %s on %s (token %d)", signal, r, token)
}

// Detach releases the subscription for signal if there is one.
func (s *Set) Detach(signal engine.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detachLocked(signal)
}

// DetachAll releases every subscription.
func (s *Set) DetachAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for signal := range s.subs {
		s.detachLocked(signal)
	}
}

func (s *Set) detachLocked(signal engine.Signal) {
	a, ok := s.subs[signal]
	if !ok {
		return
	}
	delete(s.subs, signal)

	// Gate first: the engine may be mid-delivery on another goroutine.
	a.revoke()

	if err := s.engine.Unsubscribe(a.token); err != nil {
		log.Warnf("observe: unsubscribe %s (token %d): %v", signal, a.token, err)
		return
	}
	log.Tracef("observe: detached %s (token %d)", signal, a.token)
}

// Active reports whether signal currently has a live subscription.
func (s *Set) Active(signal engine.Signal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.subs[signal]
	return ok
}

// Len returns the number of live subscriptions.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
