package player

import (
	"sync"
	"time"

	"github.com/anisan-cli/playerview/engine"
)

type subscription struct {
	handle   engine.Handle
	signal   engine.Signal
	interval time.Duration
	cb       engine.Callback

	// mu is held for the whole delivery, so revoke waits for a callback in flight.
	mu   sync.Mutex
	live bool
	stop chan struct{}
}

func newSubscription(h engine.Handle, s engine.Signal, interval time.Duration, cb engine.Callback) *subscription {
	return &subscription{
		handle:   h,
		signal:   s,
		interval: interval,
		cb:       cb,
		live:     true,
		stop:     make(chan struct{}),
	}
}

func (s *subscription) deliver(ev engine.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live {
		s.cb(ev)
	}
}

func (s *subscription) revoke() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live {
		s.live = false
		close(s.stop)
	}
}
