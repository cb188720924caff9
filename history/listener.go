package history

import (
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/log"
	"github.com/anisan-cli/playerview/resource"
)

// Recorder is a playback listener that writes what it hears to a Store.
// A resource counts as played once, on its first ready status.
type Recorder struct {
	store *Store
	seen  map[string]struct{}
}

// NewRecorder returns a recorder writing to store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{
		store: store,
		seen:  make(map[string]struct{}),
	}
}

func (r *Recorder) PlaybackStatus(res *resource.Resource, status engine.ItemStatus, _ error) {
	if status != engine.StatusReady {
		return
	}

	id := res.ID
	if _, ok := r.seen[id]; ok {
		return
	}
	r.seen[id] = struct{}{}

	if err := r.store.RecordPlay(res.Locator); err != nil {
		log.Warnf("history: record play of %s: %v", res.Locator, err)
	}
}

func (r *Recorder) PlaybackDuration(res *resource.Resource, d time.Duration) {
	if d <= 0 {
		return
	}
	if err := r.store.RecordDuration(res.Locator, d); err != nil {
		log.Warnf("history: record duration of %s: %v", res.Locator, err)
	}
}

func (r *Recorder) PlaybackBuffered(*resource.Resource, engine.TimeRange) {}

func (r *Recorder) PlaybackEnded(res *resource.Resource) {
	if err := r.store.RecordEnd(res.Locator); err != nil {
		log.Warnf("history: record end of %s: %v", res.Locator, err)
	}
}
