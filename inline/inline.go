// Package inline streams playback notifications as JSON lines for scripting.
package inline

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/anisan-cli/playerview/engine"
	"github.com/anisan-cli/playerview/log"
	"github.com/anisan-cli/playerview/resource"
)

// Writer is a playback listener that encodes every notification to an io.Writer.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
	now func() time.Time
}

// New returns a Writer emitting one JSON object per line to out.
func New(out io.Writer) *Writer {
	return &Writer{
		enc: json.NewEncoder(out),
		now: time.Now,
	}
}

func (w *Writer) write(ev *Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ev.At = w.now()
	if err := w.enc.Encode(ev); err != nil {
		log.Warnf("inline: write %s event: %v", ev.Kind, err)
	}
}

func from(kind Kind, r *resource.Resource) *Event {
	ev := &Event{Kind: kind}
	if r != nil {
		ev.Resource = r.ID
		ev.Locator = r.Locator
	}
	return ev
}

func (w *Writer) PlaybackStatus(r *resource.Resource, status engine.ItemStatus, err error) {
	ev := from(KindStatus, r)
	ev.Status = status.String()
	if err != nil {
		ev.Error = err.Error()
	}
	w.write(ev)
}

func (w *Writer) PlaybackDuration(r *resource.Resource, d time.Duration) {
	ev := from(KindDuration, r)
	ev.Duration = seconds(d)
	w.write(ev)
}

func (w *Writer) PlaybackBuffered(r *resource.Resource, tr engine.TimeRange) {
	ev := from(KindBuffered, r)
	ev.Buffered = &Range{
		Start: tr.Start.Seconds(),
		End:   tr.End().Seconds(),
	}
	w.write(ev)
}

func (w *Writer) PlaybackEnded(r *resource.Resource) {
	w.write(from(KindEnded, r))
}

// Time reports a playback position. It fits Controller.ObserveTime.
func (w *Writer) Time(d time.Duration) {
	ev := from(KindTime, nil)
	ev.Time = seconds(d)
	w.write(ev)
}
