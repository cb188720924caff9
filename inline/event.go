package inline

import "time"

// Kind names the signal an Event reports.
type Kind string

const (
	KindStatus   Kind = "status"
	KindDuration Kind = "duration"
	KindBuffered Kind = "buffered"
	KindTime     Kind = "time"
	KindEnded    Kind = "ended"
)

// Event is one line of the JSON stream. Durations are expressed in seconds.
type Event struct {
	Kind     Kind      `json:"kind" jsonschema:"enum=status,enum=duration,enum=buffered,enum=time,enum=ended"`
	At       time.Time `json:"at" jsonschema:"description=Wall-clock time the event was written"`
	Resource string    `json:"resource,omitempty" jsonschema:"description=Resource id; empty for time events"`
	Locator  string    `json:"locator,omitempty"`
	Status   string    `json:"status,omitempty" jsonschema:"enum=unknown,enum=ready,enum=failed"`
	Error    string    `json:"error,omitempty"`
	Duration *float64  `json:"duration,omitempty" jsonschema:"minimum=0"`
	Buffered *Range    `json:"buffered,omitempty"`
	Time     *float64  `json:"time,omitempty" jsonschema:"minimum=0"`
}

// Range is a loaded time span.
type Range struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func seconds(d time.Duration) *float64 {
	s := d.Seconds()
	return &s
}
