package engine

import (
	"fmt"
	"time"
)

// Signal names an asynchronous notification stream of a resource.
type Signal int

const (
	Status Signal = iota + 1
	Duration
	BufferRange
	PeriodicTime
	EndOfItem
)

// Signals returns every observable signal in attach order.
func Signals() []Signal {
	return []Signal{Status, Duration, BufferRange, PeriodicTime, EndOfItem}
}

func (s Signal) String() string {
	switch s {
	case Status:
		return "status"
	case Duration:
		return "duration"
	case BufferRange:
		return "buffer-range"
	case PeriodicTime:
		return "periodic-time"
	case EndOfItem:
		return "end-of-item"
	default:
		return fmt.Sprintf("signal(%d)", int(s))
	}
}

// ItemStatus is the readiness of a resource as reported by the engine.
type ItemStatus int

const (
	StatusUnknown ItemStatus = iota
	StatusReady
	StatusFailed
)

func (s ItemStatus) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TimeRange is a span of media time, e.g. a loaded buffer range.
type TimeRange struct {
	Start    time.Duration `json:"start"`
	Duration time.Duration `json:"duration"`
}

// End returns the exclusive end of the range.
func (r TimeRange) End() time.Duration {
	return r.Start + r.Duration
}

// Event is one delivered signal. Only the payload matching Signal is meaningful.
type Event struct {
	Signal Signal
	Handle Handle

	Status   ItemStatus
	Err      error
	Duration time.Duration
	Range    TimeRange
	Time     time.Duration
}
