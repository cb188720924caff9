package history

import (
	"fmt"
	"time"
)

// Entry is the persisted record of one locator.
type Entry struct {
	Locator      string        `json:"locator"`
	Plays        int           `json:"plays"`
	Ends         int           `json:"ends"`
	LastDuration time.Duration `json:"last_duration"`
	LastPlayed   time.Time     `json:"last_played"`
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s (%d/%d)", e.Locator, e.Ends, e.Plays)
}
