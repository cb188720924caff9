package playback

// State is the controller's view of the current resource.
//
//	           Play                  ready               Resume
//	  Idle ──────────▶ Loading ──────────────▶ Ready ──────────────▶ Playing
//	   ▲                  ▲                                         │  ▲  │
//	   │ Teardown         │ Replay (seek to 0)                Pause │  │  │ end-of-item
//	   │                  │                                         ▼  │  ▼
//	  any             Ended/Paused/Playing                      Paused─┘ Ended
//
// End-of-item is also accepted while Paused and ignored in every other state.
// Failed is entered from any state when the engine reports the resource
// failed. It is terminal until the next Play.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Playing
	Paused
	Ended
	Failed
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Ended:
		return "Ended"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// CanResume returns true if Resume would start the engine.
func (s State) CanResume() bool {
	return s == Ready || s == Paused || s == Ended
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanEnd returns true if an end-of-item signal moves the state to Ended.
func (s State) CanEnd() bool {
	return s == Playing || s == Paused
}

// CanReplay returns true if Replay would seek back to the start.
func (s State) CanReplay() bool {
	return s == Ready || s == Playing || s == Paused || s == Ended
}
