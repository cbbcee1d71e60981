// Package playback implements the authoritative state machine for one playback instance.
package playback

// State enumerates the mutually exclusive phases of a playback session.
//
// Modeling these as a single enum instead of independent boolean flags rules
// out impossible combinations like "playing and seeking and buffering".
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	Buffering
	Seeking
	Ended
	Failed
)

// Terminal reports whether the session accepts no further transitions.
func (s State) Terminal() bool {
	return s == Ended || s == Failed
}

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Buffering:
		return "buffering"
	case Seeking:
		return "seeking"
	case Ended:
		return "ended"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
