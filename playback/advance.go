// Package playback implements the authoritative state machine for one playback instance.
package playback

// AutoAdvance invokes a caller-supplied next-episode transition after a
// natural finish. The one-shot flag is reset only by creating a new session,
// so repeated Ended notifications for the same terminal event fire the
// supplier exactly once. Cancel is called on explicit close, which always
// takes precedence over a concurrently reported finish.
type AutoAdvance struct {
	next     func()
	fired    bool
	canceled bool
}

// NewAutoAdvance wraps a next-episode supplier; next may be nil.
func NewAutoAdvance(next func()) *AutoAdvance {
	return &AutoAdvance{next: next}
}

// Notify reacts to a session state transition, firing the supplier on the
// first Ended notification.
func (a *AutoAdvance) Notify(state State) {
	if state != Ended || a.fired || a.canceled || a.next == nil {
		return
	}
	a.fired = true
	a.next()
}

// Cancel permanently disarms the controller.
func (a *AutoAdvance) Cancel() {
	a.canceled = true
}

// Fired reports whether the supplier has been invoked.
func (a *AutoAdvance) Fired() bool {
	return a.fired
}
