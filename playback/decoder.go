// Package playback implements the authoritative state machine for one playback instance.
package playback

// Decoder encapsulates the commands accepted by the underlying playback engine.
//
// Commands are fire-and-forget: they return before the engine confirms, and
// the session reconciles its optimistic state against the next Status report.
type Decoder interface {
	// Play resumes or starts playback.
	Play() error

	// Pause suspends playback.
	Pause() error

	// SeekTo moves the playback position to an absolute millisecond offset.
	SeekTo(ms int64) error

	// SetMuted toggles audio output.
	SetMuted(muted bool) error

	// SetSource loads a media stream into the engine.
	SetSource(uri string) error
}

// Status is one periodic report emitted by the decoder, typically at a
// sub-second cadence. DurationMs may be zero until the engine has read the
// stream metadata; consumers must tolerate that.
type Status struct {
	Loaded       bool
	Playing      bool
	Buffering    bool
	PositionMs   int64
	DurationMs   int64
	JustFinished bool
	Looping      bool
	Err          error
}
