// Package playback implements the authoritative state machine for one playback instance.
package playback

import (
	"time"

	"github.com/otaku-mn/otaku/key"
	"github.com/spf13/viper"
)

const (
	defaultIntroMinimum = 30 * time.Second
	defaultIntroWindow  = 90 * time.Second
)

// SkipIntroWindow is a purely derived, transient UI signal computed from the
// session's position stream. It holds no persisted state and is recreated
// with every session. Invoking Skip seeks past the intro and dismisses the
// affordance until the next session.
type SkipIntroWindow struct {
	session   *Session
	startMs   int64
	endMs     int64
	dismissed bool
}

// NewSkipIntroWindow derives a skip window for the session using the
// configured default interval (30s to 90s unless overridden).
func NewSkipIntroWindow(session *Session) *SkipIntroWindow {
	return &SkipIntroWindow{
		session: session,
		startMs: durationSetting(key.PlayerIntroMinimum, defaultIntroMinimum).Milliseconds(),
		endMs:   durationSetting(key.PlayerIntroWindow, defaultIntroWindow).Milliseconds(),
	}
}

// SetInterval replaces the default window with a known opening interval,
// e.g. one fetched from the AniSkip service. Degenerate intervals are ignored.
func (w *SkipIntroWindow) SetInterval(startMs, endMs int64) {
	if endMs <= startMs || startMs < 0 {
		return
	}
	w.startMs = startMs
	w.endMs = endMs
}

// Visible recomputes the affordance from the current position: shown only
// while the position lies strictly inside the intro window and the user has
// not skipped yet.
func (w *SkipIntroWindow) Visible() bool {
	if w.dismissed {
		return false
	}
	pos := w.session.PositionMs()
	return pos > w.startMs && pos < w.endMs
}

// Skip seeks past the intro and hides the affordance for the rest of the
// session. The session clamps the seek, so a window longer than the episode
// cannot overshoot.
func (w *SkipIntroWindow) Skip() error {
	w.dismissed = true
	return w.session.SeekAbsolute(w.endMs)
}

func durationSetting(k string, fallback time.Duration) time.Duration {
	if viper.IsSet(k) {
		return viper.GetDuration(k)
	}
	return fallback
}
