package player

import (
	"github.com/otaku-mn/otaku/presentation"
)

// Locker maps orientation requests onto the player window: landscape
// means fullscreen on, portrait means fullscreen off.
type Locker struct {
	mpv *MPV
}

// NewLocker wraps an engine as an orientation locker.
func NewLocker(mpv *MPV) *Locker {
	return &Locker{mpv: mpv}
}

func (l *Locker) Lock(orientation presentation.Orientation) error {
	return l.mpv.SetFullscreen(orientation == presentation.Landscape)
}
