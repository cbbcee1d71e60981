// Package presentation orchestrates fullscreen orientation lock and the
// auto-hiding of on-screen playback controls.
//
// The controller consumes playback state but owns no playback data. Platform
// orientation commands are best-effort: the local fullscreen flag flips
// optimistically and lock failures are swallowed, since a delayed physical
// rotation is an acceptable trade-off.
package presentation

import (
	"sync"
	"time"

	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/log"
	"github.com/otaku-mn/otaku/playback"
	"github.com/spf13/viper"
)

const defaultHideDelay = 3 * time.Second

// Orientation names a screen orientation lock target.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// OrientationLocker is the platform boundary for orientation commands.
type OrientationLocker interface {
	Lock(o Orientation) error
}

// Controller owns the fullscreen flag and the controls-visible flag with its
// auto-hide timer. Controls hide only during active playback; while paused,
// buffering, or seeking they stay visible and no timer is armed.
type Controller struct {
	mu     sync.Mutex
	locker OrientationLocker

	fullscreen      bool
	controlsVisible bool
	playing         bool

	hideDelay time.Duration
	hideTimer *time.Timer
	closed    bool
}

// NewController builds a controller wired to the given platform locker and
// subscribes it to the session's state transitions.
func NewController(session *playback.Session, locker OrientationLocker) *Controller {
	c := &Controller{
		locker:          locker,
		controlsVisible: true,
		hideDelay:       hideDelay(),
	}
	if session != nil {
		session.Subscribe(c.onStateChange)
	}
	return c
}

// ToggleFullscreen flips the fullscreen flag immediately and issues the
// matching orientation lock without waiting for platform confirmation.
func (c *Controller) ToggleFullscreen() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.fullscreen = !c.fullscreen
	target := Portrait
	if c.fullscreen {
		target = Landscape
	}
	go c.lock(target)
}

// Fullscreen returns the optimistic fullscreen state.
func (c *Controller) Fullscreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullscreen
}

// SetControlsVisible shows or hides the controls. Showing them during active
// playback (re)arms the auto-hide timer; any explicit toggle cancels a
// pending one first.
func (c *Controller) SetControlsVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.controlsVisible = visible
	c.cancelTimer()
	if visible && c.playing {
		c.armTimer()
	}
}

// ControlsVisible returns the current controls visibility.
func (c *Controller) ControlsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controlsVisible
}

// Close tears the controller down: the pending timer is canceled and the
// orientation is reset to portrait regardless of the current fullscreen
// state. This is a cleanup guarantee, not a toggle.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.fullscreen = false
	c.cancelTimer()
	c.lock(Portrait)
}

// onStateChange reacts to session transitions: every change cancels the
// pending timer, and entering Playing with visible controls rearms it.
func (c *Controller) onStateChange(state playback.State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.playing = state == playback.Playing
	c.cancelTimer()
	if c.playing && c.controlsVisible {
		c.armTimer()
	} else if !c.playing {
		c.controlsVisible = true
	}
}

func (c *Controller) armTimer() {
	c.hideTimer = time.AfterFunc(c.hideDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || !c.playing {
			return
		}
		c.controlsVisible = false
	})
}

func (c *Controller) cancelTimer() {
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
}

func (c *Controller) lock(target Orientation) {
	if c.locker == nil {
		return
	}
	if err := c.locker.Lock(target); err != nil {
		log.Warnf("orientation lock %s failed: %v", target, err)
	}
}

func hideDelay() time.Duration {
	if viper.IsSet(key.PlayerControlsHideDelay) {
		return viper.GetDuration(key.PlayerControlsHideDelay)
	}
	return defaultHideDelay
}
