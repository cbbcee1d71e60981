package presentation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/otaku-mn/otaku/filesystem"
	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/playback"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

type fakeLocker struct {
	mu    sync.Mutex
	calls []Orientation
}

func (l *fakeLocker) Lock(o Orientation) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, o)
	return nil
}

func (l *fakeLocker) last() Orientation {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.calls) == 0 {
		return ""
	}
	return l.calls[len(l.calls)-1]
}

type nopDecoder struct{}

func (nopDecoder) Play() error            { return nil }
func (nopDecoder) Pause() error           { return nil }
func (nopDecoder) SeekTo(int64) error     { return nil }
func (nopDecoder) SetMuted(bool) error    { return nil }
func (nopDecoder) SetSource(string) error { return nil }

var seq int

func playingSession() *playback.Session {
	seq++
	session, err := playback.NewSession(playback.Options{
		AnimeID:   fmt.Sprintf("anime-%d", seq),
		EpisodeID: fmt.Sprintf("episode-%d", seq),
		SourceURI: "http://cdn/stream.m3u8",
		Decoder:   nopDecoder{},
	})
	So(err, ShouldBeNil)
	So(session.Start(), ShouldBeNil)
	return session
}

func play(session *playback.Session) {
	session.HandleStatus(playback.Status{Loaded: true, Playing: true, DurationMs: 100_000})
}

func TestFullscreen(t *testing.T) {
	viper.Set(key.PlayerControlsHideDelay, 20*time.Millisecond)

	Convey("Given a controller", t, func() {
		locker := &fakeLocker{}
		controller := NewController(nil, locker)

		Convey("Entering fullscreen flips immediately and locks landscape", func() {
			controller.ToggleFullscreen()
			So(controller.Fullscreen(), ShouldBeTrue)

			time.Sleep(20 * time.Millisecond)
			So(locker.last(), ShouldEqual, Landscape)

			Convey("Leaving fullscreen locks portrait", func() {
				controller.ToggleFullscreen()
				So(controller.Fullscreen(), ShouldBeFalse)

				time.Sleep(20 * time.Millisecond)
				So(locker.last(), ShouldEqual, Portrait)
			})
		})

		Convey("Close resets the orientation to portrait regardless of state", func() {
			controller.ToggleFullscreen()
			controller.Close()
			So(locker.last(), ShouldEqual, Portrait)
			So(controller.Fullscreen(), ShouldBeFalse)

			Convey("And ignores further toggles", func() {
				controller.ToggleFullscreen()
				So(controller.Fullscreen(), ShouldBeFalse)
			})
		})
	})
}

func TestControlsAutoHide(t *testing.T) {
	Convey("Given a controller bound to a session", t, func() {
		viper.Set(key.PlayerControlsHideDelay, 20*time.Millisecond)
		session := playingSession()
		controller := NewController(session, &fakeLocker{})

		Convey("Controls hide after the delay while playing", func() {
			play(session)
			So(controller.ControlsVisible(), ShouldBeTrue)

			time.Sleep(60 * time.Millisecond)
			So(controller.ControlsVisible(), ShouldBeFalse)

			Convey("An explicit toggle shows them and rearms the timer", func() {
				controller.SetControlsVisible(true)
				So(controller.ControlsVisible(), ShouldBeTrue)

				time.Sleep(60 * time.Millisecond)
				So(controller.ControlsVisible(), ShouldBeFalse)
			})
		})

		Convey("Controls stay visible while paused", func() {
			play(session)
			So(session.Pause(), ShouldBeNil)
			controller.SetControlsVisible(true)

			time.Sleep(60 * time.Millisecond)
			So(controller.ControlsVisible(), ShouldBeTrue)
		})

		Convey("Pausing after the timer armed keeps controls visible", func() {
			play(session)
			So(session.Pause(), ShouldBeNil)

			time.Sleep(60 * time.Millisecond)
			So(controller.ControlsVisible(), ShouldBeTrue)
		})

		Convey("Close cancels the pending timer", func() {
			play(session)
			controller.Close()

			time.Sleep(60 * time.Millisecond)
			So(controller.ControlsVisible(), ShouldBeTrue)
		})
	})
}
