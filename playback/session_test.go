package playback

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/otaku-mn/otaku/filesystem"
	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/progress"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

// fakeDecoder records commands in call order.
type fakeDecoder struct {
	calls []string
	err   error
}

func (d *fakeDecoder) Play() error  { return d.record("play") }
func (d *fakeDecoder) Pause() error { return d.record("pause") }
func (d *fakeDecoder) SeekTo(ms int64) error {
	return d.record(fmt.Sprintf("seek:%d", ms))
}
func (d *fakeDecoder) SetMuted(muted bool) error {
	return d.record(fmt.Sprintf("mute:%t", muted))
}
func (d *fakeDecoder) SetSource(uri string) error {
	return d.record("source:" + uri)
}
func (d *fakeDecoder) record(call string) error {
	d.calls = append(d.calls, call)
	return d.err
}

var sessionSeq int

func newTestSession(next func()) (*Session, *fakeDecoder) {
	sessionSeq++
	decoder := &fakeDecoder{}
	session, err := NewSession(Options{
		AnimeID:     fmt.Sprintf("anime-%d", sessionSeq),
		EpisodeID:   fmt.Sprintf("episode-%d", sessionSeq),
		Title:       "Cosmic Drift",
		EpisodeInfo: "Episode 1",
		SourceURI:   "http://cdn/stream.m3u8",
		Decoder:     decoder,
		NextEpisode: next,
	})
	So(err, ShouldBeNil)
	return session, decoder
}

// loaded builds a steady playing status report.
func loaded(positionMs, durationMs int64) Status {
	return Status{Loaded: true, Playing: true, PositionMs: positionMs, DurationMs: durationMs}
}

func TestLifecycle(t *testing.T) {
	viper.Set(key.PlayerSaveInterval, 10*time.Second)

	Convey("Given a fresh session", t, func() {
		session, decoder := newTestSession(nil)
		So(session.State(), ShouldEqual, Idle)

		Convey("Start should load the source and enter Loading", func() {
			So(session.Start(), ShouldBeNil)
			So(session.State(), ShouldEqual, Loading)
			So(decoder.calls, ShouldContain, "source:http://cdn/stream.m3u8")

			Convey("Status reports without metadata keep it Loading", func() {
				session.HandleStatus(Status{Loaded: false})
				So(session.State(), ShouldEqual, Loading)
			})

			Convey("The first loaded report starts playback", func() {
				session.HandleStatus(loaded(0, 100_000))
				So(session.State(), ShouldEqual, Playing)
				So(decoder.calls, ShouldContain, "play")
				So(session.DurationMs(), ShouldEqual, 100_000)
			})
		})

		Convey("Validation should reject incomplete options", func() {
			_, err := NewSession(Options{AnimeID: "", EpisodeID: "e", Decoder: &fakeDecoder{}})
			So(err, ShouldNotBeNil)
			_, err = NewSession(Options{AnimeID: "a", EpisodeID: "e"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestResume(t *testing.T) {
	viper.Set(key.PlayerSaveInterval, 10*time.Second)

	Convey("Given stored progress at 25 percent", t, func() {
		session, decoder := newTestSession(nil)
		So(progress.Upsert(&progress.Entry{
			AnimeID:    session.AnimeID(),
			EpisodeID:  session.EpisodeID(),
			PositionMs: 300_000,
			DurationMs: 1_200_000,
		}), ShouldBeNil)

		// Resume lookup happens at creation; rebuild the session.
		session, err := NewSession(Options{
			AnimeID:   session.AnimeID(),
			EpisodeID: session.EpisodeID(),
			SourceURI: "http://cdn/stream.m3u8",
			Decoder:   decoder,
		})
		So(err, ShouldBeNil)

		Convey("The decoder should be seeked to the stored position before playing", func() {
			So(session.Start(), ShouldBeNil)
			session.HandleStatus(loaded(0, 1_200_000))

			So(decoder.calls, ShouldContain, "seek:300000")
			seekAt := indexOf(decoder.calls, "seek:300000")
			playAt := indexOf(decoder.calls, "play")
			So(seekAt, ShouldBeLessThan, playAt)
			So(session.PositionMs(), ShouldEqual, 300_000)
			So(session.State(), ShouldEqual, Playing)
		})

		Convey("A pause issued before the stream loads must not lose the resume", func() {
			So(session.Start(), ShouldBeNil)
			So(session.Pause(), ShouldBeNil)
			session.HandleStatus(loaded(0, 1_200_000))

			So(decoder.calls, ShouldContain, "seek:300000")
			So(session.PositionMs(), ShouldEqual, 300_000)
			So(session.State(), ShouldEqual, Paused)
		})

		Convey("An explicit seek before the stream loads supersedes the resume", func() {
			So(session.Start(), ShouldBeNil)
			So(session.SeekAbsolute(0), ShouldBeNil)
			session.HandleStatus(loaded(0, 1_200_000))

			So(decoder.calls, ShouldNotContain, "seek:300000")
			So(session.State(), ShouldEqual, Playing)
		})
	})

	Convey("Given stored progress at 95 percent", t, func() {
		session, _ := newTestSession(nil)
		So(progress.Upsert(&progress.Entry{
			AnimeID:    session.AnimeID(),
			EpisodeID:  session.EpisodeID(),
			PositionMs: 950_000,
			DurationMs: 1_000_000,
		}), ShouldBeNil)

		decoder := &fakeDecoder{}
		session, err := NewSession(Options{
			AnimeID:   session.AnimeID(),
			EpisodeID: session.EpisodeID(),
			SourceURI: "http://cdn/stream.m3u8",
			Decoder:   decoder,
		})
		So(err, ShouldBeNil)

		Convey("The stored position should be discarded and playback start at zero", func() {
			So(session.Start(), ShouldBeNil)
			session.HandleStatus(loaded(0, 1_000_000))

			for _, call := range decoder.calls {
				So(call, ShouldNotEqual, "seek:950000")
			}
			So(session.PositionMs(), ShouldEqual, 0)
			So(session.State(), ShouldEqual, Playing)
		})
	})
}

func TestPlayPause(t *testing.T) {
	viper.Set(key.PlayerSaveInterval, 10*time.Second)

	Convey("Given a playing session", t, func() {
		session, decoder := newTestSession(nil)
		So(session.Start(), ShouldBeNil)
		session.HandleStatus(loaded(0, 100_000))
		before := len(decoder.calls)

		Convey("Play while playing should be a no-op", func() {
			So(session.Play(), ShouldBeNil)
			So(len(decoder.calls), ShouldEqual, before)
		})

		Convey("Pause should flip the state optimistically", func() {
			So(session.Pause(), ShouldBeNil)
			So(session.State(), ShouldEqual, Paused)
			So(decoder.calls[len(decoder.calls)-1], ShouldEqual, "pause")

			Convey("And Play should flip it back", func() {
				So(session.Play(), ShouldBeNil)
				So(session.State(), ShouldEqual, Playing)
			})
		})
	})
}

func TestBuffering(t *testing.T) {
	viper.Set(key.PlayerSaveInterval, 10*time.Second)

	Convey("Given a playing session", t, func() {
		session, _ := newTestSession(nil)
		So(session.Start(), ShouldBeNil)
		session.HandleStatus(loaded(0, 100_000))

		Convey("A buffering report should enter Buffering", func() {
			session.HandleStatus(Status{Loaded: true, Buffering: true, PositionMs: 5_000, DurationMs: 100_000})
			So(session.State(), ShouldEqual, Buffering)

			Convey("And clearing resumes the prior play intent", func() {
				session.HandleStatus(loaded(6_000, 100_000))
				So(session.State(), ShouldEqual, Playing)
				So(session.PositionMs(), ShouldEqual, 6_000)
			})
		})

		Convey("A paused session returns to Paused after buffering clears", func() {
			So(session.Pause(), ShouldBeNil)
			session.HandleStatus(Status{Loaded: true, Buffering: true, PositionMs: 5_000, DurationMs: 100_000})
			So(session.State(), ShouldEqual, Buffering)

			session.HandleStatus(Status{Loaded: true, PositionMs: 5_000, DurationMs: 100_000})
			So(session.State(), ShouldEqual, Paused)
		})
	})
}

func TestSeeking(t *testing.T) {
	viper.Set(key.PlayerSaveInterval, 10*time.Second)

	Convey("Given a playing session with known duration", t, func() {
		session, decoder := newTestSession(nil)
		So(session.Start(), ShouldBeNil)
		session.HandleStatus(loaded(95_000, 100_000))

		Convey("A relative seek past the end should clamp to the duration", func() {
			So(session.SeekRelative(10_000), ShouldBeNil)
			So(session.State(), ShouldEqual, Seeking)
			So(session.PositionMs(), ShouldEqual, 100_000)
			So(decoder.calls[len(decoder.calls)-1], ShouldEqual, "seek:100000")
		})

		Convey("A negative absolute seek should clamp to zero", func() {
			So(session.SeekAbsolute(-500), ShouldBeNil)
			So(session.PositionMs(), ShouldEqual, 0)
			So(decoder.calls[len(decoder.calls)-1], ShouldEqual, "seek:0")
		})

		Convey("A confirmed report should restore the prior intent", func() {
			So(session.SeekRelative(-10_000), ShouldBeNil)
			So(session.State(), ShouldEqual, Seeking)

			session.HandleStatus(loaded(85_000, 100_000))
			So(session.State(), ShouldEqual, Playing)
			So(session.PositionMs(), ShouldEqual, 85_000)
		})
	})
}

func TestCompletionAndAdvance(t *testing.T) {
	viper.Set(key.PlayerSaveInterval, 10*time.Second)

	Convey("Given a session with a next-episode supplier", t, func() {
		fired := 0
		session, _ := newTestSession(func() { fired++ })
		So(session.Start(), ShouldBeNil)
		session.HandleStatus(loaded(0, 100_000))

		finish := Status{Loaded: true, JustFinished: true, PositionMs: 100_000, DurationMs: 100_000}

		Convey("A natural finish should end the session and fire the supplier once", func() {
			session.HandleStatus(finish)
			So(session.State(), ShouldEqual, Ended)
			So(fired, ShouldEqual, 1)

			Convey("Repeated terminal reports must not re-fire", func() {
				session.HandleStatus(finish)
				session.HandleStatus(finish)
				So(fired, ShouldEqual, 1)
			})

			Convey("Commands on the ended session are no-ops", func() {
				So(session.Play(), ShouldBeNil)
				So(session.SeekAbsolute(10_000), ShouldBeNil)
				So(session.State(), ShouldEqual, Ended)
			})
		})

		Convey("A looping finish report must not end the session", func() {
			session.HandleStatus(Status{Loaded: true, JustFinished: true, Looping: true, PositionMs: 0, DurationMs: 100_000})
			So(session.State(), ShouldEqual, Playing)
			So(fired, ShouldEqual, 0)
		})

		Convey("An explicit close in the same turn suppresses auto-advance", func() {
			session.Close()
			session.HandleStatus(finish)
			So(fired, ShouldEqual, 0)
		})
	})
}

func TestFailure(t *testing.T) {
	viper.Set(key.PlayerSaveInterval, 10*time.Second)

	Convey("Given a playing session", t, func() {
		session, _ := newTestSession(nil)
		So(session.Start(), ShouldBeNil)
		session.HandleStatus(loaded(0, 100_000))

		Convey("A decoder error should be terminal", func() {
			decodeErr := errors.New("stream stalled")
			session.HandleStatus(Status{Err: decodeErr})

			So(session.State(), ShouldEqual, Failed)
			So(session.Failure(), ShouldEqual, decodeErr)

			Convey("Further commands and reports are rejected as no-ops", func() {
				So(session.Play(), ShouldBeNil)
				session.HandleStatus(loaded(5_000, 100_000))
				So(session.State(), ShouldEqual, Failed)
			})
		})
	})
}

func TestPersistence(t *testing.T) {
	Convey("Given a session with a 10s save interval", t, func() {
		viper.Set(key.PlayerSaveInterval, 10*time.Second)
		viper.Set(key.HistorySaveOnWatch, true)

		session, _ := newTestSession(nil)
		current := time.Unix(1_000_000, 0)
		session.now = func() time.Time { return current }

		So(session.Start(), ShouldBeNil)
		session.HandleStatus(loaded(0, 600_000))

		Convey("Status ticks inside the interval must not write", func() {
			session.HandleStatus(loaded(1_000, 600_000))
			current = current.Add(3 * time.Second)
			session.HandleStatus(loaded(4_000, 600_000))

			stored := progress.Lookup(session.AnimeID(), session.EpisodeID())
			So(stored.IsPresent(), ShouldBeTrue)
			So(stored.MustGet().PositionMs, ShouldEqual, 0)
		})

		Convey("A tick past the interval should write the current position", func() {
			current = current.Add(11 * time.Second)
			session.HandleStatus(loaded(11_000, 600_000))

			stored := progress.Lookup(session.AnimeID(), session.EpisodeID())
			So(stored.MustGet().PositionMs, ShouldEqual, 11_000)
		})

		Convey("Close should flush unconditionally regardless of the interval", func() {
			current = current.Add(2 * time.Second)
			session.HandleStatus(loaded(2_000, 600_000))
			session.Close()

			stored := progress.Lookup(session.AnimeID(), session.EpisodeID())
			So(stored.MustGet().PositionMs, ShouldEqual, 2_000)
			So(stored.MustGet().DurationMs, ShouldEqual, 600_000)
		})

		Convey("Storage failures must not disturb playback", func() {
			filesystem.SetReadOnlyFs()
			defer filesystem.SetMemMapFs()

			broken, decoder := newTestSession(nil)
			broken.now = func() time.Time { return current }

			So(broken.Start(), ShouldBeNil)
			broken.HandleStatus(loaded(0, 600_000))
			So(broken.State(), ShouldEqual, Playing)
			So(decoder.calls, ShouldContain, "play")

			// Past the interval the write is attempted and fails; the FSM
			// and position tracking continue as if nothing happened.
			current = current.Add(11 * time.Second)
			broken.HandleStatus(loaded(11_000, 600_000))
			So(broken.State(), ShouldEqual, Playing)
			So(broken.PositionMs(), ShouldEqual, 11_000)

			So(broken.Pause(), ShouldBeNil)
			So(broken.State(), ShouldEqual, Paused)

			// The unconditional final flush also fails silently.
			broken.Close()
			broken.HandleStatus(loaded(12_000, 600_000))
			So(broken.PositionMs(), ShouldEqual, 11_000)
		})
	})
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
