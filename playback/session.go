// Package playback implements the authoritative state machine for one playback instance.
//
// A session is created when a player screen mounts, owns position and duration
// for exactly one (anime, episode) pair, persists progress through the
// progress store at a bounded frequency, and is flushed unconditionally when
// closed. All transitions happen synchronously inside the decoder's status
// callback or a user command; there is no internal goroutine.
package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/log"
	"github.com/otaku-mn/otaku/progress"
	"github.com/otaku-mn/otaku/util"
	"github.com/spf13/viper"
)

const defaultSaveInterval = 10 * time.Second

// Options configures a new playback session.
type Options struct {
	AnimeID   string
	EpisodeID string

	// Display cache, copied into every progress entry.
	Title        string
	EpisodeInfo  string
	ThumbnailURI string

	// SourceURI is the stream location handed to the decoder.
	SourceURI string

	Decoder Decoder

	// NextEpisode, when set, is invoked exactly once after a natural finish.
	NextEpisode func()
}

// Session is the state machine wrapping one playback-capable session.
type Session struct {
	mu   sync.Mutex
	opts Options

	state   State
	failure error

	positionMs int64
	durationMs int64

	muted         bool
	quality       string
	subtitleTrack string

	// intent is the play/pause wish expressed by the user, kept separate from
	// the confirmed decoder state so a stale confirmation cannot overwrite a
	// fresh command.
	intent State

	// resumeMs is the stored position applied before the first play.
	resumeMs int64

	// loadedOnce flips on the first loaded report. The resume seek keys off
	// it rather than off the Loading state, since commands issued while the
	// stream loads move the state on before the report arrives.
	loadedOnce bool

	lastSave time.Time
	closed   bool

	advance   *AutoAdvance
	listeners []func(State)

	now func() time.Time
}

// NewSession validates options and looks up stored progress for the episode.
// A stored entry past the completion threshold is discarded so playback
// restarts from the beginning; a corrupt or missing entry means no resume.
func NewSession(opts Options) (*Session, error) {
	if opts.AnimeID == "" || opts.EpisodeID == "" {
		return nil, errors.New("playback session requires anime and episode identifiers")
	}
	if opts.Decoder == nil {
		return nil, errors.New("playback session requires a decoder")
	}

	s := &Session{
		opts:    opts,
		state:   Idle,
		intent:  Playing,
		advance: NewAutoAdvance(opts.NextEpisode),
		now:     time.Now,
	}

	if stored, ok := progress.Lookup(opts.AnimeID, opts.EpisodeID).Get(); ok && !stored.Complete() {
		s.resumeMs = stored.PositionMs
	}

	return s, nil
}

// Start hands the stream source to the decoder and enters Loading.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != Idle {
		return nil
	}

	s.setState(Loading)
	if err := s.opts.Decoder.SetSource(s.opts.SourceURI); err != nil {
		s.fail(fmt.Errorf("set source: %w", err))
		return err
	}
	return nil
}

// HandleStatus processes one decoder status report. It drives every
// non-command transition of the state machine and the throttled persistence.
func (s *Session) HandleStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state.Terminal() {
		return
	}

	if st.Err != nil {
		s.fail(st.Err)
		return
	}

	if !st.Loaded {
		return
	}

	if st.DurationMs > 0 {
		s.durationMs = st.DurationMs
	}

	// First loaded report: seek to the stored position before the first
	// play, even when a pause or other command raced ahead of the report.
	if !s.loadedOnce {
		s.loadedOnce = true
		if s.resumeMs > 0 {
			if err := s.opts.Decoder.SeekTo(s.resumeMs); err != nil {
				log.Warnf("resume seek failed, starting from zero: %v", err)
			} else {
				s.positionMs = s.resumeMs
			}
		}
		if s.intent == Paused {
			if err := s.opts.Decoder.Pause(); err != nil {
				log.Warnf("initial pause command failed: %v", err)
			}
		} else {
			if err := s.opts.Decoder.Play(); err != nil {
				log.Warnf("initial play command failed: %v", err)
			}
		}
		s.setState(s.intent)
		s.maybeSave()
		return
	}

	if st.JustFinished && !st.Looping {
		if s.durationMs > 0 {
			s.positionMs = s.durationMs
		}
		s.setState(Ended)
		s.persist()
		s.advance.Notify(Ended)
		return
	}

	switch s.state {
	case Seeking:
		// The decoder confirms the new position once it reports a steady,
		// non-buffering frame; until then the optimistic target stands.
		if !st.Buffering {
			s.positionMs = st.PositionMs
			s.setState(s.intent)
		}
	case Playing, Paused:
		if st.Buffering {
			s.setState(Buffering)
		} else {
			s.positionMs = st.PositionMs
		}
	case Buffering:
		if !st.Buffering {
			s.positionMs = st.PositionMs
			s.setState(s.intent)
		}
	}

	s.maybeSave()
}

// Play resumes playback. No-op when already playing, closed, or terminal.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state.Terminal() || s.state == Playing {
		return nil
	}

	s.intent = Playing
	s.setState(Playing)
	if err := s.opts.Decoder.Play(); err != nil {
		log.Warnf("play command failed: %v", err)
		return err
	}
	return nil
}

// Pause suspends playback. No-op when already paused, closed, or terminal.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state.Terminal() || s.state == Paused {
		return nil
	}

	s.intent = Paused
	s.setState(Paused)
	if err := s.opts.Decoder.Pause(); err != nil {
		log.Warnf("pause command failed: %v", err)
		return err
	}
	return nil
}

// TogglePause inverts the current play intent.
func (s *Session) TogglePause() error {
	if s.State() == Playing {
		return s.Pause()
	}
	return s.Play()
}

// SeekRelative moves the position by deltaMs, clamped to the media bounds.
func (s *Session) SeekRelative(deltaMs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekTo(s.positionMs + deltaMs)
}

// SeekAbsolute moves the position to ms, clamped to the media bounds.
func (s *Session) SeekAbsolute(ms int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekTo(ms)
}

func (s *Session) seekTo(ms int64) error {
	if s.closed || s.state.Terminal() {
		return nil
	}

	// An explicit seek before the stream loads supersedes the stored
	// resume position.
	if !s.loadedOnce {
		s.resumeMs = 0
	}

	target := util.Clamp(ms, 0, s.durationMs)

	if s.state == Playing || s.state == Paused {
		s.intent = s.state
	}
	s.setState(Seeking)
	s.positionMs = target

	if err := s.opts.Decoder.SeekTo(target); err != nil {
		log.Warnf("seek command failed: %v", err)
		return err
	}
	return nil
}

// SetMuted records the preference and forwards it to the decoder.
func (s *Session) SetMuted(muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state.Terminal() {
		return nil
	}
	s.muted = muted
	return s.opts.Decoder.SetMuted(muted)
}

// SetQuality records the preferred quality and reissues the decoder source.
func (s *Session) SetQuality(quality string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state.Terminal() {
		return nil
	}
	s.quality = quality
	return s.opts.Decoder.SetSource(s.opts.SourceURI)
}

// SetSubtitleTrack records the preferred subtitle track and reissues the decoder source.
func (s *Session) SetSubtitleTrack(trackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state.Terminal() {
		return nil
	}
	s.subtitleTrack = trackID
	return s.opts.Decoder.SetSource(s.opts.SourceURI)
}

// Close destroys the session: it suppresses auto-advance, issues the
// unconditional final progress flush, and rejects all further events.
// Explicit close wins over a natural finish delivered in the same turn.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.advance.Cancel()
	s.persist()
}

// Subscribe registers a listener notified synchronously on every state
// transition. Listeners must not call back into the session.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns the current phase of the state machine.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PositionMs returns the last known playback offset.
func (s *Session) PositionMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionMs
}

// DurationMs returns the last known media length, zero before metadata arrives.
func (s *Session) DurationMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.durationMs
}

// Failure returns the decoder error that moved the session to Failed, if any.
func (s *Session) Failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// Muted returns the current mute preference.
func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// AnimeID returns the series half of the session identity.
func (s *Session) AnimeID() string { return s.opts.AnimeID }

// EpisodeID returns the episode half of the session identity.
func (s *Session) EpisodeID() string { return s.opts.EpisodeID }

func (s *Session) setState(next State) {
	if s.state == next {
		return
	}
	s.state = next
	for _, fn := range s.listeners {
		fn(next)
	}
}

func (s *Session) fail(err error) {
	s.failure = err
	log.Errorf("decoder error for %s/%s: %v", s.opts.AnimeID, s.opts.EpisodeID, err)
	s.setState(Failed)
	s.persist()
}

// maybeSave issues a progress write when enough playback time has elapsed
// since the previous one. An interval check is used instead of a position
// modulus so an unlucky status cadence cannot alias past a write boundary.
func (s *Session) maybeSave() {
	if !saveOnWatch() {
		return
	}
	if s.now().Sub(s.lastSave) < saveInterval() {
		return
	}
	s.persist()
}

// persist writes the current position unconditionally. Failures are logged
// and swallowed; persistence is best-effort and never interrupts playback.
func (s *Session) persist() {
	s.lastSave = s.now()

	err := progress.Upsert(&progress.Entry{
		AnimeID:      s.opts.AnimeID,
		EpisodeID:    s.opts.EpisodeID,
		Title:        s.opts.Title,
		EpisodeInfo:  s.opts.EpisodeInfo,
		ThumbnailURI: s.opts.ThumbnailURI,
		PositionMs:   s.positionMs,
		DurationMs:   s.durationMs,
	})
	if err != nil {
		log.Warnf("progress write failed: %v", err)
	}
}

func saveInterval() time.Duration {
	if viper.IsSet(key.PlayerSaveInterval) {
		return viper.GetDuration(key.PlayerSaveInterval)
	}
	return defaultSaveInterval
}

func saveOnWatch() bool {
	if viper.IsSet(key.HistorySaveOnWatch) {
		return viper.GetBool(key.HistorySaveOnWatch)
	}
	return true
}
