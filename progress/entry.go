// Package progress provides the implementation for tracking and persisting playback progress state.
package progress

import (
	"fmt"

	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/util"
	"github.com/spf13/viper"
)

// defaultCompletionThreshold is used when no threshold is configured.
const defaultCompletionThreshold = 0.95

// Entry represents a single continue-watching record preserved in the user's history.
//
// Title, EpisodeInfo and ThumbnailURI duplicate catalog data so the resume
// screen renders without a catalog round-trip.
type Entry struct {
	AnimeID      string `json:"anime_id"`
	EpisodeID    string `json:"episode_id"`
	Title        string `json:"title"`
	EpisodeInfo  string `json:"episode_info"`
	ThumbnailURI string `json:"thumbnail_uri,omitempty"`
	PositionMs   int64  `json:"position_ms"`
	DurationMs   int64  `json:"duration_ms"`

	// Timestamp is the last-write time in RFC 3339 form, set on upsert.
	Timestamp string `json:"timestamp"`
}

// Fraction returns the watched share of the episode in the range [0, 1].
// A zero duration yields 0; the decoder may not have reported metadata yet.
func (e *Entry) Fraction() float64 {
	if e.DurationMs <= 0 {
		return 0
	}
	return float64(e.PositionMs) / float64(e.DurationMs)
}

// Complete reports whether the entry has crossed the completion threshold.
// Complete entries restart from the beginning on the next open.
func (e *Entry) Complete() bool {
	threshold := viper.GetFloat64(key.PlayerCompletionThreshold)
	if threshold <= 0 {
		threshold = defaultCompletionThreshold
	}
	return e.Fraction() >= threshold
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s %s : %s / %s",
		e.Title,
		e.EpisodeInfo,
		util.FormatDurationMs(e.PositionMs),
		util.FormatDurationMs(e.DurationMs),
	)
}

func (e *Entry) sameKey(animeID, episodeID string) bool {
	return e.AnimeID == animeID && e.EpisodeID == episodeID
}
