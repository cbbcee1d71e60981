// Package catalog defines the domain models and interface for the remote content catalog.
package catalog

import "fmt"

// Episode represents a discrete media segment within an anime series.
type Episode struct {
	// Catalog ID (e.g. "e_17").
	ID string `json:"id"`
	// Owning anime ID.
	AnimeID string `json:"anime_id"`
	// Display name (e.g. "The Girl in the Forest").
	Title string `json:"title"`
	// Positional label shown in lists and history (e.g. "Episode 3").
	Info string `json:"info"`
	// Episode number.
	Index int `json:"index"`
	// Direct URI of the video stream.
	StreamURI string `json:"stream_uri"`
	// Preview image URL, may be empty.
	ThumbnailURI string `json:"thumbnail_uri,omitempty"`
	// HTTP headers required to stream, if any.
	Headers map[string]string `json:"headers,omitempty"`
}

func (e *Episode) String() string {
	if e.Info != "" {
		return fmt.Sprintf("%s: %s", e.Info, e.Title)
	}
	return e.Title
}
