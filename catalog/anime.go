// Package catalog defines the domain models and interface for the remote content catalog.
//
// The catalog is an external collaborator: a playback session fetches episode
// metadata and the stream URI once at creation and never refetches on its own.
package catalog

// Anime represents a series entity known to the catalog.
type Anime struct {
	// Catalog ID (e.g. "a_102").
	ID string `json:"id"`
	// Display title.
	Title string `json:"title"`
	// Preview image URL, may be empty.
	ThumbnailURI string `json:"thumbnail_uri,omitempty"`
	// MyAnimeList ID, used for skip-interval lookups. Zero when unknown.
	MALID int `json:"mal_id,omitempty"`

	Episodes []*Episode `json:"episodes,omitempty"`
}

func (a *Anime) String() string {
	return a.Title
}
