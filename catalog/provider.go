// Package catalog defines the domain models and interface for the remote content catalog.
package catalog

// Provider encapsulates the required capabilities of a catalog backend.
type Provider interface {
	// Anime retrieves a series entity with its episode list.
	Anime(animeID string) (*Anime, error)

	// Episode retrieves the metadata and stream URI for a single episode.
	Episode(animeID, episodeID string) (*Episode, error)

	// NextEpisode retrieves the episode following the given one,
	// or nil when the given episode is the last of its series.
	NextEpisode(animeID, episodeID string) (*Episode, error)
}
