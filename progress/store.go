// Package progress provides the implementation for tracking and persisting playback progress state.
//
// The store keeps a bounded, most-recent-first list of continue-watching
// entries under a single storage key. Persistence is best-effort: storage
// failures are logged and do not interrupt playback. Writes follow
// last-writer-wins semantics; a single active player writes a given entry
// at a time, so no locking is implemented.
package progress

import (
	"errors"
	"time"

	"github.com/metafates/gache"
	"github.com/otaku-mn/otaku/filesystem"
	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/log"
	"github.com/otaku-mn/otaku/where"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// defaultSize bounds the history when no size is configured.
const defaultSize = 20

// cacher provides an abstracted, disk-backed registry for continue-watching records.
var cacher = gache.New[[]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// List returns a snapshot of all continue-watching entries, most-recent-first.
// An absent or corrupt store degrades to an empty list, never an error.
func List() []*Entry {
	cached, expired, err := cacher.Get()
	if err != nil {
		log.Warnf("continue-watching read failed, treating as empty: %v", err)
		return nil
	}
	if expired || cached == nil {
		return nil
	}

	snapshot := make([]*Entry, len(cached))
	copy(snapshot, cached)
	return snapshot
}

// Lookup returns the stored entry for the given composite key, if present.
func Lookup(animeID, episodeID string) mo.Option[*Entry] {
	for _, entry := range List() {
		if entry.sameKey(animeID, episodeID) {
			return mo.Some(entry)
		}
	}
	return mo.None[*Entry]()
}

// Upsert records playback progress for an episode, replacing any entry with
// the same (anime, episode) key. The updated entry moves to the front and the
// list is truncated to the configured bound, evicting the oldest entries.
func Upsert(entry *Entry) error {
	if entry == nil || entry.AnimeID == "" || entry.EpisodeID == "" {
		return errors.New("progress entry requires anime and episode identifiers")
	}

	entry.Timestamp = time.Now().Format(time.RFC3339)

	entries := List()
	kept := make([]*Entry, 0, len(entries)+1)
	kept = append(kept, entry)
	for _, existing := range entries {
		if !existing.sameKey(entry.AnimeID, entry.EpisodeID) {
			kept = append(kept, existing)
		}
	}

	if bound := size(); len(kept) > bound {
		kept = kept[:bound]
	}

	return cacher.Set(kept)
}

// Remove deletes a single entry matching the composite key; no-op when absent.
func Remove(animeID, episodeID string) error {
	entries := List()
	kept := make([]*Entry, 0, len(entries))
	for _, entry := range entries {
		if !entry.sameKey(animeID, episodeID) {
			kept = append(kept, entry)
		}
	}

	if len(kept) == len(entries) {
		return nil
	}
	return cacher.Set(kept)
}

// Clear removes all continue-watching entries.
func Clear() error {
	return cacher.Set(nil)
}

func size() int {
	if configured := viper.GetInt(key.HistorySize); configured > 0 {
		return configured
	}
	return defaultSize
}
