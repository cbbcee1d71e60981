package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/otaku-mn/otaku/aniskip"
	"github.com/otaku-mn/otaku/catalog"
	"github.com/otaku-mn/otaku/color"
	"github.com/otaku-mn/otaku/key"
	"github.com/otaku-mn/otaku/log"
	"github.com/otaku-mn/otaku/playback"
	"github.com/otaku-mn/otaku/player"
	"github.com/otaku-mn/otaku/presentation"
	"github.com/otaku-mn/otaku/progress"
	"github.com/otaku-mn/otaku/style"
)

func init() {
	rootCmd.AddCommand(playCmd)
}

// playCmd starts playback of a specific episode, resuming from the saved
// position when one exists.
var playCmd = &cobra.Command{
	Use:   "play [anime-id] [episode-id]",
	Short: "Play an episode, resuming from the saved position",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := newCatalogClient()

		anime, err := client.Anime(args[0])
		handleErr(err)

		episode, err := client.Episode(args[0], args[1])
		handleErr(err)

		handleErr(watch(client, anime, episode))
	},
}

func newCatalogClient() *catalog.Client {
	return catalog.NewClient(viper.GetString(key.CatalogURL))
}

// resumeEntry replays a continue-watching record picked from history.
func resumeEntry(entry *progress.Entry) error {
	client := newCatalogClient()

	anime, err := client.Anime(entry.AnimeID)
	if err != nil {
		return fmt.Errorf("anime %s: %w", entry.AnimeID, err)
	}

	episode, err := client.Episode(entry.AnimeID, entry.EpisodeID)
	if err != nil {
		return fmt.Errorf("episode %s: %w", entry.EpisodeID, err)
	}

	return watch(client, anime, episode)
}

// watch drives the full playback loop for an episode, following
// auto-advance to later episodes until the player is closed.
func watch(client catalog.Provider, anime *catalog.Anime, episode *catalog.Episode) error {
	mpv := player.NewMPV(anime.Title, episode.Headers)
	defer mpv.Close()

	for {
		next, err := watchEpisode(client, mpv, anime, episode)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		fmt.Printf("%s %s\n", style.Fg(color.Green)("▶"), next)
		episode = next
	}
}

// watchEpisode runs a single playback session to completion. It returns the
// next episode when playback finished naturally and auto-advance picked one,
// or nil when the player was closed.
func watchEpisode(client catalog.Provider, mpv *player.MPV, anime *catalog.Anime, episode *catalog.Episode) (*catalog.Episode, error) {
	advanceCh := make(chan struct{}, 1)

	opts := playback.Options{
		AnimeID:      anime.ID,
		EpisodeID:    episode.ID,
		Title:        anime.Title,
		EpisodeInfo:  episode.Info,
		ThumbnailURI: episode.ThumbnailURI,
		SourceURI:    episode.StreamURI,
		Decoder:      mpv,
	}

	if viper.GetBool(key.PlayerAutoAdvance) {
		opts.NextEpisode = func() {
			select {
			case advanceCh <- struct{}{}:
			default:
			}
		}
	}

	session, err := playback.NewSession(opts)
	if err != nil {
		return nil, err
	}

	window := playback.NewSkipIntroWindow(session)
	verified := false
	if viper.GetBool(key.PlayerAniskip) && anime.MALID != 0 {
		if st, err := aniskip.GetSkipTimes(anime.MALID, episode.Index); err == nil && st != nil && st.HasIntro {
			window.SetInterval(st.Opening.StartMs(), st.Opening.EndMs())
			verified = true
		}
	}

	controller := presentation.NewController(session, player.NewLocker(mpv))
	defer controller.Close()

	watcher := player.NewWatcher(mpv, func(st playback.Status) {
		session.HandleStatus(st)

		// Only verified intervals skip automatically; the fallback
		// window is heuristic and stays manual.
		if verified && window.Visible() {
			if err := window.Skip(); err != nil {
				log.Warnf("skip intro: %v", err)
			}
		}
	})

	if err := session.Start(); err != nil {
		return nil, err
	}
	if err := watcher.Start(); err != nil {
		session.Close()
		return nil, err
	}
	defer watcher.Stop()

	select {
	case <-mpv.Wait():
		session.Close()
		return nil, nil
	case <-advanceCh:
		session.Close()

		next, err := client.NextEpisode(anime.ID, episode.ID)
		if err != nil {
			return nil, fmt.Errorf("next episode: %w", err)
		}
		return next, nil
	}
}
