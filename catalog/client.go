// Package catalog defines the domain models and interface for the remote content catalog.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/otaku-mn/otaku/constant"
	"github.com/otaku-mn/otaku/network"
)

// Client is an HTTP-backed Provider speaking the catalog's JSON API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    network.Client,
	}
}

// Anime retrieves a series entity with its episode list.
func (c *Client) Anime(animeID string) (*Anime, error) {
	var anime Anime
	if err := c.get(fmt.Sprintf("/anime/%s", animeID), &anime); err != nil {
		return nil, fmt.Errorf("fetch anime %q: %w", animeID, err)
	}

	for _, episode := range anime.Episodes {
		episode.AnimeID = anime.ID
	}
	return &anime, nil
}

// Episode retrieves the metadata and stream URI for a single episode.
func (c *Client) Episode(animeID, episodeID string) (*Episode, error) {
	var episode Episode
	if err := c.get(fmt.Sprintf("/anime/%s/episodes/%s", animeID, episodeID), &episode); err != nil {
		return nil, fmt.Errorf("fetch episode %q/%q: %w", animeID, episodeID, err)
	}
	episode.AnimeID = animeID
	return &episode, nil
}

// NextEpisode retrieves the episode following the given one by scanning the
// series episode list. Returns nil, nil when the episode is the last one.
func (c *Client) NextEpisode(animeID, episodeID string) (*Episode, error) {
	anime, err := c.Anime(animeID)
	if err != nil {
		return nil, err
	}

	for i, episode := range anime.Episodes {
		if episode.ID == episodeID {
			if i+1 < len(anime.Episodes) {
				return anime.Episodes[i+1], nil
			}
			return nil, nil
		}
	}

	return nil, fmt.Errorf("episode %q not found in series %q", episodeID, animeID)
}

func (c *Client) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read catalog response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse catalog response: %w", err)
	}
	return nil
}
