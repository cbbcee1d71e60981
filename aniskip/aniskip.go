// Package aniskip provides a client for the AniSkip API, enabling automated retrieval of opening and ending skip timestamps.
package aniskip

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/metafates/gache"
	"github.com/otaku-mn/otaku/constant"
	"github.com/otaku-mn/otaku/filesystem"
	"github.com/otaku-mn/otaku/log"
	"github.com/otaku-mn/otaku/network"
	"github.com/otaku-mn/otaku/where"
)

// baseURL is a variable so tests can point the client at a stub server.
var baseURL = "https://api.aniskip.com/v1/skip-times"

// cacher persists fetched intervals so repeat lookups for the same episode
// never hit the network. Intervals for an aired episode do not change, so
// entries have no lifetime.
var cacher = gache.New[map[string]*SkipTimes](
	&gache.Options{
		Path:       where.SkipTimes(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// SkipTimes encapsulates the temporal intervals for opening and ending sequences.
type SkipTimes struct {
	Opening  Interval `json:"opening"`
	Ending   Interval `json:"ending"`
	HasIntro bool     `json:"has_intro"`
	HasOutro bool     `json:"has_outro"`
}

// Interval represents a continuous temporal range defined in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// StartMs returns the interval start in milliseconds.
func (i Interval) StartMs() int64 {
	return int64(i.Start * 1000)
}

// EndMs returns the interval end in milliseconds.
func (i Interval) EndMs() int64 {
	return int64(i.End * 1000)
}

// apiResponse defines the internal structural mapping for AniSkip API responses.
type apiResponse struct {
	Found   bool `json:"found"`
	Results []struct {
		Interval struct {
			StartTime float64 `json:"start_time"`
			EndTime   float64 `json:"end_time"`
		} `json:"interval"`
		SkipType string `json:"skip_type"`
	} `json:"results"`
}

// GetSkipTimes retrieves the skip intervals for a specific media entry and episode number from the AniSkip service.
// Returns nil (not an error) if no skip times are available; the player then
// falls back to its default intro window.
func GetSkipTimes(malID int, episode int) (*SkipTimes, error) {
	cacheKey := fmt.Sprintf("%d/%d", malID, episode)
	if times, ok := cachedSkipTimes(cacheKey); ok {
		return times, nil
	}

	url := fmt.Sprintf("%s/%d/%d?types=op&types=ed", baseURL, malID, episode)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build aniskip request: %w", err)
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := network.Client.Do(req)
	if err != nil {
		log.Warnf("aniskip API request failed: %v", err)
		return nil, nil // Graceful degradation
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("aniskip API returned status %d", resp.StatusCode)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read aniskip response: %w", err)
	}

	times, err := parseSkipTimes(body)
	if err != nil {
		return nil, err
	}

	// Definitive answers are cached, including "no skip times exist"; only
	// the degradation paths above stay uncached so they retry next session.
	storeSkipTimes(cacheKey, times)
	return times, nil
}

// cachedSkipTimes reports a previously fetched result for the cache key.
func cachedSkipTimes(cacheKey string) (*SkipTimes, bool) {
	cached, expired, err := cacher.Get()
	if err != nil || expired || cached == nil {
		return nil, false
	}
	times, ok := cached[cacheKey]
	return times, ok
}

func storeSkipTimes(cacheKey string, times *SkipTimes) {
	cached, _, err := cacher.Get()
	if err != nil || cached == nil {
		cached = make(map[string]*SkipTimes)
	}
	cached[cacheKey] = times

	if err := cacher.Set(cached); err != nil {
		log.Warnf("skip-times cache write failed: %v", err)
	}
}

// parseSkipTimes maps an AniSkip payload onto SkipTimes.
// A "not found" payload yields nil, not an error.
func parseSkipTimes(body []byte) (*SkipTimes, error) {
	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse aniskip response: %w", err)
	}

	if !data.Found || len(data.Results) == 0 {
		return nil, nil
	}

	times := &SkipTimes{}

	for _, result := range data.Results {
		switch result.SkipType {
		case "op":
			times.Opening = Interval{
				Start: result.Interval.StartTime,
				End:   result.Interval.EndTime,
			}
			times.HasIntro = true
		case "ed":
			times.Ending = Interval{
				Start: result.Interval.StartTime,
				End:   result.Interval.EndTime,
			}
			times.HasOutro = true
		}
	}

	return times, nil
}
