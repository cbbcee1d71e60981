package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func catalogStub() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/anime/a1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": "a1",
			"title": "Cosmic Drift",
			"mal_id": 1535,
			"episodes": [
				{"id": "e1", "title": "Arrival", "info": "Episode 1", "index": 1, "stream_uri": "http://cdn/e1.m3u8"},
				{"id": "e2", "title": "Departure", "info": "Episode 2", "index": 2, "stream_uri": "http://cdn/e2.m3u8"}
			]
		}`))
	})
	mux.HandleFunc("/anime/a1/episodes/e1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "e1", "title": "Arrival", "info": "Episode 1", "index": 1, "stream_uri": "http://cdn/e1.m3u8"}`))
	})
	return httptest.NewServer(mux)
}

func TestClient(t *testing.T) {
	Convey("Given a catalog client", t, func() {
		server := catalogStub()
		defer server.Close()
		client := NewClient(server.URL)

		Convey("Anime should return the series with episodes bound to it", func() {
			anime, err := client.Anime("a1")
			So(err, ShouldBeNil)
			So(anime.Title, ShouldEqual, "Cosmic Drift")
			So(len(anime.Episodes), ShouldEqual, 2)
			So(anime.Episodes[0].AnimeID, ShouldEqual, "a1")
		})

		Convey("Episode should return a single episode", func() {
			episode, err := client.Episode("a1", "e1")
			So(err, ShouldBeNil)
			So(episode.StreamURI, ShouldEqual, "http://cdn/e1.m3u8")
			So(episode.AnimeID, ShouldEqual, "a1")
		})

		Convey("NextEpisode should return the following episode", func() {
			next, err := client.NextEpisode("a1", "e1")
			So(err, ShouldBeNil)
			So(next, ShouldNotBeNil)
			So(next.ID, ShouldEqual, "e2")
		})

		Convey("NextEpisode should return nil for the last episode", func() {
			next, err := client.NextEpisode("a1", "e2")
			So(err, ShouldBeNil)
			So(next, ShouldBeNil)
		})

		Convey("Unknown series should surface an error", func() {
			_, err := client.Anime("missing")
			So(err, ShouldNotBeNil)
		})
	})
}
