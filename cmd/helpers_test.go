package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/ademuri/spotify-insights/internal/catalog"
	"github.com/ademuri/spotify-insights/internal/store"
)

const testUser = "testuser"

func track(id, year string, popularity int, artists ...string) catalog.Track {
	t := catalog.Track{
		ID:   id,
		Name: "Song " + id,
		Album: catalog.Album{
			ID:          "album-" + id,
			Name:        "Album " + id,
			ReleaseDate: year,
			Images:      []catalog.Image{{URL: "https://img/" + id}},
		},
		DurationMs:    200000,
		Popularity:    popularity,
		HasPopularity: true,
	}
	for _, a := range artists {
		t.Artists = append(t.Artists, catalog.ArtistRef{ID: a, Name: "Artist " + a})
	}
	return t
}

// testSnapshot has a profile, three top tracks, two playlists and plays on
// two days.
func testSnapshot() catalog.Snapshot {
	a := track("a", "1995-03-01", 80, "x")
	b := track("b", "2012", 40, "y", "x")
	c := track("c", "", 60, "z")

	day1 := time.Date(2024, 5, 6, 9, 30, 0, 0, time.Local)
	day2 := time.Date(2024, 5, 8, 21, 0, 0, 0, time.Local)
	return catalog.Snapshot{
		Profile: catalog.Profile{
			ID:          "listener1",
			DisplayName: "Listener One",
			Country:     "NZ",
			ProfileURL:  "https://open.spotify.com/user/listener1",
		},
		TopTracks: []catalog.Track{a, b, c},
		TopArtists: []catalog.Artist{
			{ID: "x", Name: "Artist x", Genres: []string{"rock", "indie"}},
			{ID: "y", Name: "Artist y", Genres: []string{"rock"}},
		},
		RecentPlays: []catalog.PlayEvent{
			{Track: b, PlayedAt: day2.Add(time.Hour)},
			{Track: c, PlayedAt: day2},
			{Track: a, PlayedAt: day1},
		},
		Playlists: []catalog.Playlist{
			{ID: "p1", Name: "Road Trip", TrackCount: 30},
			{ID: "p2", Name: "Empty", TrackCount: 0},
		},
		PlaylistTracks: map[string][]catalog.Track{
			"p1": {a, b, c},
		},
		Artists: map[string]catalog.Artist{
			"x": {ID: "x", Name: "Artist x", Genres: []string{"rock", "indie"}},
			"y": {ID: "y", Name: "Artist y", Genres: []string{"rock"}},
		},
	}
}

// seedStore writes testSnapshot into a new database and returns its path.
func seedStore(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "spotify.db")
	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New(%s): %v", dbPath, err)
	}
	defer db.Close()

	snap := testSnapshot()
	if err := db.CreateUser(testUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := db.SaveProfile(testUser, snap.Profile); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if err := db.ReplaceTopTracks(testUser, store.ShortTerm, snap.TopTracks); err != nil {
		t.Fatalf("ReplaceTopTracks: %v", err)
	}
	if err := db.ReplaceTopArtists(testUser, store.ShortTerm, snap.TopArtists); err != nil {
		t.Fatalf("ReplaceTopArtists: %v", err)
	}
	if _, err := db.AddListens(testUser, snap.RecentPlays); err != nil {
		t.Fatalf("AddListens: %v", err)
	}
	if err := db.ReplacePlaylists(testUser, snap.Playlists); err != nil {
		t.Fatalf("ReplacePlaylists: %v", err)
	}
	if err := db.ReplacePlaylistTracks("p1", snap.PlaylistTracks["p1"]); err != nil {
		t.Fatalf("ReplacePlaylistTracks: %v", err)
	}
	return dbPath
}

func seedToken(t *testing.T, dbPath string) {
	t.Helper()
	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New(%s): %v", dbPath, err)
	}
	defer db.Close()
	if err := db.SaveToken(testUser, &oauth2.Token{AccessToken: "access", TokenType: "Bearer"}); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
}

func request(snap catalog.Snapshot) AnalysisRequest {
	return AnalysisRequest{User: testUser, Snapshot: snap, Location: time.Local}
}
