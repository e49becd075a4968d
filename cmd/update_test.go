package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ademuri/spotify-insights/internal/spotify"
	"github.com/ademuri/spotify-insights/internal/store"
)

const (
	profileBody = `{"id": "listener1", "display_name": "Listener One", "country": "NZ",
		"images": [{"url": "https://img/avatar"}], "external_urls": {"spotify": "https://open/user"}}`

	topTracksBody = `{"items": [
		{"id": "t1", "name": "First", "duration_ms": 180000, "popularity": 70,
		 "artists": [{"id": "x", "name": "X"}],
		 "album": {"id": "al1", "name": "One", "release_date": "1999-01-01", "images": [{"url": "https://img/al1"}]}},
		{"id": "t2", "name": "Second", "duration_ms": 240000,
		 "artists": [{"id": "x", "name": "X"}],
		 "album": {"id": "al2", "name": "Two", "release_date": "2005"}}
	], "next": null}`

	topArtistsBody = `{"items": [
		{"id": "x", "name": "X", "genres": ["shoegaze"], "external_urls": {"spotify": "https://open/x"}}
	]}`

	recentBody = `{"items": [
		{"played_at": "2024-05-06T09:30:00Z", "track": {"id": "t3", "name": "Third", "artists": [{"id": "w", "name": "W"}]}},
		{"played_at": "garbage", "track": {"id": "t1", "name": "First"}}
	]}`

	playlistsPage1 = `{"items": [{"id": "p1", "name": "Mix", "tracks": {"total": 12}}], "next": "https://api/next"}`
	playlistsPage2 = `{"items": [{"id": "p2", "name": "Other", "tracks": {"total": 0}}], "next": null}`

	playlistTracksBody = `{"items": [
		{"track": {"id": "t2", "name": "Second", "artists": [{"id": "x", "name": "X"}]}},
		{"track": {"id": null, "name": "local file"}}
	]}`

	artistDetailsBody = `{"artists": [{"id": "w", "name": "W", "genres": ["jazz"]}, null]}`
)

type fakeFetcher struct {
	calls  []string
	params map[string]map[string]string
	fail   map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, resource string, params map[string]string) ([]byte, error) {
	f.calls = append(f.calls, resource)
	if f.params == nil {
		f.params = make(map[string]map[string]string)
	}
	f.params[resource] = params
	if err := f.fail[resource]; err != nil {
		return nil, err
	}
	return []byte(responseFor(resource, params)), nil
}

func responseFor(resource string, params map[string]string) string {
	switch resource {
	case "me":
		return profileBody
	case "me/top/tracks":
		return topTracksBody
	case "me/top/artists":
		return topArtistsBody
	case "me/player/recently-played":
		return recentBody
	case "me/playlists":
		if params["offset"] == "0" {
			return playlistsPage1
		}
		return playlistsPage2
	case "playlists/p1/tracks", "playlists/p2/tracks":
		return playlistTracksBody
	case "artists":
		return artistDetailsBody
	}
	return `{}`
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.New(filepath.Join(t.TempDir(), "spotify.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSyncUser(t *testing.T) {
	db := openTestStore(t)
	f := &fakeFetcher{}
	config := UpdateConfig{TimeRange: store.MediumTerm, PlaylistTracks: 5, ArtistDetailsInterval: time.Hour}

	if err := syncUser(context.Background(), db, f, testUser, config); err != nil {
		t.Fatalf("syncUser: %v", err)
	}

	if got := f.params["me/top/tracks"]["time_range"]; got != store.MediumTerm {
		t.Errorf("Expected time_range %q, got %q", store.MediumTerm, got)
	}
	if got := f.params["playlists/p2/tracks"]["limit"]; got != "5" {
		t.Errorf("Expected playlist track limit 5, got %q", got)
	}
	if got := f.params["artists"]["ids"]; got != "w" {
		t.Errorf("Expected details to be fetched only for w, got %q", got)
	}
	if _, ok := f.params["me/player/recently-played"]["after"]; ok {
		t.Errorf("Expected no after parameter on an empty database")
	}

	snap, err := db.Snapshot(testUser, store.MediumTerm)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Profile.DisplayName != "Listener One" || snap.Profile.AvatarURL != "https://img/avatar" {
		t.Errorf("Unexpected profile %+v", snap.Profile)
	}
	if len(snap.TopTracks) != 2 || snap.TopTracks[1].HasPopularity {
		t.Errorf("Unexpected top tracks %+v", snap.TopTracks)
	}
	if len(snap.TopArtists) != 1 || snap.TopArtists[0].ExternalURL != "https://open/x" {
		t.Errorf("Unexpected top artists %+v", snap.TopArtists)
	}
	if len(snap.RecentPlays) != 1 || snap.RecentPlays[0].Track.ID != "t3" {
		t.Errorf("Expected the unparseable play to be dropped, got %+v", snap.RecentPlays)
	}
	if len(snap.Playlists) != 2 || snap.Playlists[1].ID != "p2" {
		t.Errorf("Expected both playlist pages, got %+v", snap.Playlists)
	}
	if got := len(snap.PlaylistTracks["p1"]); got != 1 {
		t.Errorf("Expected the local file to be dropped, got %d tracks", got)
	}
	if genres := snap.Artists["w"].Genres; len(genres) != 1 || genres[0] != "jazz" {
		t.Errorf("Expected details for w, got %+v", snap.Artists["w"])
	}

	// A second run asks only for plays after the newest stored one.
	f = &fakeFetcher{}
	if err := syncUser(context.Background(), db, f, testUser, config); err != nil {
		t.Fatalf("syncUser (repeat): %v", err)
	}
	want := fmt.Sprint(time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC).UnixMilli())
	if got := f.params["me/player/recently-played"]["after"]; got != want {
		t.Errorf("Expected after=%s, got %q", want, got)
	}
	for _, call := range f.calls {
		if call == "artists" {
			t.Errorf("Expected no artist details fetch when all are fresh")
		}
	}
}

func TestSyncUser_unauthorized(t *testing.T) {
	db := openTestStore(t)
	f := &fakeFetcher{fail: map[string]error{
		"me/top/artists": fmt.Errorf("me/top/artists: %w", spotify.ErrUnauthorized),
	}}

	err := syncUser(context.Background(), db, f, testUser, UpdateConfig{})
	if err == nil || !strings.Contains(err.Error(), "not authorized") {
		t.Fatalf("Expected an unauthorized error, got %v", err)
	}
	if len(f.calls) != 3 {
		t.Errorf("Expected fetching to stop after the failure, got calls %v", f.calls)
	}
}

func TestUpdateDatabase_requiresToken(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "spotify.db")
	err := updateDatabase(context.Background(), UpdateConfig{DbPath: dbPath, User: testUser})
	if err == nil || !strings.Contains(err.Error(), "run authenticate first") {
		t.Fatalf("Expected a missing token error, got %v", err)
	}
}

func TestUpdateDatabase_recentlyUpdated(t *testing.T) {
	dbPath := seedStore(t)
	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	if err := db.SetLastUpdated(testUser, time.Now()); err != nil {
		t.Fatalf("SetLastUpdated: %v", err)
	}
	db.Close()

	// No token is stored, so getting past the interval check would fail.
	err = updateDatabase(context.Background(), UpdateConfig{DbPath: dbPath, User: testUser, MinInterval: time.Hour})
	if err != nil {
		t.Fatalf("Expected the update to be skipped, got %v", err)
	}
}

func TestUpdateDatabase_httpServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, responseFor(strings.TrimPrefix(r.URL.Path, "/"), map[string]string{"offset": r.URL.Query().Get("offset")}))
	}))
	defer srv.Close()

	viper.Set("api_url", srv.URL)
	viper.Set("client_id", "id")
	viper.Set("client_secret", "secret")
	t.Cleanup(func() {
		viper.Reset()
	})

	dbPath := filepath.Join(t.TempDir(), "spotify.db")
	seedToken(t, dbPath)

	config := UpdateConfig{DbPath: dbPath, User: "TestUser", PlaylistTracks: 20, ArtistDetailsInterval: time.Hour}
	if err := updateDatabase(context.Background(), config); err != nil {
		t.Fatalf("updateDatabase: %v", err)
	}

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer db.Close()
	snap, err := db.Snapshot(testUser, store.ShortTerm)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Profile.Country != "NZ" {
		t.Errorf("Expected the profile to be stored, got %+v", snap.Profile)
	}
	if len(snap.TopTracks) != 2 || len(snap.Playlists) != 2 || len(snap.RecentPlays) != 1 {
		t.Errorf("Unexpected snapshot after update: %d top tracks, %d playlists, %d plays",
			len(snap.TopTracks), len(snap.Playlists), len(snap.RecentPlays))
	}
	updated, err := db.GetLastUpdated(testUser)
	if err != nil || updated.IsZero() {
		t.Errorf("Expected last_updated to be set, got %v, %v", updated, err)
	}
}
