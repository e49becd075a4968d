package analysis

import (
	"testing"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

func TestAnalyzePlaylist_empty(t *testing.T) {
	if _, ok := AnalyzePlaylist(nil, nil); ok {
		t.Fatalf("Expected no data for an empty playlist")
	}
}

func TestAnalyzePlaylist_era(t *testing.T) {
	dna, ok := AnalyzePlaylist(years(1975, 1978, 1979), nil)
	if !ok {
		t.Fatalf("Expected results")
	}
	if dna.AverageReleaseYear != 1977 {
		t.Errorf("AverageReleaseYear = %d, want 1977", dna.AverageReleaseYear)
	}
	if dna.Era != "70s" {
		t.Errorf("Era = %q, want 70s", dna.Era)
	}
}

func TestAnalyzePlaylist_unknownEra(t *testing.T) {
	dna, _ := AnalyzePlaylist([]catalog.Track{track("1", 10, "", "a")}, nil)
	if dna.Era != "Unknown" || dna.AverageReleaseYear != 0 {
		t.Errorf("Expected unknown era, got %q (%d)", dna.Era, dna.AverageReleaseYear)
	}
}

func TestEraOf(t *testing.T) {
	tests := map[int]string{
		1969: "Pre-70s",
		1970: "70s",
		1989: "80s",
		1990: "90s",
		2009: "2000s",
		2019: "2010s",
		2020: "2020s",
		2031: "2020s",
	}
	for year, want := range tests {
		if got := EraOf(year); got != want {
			t.Errorf("EraOf(%d) = %q, want %q", year, got, want)
		}
	}
}

func TestAnalyzePlaylist_durations(t *testing.T) {
	tracks := years(2001, 2002, 2003)
	tracks[0].DurationMs = 60 * 60000
	tracks[1].DurationMs = 45*60000 + 20000
	tracks[2].DurationMs = 30000

	dna, _ := AnalyzePlaylist(tracks, nil)
	// 105 minutes 50 seconds rounds to 106 minutes.
	want := Duration{Hours: 1, Minutes: 46, TotalMinutes: 106}
	if dna.TotalDuration != want {
		t.Errorf("TotalDuration = %+v, want %+v", dna.TotalDuration, want)
	}
	if dna.AverageTrackMinutes != 35 {
		t.Errorf("AverageTrackMinutes = %d, want 35", dna.AverageTrackMinutes)
	}
	if dna.LongestTrack.ID != "0" || dna.ShortestTrack.ID != "2" {
		t.Errorf("Longest/shortest = %q/%q", dna.LongestTrack.ID, dna.ShortestTrack.ID)
	}
}

func TestAnalyzePlaylist_durationTiesKeepFirstOccurrence(t *testing.T) {
	tracks := years(2001, 2002, 2003, 2004)
	tracks[0].DurationMs = 120000
	tracks[1].DurationMs = 300000
	tracks[2].DurationMs = 300000
	tracks[3].DurationMs = 120000

	dna, _ := AnalyzePlaylist(tracks, nil)
	if dna.LongestTrack.ID != "1" {
		t.Errorf("LongestTrack = %q, want the first tied track 1", dna.LongestTrack.ID)
	}
	if dna.ShortestTrack.ID != "0" {
		t.Errorf("ShortestTrack = %q, want the first tied track 0", dna.ShortestTrack.ID)
	}
}

func TestAnalyzePlaylist_frequencies(t *testing.T) {
	tracks := []catalog.Track{
		track("1", 50, "2000", "x", "y"),
		track("2", 50, "2000", "y"),
		track("3", 50, "2000", "z"),
		track("4", 50, "2000", "x"),
		track("5", 50, "2000", "w"),
	}
	tracks[3].Album = tracks[0].Album

	artists := map[string]catalog.Artist{
		"x": {ID: "x", Name: "Artist x", Genres: []string{"rock", "indie"}, ExternalURL: "https://open.spotify.com/artist/x"},
		"y": {ID: "y", Name: "Artist y", Genres: []string{"indie"}},
		"z": {ID: "z", Name: "Artist z"},
	}

	dna, _ := AnalyzePlaylist(tracks, artists)

	// x and y both appear twice; x was seen first.
	var order []string
	for _, a := range dna.Artists {
		order = append(order, a.ID)
	}
	if want := "[x y z w]"; sprint(order) != want {
		t.Errorf("Artist order = %v, want %s", order, want)
	}
	if dna.Artists[0].Count != 2 || sprint(dna.Artists[0].Tracks) != "[Track 1 Track 4]" {
		t.Errorf("Unexpected artist entry %+v", dna.Artists[0])
	}
	if dna.Artists[0].ExternalURL == "" {
		t.Errorf("Expected external url from artist details")
	}
	if dna.UniqueArtists != 4 {
		t.Errorf("UniqueArtists = %d, want 4", dna.UniqueArtists)
	}

	if dna.TopAlbums[0].ID != "album-1" || dna.TopAlbums[0].Count != 2 {
		t.Errorf("Top album = %+v", dna.TopAlbums[0])
	}
	if len(dna.TopAlbums) != 4 {
		t.Errorf("Expected 4 albums, got %d", len(dna.TopAlbums))
	}

	// indie: x on track 1, y on track 1, y on track 2, x on track 4.
	wantGenres := []GenreCount{{"indie", 4}, {"rock", 2}}
	if sprint(dna.TopGenres) != sprint(wantGenres) {
		t.Errorf("TopGenres = %v, want %v", dna.TopGenres, wantGenres)
	}
}

func TestAnalyzePlaylist_caps(t *testing.T) {
	var tracks []catalog.Track
	genres := []string{}
	for i := 0; i < 12; i++ {
		genres = append(genres, string(rune('a'+i)))
	}
	for i := 0; i < 12; i++ {
		tracks = append(tracks, track(string(rune('a'+i)), 50, "2010", "solo"))
	}
	dna, _ := AnalyzePlaylist(tracks, map[string]catalog.Artist{"solo": {ID: "solo", Genres: genres}})
	if len(dna.TopAlbums) != topAlbumCount {
		t.Errorf("Expected %d albums, got %d", topAlbumCount, len(dna.TopAlbums))
	}
	if len(dna.TopGenres) != topGenreCount {
		t.Errorf("Expected %d genres, got %d", topGenreCount, len(dna.TopGenres))
	}
	if dna.TopGenres[0].Genre != "a" {
		t.Errorf("Expected ties to keep encounter order, got %v", dna.TopGenres)
	}
}
