package analysis

import (
	"testing"
	"time"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

func TestGenerateReport(t *testing.T) {
	snap := catalog.Snapshot{
		TopTracks: years(1991, 1995, 2004),
		RecentPlays: []catalog.PlayEvent{
			{Track: track("r", 10, "2001", "a"), PlayedAt: time.Date(2024, 2, 2, 22, 0, 0, 0, time.UTC)},
		},
		Playlists: []catalog.Playlist{{ID: "p1", Name: "Morning"}, {ID: "p2", Name: "Not fetched"}},
		PlaylistTracks: map[string][]catalog.Track{
			"p1": years(1975, 1978, 1979),
		},
	}
	now := time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)

	report := GenerateReport(snap, "listener", time.UTC, now)

	if report.Metadata.GeneratedDate != "2024-02-03" || report.Metadata.PlaylistCount != 2 {
		t.Errorf("Unexpected metadata %+v", report.Metadata)
	}
	if report.Stats == nil || report.Stats.TopDecade != 1990 {
		t.Errorf("Unexpected stats %+v", report.Stats)
	}
	if report.Mood == nil || report.Rituals == nil || report.Rituals.Total != 1 {
		t.Errorf("Expected mood and rituals sections")
	}
	if len(report.Timeline) != 1 {
		t.Errorf("Expected one timeline day, got %d", len(report.Timeline))
	}
	if len(report.Playlists) != 1 || report.Playlists[0].Playlist != "Morning" || report.Playlists[0].Era != "70s" {
		t.Errorf("Unexpected playlists %+v", report.Playlists)
	}
}

func TestGenerateReport_empty(t *testing.T) {
	report := GenerateReport(catalog.Snapshot{}, "listener", time.UTC, time.Now())
	if report.Stats != nil || report.Mood != nil || report.Rituals != nil || report.Playlists != nil {
		t.Errorf("Expected empty sections to be omitted, got %+v", report)
	}
}

func TestGenerateReport_profile(t *testing.T) {
	older := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 2, 2, 22, 15, 0, 0, time.UTC)
	snap := catalog.Snapshot{
		Profile:    catalog.Profile{ID: "listener1", DisplayName: "Listener One", Country: "NZ"},
		TopArtists: []catalog.Artist{{ID: "x", Name: "Artist x"}, {ID: "y", Name: "Artist y"}},
		RecentPlays: []catalog.PlayEvent{
			{Track: track("old", 10, "2001", "a"), PlayedAt: older},
			{Track: track("new", 10, "2001", "a"), PlayedAt: newer},
		},
	}

	meta := GenerateReport(snap, "listener", time.UTC, newer).Metadata
	if meta.DisplayName != "Listener One" || meta.Country != "NZ" {
		t.Errorf("Unexpected profile fields %+v", meta)
	}
	if meta.TopArtist != "Artist x" {
		t.Errorf("TopArtist = %q, want Artist x", meta.TopArtist)
	}
	if meta.LastPlayed == nil || meta.LastPlayed.ID != "new" || meta.LastPlayedAt != "2024-02-02 22:15" {
		t.Errorf("Unexpected last played %+v at %q", meta.LastPlayed, meta.LastPlayedAt)
	}
}

func TestLastPlayed(t *testing.T) {
	if _, ok := LastPlayed(nil); ok {
		t.Errorf("Expected no last play for an empty history")
	}

	at := time.Date(2024, 2, 2, 22, 0, 0, 0, time.UTC)
	plays := []catalog.PlayEvent{
		{Track: track("1", 10, "", "a"), PlayedAt: at.Add(-time.Hour)},
		{Track: track("2", 10, "", "a"), PlayedAt: at},
		{Track: track("3", 10, "", "a"), PlayedAt: at},
	}
	last, ok := LastPlayed(plays)
	if !ok || last.Track.ID != "2" {
		t.Errorf("LastPlayed = %q, want the first of the tied plays", last.Track.ID)
	}
}
