package analysis

import (
	"fmt"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

// Report is the top-level structure for the listening report.
type Report struct {
	Metadata ProfileMetadata `yaml:"profile_metadata"`
	Stats    *Stats          `yaml:"top_tracks,omitempty"`
	Mood     *Mood           `yaml:"moodscape,omitempty"`
	Rituals  *RitualSummary  `yaml:"rituals,omitempty"`
	Timeline []TimelineDay   `yaml:"timeline,omitempty"`

	// Playlists holds one analysis per fetched playlist, in listing order.
	Playlists []PlaylistDNA `yaml:"playlists,omitempty"`
}

type ProfileMetadata struct {
	GeneratedDate   string `yaml:"generated_date"`
	User            string `yaml:"user,omitempty"`
	DisplayName     string `yaml:"display_name,omitempty"`
	Country         string `yaml:"country,omitempty"`
	TopTrackCount   int    `yaml:"top_track_count"`
	TopArtistCount  int    `yaml:"top_artist_count"`
	RecentPlayCount int    `yaml:"recent_play_count"`
	PlaylistCount   int    `yaml:"playlist_count"`

	TopArtist    string    `yaml:"top_artist,omitempty"`
	LastPlayed   *TrackRef `yaml:"last_played,omitempty"`
	LastPlayedAt string    `yaml:"last_played_at,omitempty"`
}

// TrackRef is the flattened view of a track used in results.
type TrackRef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Artists     string `yaml:"artists"`
	Album       string `yaml:"album,omitempty"`
	ReleaseYear int    `yaml:"release_year,omitempty"`
	Popularity  int    `yaml:"popularity,omitempty"`
	DurationMs  int    `yaml:"duration_ms"`
}

func refOf(t catalog.Track) *TrackRef {
	year, _ := t.Album.ReleaseYear()
	return &TrackRef{
		ID:          t.ID,
		Name:        t.Name,
		Artists:     t.ArtistNames(),
		Album:       t.Album.Name,
		ReleaseYear: year,
		Popularity:  t.Popularity,
		DurationMs:  t.DurationMs,
	}
}

func (r TrackRef) String() string {
	if r.Artists == "" {
		return r.Name
	}
	return fmt.Sprintf("%s - %s", r.Artists, r.Name)
}

// UnknownDecade buckets tracks whose release year could not be determined.
const UnknownDecade = -1

type DecadeCount struct {
	Decade int `yaml:"decade"`
	Count  int `yaml:"count"`
}

// DecadeLabel formats a decade as "1970s", or "Unknown".
func DecadeLabel(decade int) string {
	if decade == UnknownDecade {
		return "Unknown"
	}
	return fmt.Sprintf("%ds", decade)
}

func decadeOf(year int) int {
	return year / 10 * 10
}
