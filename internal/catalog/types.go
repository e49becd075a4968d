// Package catalog turns Spotify Web API payloads into the canonical,
// immutable entities every analysis reads from.
package catalog

import (
	"strconv"
	"strings"
	"time"
)

type Image struct {
	URL    string `json:"url" yaml:"url"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
}

type ArtistRef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Album images are ordered largest first.
type Album struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	ReleaseDate string  `yaml:"release_date,omitempty"`
	Images      []Image `yaml:"-"`
	TotalTracks int     `yaml:"total_tracks,omitempty"`
}

// ReleaseYear returns the leading four digit year of the release date.
func (a Album) ReleaseYear() (int, bool) {
	if len(a.ReleaseDate) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(a.ReleaseDate[:4])
	if err != nil || year <= 0 {
		return 0, false
	}
	return year, true
}

// CoverURL is the url of the largest cover image, or "" if there is none.
func (a Album) CoverURL() string {
	if len(a.Images) == 0 {
		return ""
	}
	return a.Images[0].URL
}

type Track struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	Artists    []ArtistRef `yaml:"artists"`
	Album      Album       `yaml:"album"`
	DurationMs int         `yaml:"duration_ms"`

	// Popularity is only meaningful when HasPopularity is set.
	Popularity    int  `yaml:"popularity"`
	HasPopularity bool `yaml:"-"`
}

// PrimaryArtist is the first credited artist.
func (t Track) PrimaryArtist() (ArtistRef, bool) {
	if len(t.Artists) == 0 {
		return ArtistRef{}, false
	}
	return t.Artists[0], true
}

// ArtistNames joins the credited artist names for display.
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

type Artist struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Genres      []string `yaml:"genres"`
	ExternalURL string   `yaml:"external_url,omitempty"`
}

type PlayEvent struct {
	Track    Track     `yaml:"track"`
	PlayedAt time.Time `yaml:"played_at"`
}

type Playlist struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Images []Image `yaml:"-"`

	// TrackCount is the size reported by the playlist listing, not the
	// number of tracks fetched.
	TrackCount int `yaml:"track_count"`
}

// Profile is the account the data belongs to, as reported by the me endpoint.
type Profile struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
	Email       string `yaml:"email,omitempty"`
	Country     string `yaml:"country,omitempty"`
	AvatarURL   string `yaml:"avatar_url,omitempty"`
	ProfileURL  string `yaml:"profile_url,omitempty"`
}

// Snapshot is everything fetched for one user. Analyses take it by value and
// never modify it.
type Snapshot struct {
	// Profile is empty until the account has been fetched.
	Profile Profile

	TopTracks   []Track
	TopArtists  []Artist
	RecentPlays []PlayEvent
	Playlists   []Playlist

	// PlaylistTracks is keyed by playlist id.
	PlaylistTracks map[string][]Track

	// Artists holds artist details, keyed by artist id.
	Artists map[string]Artist
}

// Playlist looks a playlist up by id, falling back to a case-insensitive name
// match.
func (s Snapshot) Playlist(idOrName string) (Playlist, bool) {
	for _, p := range s.Playlists {
		if p.ID == idOrName {
			return p, true
		}
	}
	for _, p := range s.Playlists {
		if strings.EqualFold(p.Name, idOrName) {
			return p, true
		}
	}
	return Playlist{}, false
}
