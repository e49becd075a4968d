package catalog

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// The decoders drop records without an id and fill absent optional fields
// with empty values. They only fail on malformed JSON.

// DecodeTracks decodes a paging object of tracks, as returned by
// me/top/tracks.
func DecodeTracks(data []byte) ([]Track, error) {
	var p page[*wireTrack]
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding tracks: %w", err)
	}
	tracks := make([]Track, 0, len(p.Items))
	for _, wt := range p.Items {
		if t, ok := toTrack(wt); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// DecodeArtists decodes a paging object of artists, as returned by
// me/top/artists.
func DecodeArtists(data []byte) ([]Artist, error) {
	var p page[*wireArtist]
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding artists: %w", err)
	}
	return toArtists(p.Items), nil
}

// DecodeArtistDetails decodes the {"artists": [...]} body of the artists
// endpoint. Unknown ids come back as null and are skipped.
func DecodeArtistDetails(data []byte) ([]Artist, error) {
	var d wireArtistDetails
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding artist details: %w", err)
	}
	return toArtists(d.Artists), nil
}

// DecodePlayHistory decodes me/player/recently-played. Items whose played_at
// does not parse are dropped.
func DecodePlayHistory(data []byte) ([]PlayEvent, error) {
	var p page[*wirePlayHistory]
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding play history: %w", err)
	}
	events := make([]PlayEvent, 0, len(p.Items))
	for _, item := range p.Items {
		if item == nil {
			continue
		}
		t, ok := toTrack(item.Track)
		if !ok {
			continue
		}
		playedAt, err := time.Parse(time.RFC3339, item.PlayedAt)
		if err != nil {
			log.Debug().Str("track", t.ID).Str("played_at", item.PlayedAt).Msg("dropping play with unparseable timestamp")
			continue
		}
		events = append(events, PlayEvent{Track: t, PlayedAt: playedAt})
	}
	return events, nil
}

// DecodePlaylists decodes me/playlists.
func DecodePlaylists(data []byte) ([]Playlist, error) {
	var p page[*wirePlaylist]
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding playlists: %w", err)
	}
	playlists := make([]Playlist, 0, len(p.Items))
	for _, wp := range p.Items {
		if wp == nil || wp.ID == "" {
			continue
		}
		playlists = append(playlists, Playlist{
			ID:         wp.ID,
			Name:       wp.Name,
			Images:     toImages(wp.Images),
			TrackCount: wp.Tracks.Total,
		})
	}
	return playlists, nil
}

// DecodePlaylistTracks decodes playlists/{id}/tracks. Local files and removed
// tracks have no id and are dropped.
func DecodePlaylistTracks(data []byte) ([]Track, error) {
	var p page[*wirePlaylistTrack]
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding playlist tracks: %w", err)
	}
	tracks := make([]Track, 0, len(p.Items))
	for _, item := range p.Items {
		if item == nil {
			continue
		}
		if t, ok := toTrack(item.Track); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// DecodeProfile decodes the me endpoint. The display name falls back to the
// account id, which is always present.
func DecodeProfile(data []byte) (Profile, error) {
	var wp wireProfile
	if err := json.Unmarshal(data, &wp); err != nil {
		return Profile{}, fmt.Errorf("decoding profile: %w", err)
	}
	p := Profile{
		ID:          wp.ID,
		DisplayName: wp.DisplayName,
		Email:       wp.Email,
		Country:     wp.Country,
		ProfileURL:  wp.ExternalURLs.Spotify,
	}
	if p.DisplayName == "" {
		p.DisplayName = wp.ID
	}
	if images := toImages(wp.Images); len(images) > 0 {
		p.AvatarURL = images[0].URL
	}
	return p, nil
}

// HasNextPage reports whether a paging object links to a further page.
func HasNextPage(data []byte) bool {
	var p page[json.RawMessage]
	if err := json.Unmarshal(data, &p); err != nil {
		return false
	}
	return p.Next != nil && *p.Next != ""
}

func toTrack(wt *wireTrack) (Track, bool) {
	if wt == nil || wt.ID == "" {
		return Track{}, false
	}
	t := Track{
		ID:         wt.ID,
		Name:       wt.Name,
		DurationMs: wt.DurationMs,
		Artists:    make([]ArtistRef, 0, len(wt.Artists)),
	}
	for _, a := range wt.Artists {
		t.Artists = append(t.Artists, ArtistRef{ID: a.ID, Name: a.Name})
	}
	if wt.Album != nil {
		t.Album = Album{
			ID:          wt.Album.ID,
			Name:        wt.Album.Name,
			ReleaseDate: wt.Album.ReleaseDate,
			Images:      toImages(wt.Album.Images),
			TotalTracks: wt.Album.TotalTracks,
		}
	}
	if wt.Popularity != nil {
		t.Popularity = *wt.Popularity
		t.HasPopularity = true
	}
	return t, true
}

func toArtists(in []*wireArtist) []Artist {
	artists := make([]Artist, 0, len(in))
	for _, wa := range in {
		if wa == nil || wa.ID == "" {
			continue
		}
		genres := wa.Genres
		if genres == nil {
			genres = []string{}
		}
		artists = append(artists, Artist{
			ID:          wa.ID,
			Name:        wa.Name,
			Genres:      genres,
			ExternalURL: wa.ExternalURLs.Spotify,
		})
	}
	return artists
}

func toImages(in []wireImage) []Image {
	images := make([]Image, 0, len(in))
	for _, wi := range in {
		if wi.URL == "" {
			continue
		}
		images = append(images, Image{URL: wi.URL, Width: wi.Width, Height: wi.Height})
	}
	return images
}
