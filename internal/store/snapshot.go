package store

import (
	"fmt"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

// Playlists returns the user's playlists in listing order.
func (s *Store) Playlists(user string) ([]catalog.Playlist, error) {
	rows, err := s.db.Query(`
		SELECT id, name, images, track_count
		FROM Playlist WHERE user = ?
		ORDER BY position`, user)
	if err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}
	defer rows.Close()

	var playlists []catalog.Playlist
	for rows.Next() {
		var p catalog.Playlist
		var images string
		if err := rows.Scan(&p.ID, &p.Name, &images, &p.TrackCount); err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		if p.Images, err = fromJSON[[]catalog.Image](images); err != nil {
			return nil, fmt.Errorf("decoding images of playlist %q: %w", p.ID, err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

func (s *Store) PlaylistTracks(playlistID string) ([]catalog.Track, error) {
	rows, err := s.db.Query(`
		SELECT `+trackColumns+`
		FROM PlaylistTrack pt
		JOIN Track t ON t.id = pt.track
		LEFT JOIN Album al ON al.id = t.album
		WHERE pt.playlist = ?
		ORDER BY pt.position`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("querying tracks of playlist %q: %w", playlistID, err)
	}
	defer rows.Close()

	var tracks []catalog.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// ArtistDetails returns every artist whose details were fetched, keyed by id.
func (s *Store) ArtistDetails() (map[string]catalog.Artist, error) {
	rows, err := s.db.Query(`
		SELECT id, name, genres, external_url
		FROM Artist WHERE details_updated IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("querying artist details: %w", err)
	}
	defer rows.Close()

	artists := make(map[string]catalog.Artist)
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists[a.ID] = a
	}
	return artists, rows.Err()
}

// Snapshot loads everything cached for user into a fresh snapshot. Top items
// come from timeRange; recent plays are all stored plays, newest first.
func (s *Store) Snapshot(user, timeRange string) (catalog.Snapshot, error) {
	var snap catalog.Snapshot
	var err error

	if snap.Profile, err = s.GetProfile(user); err != nil {
		return catalog.Snapshot{}, err
	}
	if snap.TopTracks, err = s.TopTracks(user, timeRange); err != nil {
		return catalog.Snapshot{}, err
	}
	if snap.TopArtists, err = s.TopArtists(user, timeRange); err != nil {
		return catalog.Snapshot{}, err
	}
	if snap.RecentPlays, err = s.AllListens(user); err != nil {
		return catalog.Snapshot{}, err
	}
	if snap.Playlists, err = s.Playlists(user); err != nil {
		return catalog.Snapshot{}, err
	}
	if snap.Artists, err = s.ArtistDetails(); err != nil {
		return catalog.Snapshot{}, err
	}

	snap.PlaylistTracks = make(map[string][]catalog.Track, len(snap.Playlists))
	for _, p := range snap.Playlists {
		tracks, err := s.PlaylistTracks(p.ID)
		if err != nil {
			return catalog.Snapshot{}, err
		}
		if len(tracks) > 0 {
			snap.PlaylistTracks[p.ID] = tracks
		}
	}
	return snap, nil
}
