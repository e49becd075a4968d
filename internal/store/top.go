package store

import (
	"fmt"
	"time"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

// Time ranges accepted by the top-items endpoints.
const (
	ShortTerm  = "short_term"
	MediumTerm = "medium_term"
	LongTerm   = "long_term"
)

// ReplaceTopTracks stores the ranked top tracks of user for timeRange.
func (s *Store) ReplaceTopTracks(user, timeRange string, tracks []catalog.Track) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM TopTrack WHERE user = ? AND time_range = ?", user, timeRange); err != nil {
		return fmt.Errorf("clearing top tracks: %w", err)
	}
	for rank, t := range tracks {
		if err := upsertTrack(tx, t); err != nil {
			return err
		}
		_, err := tx.Exec("INSERT INTO TopTrack (user, time_range, rank, track) VALUES (?, ?, ?, ?)",
			user, timeRange, rank, t.ID)
		if err != nil {
			return fmt.Errorf("inserting top track %q: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceTopArtists stores the ranked top artists of user for timeRange. The
// listing carries full artist records, so their details are refreshed too.
func (s *Store) ReplaceTopArtists(user, timeRange string, artists []catalog.Artist) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM TopArtist WHERE user = ? AND time_range = ?", user, timeRange); err != nil {
		return fmt.Errorf("clearing top artists: %w", err)
	}
	now := time.Now()
	for rank, a := range artists {
		if err := upsertArtist(tx, a, now); err != nil {
			return err
		}
		_, err := tx.Exec("INSERT INTO TopArtist (user, time_range, rank, artist) VALUES (?, ?, ?, ?)",
			user, timeRange, rank, a.ID)
		if err != nil {
			return fmt.Errorf("inserting top artist %q: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Store) TopTracks(user, timeRange string) ([]catalog.Track, error) {
	rows, err := s.db.Query(`
		SELECT `+trackColumns+`
		FROM TopTrack tt
		JOIN Track t ON t.id = tt.track
		LEFT JOIN Album al ON al.id = t.album
		WHERE tt.user = ? AND tt.time_range = ?
		ORDER BY tt.rank`, user, timeRange)
	if err != nil {
		return nil, fmt.Errorf("querying top tracks: %w", err)
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

func (s *Store) TopArtists(user, timeRange string) ([]catalog.Artist, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.name, a.genres, a.external_url
		FROM TopArtist ta
		JOIN Artist a ON a.id = ta.artist
		WHERE ta.user = ? AND ta.time_range = ?
		ORDER BY ta.rank`, user, timeRange)
	if err != nil {
		return nil, fmt.Errorf("querying top artists: %w", err)
	}
	defer rows.Close()

	var artists []catalog.Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}
