package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

// ErrNoToken means the user has not authorized access yet.
var ErrNoToken = errors.New("no token stored, run authenticate first")

// CreateUser ensures a user exists in the database.
func (s *Store) CreateUser(user string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO User (name) VALUES (?)", user)
	if err != nil {
		return fmt.Errorf("inserting user %q: %w", user, err)
	}
	return nil
}

func (s *Store) SetLastUpdated(user string, updated time.Time) error {
	_, err := s.db.Exec("UPDATE User SET last_updated = ? WHERE name = ?", updated, user)
	if err != nil {
		return fmt.Errorf("updating last_updated for %q: %w", user, err)
	}
	return nil
}

// SaveProfile stores the account details fetched for user.
func (s *Store) SaveProfile(user string, p catalog.Profile) error {
	if err := s.CreateUser(user); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		UPDATE User
		SET spotify_id = ?, display_name = ?, email = ?, country = ?, avatar_url = ?, profile_url = ?
		WHERE name = ?`,
		p.ID, p.DisplayName, p.Email, p.Country, p.AvatarURL, p.ProfileURL, user)
	if err != nil {
		return fmt.Errorf("saving profile for %q: %w", user, err)
	}
	return nil
}

// SaveToken stores tok for user, creating the user if needed. A nil token
// clears the stored one.
func (s *Store) SaveToken(user string, tok *oauth2.Token) error {
	if err := s.CreateUser(user); err != nil {
		return err
	}
	if tok == nil {
		return s.ClearToken(user)
	}
	scope, _ := tok.Extra("scope").(string)
	var expiry sql.NullTime
	if !tok.Expiry.IsZero() {
		expiry = sql.NullTime{Time: tok.Expiry, Valid: true}
	}
	_, err := s.db.Exec(`
		UPDATE User
		SET access_token = ?, refresh_token = ?, token_type = ?, token_expiry = ?, scope = ?
		WHERE name = ?`,
		tok.AccessToken, tok.RefreshToken, tok.TokenType, expiry, scope, user)
	if err != nil {
		return fmt.Errorf("saving token for %q: %w", user, err)
	}
	return nil
}

func (s *Store) ClearToken(user string) error {
	_, err := s.db.Exec(`
		UPDATE User
		SET access_token = '', refresh_token = '', token_type = '', token_expiry = NULL, scope = ''
		WHERE name = ?`, user)
	if err != nil {
		return fmt.Errorf("clearing token for %q: %w", user, err)
	}
	return nil
}

// AddListens records play events. Events already stored are ignored.
func (s *Store) AddListens(user string, events []catalog.PlayEvent) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, e := range events {
		if err := upsertTrack(tx, e.Track); err != nil {
			return 0, err
		}
		res, err := tx.Exec("INSERT OR IGNORE INTO Listen (user, track, played_at) VALUES (?, ?, ?)",
			user, e.Track.ID, e.PlayedAt.Unix())
		if err != nil {
			return 0, fmt.Errorf("inserting listen: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return added, nil
}

// ReplacePlaylists stores the user's playlists in listing order. Tracks of
// playlists that are no longer listed are dropped.
func (s *Store) ReplacePlaylists(user string, playlists []catalog.Playlist) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM PlaylistTrack WHERE playlist IN (SELECT id FROM Playlist WHERE user = ?)", user)
	if err != nil {
		return fmt.Errorf("clearing playlist tracks: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM Playlist WHERE user = ?", user); err != nil {
		return fmt.Errorf("clearing playlists: %w", err)
	}

	for i, p := range playlists {
		images, err := toJSON(p.Images)
		if err != nil {
			return fmt.Errorf("encoding images for playlist %q: %w", p.ID, err)
		}
		_, err = tx.Exec(`
			INSERT OR REPLACE INTO Playlist (id, user, position, name, images, track_count)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, user, i, p.Name, images, p.TrackCount)
		if err != nil {
			return fmt.Errorf("inserting playlist %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplacePlaylistTracks stores a playlist's tracks in order.
func (s *Store) ReplacePlaylistTracks(playlistID string, tracks []catalog.Track) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM PlaylistTrack WHERE playlist = ?", playlistID); err != nil {
		return fmt.Errorf("clearing playlist %q: %w", playlistID, err)
	}
	for i, t := range tracks {
		if err := upsertTrack(tx, t); err != nil {
			return err
		}
		_, err := tx.Exec("INSERT INTO PlaylistTrack (playlist, position, track) VALUES (?, ?, ?)", playlistID, i, t.ID)
		if err != nil {
			return fmt.Errorf("inserting track %q into playlist %q: %w", t.ID, playlistID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SaveArtistDetails stores full artist records and marks them fresh.
func (s *Store) SaveArtistDetails(artists []catalog.Artist) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, a := range artists {
		if err := upsertArtist(tx, a, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Internal helper functions (private, taking *sql.Tx)

func upsertArtist(tx *sql.Tx, a catalog.Artist, updated time.Time) error {
	genres, err := toJSON(a.Genres)
	if err != nil {
		return fmt.Errorf("encoding genres for artist %q: %w", a.ID, err)
	}
	if a.Genres == nil {
		genres = "[]"
	}
	_, err = tx.Exec(`
		INSERT INTO Artist (id, name, genres, external_url, details_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			genres = excluded.genres,
			external_url = excluded.external_url,
			details_updated = excluded.details_updated`,
		a.ID, a.Name, genres, a.ExternalURL, updated)
	if err != nil {
		return fmt.Errorf("saving artist %q: %w", a.ID, err)
	}
	return nil
}

func upsertArtistRef(tx *sql.Tx, a catalog.ArtistRef) error {
	if a.ID == "" {
		return nil
	}
	_, err := tx.Exec(`
		INSERT INTO Artist (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name WHERE Artist.name = ''`,
		a.ID, a.Name)
	if err != nil {
		return fmt.Errorf("inserting artist %q: %w", a.ID, err)
	}
	return nil
}

func upsertAlbum(tx *sql.Tx, a catalog.Album) error {
	if a.ID == "" {
		return nil
	}
	images, err := toJSON(a.Images)
	if err != nil {
		return fmt.Errorf("encoding images for album %q: %w", a.ID, err)
	}
	_, err = tx.Exec(`
		INSERT INTO Album (id, name, release_date, images, total_tracks)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			release_date = excluded.release_date,
			images = excluded.images,
			total_tracks = excluded.total_tracks`,
		a.ID, a.Name, a.ReleaseDate, images, a.TotalTracks)
	if err != nil {
		return fmt.Errorf("saving album %q: %w", a.ID, err)
	}
	return nil
}

func upsertTrack(tx *sql.Tx, t catalog.Track) error {
	if err := upsertAlbum(tx, t.Album); err != nil {
		return err
	}
	for _, a := range t.Artists {
		if err := upsertArtistRef(tx, a); err != nil {
			return err
		}
	}

	artists, err := toJSON(t.Artists)
	if err != nil {
		return fmt.Errorf("encoding artists for track %q: %w", t.ID, err)
	}
	var album sql.NullString
	if t.Album.ID != "" {
		album = sql.NullString{String: t.Album.ID, Valid: true}
	}
	popularity := sql.NullInt64{Int64: int64(t.Popularity), Valid: t.HasPopularity}

	_, err = tx.Exec(`
		INSERT INTO Track (id, name, album, duration_ms, popularity, artists)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			album = COALESCE(excluded.album, Track.album),
			duration_ms = excluded.duration_ms,
			popularity = COALESCE(excluded.popularity, Track.popularity),
			artists = excluded.artists`,
		t.ID, t.Name, album, t.DurationMs, popularity, artists)
	if err != nil {
		return fmt.Errorf("saving track %q: %w", t.ID, err)
	}
	return nil
}
