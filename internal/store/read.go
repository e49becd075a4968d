package store

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

// GetToken returns the stored token for user, or ErrNoToken.
func (s *Store) GetToken(user string) (*oauth2.Token, error) {
	row := s.db.QueryRow(`
		SELECT access_token, refresh_token, token_type, token_expiry, scope
		FROM User WHERE name = ? AND access_token <> ''`, user)
	var tok oauth2.Token
	var expiry sql.NullTime
	var scope string
	err := row.Scan(&tok.AccessToken, &tok.RefreshToken, &tok.TokenType, &expiry, &scope)
	if err == sql.ErrNoRows {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}
	if expiry.Valid {
		tok.Expiry = expiry.Time
	}
	return tok.WithExtra(map[string]any{"scope": scope}), nil
}

func (s *Store) GetLastUpdated(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT last_updated FROM User WHERE name = ?", user)
	var t sql.NullTime
	err := row.Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting last updated: %w", err)
	}
	return t.Time, nil
}

// GetProfile returns the stored account details. It is empty if the user or
// their profile has not been fetched.
func (s *Store) GetProfile(user string) (catalog.Profile, error) {
	row := s.db.QueryRow(`
		SELECT spotify_id, display_name, email, country, avatar_url, profile_url
		FROM User WHERE name = ?`, user)
	var p catalog.Profile
	err := row.Scan(&p.ID, &p.DisplayName, &p.Email, &p.Country, &p.AvatarURL, &p.ProfileURL)
	if err == sql.ErrNoRows {
		return catalog.Profile{}, nil
	}
	if err != nil {
		return catalog.Profile{}, fmt.Errorf("getting profile for %q: %w", user, err)
	}
	return p, nil
}

// GetLatestListen returns the time of the newest stored play, or the zero time.
func (s *Store) GetLatestListen(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT MAX(played_at) FROM Listen WHERE user = ?", user)
	var uts sql.NullInt64
	if err := row.Scan(&uts); err != nil {
		return time.Time{}, fmt.Errorf("scanning latest listen: %w", err)
	}
	if !uts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(uts.Int64, 0), nil
}

// ArtistsNeedingDetails lists artists whose genres were never fetched or were
// fetched longer than interval ago.
func (s *Store) ArtistsNeedingDetails(interval time.Duration) ([]string, error) {
	threshold := time.Now().Add(-interval)
	rows, err := s.db.Query(`
		SELECT id FROM Artist
		WHERE details_updated IS NULL OR details_updated < ?
		ORDER BY id`, threshold)
	if err != nil {
		return nil, fmt.Errorf("querying artists for details: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListensInRange returns plays in [start, end), newest first.
func (s *Store) ListensInRange(user string, start, end time.Time) ([]catalog.PlayEvent, error) {
	query := `
		SELECT ` + trackColumns + `, l.played_at
		FROM Listen l
		JOIN Track t ON t.id = l.track
		LEFT JOIN Album al ON al.id = t.album
		WHERE l.user = ?
		AND l.played_at >= ?
		AND l.played_at < ?
		ORDER BY l.played_at DESC`

	rows, err := s.db.Query(query, user, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying listens: %w", err)
	}
	defer rows.Close()

	var events []catalog.PlayEvent
	for rows.Next() {
		var uts int64
		t, err := scanTrack(rows, &uts)
		if err != nil {
			return nil, err
		}
		events = append(events, catalog.PlayEvent{Track: t, PlayedAt: time.Unix(uts, 0)})
	}
	return events, rows.Err()
}

// AllListens returns every stored play for user, newest first.
func (s *Store) AllListens(user string) ([]catalog.PlayEvent, error) {
	return s.ListensInRange(user, time.Unix(0, 0), time.Unix(1<<62, 0))
}

const trackColumns = `t.id, t.name, t.duration_ms, t.popularity, t.artists,
	COALESCE(al.id, ''), COALESCE(al.name, ''), COALESCE(al.release_date, ''),
	COALESCE(al.images, '[]'), COALESCE(al.total_tracks, 0)`

type scanner interface {
	Scan(dest ...any) error
}

// scanTrack reads trackColumns followed by any extra destinations.
func scanTrack(row scanner, extra ...any) (catalog.Track, error) {
	var t catalog.Track
	var popularity sql.NullInt64
	var artists, images string
	dest := []any{
		&t.ID, &t.Name, &t.DurationMs, &popularity, &artists,
		&t.Album.ID, &t.Album.Name, &t.Album.ReleaseDate, &images, &t.Album.TotalTracks,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return catalog.Track{}, fmt.Errorf("scanning track: %w", err)
	}

	var err error
	if t.Artists, err = fromJSON[[]catalog.ArtistRef](artists); err != nil {
		return catalog.Track{}, fmt.Errorf("decoding artists of track %q: %w", t.ID, err)
	}
	if t.Album.Images, err = fromJSON[[]catalog.Image](images); err != nil {
		return catalog.Track{}, fmt.Errorf("decoding images of album %q: %w", t.Album.ID, err)
	}
	if popularity.Valid {
		t.Popularity = int(popularity.Int64)
		t.HasPopularity = true
	}
	return t, nil
}

func scanArtist(row scanner) (catalog.Artist, error) {
	var a catalog.Artist
	var genres string
	if err := row.Scan(&a.ID, &a.Name, &genres, &a.ExternalURL); err != nil {
		return catalog.Artist{}, fmt.Errorf("scanning artist: %w", err)
	}
	g, err := fromJSON[[]string](genres)
	if err != nil {
		return catalog.Artist{}, fmt.Errorf("decoding genres of artist %q: %w", a.ID, err)
	}
	a.Genres = g
	if a.Genres == nil {
		a.Genres = []string{}
	}
	return a, nil
}
