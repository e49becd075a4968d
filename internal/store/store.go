// Package store caches fetched Spotify entities and the user's token in
// SQLite. Only raw entities are stored; derived results are always recomputed.
package store

import (
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ademuri/spotify-insights/internal/migration"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	exists, err := dbExists(db)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, err := db.Exec(migration.Create); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

func dbExists(db *sql.DB) (bool, error) {
	// The User table stands in for the whole schema.
	row := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'User'")
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking db existence: %w", err)
	}
	return true, nil
}

// ensureSchema adds columns introduced after a database was first created.
func ensureSchema(db *sql.DB) error {
	userColumns := []string{"scope", "spotify_id", "display_name", "email", "country", "avatar_url", "profile_url"}
	for _, column := range userColumns {
		if err := addColumnIfNotExists(db, "User", column, "TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
	}
	return nil
}

func addColumnIfNotExists(db *sql.DB, table, column, typeDef string) error {
	exists, err := columnExists(db, table, column)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if !exists {
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typeDef)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("adding column %s.%s: %w", table, column, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notNull, pk int
		var name, ctype string
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// JSON columns hold lists such as images and genres.

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fromJSON[T any](s string) (T, error) {
	var v T
	if s == "" {
		return v, nil
	}
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
