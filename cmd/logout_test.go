package cmd

import (
	"errors"
	"testing"

	"github.com/ademuri/spotify-insights/internal/store"
)

func TestLogout(t *testing.T) {
	dbPath := seedStore(t)
	seedToken(t, dbPath)

	if err := logout(dbPath, "TestUser"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer db.Close()
	if _, err := db.GetToken(testUser); !errors.Is(err, store.ErrNoToken) {
		t.Errorf("Expected the token to be cleared, got %v", err)
	}

	// Listening data survives.
	plays, err := db.AllListens(testUser)
	if err != nil {
		t.Fatalf("AllListens: %v", err)
	}
	if len(plays) != 3 {
		t.Errorf("Expected 3 plays to be kept, got %d", len(plays))
	}
}

func TestLogout_noToken(t *testing.T) {
	dbPath := seedStore(t)
	if err := logout(dbPath, testUser); err != nil {
		t.Errorf("Expected logging out without a token to succeed, got %v", err)
	}
}
