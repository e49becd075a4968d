package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunReport(t *testing.T) {
	dbPath := seedStore(t)

	var out bytes.Buffer
	if err := runReport(&out, dbPath, testUser); err != nil {
		t.Fatalf("runReport: %v", err)
	}

	got := out.String()
	for _, want := range []string{"profile_metadata:", "user: testuser", "display_name: Listener One", "top_artist: Artist x", "top_track_count: 3", "recent_play_count: 3", "top_tracks:", "rituals:", "timeline:", "playlists:"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, got)
		}
	}
}

func TestRunReport_emptyDatabase(t *testing.T) {
	dbPath := seedStore(t)

	var out bytes.Buffer
	if err := runReport(&out, dbPath, "somebody-else"); err != nil {
		t.Fatalf("runReport: %v", err)
	}
	if !strings.Contains(out.String(), "top_track_count: 0") {
		t.Errorf("Expected an empty report, got:\n%s", out.String())
	}
}
