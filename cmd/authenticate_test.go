package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestExtractCode(t *testing.T) {
	const state = "abc123"
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "bare code", input: "  AQBcode\n", want: "AQBcode"},
		{name: "redirect url", input: "http://127.0.0.1:8888/callback?code=AQBcode&state=abc123", want: "AQBcode"},
		{name: "empty", input: "\n", wantErr: "no code"},
		{name: "denied", input: "http://127.0.0.1:8888/callback?error=access_denied&state=abc123", wantErr: "access_denied"},
		{name: "wrong state", input: "http://127.0.0.1:8888/callback?code=AQBcode&state=other", wantErr: "state mismatch"},
		{name: "no code", input: "http://127.0.0.1:8888/callback?state=abc123", wantErr: "no code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractCode(tt.input, state)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("extractCode(%q) error = %v, want %q", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractCode(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("extractCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAuthenticate_rejectsBadInput(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("user", testUser)
	viper.Set("client_id", "id")
	viper.Set("client_secret", "secret")

	dbPath := filepath.Join(t.TempDir(), "spotify.db")
	err := authenticate(dbPath, "", nil, strings.NewReader("http://127.0.0.1:8888/callback?code=x&state=forged\n"))
	if err == nil || !strings.Contains(err.Error(), "state mismatch") {
		t.Fatalf("Expected a state mismatch, got %v", err)
	}
}
