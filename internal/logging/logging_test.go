package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: "debug", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.WarnLevel) })

	log.Debug().Str("resource", "me/top/tracks").Msg("fetching")

	out := buf.String()
	if !strings.Contains(out, `"level":"debug"`) || !strings.Contains(out, `"resource":"me/top/tracks"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestInitFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: "error", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.WarnLevel) })

	log.Warn().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("warn logged at error level: %s", buf.String())
	}
}

func TestInitRejectsBadConfig(t *testing.T) {
	if err := Init(Config{Level: "loud"}); err == nil {
		t.Error("Init accepted unknown level")
	}
	if err := Init(Config{Format: "xml"}); err == nil {
		t.Error("Init accepted unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"", zerolog.WarnLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.input)
		if err != nil {
			t.Errorf("parseLevel(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
