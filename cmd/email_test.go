package cmd

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

type fakeAnalyser struct {
	analysis Analysis
	err      error
}

func (f fakeAnalyser) GetResults(req AnalysisRequest) (Analysis, error) {
	return f.analysis, f.err
}

func (f fakeAnalyser) GetName() string {
	return "Fake <analysis>"
}

func TestGenerateEmailContent(t *testing.T) {
	req := request(testSnapshot())
	req.Start = time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	actions := []Analyser{
		fakeAnalyser{analysis: Analysis{
			results: [][]string{{"Track", "Plays"}, {"<b>loud</b>", "3"}},
			summary: "line one\nline two",
		}},
		fakeAnalyser{analysis: Analysis{BodyOverride: "<table id=\"heatmap\"></table>"}},
	}

	subject, body, err := generateEmailContent(req, actions)
	if err != nil {
		t.Fatalf("generateEmailContent: %v", err)
	}
	if subject != "Listening report for testuser (since 2024-05-01)" {
		t.Errorf("Unexpected subject %q", subject)
	}
	for _, want := range []string{
		"<h2>Fake &lt;analysis&gt; for testuser:</h2>",
		"<th>Track</th><th>Plays</th>",
		"<td>&lt;b&gt;loud&lt;/b&gt;</td>",
		"line one<br>\nline two",
		`<table id="heatmap"></table>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q, got:\n%s", want, body)
		}
	}
}

func TestGenerateEmailContent_error(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := generateEmailContent(request(testSnapshot()), []Analyser{fakeAnalyser{err: boom}})
	if !errors.Is(err, boom) {
		t.Errorf("Expected the analysis error to be returned, got %v", err)
	}
}

func TestSplitDateArgs(t *testing.T) {
	tests := []struct {
		args      []string
		wantRest  []string
		wantDates []string
	}{
		{[]string{"stats", "timeline"}, []string{"stats", "timeline"}, nil},
		{[]string{"stats", "30d"}, []string{"stats"}, []string{"30d"}},
		{[]string{"rituals", "2024-01", "2024-03"}, []string{"rituals"}, []string{"2024-01", "2024-03"}},
		{[]string{"2023", "2024-01", "2024-03"}, []string{"2023"}, []string{"2024-01", "2024-03"}},
	}
	for _, tt := range tests {
		rest, dates := splitDateArgs(tt.args)
		if !reflect.DeepEqual(rest, tt.wantRest) || !reflect.DeepEqual(dates, tt.wantDates) {
			t.Errorf("splitDateArgs(%v) = %v, %v, want %v, %v", tt.args, rest, dates, tt.wantRest, tt.wantDates)
		}
	}
}

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"", "playlist=p1,n=5"}, 2)
	if err != nil {
		t.Fatalf("parseParams: %v", err)
	}
	want := []map[string]string{{}, {"playlist": "p1", "n": "5"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseParams = %v, want %v", got, want)
	}

	if _, err := parseParams([]string{"n=5"}, 2); err == nil {
		t.Errorf("Expected an error when the counts differ")
	}

	got, err = parseParams(nil, 3)
	if err != nil || len(got) != 3 {
		t.Errorf("Expected 3 empty entries, got %v, %v", got, err)
	}
}

func TestGetActionFromName(t *testing.T) {
	for _, name := range []string{"profile", "stats", "moodscape", "rituals", "timeline", "playlists", "top-artists", "playlist-dna", "new-artists"} {
		if _, err := getActionFromName(name); err != nil {
			t.Errorf("getActionFromName(%q): %v", name, err)
		}
	}
	if _, err := getActionFromName("forgotten"); err == nil {
		t.Errorf("Expected an error for an unknown analysis")
	}
}

func TestSendEmail_dryRun(t *testing.T) {
	dbPath := seedStore(t)
	config := SendEmailConfig{
		DbPath: dbPath,
		User:   testUser,
		To:     "to@example.com",
		Types:  []string{"stats", "playlist-dna"},
		Params: []map[string]string{nil, {"playlist": "Road Trip"}},
		DryRun: true,
	}
	if err := sendEmail(config); err != nil {
		t.Errorf("sendEmail: %v", err)
	}

	config.Params = []map[string]string{nil, {"n": "many"}}
	if err := sendEmail(config); err == nil {
		t.Errorf("Expected a configuration error")
	}

	config.DbPath = filepath.Join(t.TempDir(), "empty.db")
	config.Types = []string{"nope"}
	if err := sendEmail(config); err == nil {
		t.Errorf("Expected an error for an unknown analysis")
	}
}
