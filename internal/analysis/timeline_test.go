package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

func TestBuildTimeline(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var events []catalog.PlayEvent
	for day := 0; day < 12; day++ {
		for i := 0; i < 2; i++ {
			events = append(events, catalog.PlayEvent{
				Track:    catalog.Track{ID: fmt.Sprintf("%d-%d", day, i), Name: fmt.Sprintf("%d-%d", day, i)},
				PlayedAt: base.AddDate(0, 0, day).Add(time.Duration(i) * time.Hour),
			})
		}
	}

	days := BuildTimeline(events, time.UTC)
	if len(days) != timelineDays {
		t.Fatalf("Expected %d days, got %d", timelineDays, len(days))
	}
	if days[0].Date != "2024-05-12" || days[9].Date != "2024-05-03" {
		t.Errorf("Unexpected range %s..%s", days[0].Date, days[9].Date)
	}
	if days[0].Tracks[0].ID != "11-0" || days[0].Tracks[1].ID != "11-1" {
		t.Errorf("Expected input order within a day, got %v", days[0].Tracks)
	}
}

func TestBuildTimeline_localDay(t *testing.T) {
	la := time.FixedZone("PDT", -7*60*60)
	at := time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)
	days := BuildTimeline([]catalog.PlayEvent{{PlayedAt: at}}, la)
	if len(days) != 1 || days[0].Date != "2024-05-01" {
		t.Errorf("Expected the play on 2024-05-01 local time, got %+v", days)
	}
}
