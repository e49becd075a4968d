package analysis

import (
	"sort"
	"time"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

const timelineDays = 10

type TimelineDay struct {
	Date   string      `yaml:"date"`
	Tracks []*TrackRef `yaml:"tracks"`
}

// BuildTimeline groups plays by calendar day in loc, newest day first, and
// keeps the most recent ten days. Plays within a day keep their input order.
func BuildTimeline(events []catalog.PlayEvent, loc *time.Location) []TimelineDay {
	if loc == nil {
		loc = time.Local
	}
	type day struct {
		start  time.Time
		tracks []*TrackRef
	}
	byDate := make(map[string]*day)
	for _, e := range events {
		at := e.PlayedAt.In(loc)
		key := at.Format(time.DateOnly)
		d, ok := byDate[key]
		if !ok {
			d = &day{start: time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, loc)}
			byDate[key] = d
		}
		d.tracks = append(d.tracks, refOf(e.Track))
	}

	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return byDate[keys[i]].start.After(byDate[keys[j]].start)
	})
	if len(keys) > timelineDays {
		keys = keys[:timelineDays]
	}

	days := make([]TimelineDay, 0, len(keys))
	for _, k := range keys {
		days = append(days, TimelineDay{Date: k, Tracks: byDate[k].tracks})
	}
	return days
}
