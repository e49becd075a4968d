package analysis

import (
	"time"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

const (
	DaysPerWeek = 7
	HoursPerDay = 24
)

// DayNames are indexed like time.Weekday.
var DayNames = [DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Grid counts plays by weekday (0 is Sunday) and hour of day.
type Grid struct {
	cells [DaysPerWeek][HoursPerDay]int
	max   int
	total int
}

// BuildHeatmap buckets play events by the weekday and hour they happened in
// loc. It returns false when there are no events; the grid is then all zero.
func BuildHeatmap(events []catalog.PlayEvent, loc *time.Location) (Grid, bool) {
	if loc == nil {
		loc = time.Local
	}
	var g Grid
	for _, e := range events {
		at := e.PlayedAt.In(loc)
		day, hour := int(at.Weekday()), at.Hour()
		g.cells[day][hour]++
		g.total++
		if g.cells[day][hour] > g.max {
			g.max = g.cells[day][hour]
		}
	}
	return g, len(events) > 0
}

func (g Grid) At(day time.Weekday, hour int) int {
	return g.cells[day][hour]
}

// Max is the largest cell value.
func (g Grid) Max() int {
	return g.max
}

// Total is the sum of all cells.
func (g Grid) Total() int {
	return g.total
}

// Intensity scales a cell onto [0.2, 0.9] relative to the busiest cell, for
// color ramps. Empty cells are 0.
func (g Grid) Intensity(day time.Weekday, hour int) float64 {
	v := g.cells[day][hour]
	if v == 0 || g.max == 0 {
		return 0
	}
	return 0.2 + 0.7*float64(v)/float64(g.max)
}

// Peak is the busiest cell, earliest in the week on ties.
func (g Grid) Peak() (day time.Weekday, hour int) {
	best := -1
	for d := range DaysPerWeek {
		for h := range HoursPerDay {
			if g.cells[d][h] > best {
				best, day, hour = g.cells[d][h], time.Weekday(d), h
			}
		}
	}
	return day, hour
}

// Rows copies the grid out as a 7x24 slice.
func (g Grid) Rows() [][]int {
	rows := make([][]int, DaysPerWeek)
	for d := range rows {
		rows[d] = append([]int(nil), g.cells[d][:]...)
	}
	return rows
}

// RitualSummary is the serializable form of a heatmap.
type RitualSummary struct {
	Cells    [][]int `yaml:"cells,flow"`
	Max      int     `yaml:"max"`
	Total    int     `yaml:"total"`
	PeakDay  string  `yaml:"peak_day"`
	PeakHour int     `yaml:"peak_hour"`
}

func (g Grid) Summary() RitualSummary {
	day, hour := g.Peak()
	return RitualSummary{
		Cells:    g.Rows(),
		Max:      g.max,
		Total:    g.total,
		PeakDay:  DayNames[day],
		PeakHour: hour,
	}
}
