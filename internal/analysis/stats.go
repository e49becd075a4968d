package analysis

import (
	"math"
	"strconv"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

// Stats summarizes a ranked track list such as the user's top tracks.
type Stats struct {
	TotalTracks int `yaml:"total_tracks"`

	// AveragePopularity only covers tracks that report a popularity;
	// MostPopular and LeastPopular are nil when none do.
	AveragePopularity int       `yaml:"average_popularity"`
	MostPopular       *TrackRef `yaml:"most_popular,omitempty"`
	LeastPopular      *TrackRef `yaml:"least_popular,omitempty"`

	// OldestTrack and NewestTrack are nil when no track has a release year.
	OldestTrack *TrackRef `yaml:"oldest_track,omitempty"`
	NewestTrack *TrackRef `yaml:"newest_track,omitempty"`

	// Decades is in first-seen order and sums to TotalTracks.
	Decades   []DecadeCount `yaml:"decades"`
	TopDecade int           `yaml:"top_decade"`

	// Diversity only looks at each track's first credited artist.
	UniqueArtists   int `yaml:"unique_artists"`
	ArtistDiversity int `yaml:"artist_diversity"`
}

// Summarize computes Stats over tracks. It returns false when there are no
// tracks, in which case there is nothing to show.
func Summarize(tracks []catalog.Track) (Stats, bool) {
	if len(tracks) == 0 {
		return Stats{}, false
	}

	stats := Stats{TotalTracks: len(tracks), TopDecade: UnknownDecade}

	pop := summarizePopularity(tracks)
	stats.AveragePopularity = pop.average
	stats.MostPopular = pop.most
	stats.LeastPopular = pop.least

	var oldestYear, newestYear int
	decades := newCounter[int]()
	top := newLeader()
	for _, t := range tracks {
		year, ok := t.Album.ReleaseYear()
		if !ok {
			addDecade(decades, UnknownDecade)
			continue
		}
		if stats.OldestTrack == nil || year < oldestYear {
			stats.OldestTrack, oldestYear = refOf(t), year
		}
		if stats.NewestTrack == nil || year > newestYear {
			stats.NewestTrack, newestYear = refOf(t), year
		}
		addDecade(decades, decadeOf(year))
		top.add(decadeOf(year))
	}
	for _, e := range decades.entries {
		stats.Decades = append(stats.Decades, DecadeCount{Decade: e.Value, Count: e.Count})
	}
	if decade, _, ok := top.result(); ok {
		stats.TopDecade = decade
	}

	primaries := make(map[string]bool)
	for _, t := range tracks {
		if key, ok := primaryArtistKey(t); ok {
			primaries[key] = true
		}
	}
	stats.UniqueArtists = len(primaries)
	stats.ArtistDiversity = percent(len(primaries), len(tracks))

	return stats, true
}

type popularity struct {
	average int
	most    *TrackRef
	least   *TrackRef
}

// summarizePopularity skips tracks without a popularity. Ties keep the first
// occurrence.
func summarizePopularity(tracks []catalog.Track) popularity {
	var p popularity
	var sum, n, hi, lo int
	for _, t := range tracks {
		if !t.HasPopularity {
			continue
		}
		sum += t.Popularity
		n++
		if p.most == nil || t.Popularity > hi {
			p.most, hi = refOf(t), t.Popularity
		}
		if p.least == nil || t.Popularity < lo {
			p.least, lo = refOf(t), t.Popularity
		}
	}
	if n > 0 {
		p.average = roundDiv(sum, n)
	}
	return p
}

func primaryArtistKey(t catalog.Track) (string, bool) {
	a, ok := t.PrimaryArtist()
	if !ok {
		return "", false
	}
	return artistKey(a)
}

func artistKey(a catalog.ArtistRef) (string, bool) {
	if a.ID != "" {
		return a.ID, true
	}
	if a.Name != "" {
		return "name:" + a.Name, true
	}
	return "", false
}

func addDecade(c *counter[int], decade int) {
	c.add(strconv.Itoa(decade), func() int { return decade })
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

func roundDiv(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}
