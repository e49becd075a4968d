package analysis

import (
	"github.com/ademuri/spotify-insights/internal/catalog"
)

const (
	topAlbumCount = 5
	topGenreCount = 8
)

type PlaylistDNA struct {
	Playlist      string   `yaml:"playlist,omitempty"`
	TotalTracks   int      `yaml:"total_tracks"`
	TotalDuration Duration `yaml:"total_duration"`

	// AverageReleaseYear is 0 when no track has a release year, and Era is
	// then "Unknown".
	AverageReleaseYear int    `yaml:"average_release_year,omitempty"`
	Era                string `yaml:"era"`

	Artists       []ArtistCount `yaml:"artists"`
	UniqueArtists int           `yaml:"unique_artists"`
	TopAlbums     []AlbumCount  `yaml:"top_albums"`
	TopGenres     []GenreCount  `yaml:"top_genres"`

	AveragePopularity int       `yaml:"average_popularity"`
	MostPopular       *TrackRef `yaml:"most_popular,omitempty"`
	LeastPopular      *TrackRef `yaml:"least_popular,omitempty"`

	// AverageTrackMinutes is the mean track length rounded to whole minutes.
	AverageTrackMinutes int       `yaml:"average_track_minutes"`
	LongestTrack        *TrackRef `yaml:"longest_track"`
	ShortestTrack       *TrackRef `yaml:"shortest_track"`
}

type Duration struct {
	Hours        int `yaml:"hours"`
	Minutes      int `yaml:"minutes"`
	TotalMinutes int `yaml:"total_minutes"`
}

type ArtistCount struct {
	ID          string   `yaml:"id,omitempty"`
	Name        string   `yaml:"name"`
	ExternalURL string   `yaml:"external_url,omitempty"`
	Count       int      `yaml:"count"`
	Tracks      []string `yaml:"tracks"`
}

type AlbumCount struct {
	ID    string `yaml:"id,omitempty"`
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

type GenreCount struct {
	Genre string `yaml:"genre"`
	Count int    `yaml:"count"`
}

var eraBoundaries = []struct {
	before int
	name   string
}{
	{1970, "Pre-70s"},
	{1980, "70s"},
	{1990, "80s"},
	{2000, "90s"},
	{2010, "2000s"},
	{2020, "2010s"},
}

// EraOf names the era a year falls in.
func EraOf(year int) string {
	for _, b := range eraBoundaries {
		if year < b.before {
			return b.name
		}
	}
	return "2020s"
}

// AnalyzePlaylist computes the playlist breakdown. artists supplies genres and
// profile links, keyed by artist id; it may be nil or incomplete. Unlike
// Summarize, every credited artist counts, not only the first.
func AnalyzePlaylist(tracks []catalog.Track, artists map[string]catalog.Artist) (PlaylistDNA, bool) {
	if len(tracks) == 0 {
		return PlaylistDNA{}, false
	}

	dna := PlaylistDNA{TotalTracks: len(tracks), Era: "Unknown"}

	var totalMs, yearSum, years int
	var longestMs, shortestMs int
	for _, t := range tracks {
		totalMs += t.DurationMs
		if year, ok := t.Album.ReleaseYear(); ok {
			yearSum += year
			years++
		}
		if dna.LongestTrack == nil || t.DurationMs > longestMs {
			dna.LongestTrack, longestMs = refOf(t), t.DurationMs
		}
		if dna.ShortestTrack == nil || t.DurationMs < shortestMs {
			dna.ShortestTrack, shortestMs = refOf(t), t.DurationMs
		}
	}
	totalMinutes := roundDiv(totalMs, 60000)
	dna.TotalDuration = Duration{
		Hours:        totalMinutes / 60,
		Minutes:      totalMinutes % 60,
		TotalMinutes: totalMinutes,
	}
	dna.AverageTrackMinutes = roundDiv(totalMs, len(tracks)*60000)
	if years > 0 {
		dna.AverageReleaseYear = roundDiv(yearSum, years)
		dna.Era = EraOf(dna.AverageReleaseYear)
	}

	pop := summarizePopularity(tracks)
	dna.AveragePopularity = pop.average
	dna.MostPopular = pop.most
	dna.LeastPopular = pop.least

	artistCounts := newCounter[*ArtistCount]()
	albumCounts := newCounter[AlbumCount]()
	genreCounts := newCounter[string]()
	for _, t := range tracks {
		for _, a := range t.Artists {
			key, ok := artistKey(a)
			if !ok {
				continue
			}
			e := artistCounts.add(key, func() *ArtistCount {
				return &ArtistCount{ID: a.ID, Name: a.Name, ExternalURL: artists[a.ID].ExternalURL}
			})
			e.Value.Tracks = append(e.Value.Tracks, t.Name)

			for _, genre := range artists[a.ID].Genres {
				genreCounts.add(genre, func() string { return genre })
			}
		}

		if key, ok := albumKey(t.Album); ok {
			albumCounts.add(key, func() AlbumCount {
				return AlbumCount{ID: t.Album.ID, Name: t.Album.Name}
			})
		}
	}

	for _, e := range artistCounts.ranked(0) {
		ac := *e.Value
		ac.Count = e.Count
		dna.Artists = append(dna.Artists, ac)
	}
	dna.UniqueArtists = len(dna.Artists)
	for _, e := range albumCounts.ranked(topAlbumCount) {
		ac := e.Value
		ac.Count = e.Count
		dna.TopAlbums = append(dna.TopAlbums, ac)
	}
	for _, e := range genreCounts.ranked(topGenreCount) {
		dna.TopGenres = append(dna.TopGenres, GenreCount{Genre: e.Value, Count: e.Count})
	}

	return dna, true
}

func albumKey(a catalog.Album) (string, bool) {
	if a.ID != "" {
		return a.ID, true
	}
	if a.Name != "" {
		return "name:" + a.Name, true
	}
	return "", false
}
