package analysis

import (
	"fmt"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

// track builds a test track. An empty date means no release year and a
// negative popularity means none is reported.
func track(id string, popularity int, date string, artistIDs ...string) catalog.Track {
	t := catalog.Track{
		ID:         id,
		Name:       "Track " + id,
		DurationMs: 180000,
		Album:      catalog.Album{ID: "album-" + id, Name: "Album " + id, ReleaseDate: date},
	}
	if popularity >= 0 {
		t.Popularity = popularity
		t.HasPopularity = true
	}
	for _, a := range artistIDs {
		t.Artists = append(t.Artists, catalog.ArtistRef{ID: a, Name: "Artist " + a})
	}
	return t
}

func years(ys ...int) []catalog.Track {
	var tracks []catalog.Track
	for i, y := range ys {
		tracks = append(tracks, track(fmt.Sprint(i), 50, fmt.Sprintf("%d-01-01", y), "a"))
	}
	return tracks
}

func sprint(v any) string {
	return fmt.Sprint(v)
}
