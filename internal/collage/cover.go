// Package collage arranges album covers on a freeform canvas and renders the
// arrangement to a PNG.
package collage

import "github.com/ademuri/spotify-insights/internal/catalog"

// MaxCovers is the number of preset slots, and so the most covers a collage
// holds.
const MaxCovers = len(presets)

type Cover struct {
	AlbumID    string `yaml:"album_id"`
	URL        string `yaml:"url"`
	AlbumName  string `yaml:"album"`
	ArtistName string `yaml:"artist"`
	TrackName  string `yaml:"track"`
}

// CoversFromTracks picks one cover per album, in track order, skipping albums
// without an image. At most MaxCovers are returned.
func CoversFromTracks(tracks []catalog.Track) []Cover {
	seen := make(map[string]bool)
	var covers []Cover
	for _, t := range tracks {
		if len(covers) == MaxCovers {
			break
		}
		url := t.Album.CoverURL()
		if url == "" || t.Album.ID == "" || seen[t.Album.ID] {
			continue
		}
		seen[t.Album.ID] = true
		artist, _ := t.PrimaryArtist()
		covers = append(covers, Cover{
			AlbumID:    t.Album.ID,
			URL:        url,
			AlbumName:  t.Album.Name,
			ArtistName: artist.Name,
			TrackName:  t.Name,
		})
	}
	return covers
}
