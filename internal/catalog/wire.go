package catalog

// Wire shapes of the Spotify Web API. Every field is optional on the wire;
// mapping to the canonical types happens in decode.go.

type wireImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type wireExternalURLs struct {
	Spotify string `json:"spotify"`
}

type wireArtist struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Genres       []string         `json:"genres"`
	ExternalURLs wireExternalURLs `json:"external_urls"`
}

type wireAlbum struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ReleaseDate string      `json:"release_date"`
	Images      []wireImage `json:"images"`
	TotalTracks int         `json:"total_tracks"`
}

type wireTrack struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Artists    []wireArtist `json:"artists"`
	Album      *wireAlbum   `json:"album"`
	DurationMs int          `json:"duration_ms"`
	Popularity *int         `json:"popularity"`
}

type wirePlayHistory struct {
	Track    *wireTrack `json:"track"`
	PlayedAt string     `json:"played_at"`
}

type wirePlaylistTrack struct {
	Track *wireTrack `json:"track"`
}

type wirePlaylist struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Images []wireImage `json:"images"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type page[T any] struct {
	Items []T     `json:"items"`
	Next  *string `json:"next"`
	Total int     `json:"total"`
}

type wireArtistDetails struct {
	Artists []*wireArtist `json:"artists"`
}

type wireProfile struct {
	ID           string           `json:"id"`
	DisplayName  string           `json:"display_name"`
	Email        string           `json:"email"`
	Country      string           `json:"country"`
	Images       []wireImage      `json:"images"`
	ExternalURLs wireExternalURLs `json:"external_urls"`
}
