/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ademuri/spotify-insights/internal/analysis"
)

var playlistDNANumber int
var playlistDNACmd = &cobra.Command{
	Use:   "playlist-dna <playlist id or name>",
	Short: "Breaks a playlist down by artist, album, genre and era",
	Long: `Uses the tracks fetched by update, which by default is the first 20 of each
playlist. Names are matched case-insensitively.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := &PlaylistDNAAnalyzer{Playlist: args[0], Config: AnalyserConfig{NumToReturn: playlistDNANumber}}
		err := runAnalyser(os.Stdout, a, nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(playlistDNACmd)

	playlistDNACmd.Flags().IntVarP(&playlistDNANumber, "number", "n", 10, "number of artists to list")
}

type PlaylistDNAAnalyzer struct {
	Playlist string
	Config   AnalyserConfig
}

func (p *PlaylistDNAAnalyzer) GetName() string {
	return "Playlist DNA: " + p.Playlist
}

func (p *PlaylistDNAAnalyzer) Configure(params map[string]string) error {
	if name, ok := params["playlist"]; ok {
		p.Playlist = name
	}
	if p.Playlist == "" {
		return fmt.Errorf("playlist-dna needs a playlist parameter")
	}
	return configureLimit(&p.Config, params)
}

func (p *PlaylistDNAAnalyzer) GetResults(req AnalysisRequest) (result Analysis, err error) {
	playlist, ok := req.Snapshot.Playlist(p.Playlist)
	if !ok {
		err = fmt.Errorf("no stored playlist matches %q", p.Playlist)
		return
	}
	dna, ok := analysis.AnalyzePlaylist(req.Snapshot.PlaylistTracks[playlist.ID], req.Snapshot.Artists)
	if !ok {
		result.summary = fmt.Sprintf("No tracks stored for %q - run update first.", playlist.Name)
		return
	}
	dna.Playlist = playlist.Name
	result.data = dna

	rows := [][]string{}
	for _, a := range dna.Artists {
		rows = append(rows, []string{a.Name, strconv.Itoa(a.Count), strings.Join(a.Tracks, ", ")})
	}
	result.results = append([][]string{{"Artist", "Tracks", "Titles"}}, limitRows(rows, p.Config.NumToReturn)...)

	var summary strings.Builder
	fmt.Fprintf(&summary, "%s: %d tracks, %dh %dm (%d min), about %d min per track\n",
		dna.Playlist, dna.TotalTracks, dna.TotalDuration.Hours, dna.TotalDuration.Minutes,
		dna.TotalDuration.TotalMinutes, dna.AverageTrackMinutes)
	if dna.AverageReleaseYear > 0 {
		fmt.Fprintf(&summary, "Era: %s (average release %d)\n", dna.Era, dna.AverageReleaseYear)
	} else {
		fmt.Fprintf(&summary, "Era: %s\n", dna.Era)
	}
	fmt.Fprintf(&summary, "Unique artists: %d\n", dna.UniqueArtists)
	fmt.Fprintf(&summary, "Average popularity: %d (most: %s, least: %s)\n",
		dna.AveragePopularity, refString(dna.MostPopular), refString(dna.LeastPopular))
	fmt.Fprintf(&summary, "Longest: %s, shortest: %s\n", refString(dna.LongestTrack), refString(dna.ShortestTrack))

	albums := make([]string, 0, len(dna.TopAlbums))
	for _, a := range dna.TopAlbums {
		albums = append(albums, fmt.Sprintf("%s (%d)", a.Name, a.Count))
	}
	fmt.Fprintf(&summary, "Top albums: %s\n", joinOrNone(albums))

	genres := make([]string, 0, len(dna.TopGenres))
	for _, g := range dna.TopGenres {
		genres = append(genres, fmt.Sprintf("%s (%d)", g.Genre, g.Count))
	}
	fmt.Fprintf(&summary, "Top genres: %s", joinOrNone(genres))

	result.summary = summary.String()
	return
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
