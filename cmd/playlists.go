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

	"github.com/spf13/cobra"
)

var playlistsCmd = &cobra.Command{
	Use:     "playlists",
	Short:   "Lists the user's stored playlists",
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(os.Stdout, &PlaylistsAnalyzer{}, nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(playlistsCmd)
}

type PlaylistsAnalyzer struct{}

func (p *PlaylistsAnalyzer) GetName() string {
	return "Playlists"
}

type playlistSummary struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Tracks  int    `yaml:"track_count"`
	Fetched int    `yaml:"fetched_tracks"`
}

func (p *PlaylistsAnalyzer) GetResults(req AnalysisRequest) (result Analysis, err error) {
	snap := req.Snapshot
	if len(snap.Playlists) == 0 {
		result.summary = "No playlists stored - run update first."
		return
	}

	summaries := make([]playlistSummary, 0, len(snap.Playlists))
	result.results = [][]string{{"#", "Playlist", "Tracks", "Fetched", "ID"}}
	for i, pl := range snap.Playlists {
		s := playlistSummary{
			ID:      pl.ID,
			Name:    pl.Name,
			Tracks:  pl.TrackCount,
			Fetched: len(snap.PlaylistTracks[pl.ID]),
		}
		summaries = append(summaries, s)
		result.results = append(result.results, []string{
			strconv.Itoa(i + 1), s.Name, strconv.Itoa(s.Tracks), strconv.Itoa(s.Fetched), s.ID,
		})
	}
	result.data = summaries
	result.summary = fmt.Sprintf("%d playlists. Use playlist-dna <id or name> for details.", len(summaries))
	return
}
