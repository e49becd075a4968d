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

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Summarizes the user's top tracks",
	Long:    `Popularity, release decades and artist diversity of the top tracks for --time_range.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(os.Stdout, &StatsAnalyzer{}, nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

type StatsAnalyzer struct{}

func (s *StatsAnalyzer) GetName() string {
	return "Top track stats"
}

func (s *StatsAnalyzer) GetResults(req AnalysisRequest) (result Analysis, err error) {
	stats, ok := analysis.Summarize(req.Snapshot.TopTracks)
	if !ok {
		result.summary = "No top tracks stored - run update first."
		return
	}
	result.data = stats

	result.results = [][]string{
		{"Metric", "Value"},
		{"Tracks", strconv.Itoa(stats.TotalTracks)},
		{"Average popularity", strconv.Itoa(stats.AveragePopularity)},
		{"Most popular", refString(stats.MostPopular)},
		{"Least popular", refString(stats.LeastPopular)},
		{"Oldest", refWithYear(stats.OldestTrack)},
		{"Newest", refWithYear(stats.NewestTrack)},
		{"Top decade", decadeOrNone(stats.TopDecade)},
		{"Unique artists", strconv.Itoa(stats.UniqueArtists)},
		{"Artist diversity", fmt.Sprintf("%d%%", stats.ArtistDiversity)},
	}

	decades := make([]string, 0, len(stats.Decades))
	for _, d := range stats.Decades {
		decades = append(decades, fmt.Sprintf("%s: %d", analysis.DecadeLabel(d.Decade), d.Count))
	}
	result.summary = "Decades: " + strings.Join(decades, ", ")
	return
}

func refString(r *analysis.TrackRef) string {
	if r == nil {
		return "-"
	}
	return r.String()
}

func refWithYear(r *analysis.TrackRef) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%d)", r, r.ReleaseYear)
}

func decadeOrNone(decade int) string {
	if decade == analysis.UnknownDecade {
		return "-"
	}
	return analysis.DecadeLabel(decade)
}
