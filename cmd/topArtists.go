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
)

var topArtistsNumber int
var topArtistsCmd = &cobra.Command{
	Use:     "top-artists",
	Short:   "Gets the user's top artists",
	Long:    `Lists the stored top artists for --time_range with their genres.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := &TopArtistsAnalyzer{Config: AnalyserConfig{NumToReturn: topArtistsNumber}}
		err := runAnalyser(os.Stdout, a, nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	topArtistsCmd.Flags().IntVarP(&topArtistsNumber, "number", "n", 10, "number of results to return")
}

type TopArtistsAnalyzer struct {
	Config AnalyserConfig
}

func (t *TopArtistsAnalyzer) GetName() string {
	return "Top artists"
}

func (t *TopArtistsAnalyzer) Configure(params map[string]string) error {
	return configureLimit(&t.Config, params)
}

func (t *TopArtistsAnalyzer) GetResults(req AnalysisRequest) (result Analysis, err error) {
	artists := req.Snapshot.TopArtists
	if t.Config.NumToReturn > 0 && len(artists) > t.Config.NumToReturn {
		artists = artists[:t.Config.NumToReturn]
	}
	result.data = artists
	if len(artists) == 0 {
		result.summary = "No top artists stored - run update first."
		return
	}

	genres := make(map[string]bool)
	result.results = [][]string{{"#", "Artist", "Genres"}}
	for i, a := range artists {
		for _, g := range a.Genres {
			genres[g] = true
		}
		result.results = append(result.results, []string{strconv.Itoa(i + 1), a.Name, strings.Join(a.Genres, ", ")})
	}
	result.summary = fmt.Sprintf("%d artists across %d genres", len(artists), len(genres))
	return
}
