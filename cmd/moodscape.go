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

	"github.com/ademuri/spotify-insights/internal/analysis"
)

var moodscapeCmd = &cobra.Command{
	Use:   "moodscape",
	Short: "Projects a mood from the user's top tracks",
	Long: `Estimates energy, valence and tempo for the top tracks from their popularity,
release year and rank, and names the overall mood. The estimates are synthetic;
no audio is analysed.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(os.Stdout, &MoodscapeAnalyzer{}, nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(moodscapeCmd)
}

type MoodscapeAnalyzer struct{}

func (m *MoodscapeAnalyzer) GetName() string {
	return "Moodscape"
}

func (m *MoodscapeAnalyzer) GetResults(req AnalysisRequest) (result Analysis, err error) {
	mood, ok := analysis.ProjectMood(req.Snapshot.TopTracks)
	if !ok {
		result.summary = "No top tracks stored - run update first."
		return
	}
	result.data = mood

	result.results = [][]string{{"#", "Track", "Energy", "Valence", "Tempo", "Year", "Hue"}}
	for i, f := range mood.Features {
		result.results = append(result.results, []string{
			strconv.Itoa(i + 1),
			refString(f.Track),
			percentString(f.Energy),
			percentString(f.Valence),
			percentString(f.Tempo),
			strconv.Itoa(f.ReleaseYear),
			strconv.Itoa(int(analysis.ValenceHue(f.Valence) + 0.5)),
		})
	}

	result.summary = fmt.Sprintf("%s %s: energy %d%%, valence %d%%, tempo %d%%, mostly %s",
		mood.Dominant.Emoji, mood.Dominant.Name,
		mood.AverageEnergy, mood.AverageValence, mood.AverageTempo, mood.DominantEra)
	return
}

func percentString(v float64) string {
	return fmt.Sprintf("%d%%", int(v*100+0.5))
}
