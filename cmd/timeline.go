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

	"github.com/spf13/cobra"

	"github.com/ademuri/spotify-insights/internal/analysis"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline [from (optional)] [to (optional)]",
	Short: "Lists recent plays grouped by day",
	Long: `Shows the ten most recent days with plays, newest first. Date strings work
like they do for rituals.`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(os.Stdout, &TimelineAnalyzer{}, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(timelineCmd)
}

type TimelineAnalyzer struct{}

func (t *TimelineAnalyzer) GetName() string {
	return "Timeline"
}

func (t *TimelineAnalyzer) GetResults(req AnalysisRequest) (result Analysis, err error) {
	days := analysis.BuildTimeline(req.playsInRange(), req.location())
	result.data = days
	if len(days) == 0 {
		result.summary = fmt.Sprintf("No plays stored for %s.", req.describeRange())
		return
	}

	plays := 0
	result.results = [][]string{{"Date", "Track", "Album"}}
	for _, day := range days {
		for i, track := range day.Tracks {
			date := ""
			if i == 0 {
				date = day.Date
			}
			result.results = append(result.results, []string{date, track.String(), track.Album})
			plays++
		}
	}
	result.summary = fmt.Sprintf("%d plays over %d days", plays, len(days))
	return
}
