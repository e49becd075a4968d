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
	"time"

	"github.com/spf13/cobra"

	"github.com/ademuri/spotify-insights/internal/analysis"
)

var ritualsCmd = &cobra.Command{
	Use:   "rituals [from (optional)] [to (optional)]",
	Short: "Shows when the user listens, by weekday and hour",
	Long: `Counts stored plays into a weekday by hour grid, in local time. Date strings
look like 'yyyy', 'yyyy-mm', 'yyyy-mm-dd', or '30d', '12w', '6m', '1y' for a period
ending now. Without dates, every stored play is counted.`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(os.Stdout, &RitualsAnalyzer{}, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ritualsCmd)
}

type RitualsAnalyzer struct{}

func (r *RitualsAnalyzer) GetName() string {
	return "Listening rituals"
}

func (r *RitualsAnalyzer) GetResults(req AnalysisRequest) (result Analysis, err error) {
	grid, ok := analysis.BuildHeatmap(req.playsInRange(), req.location())
	if !ok {
		result.summary = fmt.Sprintf("No plays stored for %s.", req.describeRange())
		return
	}
	summary := grid.Summary()
	result.data = summary

	header := []string{"Day"}
	for h := range analysis.HoursPerDay {
		header = append(header, fmt.Sprintf("%02d", h))
	}
	result.results = [][]string{header}
	for d := range analysis.DaysPerWeek {
		row := []string{analysis.DayNames[d]}
		for h := range analysis.HoursPerDay {
			cell := ""
			if n := grid.At(time.Weekday(d), h); n > 0 {
				cell = strconv.Itoa(n)
			}
			row = append(row, cell)
		}
		result.results = append(result.results, row)
	}

	result.summary = fmt.Sprintf("%d plays (%s), busiest: %s %02d:00 with %d",
		summary.Total, req.describeRange(), summary.PeakDay, summary.PeakHour, summary.Max)
	result.BodyOverride = heatmapHTML(grid)
	return
}

// heatmapHTML renders the grid with each cell shaded by its intensity.
func heatmapHTML(grid analysis.Grid) string {
	var b strings.Builder
	b.WriteString("<table>\n<tr><th></th>")
	for h := range analysis.HoursPerDay {
		fmt.Fprintf(&b, "<th>%02d</th>", h)
	}
	b.WriteString("</tr>\n")
	for d := range analysis.DaysPerWeek {
		fmt.Fprintf(&b, "<tr><th>%s</th>", analysis.DayNames[d])
		for h := range analysis.HoursPerDay {
			day := time.Weekday(d)
			fmt.Fprintf(&b, `<td style="background-color: rgba(29, 185, 84, %.2f)" title="%d">&nbsp;</td>`,
				grid.Intensity(day, h), grid.At(day, h))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n")
	return b.String()
}
