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
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

var newArtistsNumber int
var newArtistsCmd = &cobra.Command{
	Use:   "new-artists [from] [to (optional)]",
	Short: "Gets artists first heard in the given time period",
	Long: `Counts stored plays by primary artist and keeps the artists with no plays
before the period. Date strings look like 'yyyy', 'yyyy-mm', 'yyyy-mm-dd', or
'30d', '12w', '6m', '1y' for a period ending now.`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		a := &NewArtistsAnalyzer{Config: AnalyserConfig{NumToReturn: newArtistsNumber}}
		err := runAnalyser(os.Stdout, a, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(newArtistsCmd)

	newArtistsCmd.Flags().IntVarP(&newArtistsNumber, "number", "n", 0, "number of results to return")
}

type NewArtistsAnalyzer struct {
	Config AnalyserConfig
}

func (t *NewArtistsAnalyzer) Configure(params map[string]string) error {
	if err := configureLimit(&t.Config, params); err != nil {
		return err
	}
	if val, ok := params["min"]; ok {
		min, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid value for 'min': %v", err)
		}
		t.Config.FilterThreshold = min
	}
	return nil
}

func (t *NewArtistsAnalyzer) GetName() string {
	return "New artists"
}

type artistPlays struct {
	Name  string `yaml:"name"`
	Plays int    `yaml:"plays"`
}

func (t *NewArtistsAnalyzer) GetResults(req AnalysisRequest) (result Analysis, err error) {
	if req.Start.IsZero() {
		err = fmt.Errorf("new-artists needs a start date")
		return
	}

	before := make(map[string]bool)
	current := make(map[string]*artistPlays)
	for _, p := range req.Snapshot.RecentPlays {
		artist, ok := p.Track.PrimaryArtist()
		if !ok {
			continue
		}
		key := artist.ID
		if key == "" {
			key = "name:" + artist.Name
		}
		switch {
		case p.PlayedAt.Before(req.Start):
			before[key] = true
		case req.End.IsZero() || p.PlayedAt.Before(req.End):
			if current[key] == nil {
				current[key] = &artistPlays{Name: artist.Name}
			}
			current[key].Plays++
		}
	}

	counts := make([]artistPlays, 0)
	for key, c := range current {
		if !before[key] && c.Plays > t.Config.FilterThreshold {
			counts = append(counts, *c)
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Plays != counts[j].Plays {
			return counts[i].Plays > counts[j].Plays
		}
		return counts[i].Name < counts[j].Name
	})

	plays := 0
	for _, c := range counts {
		plays += c.Plays
	}
	if t.Config.NumToReturn > 0 && len(counts) > t.Config.NumToReturn {
		counts = counts[:t.Config.NumToReturn]
	}
	result.data = counts

	result.results = [][]string{{"Artist", "Plays"}}
	for _, c := range counts {
		result.results = append(result.results, []string{c.Name, strconv.Itoa(c.Plays)})
	}
	result.summary = fmt.Sprintf("Found new artists with %d plays, %s", plays, req.describeRange())
	return
}
