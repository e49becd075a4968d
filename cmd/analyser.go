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
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/spotify-insights/internal/catalog"
)

type Analysis struct {
	results [][]string
	summary string

	// BodyOverride replaces the table when the analysis is rendered as HTML.
	BodyOverride string

	// data is what --yaml prints.
	data any
}

type AnalyserConfig struct {
	// Number of results to return, default is all results.
	NumToReturn int

	// Only return results with more plays than this. Default is all results.
	FilterThreshold int
}

// AnalysisRequest is the input every analyser reads. A zero Start or End
// leaves that side of the play range open.
type AnalysisRequest struct {
	User     string
	Snapshot catalog.Snapshot
	Start    time.Time
	End      time.Time
	Location *time.Location
}

type Analyser interface {
	GetResults(req AnalysisRequest) (Analysis, error)

	GetName() string
}

type Configurable interface {
	Configure(params map[string]string) error
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if len(a.results) > 0 {
		table := tablewriter.NewWriter(out)
		table.Header(a.results[0])
		for _, row := range a.results[1:] {
			if err := table.Append(row); err != nil {
				return fmt.Sprintf("Error rendering table: %v", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

// runAnalyser loads the configured user's data and prints one analysis over
// the plays in the range given by dateArgs.
func runAnalyser(out io.Writer, a Analyser, dateArgs []string) error {
	start, end, err := parseDateRangeFromArgs(dateArgs)
	if err != nil {
		return err
	}

	user := viper.GetString("user")
	snap, err := loadSnapshot(viper.GetString("database"), user)
	if err != nil {
		return err
	}

	req := AnalysisRequest{
		User:     user,
		Snapshot: snap,
		Start:    start,
		End:      end,
		Location: time.Local,
	}
	return printAnalysis(out, a, req, viper.GetBool("yaml"))
}

// printAnalysis runs an analyser and writes its table, or its YAML when
// asYAML is set.
func printAnalysis(out io.Writer, a Analyser, req AnalysisRequest, asYAML bool) error {
	analysis, err := a.GetResults(req)
	if err != nil {
		return fmt.Errorf("%s: %w", a.GetName(), err)
	}

	if asYAML {
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(analysis.data); err != nil {
			return fmt.Errorf("encoding %s: %w", a.GetName(), err)
		}
		return encoder.Close()
	}

	fmt.Fprintln(out, analysis)
	return nil
}

// playsInRange keeps the plays inside the request's range, in input order.
func (r AnalysisRequest) playsInRange() []catalog.PlayEvent {
	if r.Start.IsZero() && r.End.IsZero() {
		return r.Snapshot.RecentPlays
	}
	var plays []catalog.PlayEvent
	for _, p := range r.Snapshot.RecentPlays {
		if !r.Start.IsZero() && p.PlayedAt.Before(r.Start) {
			continue
		}
		if !r.End.IsZero() && !p.PlayedAt.Before(r.End) {
			continue
		}
		plays = append(plays, p)
	}
	return plays
}

func (r AnalysisRequest) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

func configureLimit(config *AnalyserConfig, params map[string]string) error {
	n, ok := params["n"]
	if !ok {
		return nil
	}
	num, err := strconv.Atoi(n)
	if err != nil || num < 0 {
		return fmt.Errorf("invalid value for n: %q", n)
	}
	config.NumToReturn = num
	return nil
}

func limitRows(rows [][]string, n int) [][]string {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// describeRange labels the request's play range for headings.
func (r AnalysisRequest) describeRange() string {
	switch {
	case r.Start.IsZero() && r.End.IsZero():
		return "all stored plays"
	case r.End.IsZero():
		return "since " + r.Start.Format("2006-01-02")
	case r.Start.IsZero():
		return "until " + r.End.Format("2006-01-02")
	}
	return fmt.Sprintf("%s to %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}
