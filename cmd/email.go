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
	"html"
	"os"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type SendEmailConfig struct {
	DbPath string
	User   string
	From   string
	To     string
	Types  []string
	Params []map[string]string
	DryRun bool
	Start  time.Time
	End    time.Time
}

var emailCmd = &cobra.Command{
	Use:   "email <address> <analysis_name...> [date] [date]",
	Short: "Sends an email report",
	Long: `Emails a digest of analyses to the given address.
  <analysis_name> is one or more of: profile, stats, moodscape, rituals, timeline, playlists, top-artists, playlist-dna, new-artists.
  playlist-dna needs --params 'playlist=<id or name>'.
  Optional date arguments can be provided at the end (e.g. '2023-01' or '30d') and
  limit the plays that rituals and timeline look at.`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(cmd, args); err != nil {
			return err
		}
		if viper.GetString("from") == "" && !viper.GetBool("dryRun") {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		to := args[0]
		analysisTypes, dateArgs := splitDateArgs(args[1:])
		if len(analysisTypes) == 0 {
			fmt.Println("Error: No analysis types specified")
			os.Exit(1)
		}

		start, end, err := parseDateRangeFromArgs(dateArgs)
		if err != nil {
			fmt.Printf("Error parsing dates: %v\n", err)
			os.Exit(1)
		}

		params, _ := cmd.Flags().GetStringArray("params")
		structuredParams, err := parseParams(params, len(analysisTypes))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		config := SendEmailConfig{
			DbPath: viper.GetString("database"),
			User:   viper.GetString("user"),
			From:   viper.GetString("from"),
			To:     to,
			Types:  analysisTypes,
			Params: structuredParams,
			DryRun: viper.GetBool("dryRun"),
			Start:  start,
			End:    end,
		}
		err = sendEmail(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	emailCmd.Flags().StringArray("params", nil, "Parameters for analyses, matched by index (e.g. --params 'n=20')")
}

// splitDateArgs peels up to two date arguments off the end of args.
func splitDateArgs(args []string) (rest []string, dates []string) {
	rest = args
	for len(dates) < 2 && len(rest) > 0 {
		last := rest[len(rest)-1]
		if _, err := parseSingleDatestring(last); err != nil {
			break
		}
		dates = append([]string{last}, dates...)
		rest = rest[:len(rest)-1]
	}
	return rest, dates
}

func parseParams(params []string, numTypes int) ([]map[string]string, error) {
	if len(params) > 0 && len(params) != numTypes {
		return nil, fmt.Errorf("number of --params flags (%d) must match number of analyses (%d), or be 0", len(params), numTypes)
	}

	structured := make([]map[string]string, numTypes)
	for i, v := range params {
		pMap := make(map[string]string)
		if v != "" {
			for _, pair := range strings.Split(v, ",") {
				kv := strings.SplitN(pair, "=", 2)
				if len(kv) == 2 {
					pMap[kv[0]] = kv[1]
				}
			}
		}
		structured[i] = pMap
	}
	return structured, nil
}

func sendEmail(config SendEmailConfig) error {
	actions := make([]Analyser, 0, len(config.Types))
	for i, actionName := range config.Types {
		action, err := getActionFromName(actionName)
		if err != nil {
			return err
		}

		if configurable, ok := action.(Configurable); ok && i < len(config.Params) && config.Params[i] != nil {
			if err := configurable.Configure(config.Params[i]); err != nil {
				return fmt.Errorf("configuring %s (index %d): %w", actionName, i, err)
			}
		}

		actions = append(actions, action)
	}

	snap, err := loadSnapshot(config.DbPath, config.User)
	if err != nil {
		return err
	}
	req := AnalysisRequest{
		User:     config.User,
		Snapshot: snap,
		Start:    config.Start,
		End:      config.End,
		Location: time.Local,
	}

	subject, out, err := generateEmailContent(req, actions)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}

	if viper.GetString("sendgrid_api_key") == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}
	from := mail.NewEmail("spotify-insights", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, subject, out)
	client := sendgrid.NewSendClient(viper.GetString("sendgrid_api_key"))
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("sendEmail: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func generateEmailContent(req AnalysisRequest, actions []Analyser) (subject string, body string, err error) {
	var out strings.Builder
	out.WriteString(`
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`)
	for _, action := range actions {
		out.WriteString("<div>\n")
		fmt.Fprintf(&out, "<h2>%s for %s:</h2>\n", html.EscapeString(action.GetName()), html.EscapeString(req.User))

		analysis, err := action.GetResults(req)
		if err != nil {
			return "", "", fmt.Errorf("getting results for %s: %w", action.GetName(), err)
		}

		switch {
		case analysis.BodyOverride != "":
			out.WriteString(analysis.BodyOverride)

		case len(analysis.results) > 1:
			out.WriteString("<table>\n<thead>\n<tr>")
			for _, header := range analysis.results[0] {
				fmt.Fprintf(&out, "<th>%s</th>", html.EscapeString(header))
			}
			out.WriteString("</tr>\n</thead>\n<tbody>\n")
			for _, row := range analysis.results[1:] {
				out.WriteString("<tr>")
				for _, column := range row {
					fmt.Fprintf(&out, "<td>%s</td>", html.EscapeString(column))
				}
				out.WriteString("</tr>\n")
			}
			out.WriteString("</tbody>\n</table>\n")
		}
		summary := strings.ReplaceAll(html.EscapeString(analysis.summary), "\n", "<br>\n")
		fmt.Fprintf(&out, "<div>%s</div>\n</div>\n", summary)
	}
	out.WriteString("  </body>\n</html>\n")

	// Subject line format: Listening report for <User> (<range>)
	subject = fmt.Sprintf("Listening report for %s (%s)", req.User, req.describeRange())

	return subject, out.String(), nil
}

func getActionFromName(actionName string) (Analyser, error) {
	// Pointers required for Configure.
	actionMap := map[string]Analyser{
		"profile":      &ProfileAnalyzer{},
		"stats":        &StatsAnalyzer{},
		"moodscape":    &MoodscapeAnalyzer{},
		"rituals":      &RitualsAnalyzer{},
		"timeline":     &TimelineAnalyzer{},
		"playlists":    &PlaylistsAnalyzer{},
		"top-artists":  &TopArtistsAnalyzer{Config: AnalyserConfig{NumToReturn: 20}},
		"playlist-dna": &PlaylistDNAAnalyzer{Config: AnalyserConfig{NumToReturn: 10}},
		"new-artists":  &NewArtistsAnalyzer{Config: AnalyserConfig{NumToReturn: 20}},
	}

	action, ok := actionMap[actionName]
	if !ok {
		return nil, fmt.Errorf("Invalid analysis_name: %s", actionName)
	}

	return action, nil
}
