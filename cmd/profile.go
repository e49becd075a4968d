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
	"time"

	"github.com/spf13/cobra"

	"github.com/ademuri/spotify-insights/internal/analysis"
	"github.com/ademuri/spotify-insights/internal/catalog"
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Short:   "Shows the Spotify account the stored data belongs to",
	Long:    `Prints the profile fetched by update, with the top artist and the last played track.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := runAnalyser(os.Stdout, &ProfileAnalyzer{}, nil)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

type ProfileAnalyzer struct{}

func (p *ProfileAnalyzer) GetName() string {
	return "Profile"
}

type profileView struct {
	Profile  catalog.Profile          `yaml:"profile"`
	Overview analysis.ProfileMetadata `yaml:"overview"`
}

func (p *ProfileAnalyzer) GetResults(req AnalysisRequest) (result Analysis, err error) {
	profile := req.Snapshot.Profile
	if profile.ID == "" {
		result.summary = "No profile stored - run update first."
		return
	}
	overview := analysis.Overview(req.Snapshot, req.User, req.location(), time.Now())
	result.data = profileView{Profile: profile, Overview: overview}

	lastPlayed := ""
	if overview.LastPlayed != nil {
		lastPlayed = fmt.Sprintf("%s by %s (%s)", overview.LastPlayed.Name, overview.LastPlayed.Artists, overview.LastPlayedAt)
	}
	result.results = [][]string{
		{"Field", "Value"},
		{"Name", profile.DisplayName},
		{"Email", orNone(profile.Email)},
		{"Country", orNone(profile.Country)},
		{"Profile", orNone(profile.ProfileURL)},
		{"Avatar", orNone(profile.AvatarURL)},
		{"Top artist", orNone(overview.TopArtist)},
		{"Last played", orNone(lastPlayed)},
	}
	result.summary = fmt.Sprintf("%d plays, %d top tracks and %d playlists stored",
		overview.RecentPlayCount, overview.TopTrackCount, overview.PlaylistCount)
	return
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
