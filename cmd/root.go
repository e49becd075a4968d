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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/spotify-insights/internal/catalog"
	"github.com/ademuri/spotify-insights/internal/logging"
	"github.com/ademuri/spotify-insights/internal/spotify"
	"github.com/ademuri/spotify-insights/internal/store"
)

var cfgFile string
var spotifyUser string
var clientID string
var clientSecret string
var redirectURL string
var databasePath string
var timeRange string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spotify-insights",
	Short: "Performs analysis on Spotify listening data",
	Long: `Fetches your top tracks, recent plays and playlists from Spotify into a
local SQLite database, and derives statistics, a mood projection, a listening
heatmap and album collages from them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(logging.Config{
			Level:  viper.GetString("log_level"),
			Format: viper.GetString("log_format"),
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.spotify-insights.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&spotifyUser, "user", "u", "", "local name of the Spotify account to act on")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.PersistentFlags().StringVar(&clientID, "client_id", "", "Spotify application client id")
	viper.BindPFlag("client_id", rootCmd.PersistentFlags().Lookup("client_id"))

	rootCmd.PersistentFlags().StringVar(&clientSecret, "client_secret", "", "Spotify application client secret")
	viper.BindPFlag("client_secret", rootCmd.PersistentFlags().Lookup("client_secret"))

	rootCmd.PersistentFlags().StringVar(
		&redirectURL, "redirect_uri", spotify.DefaultRedirectURL, "Redirect URI registered for the Spotify application")
	viper.BindPFlag("redirect_uri", rootCmd.PersistentFlags().Lookup("redirect_uri"))

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./spotify.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(
		&timeRange, "time_range", store.ShortTerm, "Top items period: short_term, medium_term or long_term")
	viper.BindPFlag("time_range", rootCmd.PersistentFlags().Lookup("time_range"))

	var logLevel, logFormat string
	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "warn", "debug, info, warn or error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))
	rootCmd.PersistentFlags().StringVar(&logFormat, "log_format", "console", "console or json")
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log_format"))

	var asYAML bool
	rootCmd.PersistentFlags().BoolVar(&asYAML, "yaml", false, "Print results as YAML instead of a table")
	viper.BindPFlag("yaml", rootCmd.PersistentFlags().Lookup("yaml"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".spotify-insights" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".spotify-insights")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// requireUser is a PreRunE for commands that act on a user's data.
func requireUser(cmd *cobra.Command, args []string) error {
	if viper.GetString("user") == "" {
		return fmt.Errorf("required flag(s) \"user\" not set")
	}
	return validateTimeRange(currentTimeRange())
}

// requireClient is a PreRunE for commands that talk to Spotify.
func requireClient(cmd *cobra.Command, args []string) error {
	if err := requireUser(cmd, args); err != nil {
		return err
	}
	for _, name := range []string{"client_id", "client_secret"} {
		if viper.GetString(name) == "" {
			return fmt.Errorf("required flag(s) %q not set", name)
		}
	}
	return nil
}

func currentTimeRange() string {
	if tr := viper.GetString("time_range"); tr != "" {
		return tr
	}
	return store.ShortTerm
}

func validateTimeRange(tr string) error {
	switch tr {
	case store.ShortTerm, store.MediumTerm, store.LongTerm:
		return nil
	}
	return fmt.Errorf("invalid --time_range %q: want short_term, medium_term or long_term", tr)
}

// loadSnapshot reads everything cached for user.
func loadSnapshot(dbPath, user string) (catalog.Snapshot, error) {
	db, err := store.New(dbPath)
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	user = strings.ToLower(user)
	snap, err := db.Snapshot(user, currentTimeRange())
	if err != nil {
		return catalog.Snapshot{}, fmt.Errorf("loading data for %q: %w", user, err)
	}
	return snap, nil
}
