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
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/spotify-insights/internal/catalog"
	"github.com/ademuri/spotify-insights/internal/spotify"
	"github.com/ademuri/spotify-insights/internal/store"
)

const (
	pageLimit = 50

	// The artists endpoint takes at most this many ids per request.
	artistBatchSize = 50

	// Playlist listings are paged; stop after this many playlists.
	maxPlaylists = 200
)

type UpdateConfig struct {
	DbPath                string
	User                  string
	TimeRange             string
	PlaylistTracks        int
	Force                 bool
	MinInterval           time.Duration
	ArtistDetailsInterval time.Duration
}

// fetcher is the part of spotify.Client that update needs.
type fetcher interface {
	Fetch(ctx context.Context, resource string, params map[string]string) ([]byte, error)
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetches data from Spotify",
	Long: `Stores the profile, top tracks and artists, recent plays, playlists and artist genres in a
local SQLite database. Spotify only returns the last 50 plays, so run this often
to build up a listening history.`,
	PreRunE: requireClient,
	Run: func(cmd *cobra.Command, args []string) {
		config := UpdateConfig{
			DbPath:                viper.GetString("database"),
			User:                  viper.GetString("user"),
			TimeRange:             currentTimeRange(),
			PlaylistTracks:        viper.GetInt("playlist-tracks"),
			Force:                 viper.GetBool("force"),
			MinInterval:           durationOrDefault("min-interval", time.Hour),
			ArtistDetailsInterval: durationOrDefault("artist-update-interval", 30*24*time.Hour),
		}

		err := updateDatabase(context.Background(), config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	var force bool
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Fetch even if the data was updated recently")
	viper.BindPFlag("force", updateCmd.Flags().Lookup("force"))

	var playlistTracks int
	updateCmd.Flags().IntVar(&playlistTracks, "playlist-tracks", 20, "Number of tracks to fetch from each playlist (at most 100)")
	viper.BindPFlag("playlist-tracks", updateCmd.Flags().Lookup("playlist-tracks"))

	var minInterval string
	updateCmd.Flags().StringVar(&minInterval, "min-interval", "1h", "Skip the update if the last one was more recent than this")
	viper.BindPFlag("min-interval", updateCmd.Flags().Lookup("min-interval"))

	var artistInterval string
	updateCmd.Flags().StringVar(&artistInterval, "artist-update-interval", "720h", "Time after which to re-fetch artist genres (e.g., 24h)")
	viper.BindPFlag("artist-update-interval", updateCmd.Flags().Lookup("artist-update-interval"))
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	s := viper.GetString(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		fmt.Printf("Invalid %s: %v. Using default %v.\n", key, err, def)
		return def
	}
	return d
}

func updateDatabase(ctx context.Context, config UpdateConfig) error {
	user := strings.ToLower(config.User)
	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.CreateUser(user); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	lastUpdated, err := db.GetLastUpdated(user)
	if err != nil {
		return err
	}
	now := time.Now()
	if !lastUpdated.IsZero() && now.Sub(lastUpdated) < config.MinInterval && !config.Force {
		fmt.Printf("User data was already updated at %s\n", lastUpdated.Format("2006-01-02 15:04"))
		return nil
	}

	client, err := newSpotifyClient(db, user)
	if errors.Is(err, store.ErrNoToken) {
		return fmt.Errorf("no token stored for %q - run authenticate first", user)
	}
	if err != nil {
		return err
	}

	err = syncUser(ctx, db, client, user, config)
	if errors.Is(err, spotify.ErrUnauthorized) {
		return fmt.Errorf("%w - run authenticate again", err)
	}
	if err != nil {
		return err
	}

	return db.SetLastUpdated(user, now)
}

// syncUser fetches everything the analyses read and stores it.
func syncUser(ctx context.Context, db *store.Store, client fetcher, user string, config UpdateConfig) error {
	timeRange := config.TimeRange
	if timeRange == "" {
		timeRange = store.ShortTerm
	}

	fmt.Println("Fetching profile")
	body, err := client.Fetch(ctx, "me", nil)
	if err != nil {
		return fmt.Errorf("fetching profile: %w", err)
	}
	profile, err := catalog.DecodeProfile(body)
	if err != nil {
		return err
	}
	if err := db.SaveProfile(user, profile); err != nil {
		return err
	}

	fmt.Printf("Fetching top tracks (%s)\n", timeRange)
	body, err = client.Fetch(ctx, "me/top/tracks", map[string]string{"time_range": timeRange, "limit": strconv.Itoa(pageLimit)})
	if err != nil {
		return fmt.Errorf("fetching top tracks: %w", err)
	}
	tracks, err := catalog.DecodeTracks(body)
	if err != nil {
		return err
	}
	if err := db.ReplaceTopTracks(user, timeRange, tracks); err != nil {
		return err
	}

	fmt.Printf("Fetching top artists (%s)\n", timeRange)
	body, err = client.Fetch(ctx, "me/top/artists", map[string]string{"time_range": timeRange, "limit": strconv.Itoa(pageLimit)})
	if err != nil {
		return fmt.Errorf("fetching top artists: %w", err)
	}
	artists, err := catalog.DecodeArtists(body)
	if err != nil {
		return err
	}
	if err := db.ReplaceTopArtists(user, timeRange, artists); err != nil {
		return err
	}

	if err := syncRecentPlays(ctx, db, client, user); err != nil {
		return err
	}
	if err := syncPlaylists(ctx, db, client, user, config.PlaylistTracks); err != nil {
		return err
	}

	fmt.Println("Updating artist genres...")
	return syncArtistDetails(ctx, db, client, config.ArtistDetailsInterval)
}

func syncRecentPlays(ctx context.Context, db *store.Store, client fetcher, user string) error {
	latest, err := db.GetLatestListen(user)
	if err != nil {
		return fmt.Errorf("getting latest listen: %w", err)
	}
	fmt.Printf("Latest local listening data is from: %s\n", latest.Format("2006-01-02 15:04"))

	params := map[string]string{"limit": strconv.Itoa(pageLimit)}
	if !latest.IsZero() {
		params["after"] = strconv.FormatInt(latest.UnixMilli(), 10)
	}
	body, err := client.Fetch(ctx, "me/player/recently-played", params)
	if err != nil {
		return fmt.Errorf("fetching recent plays: %w", err)
	}
	events, err := catalog.DecodePlayHistory(body)
	if err != nil {
		return err
	}
	added, err := db.AddListens(user, events)
	if err != nil {
		return fmt.Errorf("inserting recent plays: %w", err)
	}
	fmt.Printf("Stored %d new plays\n", added)
	return nil
}

func syncPlaylists(ctx context.Context, db *store.Store, client fetcher, user string, tracksPerPlaylist int) error {
	var playlists []catalog.Playlist
	for offset := 0; offset < maxPlaylists; offset += pageLimit {
		body, err := client.Fetch(ctx, "me/playlists", map[string]string{
			"limit":  strconv.Itoa(pageLimit),
			"offset": strconv.Itoa(offset),
		})
		if err != nil {
			return fmt.Errorf("fetching playlists: %w", err)
		}
		page, err := catalog.DecodePlaylists(body)
		if err != nil {
			return err
		}
		playlists = append(playlists, page...)
		if !catalog.HasNextPage(body) {
			break
		}
	}
	if err := db.ReplacePlaylists(user, playlists); err != nil {
		return err
	}

	if tracksPerPlaylist <= 0 {
		return nil
	}
	tracksPerPlaylist = min(tracksPerPlaylist, 100)
	for i, p := range playlists {
		fmt.Printf("[%d/%d] Fetching tracks for playlist: %s\n", i+1, len(playlists), p.Name)
		body, err := client.Fetch(ctx, "playlists/"+p.ID+"/tracks", map[string]string{"limit": strconv.Itoa(tracksPerPlaylist)})
		if err != nil {
			return fmt.Errorf("fetching tracks of playlist %q: %w", p.Name, err)
		}
		tracks, err := catalog.DecodePlaylistTracks(body)
		if err != nil {
			return err
		}
		if err := db.ReplacePlaylistTracks(p.ID, tracks); err != nil {
			return err
		}
	}
	return nil
}

func syncArtistDetails(ctx context.Context, db *store.Store, client fetcher, interval time.Duration) error {
	ids, err := db.ArtistsNeedingDetails(interval)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d artists needing genre updates\n", len(ids))

	batches := (len(ids) + artistBatchSize - 1) / artistBatchSize
	for b := 0; b < batches; b++ {
		batch := ids[b*artistBatchSize : min((b+1)*artistBatchSize, len(ids))]
		fmt.Printf("[%d/%d] Fetching details for %d artists\n", b+1, batches, len(batch))

		body, err := client.Fetch(ctx, "artists", map[string]string{"ids": strings.Join(batch, ",")})
		if errors.Is(err, spotify.ErrUnauthorized) {
			return err
		}
		if err != nil {
			fmt.Printf("Error fetching artist details: %v\n", err)
			continue
		}
		artists, err := catalog.DecodeArtistDetails(body)
		if err != nil {
			return err
		}
		if err := db.SaveArtistDetails(artists); err != nil {
			return err
		}
	}
	return nil
}
