package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/ademuri/spotify-insights/internal/spotify"
	"github.com/ademuri/spotify-insights/internal/store"
)

func newAuthenticator() *spotify.Authenticator {
	return spotify.NewAuthenticator(
		viper.GetString("client_id"),
		viper.GetString("client_secret"),
		viper.GetString("redirect_uri"))
}

// newTokenHolder wraps the stored token for user. Refreshed tokens are
// written back, and an invalidated token is cleared from the database.
func newTokenHolder(db *store.Store, user string) (*spotify.TokenHolder, error) {
	tok, err := db.GetToken(user)
	if err != nil {
		return nil, fmt.Errorf("loading token for %q: %w", user, err)
	}
	return spotify.NewTokenHolder(newAuthenticator().Config(), tok, func(t *oauth2.Token) {
		if err := db.SaveToken(user, t); err != nil {
			log.Error().Err(err).Str("user", user).Msg("saving token")
		}
	}), nil
}

// newSpotifyClient builds an API client for user. The api_url config key
// overrides the Web API base URL.
func newSpotifyClient(db *store.Store, user string) (*spotify.Client, error) {
	tokens, err := newTokenHolder(db, user)
	if err != nil {
		return nil, err
	}
	var opts []spotify.ClientOption
	if url := viper.GetString("api_url"); url != "" {
		opts = append(opts, spotify.WithBaseURL(url))
	}
	return spotify.NewClient(tokens, opts...), nil
}
