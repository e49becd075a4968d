// Package spotify talks to the Spotify Web API: authorization, access token
// upkeep and paged catalog requests.
package spotify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/oauth2"
)

const (
	AuthURL            = "https://accounts.spotify.com/authorize"
	TokenURL           = "https://accounts.spotify.com/api/token"
	APIURL             = "https://api.spotify.com/v1"
	DefaultRedirectURL = "http://127.0.0.1:3000"
)

// Scopes are the permissions every analysis needs.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-top-read",
	"user-read-recently-played",
	"playlist-read-private",
	"user-library-read",
	"user-follow-read",
}

// Authenticator runs the authorization code flow.
type Authenticator struct {
	config *oauth2.Config
}

func NewAuthenticator(clientID, clientSecret, redirectURL string) *Authenticator {
	if redirectURL == "" {
		redirectURL = DefaultRedirectURL
	}
	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  AuthURL,
				TokenURL: TokenURL,
			},
		},
	}
}

// Config exposes the oauth2 configuration, for refreshing tokens.
func (a *Authenticator) Config() *oauth2.Config {
	return a.config
}

// AuthCodeURL is the page the user visits to grant access. The consent
// dialog is always shown so the user can switch accounts.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades the code from the redirect for a token.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return tok, nil
}

// NewState returns a random value for the state parameter.
func NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
