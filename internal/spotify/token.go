package spotify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// ErrUnauthorized means there is no usable access token. The caller should
// re-run authorization.
var ErrUnauthorized = errors.New("spotify: not authorized")

// TokenHolder holds the current token, refreshes it when it expires and
// reports every change, including invalidation, to onChange.
type TokenHolder struct {
	config   *oauth2.Config
	onChange func(*oauth2.Token)

	mu    sync.Mutex
	token *oauth2.Token
}

// NewTokenHolder wraps tok. With a nil config the token is used as-is and
// never refreshed. onChange may be nil; it receives nil on invalidation.
func NewTokenHolder(config *oauth2.Config, tok *oauth2.Token, onChange func(*oauth2.Token)) *TokenHolder {
	return &TokenHolder{config: config, token: tok, onChange: onChange}
}

// AccessToken returns a valid access token, refreshing it if needed.
func (h *TokenHolder) AccessToken(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.token == nil {
		return "", ErrUnauthorized
	}
	if h.config == nil {
		return h.token.AccessToken, nil
	}
	if !h.token.Valid() && h.token.RefreshToken == "" {
		return "", fmt.Errorf("token expired with no refresh token: %w", ErrUnauthorized)
	}

	tok, err := h.config.TokenSource(ctx, h.token).Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return "", fmt.Errorf("refreshing token: %v: %w", err, ErrUnauthorized)
		}
		return "", fmt.Errorf("refreshing token: %w", err)
	}
	if tok.AccessToken != h.token.AccessToken {
		h.token = tok
		if h.onChange != nil {
			h.onChange(tok)
		}
	}
	return tok.AccessToken, nil
}

// Invalidate drops the token, so later requests fail with ErrUnauthorized.
func (h *TokenHolder) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.token == nil {
		return
	}
	h.token = nil
	if h.onChange != nil {
		h.onChange(nil)
	}
}

// Valid reports whether a token is held.
func (h *TokenHolder) Valid() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token != nil
}
