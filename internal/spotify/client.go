package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// TokenProvider supplies access tokens and is told when one is rejected.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
	Invalidate()
}

// APIError is a non-2xx response from the Web API.
type APIError struct {
	Resource string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Resource, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Resource, e.Status, e.Message)
}

func (e *APIError) retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status/100 == 5
}

// Client fetches raw Web API pages.
type Client struct {
	http     *resty.Client
	tokens   TokenProvider
	limiter  *rate.Limiter
	attempts uint
	delay    time.Duration
}

type ClientOption func(*Client)

func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.http.SetBaseURL(url) }
}

// WithRateLimit spaces requests at least interval apart.
func WithRateLimit(interval time.Duration) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(interval), 1) }
}

// WithRetry sets how often throttled or failed requests are attempted, and
// the initial backoff between attempts.
func WithRetry(attempts uint, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

func NewClient(tokens TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(APIURL).
			SetTimeout(15*time.Second).
			SetHeader("User-Agent", "spotify-insights/1.0"),
		tokens:   tokens,
		limiter:  rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		attempts: 4,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch GETs a resource such as "me/top/tracks" and returns the raw body.
// A 401 invalidates the token and returns ErrUnauthorized; 429 and 5xx
// responses are retried with backoff.
func (c *Client) Fetch(ctx context.Context, resource string, params map[string]string) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			var err error
			body, err = c.get(ctx, resource, params)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.retryable() {
				log.Warn().Err(err).Msg("spotify errored, retrying")
				return true
			}
			return false
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, resource string, params map[string]string) ([]byte, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(params).
		Get("/" + strings.TrimPrefix(resource, "/"))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("fetching %s: %w", resource, err))
	}
	log.Debug().Str("resource", resource).Int("status", resp.StatusCode()).Dur("elapsed", resp.Time()).Msg("spotify request")

	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized:
		c.tokens.Invalidate()
		return nil, retry.Unrecoverable(fmt.Errorf("fetching %s: %w", resource, ErrUnauthorized))
	case status/100 != 2:
		return nil, &APIError{Resource: resource, Status: status, Message: errorMessage(resp.Body())}
	}
	return resp.Body(), nil
}

// errorMessage pulls the message out of a regular error object body.
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Error.Message
}
