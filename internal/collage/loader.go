package collage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp"
)

// HTTPLoader downloads cover images from the Spotify image CDN.
type HTTPLoader struct {
	client *resty.Client
}

func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "spotify-insights/1.0"),
	}
}

func (l *HTTPLoader) Load(ctx context.Context, url string) (image.Image, error) {
	resp, err := l.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching %s: %s", url, resp.Status())
	}
	img, _, err := image.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return img, nil
}

// FileSink writes exports into a directory.
type FileSink struct {
	Dir string
}

func (s FileSink) Save(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Path is where an export with the given name ends up.
func (s FileSink) Path(name string) string {
	return filepath.Join(s.Dir, name)
}
