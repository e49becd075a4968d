package collage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/sync/errgroup"
)

const (
	CanvasWidth  = 1200
	CanvasHeight = 800
	// CoverSize is the side of each drawn cover, in pixels.
	CoverSize = 140
)

var (
	backgroundFrom = color.RGBA{0x1a, 0x1a, 0x1a, 0xff}
	backgroundTo   = color.RGBA{0x2d, 0x2d, 0x2d, 0xff}
)

type ExportResult struct {
	FileName string
	Drawn    int
	// Omitted lists album ids whose image failed to load.
	Omitted []string
}

// Export renders the current layout and hands the PNG to the sink. Every
// placed cover's image is loaded concurrently and the render waits for all of
// them; covers whose image fails are left out. If another export starts
// before this one reaches the sink, this one returns ErrSuperseded without
// delivering.
func (c *Compositor) Export(ctx context.Context) (ExportResult, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	placed := c.placements()
	c.mu.Unlock()

	if len(placed) == 0 {
		return ExportResult{}, ErrNothingToExport
	}

	images := c.loadAll(ctx, gen, placed)
	if err := ctx.Err(); err != nil {
		return ExportResult{}, fmt.Errorf("loading covers: %w", err)
	}
	if c.superseded(gen) {
		return ExportResult{}, ErrSuperseded
	}

	result := ExportResult{FileName: ExportFileName}
	canvas := newCanvas()
	for i, p := range placed {
		if images[i] == nil {
			result.Omitted = append(result.Omitted, p.cover.AlbumID)
			continue
		}
		drawCover(canvas, images[i], p.pos)
		result.Drawn++
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return ExportResult{}, fmt.Errorf("encoding collage: %w", err)
	}

	// The lock is not held during Save, so the sink may call back into the
	// compositor.
	if c.superseded(gen) {
		return ExportResult{}, ErrSuperseded
	}
	if err := c.sink.Save(ctx, ExportFileName, buf.Bytes()); err != nil {
		return ExportResult{}, fmt.Errorf("saving %s: %w", ExportFileName, err)
	}
	c.logger.Info().Uint64("generation", gen).Int("drawn", result.Drawn).Int("omitted", len(result.Omitted)).Msg("collage exported")
	return result, nil
}

// loadAll fetches every placed cover and returns once all loads have
// settled. A failed load leaves a nil entry.
func (c *Compositor) loadAll(ctx context.Context, gen uint64, placed []placement) []image.Image {
	images := make([]image.Image, len(placed))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, p := range placed {
		g.Go(func() error {
			img, err := c.loader.Load(ctx, p.cover.URL)
			if err != nil {
				c.logger.Warn().Err(err).Uint64("generation", gen).Str("album", p.cover.AlbumID).Msg("omitting cover")
				return nil
			}
			images[i] = img
			return nil
		})
	}
	_ = g.Wait()
	return images
}

func (c *Compositor) superseded(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation != gen
}

// newCanvas fills a canvas with a diagonal gradient from the top-left corner
// to the bottom-right.
func newCanvas() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	const norm = CanvasWidth*CanvasWidth + CanvasHeight*CanvasHeight
	for y := 0; y < CanvasHeight; y++ {
		for x := 0; x < CanvasWidth; x++ {
			t := float64(x*CanvasWidth+y*CanvasHeight) / norm
			img.SetRGBA(x, y, lerp(backgroundFrom, backgroundTo, t))
		}
	}
	return img
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(u, v uint8) uint8 {
		return uint8(math.Round(float64(u) + (float64(v)-float64(u))*t))
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}

// drawCover scales src to CoverSize and draws it with its top-left corner at
// the position's percentages, rotated about its center.
func drawCover(dst *image.RGBA, src image.Image, pos Position) {
	sb := src.Bounds()
	if sb.Empty() {
		return
	}
	half := float64(CoverSize) / 2
	cx := pos.LeftPercent/100*CanvasWidth + half
	cy := pos.TopPercent/100*CanvasHeight + half

	sin, cos := math.Sincos(pos.Rotation * math.Pi / 180)
	sx := CoverSize / float64(sb.Dx())
	sy := CoverSize / float64(sb.Dy())
	mx := float64(sb.Min.X) + float64(sb.Dx())/2
	my := float64(sb.Min.Y) + float64(sb.Dy())/2

	a, b := cos*sx, -sin*sy
	d, e := sin*sx, cos*sy
	m := f64.Aff3{
		a, b, cx - a*mx - b*my,
		d, e, cy - d*mx - e*my,
	}
	draw.BiLinear.Transform(dst, m, src, sb, draw.Over, nil)
}
