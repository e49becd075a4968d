package collage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownCover = errors.New("cover is not placed")
	// ErrSuperseded is returned by an export that was overtaken by a newer
	// one. Nothing was delivered.
	ErrSuperseded      = errors.New("export superseded by a newer export")
	ErrNothingToExport = errors.New("no covers placed")
)

// ImageLoader fetches and decodes one cover image.
type ImageLoader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

// Sink delivers a finished export.
type Sink interface {
	Save(ctx context.Context, name string, data []byte) error
}

// ExportFileName is the name every export is delivered under.
const ExportFileName = "spotify-collage.png"

const defaultLoadConcurrency = 8

type dragState struct {
	albumID string
}

// Compositor holds the collage state: the cover set, where each cover sits,
// the drag in progress and the selected cover. It is safe for concurrent use.
type Compositor struct {
	loader      ImageLoader
	sink        Sink
	logger      zerolog.Logger
	concurrency int

	mu         sync.Mutex
	covers     []Cover
	layout     Layout
	drag       *dragState
	selection  string
	generation uint64
}

type Option func(*Compositor)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Compositor) { c.logger = l }
}

// WithLoadConcurrency bounds how many cover images an export fetches at once.
func WithLoadConcurrency(n int) Option {
	return func(c *Compositor) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func New(loader ImageLoader, sink Sink, opts ...Option) *Compositor {
	c := &Compositor{
		loader:      loader,
		sink:        sink,
		logger:      log.Logger,
		concurrency: defaultLoadConcurrency,
		layout:      make(Layout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InitializeLayout places up to MaxCovers distinct covers, in order, on the
// preset slots. A repeated album id keeps its first cover. Covers that
// already have a position keep it, so calling this again never undoes a
// drag. Covers no longer in the set are dropped.
func (c *Compositor) InitializeLayout(covers []Cover) {
	unique := make([]Cover, 0, min(len(covers), MaxCovers))
	seen := make(map[string]bool, len(covers))
	for _, cover := range covers {
		if len(unique) == MaxCovers {
			break
		}
		if seen[cover.AlbumID] {
			continue
		}
		seen[cover.AlbumID] = true
		unique = append(unique, cover)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.covers = unique
	next := make(Layout, len(c.covers))
	for i, cover := range c.covers {
		if pos, ok := c.layout[cover.AlbumID]; ok {
			next[cover.AlbumID] = pos
			continue
		}
		next[cover.AlbumID], _ = Preset(i)
	}
	c.layout = next

	if c.drag != nil {
		if _, ok := c.layout[c.drag.albumID]; !ok {
			c.drag = nil
		}
	}
	if _, ok := c.layout[c.selection]; !ok {
		c.selection = ""
	}
}

// ResetLayout moves every placed cover back to its preset slot.
func (c *Compositor) ResetLayout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, cover := range c.covers {
		c.layout[cover.AlbumID], _ = Preset(i)
	}
}

// BeginDrag starts dragging a cover and selects it.
func (c *Compositor) BeginDrag(albumID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.layout[albumID]; !ok {
		return fmt.Errorf("begin drag %q: %w", albumID, ErrUnknownCover)
	}
	c.drag = &dragState{albumID: albumID}
	c.selection = albumID
	return nil
}

// UpdateDrag moves the dragged cover to the pointer. Each axis is clamped to
// [0, 90] percent of the canvas. It reports whether anything moved; without
// an active drag or with an empty canvas it does nothing.
func (c *Compositor) UpdateDrag(pointerX, pointerY float64, bounds Bounds) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drag == nil || bounds.empty() {
		return false
	}
	pos := c.layout[c.drag.albumID]
	pos.LeftPercent, pos.TopPercent = bounds.toPercent(pointerX, pointerY)
	c.layout[c.drag.albumID] = pos
	return true
}

// EndDrag releases the dragged cover where it is.
func (c *Compositor) EndDrag() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag = nil
}

// Dragging returns the album id being dragged, if any.
func (c *Compositor) Dragging() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return "", false
	}
	return c.drag.albumID, true
}

// Select marks a cover as selected without dragging it. An empty id clears
// the selection.
func (c *Compositor) Select(albumID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if albumID == "" {
		c.selection = ""
		return nil
	}
	if _, ok := c.layout[albumID]; !ok {
		return fmt.Errorf("select %q: %w", albumID, ErrUnknownCover)
	}
	c.selection = albumID
	return nil
}

// Selection returns the selected album id, if any.
func (c *Compositor) Selection() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection, c.selection != ""
}

// Move places a cover directly, clamping it like a drag would.
func (c *Compositor) Move(albumID string, pos Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.layout[albumID]; !ok {
		return fmt.Errorf("move %q: %w", albumID, ErrUnknownCover)
	}
	pos.LeftPercent = clampPercent(pos.LeftPercent)
	pos.TopPercent = clampPercent(pos.TopPercent)
	c.layout[albumID] = pos
	return nil
}

// Layout returns a copy of the current positions.
func (c *Compositor) Layout() Layout {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(Layout, len(c.layout))
	for id, pos := range c.layout {
		out[id] = pos
	}
	return out
}

// Covers returns the placed covers in slot order.
func (c *Compositor) Covers() []Cover {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Cover(nil), c.covers...)
}

type placement struct {
	cover Cover
	pos   Position
}

func (c *Compositor) placements() []placement {
	out := make([]placement, 0, len(c.covers))
	for _, cover := range c.covers {
		if pos, ok := c.layout[cover.AlbumID]; ok {
			out = append(out, placement{cover: cover, pos: pos})
		}
	}
	return out
}
