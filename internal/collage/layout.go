package collage

import "math"

// Position places a cover's top-left corner as a percentage of the canvas,
// rotated about the cover's center.
type Position struct {
	TopPercent  float64 `yaml:"top"`
	LeftPercent float64 `yaml:"left"`
	Rotation    float64 `yaml:"rotation"`
}

// Layout maps album ids to positions.
type Layout map[string]Position

// maxPercent keeps a dragged cover's corner far enough from the right and
// bottom edges that the tile stays on the canvas.
const maxPercent = 90

var presets = [...]Position{
	{10, 5, -5},
	{15, 25, 3},
	{5, 45, -2},
	{20, 65, 4},
	{8, 80, -3},
	{35, 10, 2},
	{40, 30, -4},
	{30, 50, 1},
	{45, 70, -2},
	{35, 85, 3},
	{60, 15, -1},
	{65, 35, 2},
	{55, 55, -3},
	{70, 75, 1},
	{60, 90, -2},
	{80, 20, 2},
}

// Preset returns the seed position for the i'th cover.
func Preset(i int) (Position, bool) {
	if i < 0 || i >= len(presets) {
		return Position{}, false
	}
	return presets[i], true
}

// Bounds is the on-screen rectangle of the canvas, in the same units as
// pointer coordinates.
type Bounds struct {
	Left, Top     float64
	Width, Height float64
}

func (b Bounds) empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// toPercent converts a pointer location into clamped canvas percentages.
func (b Bounds) toPercent(x, y float64) (left, top float64) {
	left = clampPercent((x - b.Left) / b.Width * 100)
	top = clampPercent((y - b.Top) / b.Height * 100)
	return left, top
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(maxPercent, v))
}
