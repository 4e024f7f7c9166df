package aspen

import (
	"errors"
	"math"
)

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// TopLeft returns the minimum corner.
func (r Rect) TopLeft() Vec2 { return Vec2{r.X, r.Y} }

// BottomRight returns the maximum corner.
func (r Rect) BottomRight() Vec2 { return Vec2{r.X + r.Width, r.Y + r.Height} }

// Pad grows the rectangle by d on every side.
func (r Rect) Pad(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Layer depth ranges. UI layers and world layers never share a depth value.
const (
	MaxUILayer     = 127
	WorldDepthBase = 128
)

// LayerDepth converts a layer tag to the depth value stored on vertices.
func LayerDepth(layer uint8, isUI bool) (float64, error) {
	if isUI {
		if layer > MaxUILayer {
			return 0, ErrLayerRange
		}
		return float64(layer), nil
	}
	return WorldDepthBase + float64(layer), nil
}

// Errors returned by the scene and partition map. All are caller-correctable
// and every operation that returns one leaves prior state unmodified.
var (
	ErrOutOfBounds     = errors.New("aspen: point out of bounds")
	ErrUnknownTexture  = errors.New("aspen: unknown texture")
	ErrUnknownSequence = errors.New("aspen: unknown sequence")
	ErrInvalidKey      = errors.New("aspen: invalid key")
	ErrRegionNotFound  = errors.New("aspen: region not present")
	ErrStaleSprite     = errors.New("aspen: stale sprite id")
	ErrSceneDisposed   = errors.New("aspen: scene disposed")
	ErrLayerRange      = errors.New("aspen: ui layer out of range")
	ErrDegenerate      = errors.New("aspen: degenerate sprite geometry")
	ErrInvalidConfig   = errors.New("aspen: invalid config")
)
