package aspen

import (
	"fmt"
	"math"
)

// MaxDepth bounds the subdivision depth so cell coordinates fit comfortably
// in the packed region id.
const MaxDepth = 15

// Region is one cell of the fixed world subdivision grid.
type Region struct {
	CX, CY int
}

// id packs the region into a single integer map key.
func (r Region) id() uint64 {
	return uint64(uint32(r.CX))<<32 | uint64(uint32(r.CY))
}

// within reports whether r lies in the inclusive span lo..hi.
func (r Region) within(lo, hi Region) bool {
	return r.CX >= lo.CX && r.CX <= hi.CX && r.CY >= lo.CY && r.CY <= hi.CY
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d)", r.CX, r.CY)
}

// grid maps world coordinates in [0, size) to cells of edge divSize.
type grid struct {
	size         float64
	depth        int
	cellsPerAxis int
	divSize      float64
}

func newGrid(size float64, depth int) (grid, error) {
	if !(size > 0) || math.IsInf(size, 0) {
		return grid{}, fmt.Errorf("%w: world size %v must be positive", ErrInvalidConfig, size)
	}
	if depth < 0 || depth > MaxDepth {
		return grid{}, fmt.Errorf("%w: depth %d outside [0, %d]", ErrInvalidConfig, depth, MaxDepth)
	}
	n := 1 << depth
	return grid{
		size:         size,
		depth:        depth,
		cellsPerAxis: n,
		divSize:      size / float64(n),
	}, nil
}

// pointToRegion truncates p onto the grid. Boundary points belong to the
// higher-index cell; NaN fails the range check.
func (g grid) pointToRegion(p Vec2) (Region, error) {
	if !(p.X >= 0 && p.X < g.size) {
		return Region{}, fmt.Errorf("%w: x=%v outside [0, %v)", ErrOutOfBounds, p.X, g.size)
	}
	if !(p.Y >= 0 && p.Y < g.size) {
		return Region{}, fmt.Errorf("%w: y=%v outside [0, %v)", ErrOutOfBounds, p.Y, g.size)
	}
	return Region{CX: g.cell(p.X), CY: g.cell(p.Y)}, nil
}

func (g grid) cell(v float64) int {
	c := int(v / g.divSize)
	// v just below size can round up to cellsPerAxis.
	if c >= g.cellsPerAxis {
		c = g.cellsPerAxis - 1
	}
	return c
}

// regionBounds returns the world-space extent of a cell.
func (g grid) regionBounds(r Region) Rect {
	return Rect{
		X:      float64(r.CX) * g.divSize,
		Y:      float64(r.CY) * g.divSize,
		Width:  g.divSize,
		Height: g.divSize,
	}
}

// clip intersects r with the world and returns the inclusive min and max
// points of the result, the max edge made exclusive. ok is false when nothing
// of r lies inside the world.
func (g grid) clip(r Rect) (lo, hi Vec2, ok bool) {
	x0 := math.Max(r.X, 0)
	y0 := math.Max(r.Y, 0)
	x1 := math.Min(r.X+r.Width, g.size)
	y1 := math.Min(r.Y+r.Height, g.size)
	if !(x0 < x1 && y0 < y1) {
		return Vec2{}, Vec2{}, false
	}
	return Vec2{x0, y0}, Vec2{math.Nextafter(x1, x0), math.Nextafter(y1, y0)}, true
}
