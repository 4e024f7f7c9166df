package aspen

import "math"

// Quad is a sprite's transformed rectangle: four world-space corners and a
// depth shared by all of them. Corners are named after the untransformed
// rectangle, so after a rotation TL is not necessarily the top-left-most
// point.
type Quad struct {
	TL, BL, BR, TR Vec2
	Depth          float64
}

// quadFromTransform maps the local rectangle (0,0)-(w,h) through m.
func quadFromTransform(m [6]float64, w, h, depth float64) Quad {
	var q Quad
	q.TL.X, q.TL.Y = transformPoint(m, 0, 0)
	q.BL.X, q.BL.Y = transformPoint(m, 0, h)
	q.BR.X, q.BR.Y = transformPoint(m, w, h)
	q.TR.X, q.TR.Y = transformPoint(m, w, 0)
	q.Depth = depth
	return q
}

// Corners returns the corners in vertex order: TL, BL, BR, TR.
func (q Quad) Corners() [4]Vec2 {
	return [4]Vec2{q.TL, q.BL, q.BR, q.TR}
}

// Width returns the length of the top edge.
func (q Quad) Width() float64 { return q.TR.Sub(q.TL).Len() }

// Height returns the length of the left edge.
func (q Quad) Height() float64 { return q.BL.Sub(q.TL).Len() }

// Center returns the midpoint of the diagonal.
func (q Quad) Center() Vec2 {
	return Vec2{(q.TL.X + q.BR.X) / 2, (q.TL.Y + q.BR.Y) / 2}
}

// Bounds returns the axis-aligned bounding rectangle of the four corners.
func (q Quad) Bounds() Rect {
	minX := math.Min(math.Min(q.TL.X, q.BL.X), math.Min(q.BR.X, q.TR.X))
	minY := math.Min(math.Min(q.TL.Y, q.BL.Y), math.Min(q.BR.Y, q.TR.Y))
	maxX := math.Max(math.Max(q.TL.X, q.BL.X), math.Max(q.BR.X, q.TR.X))
	maxY := math.Max(math.Max(q.TL.Y, q.BL.Y), math.Max(q.BR.Y, q.TR.Y))
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
