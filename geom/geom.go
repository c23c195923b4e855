package geom

import "math"

// Vec2 represents a 2D vector in world units
type Vec2 struct {
	X float64
	Y float64
}

// Add returns v + o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// IsFinite reports whether both components are neither NaN nor infinite
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Rect is an axis-aligned rectangle with a top-left origin.
// Width and height are expected to be non-negative.
type Rect struct {
	X, Y float64
	W, H float64
}

// NewRect creates a rectangle from its top-left corner and size
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Left returns the x-coordinate of the left edge
func (r Rect) Left() float64 { return r.X }

// Right returns the x-coordinate of the right edge
func (r Rect) Right() float64 { return r.X + r.W }

// Top returns the y-coordinate of the top edge
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the y-coordinate of the bottom edge
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Min returns the top-left corner
func (r Rect) Min() Vec2 { return Vec2{X: r.X, Y: r.Y} }

// Corners returns top-left, top-right, bottom-right and bottom-left, in that order
func (r Rect) Corners() [4]Vec2 {
	return [4]Vec2{
		{X: r.Left(), Y: r.Top()},
		{X: r.Right(), Y: r.Top()},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.Left(), Y: r.Bottom()},
	}
}

// Intersects tests whether two rectangles overlap.
// With inclusive set, rectangles that only share an edge count as intersecting.
func (r Rect) Intersects(other Rect, inclusive bool) bool {
	if inclusive {
		return other.Right() >= r.Left() && other.Left() <= r.Right() &&
			other.Bottom() >= r.Top() && other.Top() <= r.Bottom()
	}
	return other.Right() > r.Left() && other.Left() < r.Right() &&
		other.Bottom() > r.Top() && other.Top() < r.Bottom()
}

// OverlapX returns the length of the horizontal overlap, or a value <= 0 when
// the horizontal spans are disjoint.
func (r Rect) OverlapX(other Rect) float64 {
	return min(r.Right(), other.Right()) - max(r.Left(), other.Left())
}

// OverlapY returns the length of the vertical overlap, or a value <= 0 when
// the vertical spans are disjoint.
func (r Rect) OverlapY(other Rect) float64 {
	return min(r.Bottom(), other.Bottom()) - max(r.Top(), other.Top())
}

// Translate returns the rectangle moved by d
func (r Rect) Translate(d Vec2) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}

// Contains returns true if the point lies inside the rectangle (edges included)
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Clamp restricts a value to be within [lo, hi]
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
