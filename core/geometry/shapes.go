package geometry

import "gonum.org/v1/gonum/spatial/r2"

// BoxShape is an axis-aligned bounding box reference implementation of
// Shape, used by tests and by collaborators that have not yet wired a real
// convex-hull engine. Min and Max are opposite corners in the map frame.
type BoxShape struct {
	Min, Max r2.Vec
}

// Source returns the underlying gonum box.
func (b *BoxShape) Source() any {
	return r2.Box{Min: b.Min, Max: b.Max}
}

// Overlaps reports whether the two boxes intersect.
func (b *BoxShape) Overlaps(other *BoxShape) bool {
	if other == nil {
		return false
	}
	ba, bb := r2.Box{Min: b.Min, Max: b.Max}, r2.Box{Min: other.Min, Max: other.Max}
	return ba.Min.X <= bb.Max.X && bb.Min.X <= ba.Max.X &&
		ba.Min.Y <= bb.Max.Y && bb.Min.Y <= ba.Max.Y
}

// NewUnitBox returns a 1x1 box centred at the origin, the "unit box shape"
// used throughout the test scenarios.
func NewUnitBox() *BoxShape {
	return &BoxShape{Min: r2.Vec{X: -0.5, Y: -0.5}, Max: r2.Vec{X: 0.5, Y: 0.5}}
}

// CircleShape is a circular footprint reference implementation of Shape.
type CircleShape struct {
	Center r2.Vec
	Radius float64
}

// Source returns the underlying centre/radius pair.
func (c *CircleShape) Source() any {
	return struct {
		Center r2.Vec
		Radius float64
	}{c.Center, c.Radius}
}

// Overlaps reports whether the two circles intersect.
func (c *CircleShape) Overlaps(other *CircleShape) bool {
	if other == nil {
		return false
	}
	dx := c.Center.X - other.Center.X
	dy := c.Center.Y - other.Center.Y
	r := c.Radius + other.Radius
	return dx*dx+dy*dy <= r*r
}
