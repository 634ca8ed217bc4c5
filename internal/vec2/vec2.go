// Package vec2 provides the 2-D point and vector arithmetic used throughout
// the fusion pipeline. Only the horizontal plane (x, z) is modeled; nothing
// here knows about y, which the rest of the system carries as metadata only.
package vec2

import "math"

// Point is a 2-D point or vector, (x, z) in block coordinates.
type Point struct {
	X, Z float64
}

// Add sets p = a + b and returns p.
func (p *Point) Add(a, b *Point) *Point {
	p.X = a.X + b.X
	p.Z = a.Z + b.Z
	return p
}

// Sub sets p = a - b and returns p.
func (p *Point) Sub(a, b *Point) *Point {
	p.X = a.X - b.X
	p.Z = a.Z - b.Z
	return p
}

// MulScalar sets p = a*s and returns p.
func (p *Point) MulScalar(a *Point, s float64) *Point {
	p.X = a.X * s
	p.Z = a.Z * s
	return p
}

// Dot returns p . q.
func (p *Point) Dot(q *Point) float64 {
	return p.X*q.X + p.Z*q.Z
}

// Cross returns the scalar z-component of p x q (treating both as 3-vectors
// with z=0).
func (p *Point) Cross(q *Point) float64 {
	return p.X*q.Z - p.Z*q.X
}

// Square returns p . p.
func (p *Point) Square() float64 {
	return p.X*p.X + p.Z*p.Z
}

// Len returns the Euclidean length of p.
func (p *Point) Len() float64 {
	return math.Sqrt(p.Square())
}

// Normalize sets p = a / |a| and returns p. The zero vector normalizes to
// itself.
func (p *Point) Normalize(a *Point) *Point {
	l := a.Len()
	if l == 0 {
		p.X, p.Z = 0, 0
		return p
	}
	p.X = a.X / l
	p.Z = a.Z / l
	return p
}

// Angle returns the bearing of p about the origin, in (-pi, pi], via
// math.Atan2(z, x).
func (p *Point) Angle() float64 {
	return math.Atan2(p.Z, p.X)
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Centroid returns the arithmetic mean of pts. Centroid of an empty slice is
// the origin.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range pts {
		c.X += p.X
		c.Z += p.Z
	}
	c.X /= float64(len(pts))
	c.Z /= float64(len(pts))
	return c
}
