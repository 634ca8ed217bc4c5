// Package region intersects per-observer angular wedges into the bounded
// convex polygon of points consistent with every observation (the feasible
// region), using Sutherland-Hodgman clipping against a huge bounding square.
//
// An alternative builder, PairwiseUnion, fuses wedges pairwise and unions the
// results, producing a non-convex "at least two observers agree" region that
// tolerates one outlier observer.
package region

import (
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// boundingExtent is the half-width of the initial huge bounding square, in
// blocks. It must dwarf any plausible feasible region.
const boundingExtent = 1e9

// insideTolScale scales the "inside" tolerance against boundingExtent, per
// spec: signed_distance <= 1e-9 * scale.
const insideTolScale = 1e-9

// crossingDenomFloor is the minimum |a*dx+b*dz| below which an edge is
// treated as parallel to the clip line and skipped rather than divided by a
// near-zero denominator.
const crossingDenomFloor = 1e-12

// boundingSquare returns the initial CCW polygon [-B,B]x[-B,B].
func boundingSquare() []vec2.Point {
	b := boundingExtent
	return []vec2.Point{
		{X: -b, Z: -b},
		{X: b, Z: -b},
		{X: b, Z: b},
		{X: -b, Z: b},
	}
}

// Intersect clips the huge bounding square against every half-plane of every
// wedge in wedges, returning the convex, counter-clockwise feasible region.
// Returns a nil polygon (not an error) if the region becomes empty partway
// through, or degenerates to fewer than three vertices (a point or a
// segment) -- an empty intersection is a legitimate outcome (mutually
// inconsistent observations), not a failure of the solver.
func Intersect(wedges []ray.Wedge) []vec2.Point {
	poly := boundingSquare()
	for _, w := range wedges {
		for _, h := range w.Planes {
			poly = clip(poly, h)
			if len(poly) < 3 {
				return nil
			}
		}
	}
	return poly
}

// clip runs one Sutherland-Hodgman pass of poly against half-plane h.
func clip(poly []vec2.Point, h ray.Halfplane) []vec2.Point {
	if len(poly) == 0 {
		return nil
	}
	tol := insideTolScale * boundingExtent
	var out []vec2.Point
	n := len(poly)
	for i := 0; i < n; i++ {
		curr := poly[i]
		next := poly[(i+1)%n]
		currIn := h.Inside(curr, tol)
		nextIn := h.Inside(next, tol)

		if currIn {
			out = appendNoDup(out, curr)
		}
		if currIn != nextIn {
			if x, ok := crossing(curr, next, h); ok {
				out = appendNoDup(out, x)
			}
		}
	}
	return out
}

// appendNoDup appends p unless it equals the last point already in out, so
// a vertex exactly on the clip boundary is never emitted twice.
func appendNoDup(out []vec2.Point, p vec2.Point) []vec2.Point {
	if len(out) > 0 && out[len(out)-1] == p {
		return out
	}
	return append(out, p)
}

// crossing finds the point where segment curr->next crosses half-plane h's
// boundary line, if the edge isn't (near-)parallel to it.
func crossing(curr, next vec2.Point, h ray.Halfplane) (vec2.Point, bool) {
	dx := next.X - curr.X
	dz := next.Z - curr.Z
	denom := h.A*dx + h.B*dz
	if denom < crossingDenomFloor && denom > -crossingDenomFloor {
		return vec2.Point{}, false
	}
	alpha := (h.C - (h.A*curr.X + h.B*curr.Z)) / denom
	return vec2.Point{X: curr.X + alpha*dx, Z: curr.Z + alpha*dz}, true
}

// PairwiseUnion fuses wedges pairwise (each pair's two wedges intersected
// into a small convex region) and returns the union of all pairwise
// regions as a slice of convex polygons. The union, taken as a set, is
// non-convex and contains every point that at least two observers agree on
// -- robust to one outlier observer, at the cost of convexity.
func PairwiseUnion(wedges []ray.Wedge) [][]vec2.Point {
	if len(wedges) < 2 {
		return nil
	}
	var regions [][]vec2.Point
	for i := 0; i < len(wedges); i++ {
		for j := i + 1; j < len(wedges); j++ {
			poly := Intersect([]ray.Wedge{wedges[i], wedges[j]})
			if len(poly) > 0 {
				regions = append(regions, poly)
			}
		}
	}
	return regions
}

// IsConvexCCW reports whether poly is convex, counter-clockwise, and has no
// duplicate adjacent vertices -- the invariant a non-empty Intersect result
// must guarantee.
func IsConvexCCW(poly []vec2.Point) bool {
	n := len(poly)
	if n < 3 {
		return n == 0
	}
	var signedArea float64
	sawPositive, sawNegative := false, false
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		c := poly[(i+2)%n]
		if a == b {
			return false
		}
		var ab, bc vec2.Point
		ab.Sub(&b, &a)
		bc.Sub(&c, &b)
		cross := ab.Cross(&bc)
		if cross > 1e-9 {
			sawPositive = true
		} else if cross < -1e-9 {
			sawNegative = true
		}
		signedArea += a.X*b.Z - b.X*a.Z
	}
	if sawPositive && sawNegative {
		return false
	}
	return signedArea > 0
}
