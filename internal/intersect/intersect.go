// Package intersect solves the overdetermined "closest point to n rays"
// problem: the least-squares point estimate that minimizes the sum of
// squared perpendicular distances to every ray.
package intersect

import (
	"math"

	"github.com/pkg/errors"

	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// detTolerance is the minimum |det A| below which the rays are treated as
// colinear/near-parallel and the solve falls back to a centroid.
const detTolerance = 1e-8

// ErrInsufficientObservations is returned when fewer than two rays are
// given.
var ErrInsufficientObservations = errors.New("intersect: fewer than two rays")

// Result is the outcome of Solve.
type Result struct {
	Point vec2.Point
	// IllConditioned is true if |det A| < detTolerance; Point then holds the
	// centroid of ray origins rather than a true least-squares solution.
	IllConditioned bool
}

// Solve finds E minimizing sum_i || (E-o_i) - ((E-o_i).d_i) d_i ||^2 for the
// given rays, by solving the 2x2 normal-equations system A*E = b with
//
//	A = sum_i (I - d_i d_i^T)
//	b = sum_i (I - d_i d_i^T) o_i
//
// The result is invariant to the order of rays, and is translation- and
// scale-equivariant.
//
// Returns ErrInsufficientObservations if fewer than two rays are given. If
// the rays are colinear or near-parallel (|det A| < 1e-8), Result.Point
// falls back to the centroid of ray origins and Result.IllConditioned is
// set; this is not returned as an error since a degraded estimate is still
// useful to callers.
func Solve(rays []ray.Ray) (Result, error) {
	if len(rays) < 2 {
		return Result{}, ErrInsufficientObservations
	}

	var a11, a12, a22, b1, b2 float64
	for _, r := range rays {
		dx, dz := r.Direction.X, r.Direction.Z
		// M = I - d d^T
		m11 := 1 - dx*dx
		m12 := -dx * dz
		m22 := 1 - dz*dz

		a11 += m11
		a12 += m12
		a22 += m22

		b1 += m11*r.Origin.X + m12*r.Origin.Z
		b2 += m12*r.Origin.X + m22*r.Origin.Z
	}

	det := a11*a22 - a12*a12
	if math.Abs(det) < detTolerance {
		origins := make([]vec2.Point, len(rays))
		for i, r := range rays {
			origins[i] = r.Origin
		}
		return Result{Point: vec2.Centroid(origins), IllConditioned: true}, nil
	}

	invDet := 1 / det
	x := (a22*b1 - a12*b2) * invDet
	z := (a11*b2 - a12*b1) * invDet
	return Result{Point: vec2.Point{X: x, Z: z}}, nil
}
