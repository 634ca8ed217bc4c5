// Package ray converts an Observation into geometric primitives: a
// best-estimate Ray for the least-squares intersector, and a Wedge (angular
// uncertainty region) with its two bounding Halfplanes for the feasible
// region solver.
package ray

import (
	"math"

	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// Ray is a point-and-unit-direction ray: origin + t*direction, t >= 0.
type Ray struct {
	Origin    vec2.Point
	Direction vec2.Point // unit length
}

// Choice selects which representative point of the hint's unit square a Ray
// is built through.
type Choice int

const (
	// Center builds the ray through (rx+0.5, rz+0.5), the canonical nominal
	// choice.
	Center Choice = iota
	// Corner0..Corner3 build the ray through one of the four unit-square
	// corners (k = Corner0..Corner3 - Corner0).
	Corner0
	Corner1
	Corner2
	Corner3
)

// ErrObserverInSquare is returned when the observer's own position falls
// inside the hint's unit square, which makes a direction undefined.
var ErrObserverInSquare = errObserverInSquare{}

type errObserverInSquare struct{}

func (errObserverInSquare) Error() string {
	return "ray: observer position lies inside its own hint unit square"
}

// ObservationToRay builds a Ray from o using the representative point chosen
// by choice.
func ObservationToRay(o obs.Observation, choice Choice) (Ray, error) {
	var q vec2.Point
	switch choice {
	case Center:
		q = o.Hint.UnitSquareCenter()
	case Corner0, Corner1, Corner2, Corner3:
		q = o.Hint.Corner(int(choice - Corner0))
	default:
		q = o.Hint.UnitSquareCenter()
	}

	var dir vec2.Point
	dir.Sub(&q, &o.ObserverPos)
	if dir.Square() == 0 {
		return Ray{}, ErrObserverInSquare
	}
	var unit vec2.Point
	unit.Normalize(&dir)
	return Ray{Origin: o.ObserverPos, Direction: unit}, nil
}

// Halfplane is the region a*x + b*z <= c.
type Halfplane struct {
	A, B, C float64
}

// Inside reports whether p satisfies h within the given tolerance (tol >= 0
// widens the region slightly, matching the region solver's boundary
// tolerance).
func (h Halfplane) Inside(p vec2.Point, tol float64) bool {
	return h.A*p.X+h.B*p.Z <= h.C+tol
}

// Wedge is the angular uncertainty region at one observer: the set of rays
// from ObserverPos through any point in the hint's unit square, described by
// the angular interval [ThetaMin, ThetaMax] and realized as two bounding
// half-planes.
type Wedge struct {
	ObserverPos        vec2.Point
	ThetaMin, ThetaMax float64
	Planes             [2]Halfplane
}

// ObservationToWedge computes the Wedge for o: the angular span of the four
// corners of the hint's unit square as seen from ObserverPos, unwrapped if
// it straddles +/-pi, with two oriented bounding half-planes.
//
// Returns ErrObserverInSquare if the observer lies inside the unit square --
// a hint is always at least some distance away for any event worth
// reporting, so this indicates malformed input rather than normal operation.
func ObservationToWedge(o obs.Observation) (Wedge, error) {
	op := o.ObserverPos

	angles, err := cornerAngles(o)
	if err != nil {
		return Wedge{}, err
	}

	minK, maxK := argMinMax(angles)
	thetaMin, thetaMax := angles[minK], angles[maxK]
	if thetaMax-thetaMin >= math.Pi {
		// straddling the observer means this isn't a valid far-away hint;
		// surface it distinctly from a plain wrap so callers can flag
		// ANGLE_WRAP rather than silently accepting a degenerate wedge.
		return Wedge{}, ErrObserverInSquare
	}

	w := Wedge{ObserverPos: op, ThetaMin: thetaMin, ThetaMax: thetaMax}
	thetaMid := (thetaMin + thetaMax) * 0.5
	w.Planes[0] = boundingPlane(op, thetaMin, thetaMid)
	w.Planes[1] = boundingPlane(op, thetaMax, thetaMid)
	return w, nil
}

// MinMaxCorners returns the Choice values of the two unit-square corners of
// o that realize ThetaMin and ThetaMax as seen from the observer -- the
// other two corners are interior to the wedge and cannot widen it. Used by
// the optimized-corner estimator to skip the interior pair.
func MinMaxCorners(o obs.Observation) (minChoice, maxChoice Choice, err error) {
	angles, err := cornerAngles(o)
	if err != nil {
		return 0, 0, err
	}
	minK, maxK := argMinMax(angles)
	return Corner0 + Choice(minK), Corner0 + Choice(maxK), nil
}

// cornerAngles returns the bearing from o.ObserverPos to each of the hint's
// four corners, unwrapped into a mutually contiguous representation if the
// raw bearings straddle the +/-pi discontinuity.
func cornerAngles(o obs.Observation) ([4]float64, error) {
	op := o.ObserverPos
	var angles [4]float64
	for k := 0; k < 4; k++ {
		c := o.Hint.Corner(k)
		var d vec2.Point
		d.Sub(&c, &op)
		if d.Square() == 0 {
			return angles, ErrObserverInSquare
		}
		angles[k] = d.Angle()
	}
	return unwrap(angles), nil
}

// argMinMax returns the indices of the smallest and largest of angles.
func argMinMax(angles [4]float64) (minK, maxK int) {
	for k, a := range angles {
		if a < angles[minK] {
			minK = k
		}
		if a > angles[maxK] {
			maxK = k
		}
	}
	return minK, maxK
}

// unwrap returns angles unwrapped across the +/-pi discontinuity, choosing
// whichever representation (raw, or all-non-negative) yields the smaller
// span -- the contiguous one -- so min/max across the result are never
// wrongly computed from corners that are actually clustered across the
// seam.
func unwrap(angles [4]float64) [4]float64 {
	rawMin, rawMax := angles[0], angles[0]
	for _, a := range angles[1:] {
		if a < rawMin {
			rawMin = a
		}
		if a > rawMax {
			rawMax = a
		}
	}
	if rawMax-rawMin < math.Pi {
		return angles
	}

	var shifted [4]float64
	smin, smax := angles[0], angles[0]
	for i, a := range angles {
		if a < 0 {
			a += 2 * math.Pi
		}
		shifted[i] = a
		if i == 0 {
			smin, smax = a, a
			continue
		}
		if a < smin {
			smin = a
		}
		if a > smax {
			smax = a
		}
	}
	if smax-smin < rawMax-rawMin {
		return shifted
	}
	return angles
}

// boundingPlane builds the line a*x+b*z=c through origin at angle theta,
// oriented so that the point at thetaMid, a large radius away, lies on the
// <= c side.
func boundingPlane(origin vec2.Point, theta, thetaMid float64) Halfplane {
	sinT, cosT := math.Sin(theta), math.Cos(theta)
	a, b := -sinT, cosT
	c := a*origin.X + b*origin.Z

	const testRadius = 1e6
	test := vec2.Point{
		X: origin.X + testRadius*math.Cos(thetaMid),
		Z: origin.Z + testRadius*math.Sin(thetaMid),
	}
	if a*test.X+b*test.Z > c {
		a, b, c = -a, -b, -c
	}
	return Halfplane{A: a, B: b, C: c}
}
