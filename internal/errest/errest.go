// Package errest implements four interchangeable error-radius estimation
// strategies: exhaustive-corner, optimized-corner, linear propagation, and
// covariance propagation. Each is exposed behind the single Strategy
// capability so the orchestrator never needs a conditional ladder over
// which one is configured.
package errest

import (
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// Strategy estimates the error radius of a nominal point estimate given the
// full observation list that produced it.
type Strategy interface {
	// Name identifies the strategy for logs and config.
	Name() string
	// Estimate returns the error radius for nominal, computed from obsList.
	Estimate(obsList []obs.Observation, nominal vec2.Point) (float64, error)
}

// jacobianDelta is the finite-difference perturbation used by the linear
// estimator, in block coordinates of the hint's unit square (i.e. a
// fraction of one block).
const jacobianDelta = 1e-3

// sigmaDefault is a positive placeholder; callers using NewCovariance
// should supply their own configured sigma.
const sigmaDefault = 1.0

// perturbedRays rebuilds the ray list from obsList with observation i's hint
// shifted by (dx, dz), for finite-difference Jacobians.
func perturbedRays(obsList []obs.Observation, i int, dx, dz float64) ([]ray.Ray, error) {
	rays := make([]ray.Ray, 0, len(obsList))
	for j, o := range obsList {
		if j == i {
			center := o.Hint.UnitSquareCenter()
			center.X += dx
			center.Z += dz
			var dir vec2.Point
			dir.Sub(&center, &o.ObserverPos)
			dir.Normalize(&dir)
			rays = append(rays, ray.Ray{Origin: o.ObserverPos, Direction: dir})
			continue
		}
		r, err := ray.ObservationToRay(o, ray.Center)
		if err != nil {
			return nil, err
		}
		rays = append(rays, r)
	}
	return rays, nil
}

// baseRays builds the nominal ray list (unperturbed) from obsList.
func baseRays(obsList []obs.Observation) ([]ray.Ray, error) {
	rays := make([]ray.Ray, 0, len(obsList))
	for _, o := range obsList {
		r, err := ray.ObservationToRay(o, ray.Center)
		if err != nil {
			return nil, err
		}
		rays = append(rays, r)
	}
	return rays, nil
}

// cornerCombos enumerates every assignment of one of 4 corners to each of n
// observations: 4^n combinations. Used by ExhaustiveCorner.
func cornerCombos(obsList []obs.Observation, visit func(rays []ray.Ray) error) error {
	return cornerCombosChoices(obsList, func(_ []ray.Choice, rays []ray.Ray) error {
		return visit(rays)
	})
}

// cornerCombosChoices is cornerCombos but also hands the visit callback the
// Choice assigned to each observation, so callers can report which
// assignment produced a given result.
func cornerCombosChoices(obsList []obs.Observation, visit func(choices []ray.Choice, rays []ray.Ray) error) error {
	n := len(obsList)
	idx := make([]int, n)
	rays := make([]ray.Ray, n)
	choices := make([]ray.Choice, n)
	for {
		for i, o := range obsList {
			c := ray.Choice(int(ray.Corner0) + idx[i])
			r, err := ray.ObservationToRay(o, c)
			if err != nil {
				return err
			}
			rays[i] = r
			choices[i] = c
		}
		if err := visit(choices, rays); err != nil {
			return err
		}
		// odometer increment
		pos := 0
		for pos < n {
			idx[pos]++
			if idx[pos] < 4 {
				break
			}
			idx[pos] = 0
			pos++
		}
		if pos == n {
			return nil
		}
	}
}
