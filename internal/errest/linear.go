package errest

import (
	"math"

	"github.com/hollowgrove/witherlocate/internal/intersect"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// Linear is the O(n) finite-difference estimator: it perturbs each
// observation's hint coordinate by jacobianDelta, re-solves the
// intersector, and bounds the error radius from the resulting Jacobians.
// Cheap and correct to first order; overestimates near-singular geometry.
// This is the default estimator for live operation.
type Linear struct{}

func (Linear) Name() string { return "linear" }

func (Linear) Estimate(obsList []obs.Observation, nominal vec2.Point) (float64, error) {
	var sumX, sumZ float64
	for i := range obsList {
		rxPlus, err := perturbedRays(obsList, i, jacobianDelta, 0)
		if err != nil {
			return 0, err
		}
		rxMinus, err := perturbedRays(obsList, i, -jacobianDelta, 0)
		if err != nil {
			return 0, err
		}
		rzPlus, err := perturbedRays(obsList, i, 0, jacobianDelta)
		if err != nil {
			return 0, err
		}
		rzMinus, err := perturbedRays(obsList, i, 0, -jacobianDelta)
		if err != nil {
			return 0, err
		}

		ePlusX, e1 := intersect.Solve(rxPlus)
		eMinusX, e2 := intersect.Solve(rxMinus)
		ePlusZ, e3 := intersect.Solve(rzPlus)
		eMinusZ, e4 := intersect.Solve(rzMinus)
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
			continue
		}

		dRx := vec2.Dist(ePlusX.Point, eMinusX.Point) / (2 * jacobianDelta)
		dRz := vec2.Dist(ePlusZ.Point, eMinusZ.Point) / (2 * jacobianDelta)
		sumX += dRx
		sumZ += dRz
	}

	radius := (sumX + sumZ) * 0.5
	return math.Abs(radius), nil
}
