package errest

import (
	"github.com/hollowgrove/witherlocate/internal/intersect"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// OptimizedCorner is the O(2^n) estimator: for each observation, only the
// two unit-square corners that realize the wedge's ThetaMin/ThetaMax are
// considered (the other two are interior and cannot widen the wedge), so
// only 2^n min/max combinations are enumerated instead of 4^n. This is the
// default estimator for certification and offline analysis.
type OptimizedCorner struct{}

func (OptimizedCorner) Name() string { return "optimizedCorner" }

func (oc OptimizedCorner) Estimate(obsList []obs.Observation, nominal vec2.Point) (float64, error) {
	radius, _, err := oc.EstimateVerbose(obsList, nominal, NewLCGRand())
	return radius, err
}

// EstimateVerbose additionally reports which of the two min/max corners was
// assigned to each observation in the winning combination, breaking ties
// with rnd exactly as Exhaustive.EstimateVerbose does.
func (OptimizedCorner) EstimateVerbose(obsList []obs.Observation, nominal vec2.Point, rnd Rand) (float64, []ray.Choice, error) {
	n := len(obsList)
	choicePairs := make([][2]ray.Choice, n)
	for i, o := range obsList {
		minC, maxC, err := ray.MinMaxCorners(o)
		if err != nil {
			return 0, nil, err
		}
		choicePairs[i] = [2]ray.Choice{minC, maxC}
	}

	var maxDist float64
	var winners [][]ray.Choice
	rays := make([]ray.Ray, n)
	combo := make([]int, n)
	for {
		current := make([]ray.Choice, n)
		for i, o := range obsList {
			c := choicePairs[i][combo[i]]
			r, err := ray.ObservationToRay(o, c)
			if err != nil {
				return 0, nil, err
			}
			rays[i] = r
			current[i] = c
		}
		if res, err := intersect.Solve(rays); err == nil {
			d := vec2.Dist(res.Point, nominal)
			switch {
			case d > maxDist:
				maxDist = d
				winners = [][]ray.Choice{current}
			case d == maxDist:
				winners = append(winners, current)
			}
		}

		pos := 0
		for pos < n {
			combo[pos]++
			if combo[pos] < 2 {
				break
			}
			combo[pos] = 0
			pos++
		}
		if pos == n {
			break
		}
	}
	return maxDist, pickTieBreak(winners, rnd), nil
}
