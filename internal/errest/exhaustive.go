package errest

import (
	"github.com/hollowgrove/witherlocate/internal/intersect"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// Exhaustive is the authoritative O(4^n) corner estimator: for every corner
// assignment over the n observations, it solves the intersector and takes
// the maximum distance from the nominal estimate. Intended for n <= 6.
type Exhaustive struct{}

func (Exhaustive) Name() string { return "exhaustive" }

func (e Exhaustive) Estimate(obsList []obs.Observation, nominal vec2.Point) (float64, error) {
	radius, _, err := e.EstimateVerbose(obsList, nominal, NewLCGRand())
	return radius, err
}

// EstimateVerbose additionally reports which corner assignment realized the
// maximum distance. When several assignments tie for the max (within
// floating-point equality), rnd breaks the tie -- this is reporting detail
// only, since the radius itself is identical whichever tied combination is
// named.
func (Exhaustive) EstimateVerbose(obsList []obs.Observation, nominal vec2.Point, rnd Rand) (float64, []ray.Choice, error) {
	var maxDist float64
	var winners [][]ray.Choice

	err := cornerCombosChoices(obsList, func(choices []ray.Choice, rays []ray.Ray) error {
		res, err := intersect.Solve(rays)
		if err != nil {
			return nil
		}
		d := vec2.Dist(res.Point, nominal)
		switch {
		case d > maxDist:
			maxDist = d
			winners = [][]ray.Choice{append([]ray.Choice(nil), choices...)}
		case d == maxDist:
			winners = append(winners, append([]ray.Choice(nil), choices...))
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return maxDist, pickTieBreak(winners, rnd), nil
}

func pickTieBreak(winners [][]ray.Choice, rnd Rand) []ray.Choice {
	if len(winners) == 0 {
		return nil
	}
	idx := int(rnd.Float64() * float64(len(winners)))
	if idx >= len(winners) {
		idx = len(winners) - 1
	}
	return winners[idx]
}
