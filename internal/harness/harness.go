// Package harness drives the fusion pipeline end to end against a known
// ground truth: given a set of observer positions and a true event, it
// reconstructs hints (Component A), builds rays and wedges (B), fuses them
// with an intersector and estimator (C/D), solves the feasible region (E),
// and reports how far the recovered estimate lies from the truth. It is the
// harness the test scenarios and cmd/witherharness are built on.
package harness

import (
	"math"

	"github.com/hollowgrove/witherlocate/internal/errest"
	"github.com/hollowgrove/witherlocate/internal/hint"
	"github.com/hollowgrove/witherlocate/internal/intersect"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/region"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// Result is the outcome of running one synthetic scenario through the
// pipeline.
type Result struct {
	Estimate       vec2.Point
	ErrorRadius    float64
	DistanceToTrue float64
	FeasibleRegion []vec2.Point
	IllConditioned bool
	Flags          []obs.ErrorKind
}

// ObserverSpec names an observer's position for scenario construction; the
// hint is reconstructed from it and the true event, mirroring what a real
// observer client would compute from its own view of the world.
type ObserverSpec struct {
	ID          string
	Pos         vec2.Point
	ViewDistance float64
}

// BuildObservations reconstructs one Observation per spec, as if each
// observer had genuinely observed trueEvent at viewDistance.
func BuildObservations(specs []ObserverSpec, trueEvent vec2.Point) []obs.Observation {
	out := make([]obs.Observation, 0, len(specs))
	for _, s := range specs {
		h := hint.Reconstruct(s.Pos, trueEvent, s.ViewDistance)
		out = append(out, obs.Observation{
			ObserverID:  s.ID,
			ObserverPos: s.Pos,
			Hint:        h,
		})
	}
	return out
}

// Run fuses observations with the named strategy and reports the result
// relative to trueEvent. This mirrors internal/orchestrator's fuse step but
// lives independently so the harness (and its tests) do not need a running
// Gate or sinks.
func Run(observations []obs.Observation, strategyName string, sigma float64, trueEvent vec2.Point) (Result, error) {
	strat, err := errest.New(strategyName, sigma)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if len(observations) < 2 {
		res.Flags = append(res.Flags, obs.InsufficientObservations)
		res.ErrorRadius = math.Inf(1)
		return res, nil
	}

	rays := make([]ray.Ray, 0, len(observations))
	wedges := make([]ray.Wedge, 0, len(observations))
	for _, o := range observations {
		r, err := ray.ObservationToRay(o, ray.Center)
		if err != nil {
			continue
		}
		rays = append(rays, r)
		if w, err := ray.ObservationToWedge(o); err == nil {
			wedges = append(wedges, w)
		} else {
			res.Flags = append(res.Flags, obs.AngleWrap)
		}
	}
	if len(rays) < 2 {
		res.Flags = append(res.Flags, obs.InsufficientObservations)
		res.ErrorRadius = math.Inf(1)
		return res, nil
	}

	soln, err := intersect.Solve(rays)
	if err != nil {
		res.Flags = append(res.Flags, obs.InsufficientObservations)
		res.ErrorRadius = math.Inf(1)
		return res, nil
	}
	res.Estimate = soln.Point
	res.DistanceToTrue = vec2.Dist(soln.Point, trueEvent)
	res.IllConditioned = soln.IllConditioned

	if soln.IllConditioned {
		res.Flags = append(res.Flags, obs.IllConditioned)
		res.ErrorRadius = math.Inf(1)
		return res, nil
	}

	radius, err := strat.Estimate(observations, soln.Point)
	if err != nil {
		res.ErrorRadius = math.Inf(1)
	} else {
		res.ErrorRadius = radius
	}

	if poly := region.Intersect(wedges); len(poly) > 0 {
		res.FeasibleRegion = poly
	} else {
		res.Flags = append(res.Flags, obs.EmptyFeasibleRegion)
	}
	return res, nil
}
