package orchestrator

import (
	"math"

	"github.com/hollowgrove/witherlocate/internal/errest"
	"github.com/hollowgrove/witherlocate/internal/intersect"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/region"
)

// fuse runs one sealed batch through the ray model, intersector, error
// estimator and region solver, producing the EventEstimate the orchestrator
// hands to its sinks. It is pure and allocation-only -- no I/O -- so it can
// run synchronously on the orchestrator's dispatch path.
func fuse(b obs.Batch, strat errest.Strategy) obs.EventEstimate {
	est := obs.EventEstimate{
		ServerLabel:     b.ServerLabel,
		FirstObservedAt: b.FirstAt,
		Contributing:    b.Observations,
		EstimatorName:   strat.Name(),
	}

	if len(b.Observations) < 2 {
		est.Flags = append(est.Flags, obs.InsufficientObservations)
		est.ErrorRadius = math.Inf(1)
		return est
	}

	rays := make([]ray.Ray, 0, len(b.Observations))
	wedges := make([]ray.Wedge, 0, len(b.Observations))
	var ySum float64
	for _, o := range b.Observations {
		r, err := ray.ObservationToRay(o, ray.Center)
		if err != nil {
			continue
		}
		rays = append(rays, r)
		ySum += o.ObserverY

		w, err := ray.ObservationToWedge(o)
		if err != nil {
			est.Flags = append(est.Flags, obs.AngleWrap)
			continue
		}
		wedges = append(wedges, w)
	}

	if len(rays) < 2 {
		est.Flags = append(est.Flags, obs.InsufficientObservations)
		est.ErrorRadius = math.Inf(1)
		return est
	}
	est.Y = ySum / float64(len(rays))

	soln, err := intersect.Solve(rays)
	if err != nil {
		est.Flags = append(est.Flags, obs.InsufficientObservations)
		est.ErrorRadius = math.Inf(1)
		return est
	}
	est.X, est.Z = soln.Point.X, soln.Point.Z
	if soln.IllConditioned {
		est.Flags = append(est.Flags, obs.IllConditioned)
		est.ErrorRadius = math.Inf(1)
		return est
	}

	radius, err := strat.Estimate(b.Observations, soln.Point)
	if err != nil {
		est.Flags = append(est.Flags, obs.EstimatorDegraded)
		radius = math.Inf(1)
	}
	est.ErrorRadius = radius

	if poly := region.Intersect(wedges); len(poly) > 0 {
		est.FeasibleRegion = poly
	} else {
		est.Flags = append(est.Flags, obs.EmptyFeasibleRegion)
	}

	return est
}
