package errest_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowgrove/witherlocate/internal/errest"
	"github.com/hollowgrove/witherlocate/internal/hint"
	"github.com/hollowgrove/witherlocate/internal/intersect"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

func gridObservations(event vec2.Point, viewDistance float64) []obs.Observation {
	positions := []vec2.Point{
		{X: 80000, Z: 80000},
		{X: -80000, Z: 80000},
		{X: -80000, Z: -80000},
		{X: 80000, Z: -80000},
	}
	var out []obs.Observation
	for i, p := range positions {
		out = append(out, obs.Observation{
			ObserverID:  string(rune('A' + i)),
			ObserverPos: p,
			Hint:        hint.Reconstruct(p, event, viewDistance),
		})
	}
	return out
}

func nominalEstimate(t *testing.T, obsList []obs.Observation) vec2.Point {
	t.Helper()
	var rays []ray.Ray
	for _, o := range obsList {
		r, err := ray.ObservationToRay(o, ray.Center)
		require.NoError(t, err)
		rays = append(rays, r)
	}
	res, err := intersect.Solve(rays)
	require.NoError(t, err)
	return res.Point
}

func TestLinearAndOptimizedCornerAgreeRoughly(t *testing.T) {
	event := vec2.Point{X: 250000, Z: -150000}
	obsList := gridObservations(event, 160)
	nominal := nominalEstimate(t, obsList)

	linear, err := errest.New(errest.NameLinear, 0)
	require.NoError(t, err)
	lr, err := linear.Estimate(obsList, nominal)
	require.NoError(t, err)

	opt, err := errest.New(errest.NameOptimizedCorner, 0)
	require.NoError(t, err)
	or, err := opt.Estimate(obsList, nominal)
	require.NoError(t, err)

	assert.Greater(t, lr, 0.0)
	assert.Greater(t, or, 0.0)
	assert.InEpsilon(t, or, lr, 0.5)
}

func TestExhaustiveVsOptimizedCornerAgreeForSmallN(t *testing.T) {
	event := vec2.Point{X: 1000, Z: 1000}
	obsList := gridObservations(event, 500)
	nominal := nominalEstimate(t, obsList)

	ex, err := errest.New(errest.NameExhaustive, 0)
	require.NoError(t, err)
	exr, err := ex.Estimate(obsList, nominal)
	require.NoError(t, err)

	opt, err := errest.New(errest.NameOptimizedCorner, 0)
	require.NoError(t, err)
	or, err := opt.Estimate(obsList, nominal)
	require.NoError(t, err)

	// optimized-corner only drops interior corners, so for a well-posed
	// layout it must match the exhaustive worst case exactly.
	assert.InDelta(t, exr, or, 1e-6)
}

func TestLinearConsistencyWithExhaustive(t *testing.T) {
	// invariant #5: linear.errorRadius <= exhaustive.errorRadius*1.5 + 0.5
	// for well-conditioned layouts.
	event := vec2.Point{X: 5000, Z: -3000}
	obsList := gridObservations(event, 2000)
	nominal := nominalEstimate(t, obsList)

	ex, err := errest.New(errest.NameExhaustive, 0)
	require.NoError(t, err)
	exr, err := ex.Estimate(obsList, nominal)
	require.NoError(t, err)

	linear, err := errest.New(errest.NameLinear, 0)
	require.NoError(t, err)
	lr, err := linear.Estimate(obsList, nominal)
	require.NoError(t, err)

	assert.LessOrEqual(t, lr, exr*1.5+0.5)
}

func TestCovarianceIllConditionedReturnsInfinity(t *testing.T) {
	obsList := []obs.Observation{
		{ObserverPos: vec2.Point{X: 0, Z: 0}, Hint: obs.HintXZ{RX: 100, RZ: 0}},
		{ObserverPos: vec2.Point{X: 1000, Z: 0}, Hint: obs.HintXZ{RX: 1100, RZ: 0}},
	}
	cov, err := errest.New(errest.NameCovariance, 1.0)
	require.NoError(t, err)
	r, err := cov.Estimate(obsList, vec2.Point{X: 500})
	require.NoError(t, err)
	assert.True(t, math.IsInf(r, 1))
}

func TestNewUnknownEstimator(t *testing.T) {
	_, err := errest.New("bogus", 0)
	assert.Error(t, err)
}
