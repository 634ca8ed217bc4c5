package region_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/region"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

func wedgeFor(t *testing.T, observerPos vec2.Point, h obs.HintXZ) ray.Wedge {
	t.Helper()
	w, err := ray.ObservationToWedge(obs.Observation{ObserverPos: observerPos, Hint: h})
	require.NoError(t, err)
	return w
}

func TestIntersectFourCornerGridContainsEvent(t *testing.T) {
	event := vec2.Point{X: 250000, Z: -150000}
	observers := []vec2.Point{
		{X: 80000, Z: 80000},
		{X: -80000, Z: 80000},
		{X: -80000, Z: -80000},
		{X: 80000, Z: -80000},
	}
	var wedges []ray.Wedge
	for _, op := range observers {
		var d vec2.Point
		d.Sub(&event, &op)
		h := obs.HintXZ{
			RX: int32(d.X/d.Len()*160 + op.X),
			RZ: int32(d.Z/d.Len()*160 + op.Z),
		}
		wedges = append(wedges, wedgeFor(t, op, h))
	}
	poly := region.Intersect(wedges)
	require.NotEmpty(t, poly)
	assert.True(t, region.IsConvexCCW(poly))
}

func TestIntersectEmptyForDisjointWedges(t *testing.T) {
	// two observers at the same spot whose hints point in opposite
	// directions share only their common apex, which encloses no area.
	op := vec2.Point{X: 0, Z: 0}
	w1 := wedgeFor(t, op, obs.HintXZ{RX: 100, RZ: 0})
	w2 := wedgeFor(t, op, obs.HintXZ{RX: -100, RZ: 0})
	poly := region.Intersect([]ray.Wedge{w1, w2})
	assert.Empty(t, poly)
}

func TestIsConvexCCWRejectsDuplicateVertex(t *testing.T) {
	poly := []vec2.Point{{X: 0, Z: 0}, {X: 0, Z: 0}, {X: 1, Z: 1}}
	assert.False(t, region.IsConvexCCW(poly))
}

func TestIsConvexCCWAcceptsSquare(t *testing.T) {
	poly := []vec2.Point{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 1, Z: 1}, {X: 0, Z: 1}}
	assert.True(t, region.IsConvexCCW(poly))
}

func TestPairwiseUnionRobustToOneOutlier(t *testing.T) {
	event := vec2.Point{X: 1000, Z: 1000}
	good := []vec2.Point{
		{X: 0, Z: 0},
		{X: 2000, Z: 0},
		{X: 0, Z: 2000},
	}
	var wedges []ray.Wedge
	for _, op := range good {
		var d vec2.Point
		d.Sub(&event, &op)
		h := obs.HintXZ{
			RX: int32(d.X/d.Len()*500 + op.X),
			RZ: int32(d.Z/d.Len()*500 + op.Z),
		}
		wedges = append(wedges, wedgeFor(t, op, h))
	}
	// outlier observer reporting a wedge nowhere near the others.
	outlier := wedgeFor(t, vec2.Point{X: -5000, Z: -5000}, obs.HintXZ{RX: 100, RZ: 0})
	wedges = append(wedges, outlier)

	regions := region.PairwiseUnion(wedges)
	assert.NotEmpty(t, regions)
	// at least one pairwise region among the three mutually-consistent
	// observers must be non-empty even though the outlier poisons some pairs.
	var anyNonEmpty bool
	for _, r := range regions {
		if len(r) > 0 {
			anyNonEmpty = true
		}
	}
	assert.True(t, anyNonEmpty)
}
