package errest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowgrove/witherlocate/internal/errest"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

func TestLCGRandRepeatable(t *testing.T) {
	a := errest.NewLCGRand()
	b := errest.NewLCGRand()
	for i := 0; i < 5; i++ {
		av, bv := a.Float64(), b.Float64()
		assert.Equal(t, av, bv)
		assert.GreaterOrEqual(t, av, 0.0)
		assert.Less(t, av, 1.0)
	}
}

func TestExhaustiveEstimateVerboseReportsWinningCombo(t *testing.T) {
	event := vec2.Point{X: 250000, Z: -150000}
	obsList := gridObservations(event, 160)
	nominal := nominalEstimate(t, obsList)

	radius, winner, err := errest.Exhaustive{}.EstimateVerbose(obsList, nominal, errest.NewLCGRand())
	require.NoError(t, err)
	assert.Greater(t, radius, 0.0)
	assert.Len(t, winner, len(obsList))
}

func TestOptimizedCornerEstimateVerboseMatchesEstimate(t *testing.T) {
	event := vec2.Point{X: 1000, Z: 1000}
	obsList := gridObservations(event, 500)
	nominal := nominalEstimate(t, obsList)

	radius, winner, err := errest.OptimizedCorner{}.EstimateVerbose(obsList, nominal, errest.NewLCGRand())
	require.NoError(t, err)

	plain, err := errest.OptimizedCorner{}.Estimate(obsList, nominal)
	require.NoError(t, err)

	assert.Equal(t, plain, radius)
	assert.Len(t, winner, len(obsList))
}
