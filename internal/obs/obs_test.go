package obs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

func TestUnitSquareCenter(t *testing.T) {
	h := obs.HintXZ{RX: 5, RZ: -3}
	assert.Equal(t, vec2.Point{X: 5.5, Z: -2.5}, h.UnitSquareCenter())
}

func TestCorners(t *testing.T) {
	h := obs.HintXZ{RX: 1, RZ: 1}
	want := []vec2.Point{
		{X: 1, Z: 1},
		{X: 2, Z: 1},
		{X: 1, Z: 2},
		{X: 2, Z: 2},
	}
	for k, w := range want {
		assert.Equal(t, w, h.Corner(k), "corner %d", k)
	}
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "ILL_CONDITIONED", obs.IllConditioned.String())
	assert.Equal(t, "NONE", obs.NoError.String())
}

func TestHasFlag(t *testing.T) {
	e := &obs.EventEstimate{Flags: []obs.ErrorKind{obs.EmptyFeasibleRegion}}
	assert.True(t, e.HasFlag(obs.EmptyFeasibleRegion))
	assert.False(t, e.HasFlag(obs.IllConditioned))
}
