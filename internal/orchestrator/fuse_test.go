package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowgrove/witherlocate/internal/errest"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/pattern"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

func TestFuseProducesCloseEstimateForGridObservers(t *testing.T) {
	event := vec2.Point{X: 400, Z: -120}
	observations := pattern.Generate(pattern.Grid, 4, event, 2000, 160)
	b := obs.Batch{Observations: observations, FirstAt: time.Now(), ServerLabel: "s1"}

	strat, err := errest.New(errest.NameLinear, 1)
	require.NoError(t, err)

	est := fuse(b, strat)
	assert.InDelta(t, event.X, est.X, 5)
	// hints truncate toward zero while rays aim at the unit-square center,
	// which skews each bearing by up to a block at the 160-block horizon.
	assert.InDelta(t, event.Z, est.Z, 10)
	assert.False(t, est.HasFlag(obs.InsufficientObservations))
	assert.False(t, est.HasFlag(obs.IllConditioned))
	assert.Greater(t, est.ErrorRadius, 0.0)
}

func TestFuseFlagsInsufficientObservations(t *testing.T) {
	b := obs.Batch{Observations: []obs.Observation{{ObserverID: "A"}}, FirstAt: time.Now()}
	strat, _ := errest.New(errest.NameLinear, 1)

	est := fuse(b, strat)
	assert.True(t, est.HasFlag(obs.InsufficientObservations))
	assert.True(t, est.ErrorRadius > 1e300)
}

func TestFuseCarriesContributingObservations(t *testing.T) {
	event := vec2.Point{X: 0, Z: 0}
	observations := pattern.Generate(pattern.Cross, 4, event, 1500, 160)
	b := obs.Batch{Observations: observations, FirstAt: time.Now(), ServerLabel: "s2"}
	strat, _ := errest.New(errest.NameLinear, 1)

	est := fuse(b, strat)
	assert.Len(t, est.Contributing, len(observations))
	assert.Equal(t, "s2", est.ServerLabel)
	assert.Equal(t, errest.NameLinear, est.EstimatorName)
}
