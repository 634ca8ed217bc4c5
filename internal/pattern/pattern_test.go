package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hollowgrove/witherlocate/internal/pattern"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

func TestGenerateGridCount(t *testing.T) {
	event := vec2.Point{X: 100, Z: 100}
	got := pattern.Generate(pattern.Grid, 9, event, 1000, 160)
	assert.Len(t, got, 9)
}

func TestGenerateCircleDistinctPositions(t *testing.T) {
	event := vec2.Point{X: 0, Z: 0}
	got := pattern.Generate(pattern.Circle, 6, event, 2000, 160)
	assert.Len(t, got, 6)
	seen := map[vec2.Point]bool{}
	for _, o := range got {
		assert.False(t, seen[o.ObserverPos], "duplicate position %v", o.ObserverPos)
		seen[o.ObserverPos] = true
	}
}

func TestGenerateCrossAndDiagonalCrossDiffer(t *testing.T) {
	event := vec2.Point{X: 0, Z: 0}
	cross := pattern.Generate(pattern.Cross, 8, event, 2000, 160)
	diag := pattern.Generate(pattern.DiagonalCross, 8, event, 2000, 160)
	assert.Len(t, cross, 8)
	assert.Len(t, diag, 8)
	assert.NotEqual(t, cross[0].ObserverPos, diag[0].ObserverPos)
}

func TestGenerateObserverIDsUnique(t *testing.T) {
	event := vec2.Point{X: 0, Z: 0}
	got := pattern.Generate(pattern.Grid, 30, event, 5000, 160)
	seen := map[string]bool{}
	for _, o := range got {
		assert.False(t, seen[o.ObserverID])
		seen[o.ObserverID] = true
	}
}
