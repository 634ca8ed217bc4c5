package vec2_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hollowgrove/witherlocate/internal/vec2"
)

func TestAddSub(t *testing.T) {
	a := vec2.Point{X: 1, Z: 2}
	b := vec2.Point{X: 3, Z: -1}
	var sum, diff vec2.Point
	sum.Add(&a, &b)
	diff.Sub(&a, &b)
	assert.Equal(t, vec2.Point{X: 4, Z: 1}, sum)
	assert.Equal(t, vec2.Point{X: -2, Z: 3}, diff)
}

func TestNormalize(t *testing.T) {
	a := vec2.Point{X: 3, Z: 4}
	var n vec2.Point
	n.Normalize(&a)
	assert.InDelta(t, 1, n.Len(), 1e-12)
	assert.InDelta(t, 0.6, n.X, 1e-12)
	assert.InDelta(t, 0.8, n.Z, 1e-12)
}

func TestNormalizeZero(t *testing.T) {
	z := vec2.Point{}
	var n vec2.Point
	n.Normalize(&z)
	assert.Equal(t, vec2.Point{}, n)
}

var cases = []struct {
	p    vec2.Point
	want float64
}{
	{vec2.Point{X: 1, Z: 0}, 0},
	{vec2.Point{X: 0, Z: 1}, math.Pi / 2},
	{vec2.Point{X: -1, Z: 0}, math.Pi},
	{vec2.Point{X: 0, Z: -1}, -math.Pi / 2},
}

func TestAngle(t *testing.T) {
	for _, c := range cases {
		assert.InDelta(t, c.want, c.p.Angle(), 1e-12)
	}
}

func TestCentroid(t *testing.T) {
	pts := []vec2.Point{{X: 0, Z: 0}, {X: 2, Z: 0}, {X: 1, Z: 3}}
	got := vec2.Centroid(pts)
	assert.InDelta(t, 1, got.X, 1e-12)
	assert.InDelta(t, 1, got.Z, 1e-12)
	assert.Equal(t, vec2.Point{}, vec2.Centroid(nil))
}
