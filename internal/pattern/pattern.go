// Package pattern synthesizes observer layouts for an event under test:
// grid, circle, horizontal/vertical cross, or diagonal cross, paired with
// the hints each synthetic observer would report. Test- and harness-only.
package pattern

import (
	"math"

	"github.com/hollowgrove/witherlocate/internal/hint"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// Layout selects the observer arrangement Generate synthesizes.
type Layout int

const (
	Grid Layout = iota
	Circle
	Cross
	DiagonalCross
)

// Generate synthesizes n observer positions centered on the origin (not on
// event) using layout, each within an outer extent of S (grid/cross: a
// [-S/2,S/2]^2 box; circle: a circle of radius S/2), and returns one
// Observation per observer whose hint is computed via hint.Reconstruct
// toward event against viewDistance.
func Generate(layout Layout, n int, event vec2.Point, extent, viewDistance float64) []obs.Observation {
	positions := positionsFor(layout, n, extent)
	out := make([]obs.Observation, 0, len(positions))
	for i, p := range positions {
		out = append(out, obs.Observation{
			ObserverID:  observerID(i),
			ObserverPos: p,
			Hint:        hint.Reconstruct(p, event, viewDistance),
		})
	}
	return out
}

func observerID(i int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if i < len(letters) {
		return string(letters[i])
	}
	return "obs" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func positionsFor(layout Layout, n int, extent float64) []vec2.Point {
	switch layout {
	case Circle:
		return circlePositions(n, extent/2)
	case Cross:
		return crossPositions(n, extent)
	case DiagonalCross:
		return diagonalCrossPositions(n, extent)
	default:
		return gridPositions(n, extent)
	}
}

func circlePositions(n int, radius float64) []vec2.Point {
	pts := make([]vec2.Point, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = vec2.Point{X: radius * math.Cos(theta), Z: radius * math.Sin(theta)}
	}
	return pts
}

// gridPositions lays n observers on a ceil(sqrt(n)) x ceil(n/cols) grid over
// [-extent/2, extent/2]^2.
func gridPositions(n int, extent float64) []vec2.Point {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := int(math.Ceil(float64(n) / float64(cols)))
	pts := make([]vec2.Point, 0, n)
	for r := 0; r < rows && len(pts) < n; r++ {
		for c := 0; c < cols && len(pts) < n; c++ {
			x := gridCoord(c, cols, extent)
			z := gridCoord(r, rows, extent)
			pts = append(pts, vec2.Point{X: x, Z: z})
		}
	}
	return pts
}

// gridCoord maps index i of count evenly spaced points across
// [-extent/2, extent/2] to its coordinate; the first and last points sit on
// the two ends of the range.
func gridCoord(i, count int, extent float64) float64 {
	if count <= 1 {
		return 0
	}
	step := extent / float64(count-1)
	return -extent/2 + float64(i)*step
}

// crossPositions lays n observers split across the horizontal and vertical
// axes through the origin, alternating arms.
func crossPositions(n int, extent float64) []vec2.Point {
	pts := make([]vec2.Point, 0, n)
	half := extent / 2
	for i := 0; i < n; i++ {
		frac := armFraction(i, n)
		d := -half + frac*extent
		if i%2 == 0 {
			pts = append(pts, vec2.Point{X: d, Z: 0})
		} else {
			pts = append(pts, vec2.Point{X: 0, Z: d})
		}
	}
	return pts
}

// diagonalCrossPositions is crossPositions rotated 45 degrees, forming an X.
func diagonalCrossPositions(n int, extent float64) []vec2.Point {
	base := crossPositions(n, extent)
	const s = math.Sqrt2 / 2
	out := make([]vec2.Point, len(base))
	for i, p := range base {
		out[i] = vec2.Point{X: p.X*s - p.Z*s, Z: p.X*s + p.Z*s}
	}
	return out
}

// armFraction spreads n points evenly along [0,1], skipping the exact
// midpoint (0.5) so no observer lands on the origin.
func armFraction(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	f := float64(i) / float64(n-1)
	if f == 0.5 {
		f += 0.01
	}
	return f
}
