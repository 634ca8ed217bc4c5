// Package hint reconstructs the integer hint a game server would have
// broadcast for a given (observer, event, view distance) triple. It exists
// for testing and backfill: feeding synthetic events through the same
// Ray/Intersector/Estimator path used on live data.
//
// This is the one place in the system that must bit-match the server's own
// integer cast, since every other component only ever sees hints that
// already went through it.
package hint

import (
	"math"

	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// Reconstruct derives the hint the server would emit for an observer at
// observerPos watching an event at eventPos, given the server's configured
// viewDistance in blocks.
//
// If the event is within view distance, the hint is the floor of the event's
// own coordinates. Otherwise the event is projected onto the view-distance
// circle around the observer and each coordinate is truncated toward zero
// (not floored) -- this is the server's own integer cast and is distinct
// from the floor used in the near case: -3.7 truncates to -3, not -4.
func Reconstruct(observerPos, eventPos vec2.Point, viewDistance float64) obs.HintXZ {
	var delta vec2.Point
	delta.Sub(&eventPos, &observerPos)
	distSq := delta.Square()

	if distSq <= viewDistance*viewDistance {
		return obs.HintXZ{
			RX: int32(math.Floor(eventPos.X)),
			RZ: int32(math.Floor(eventPos.Z)),
		}
	}

	var unit, proj vec2.Point
	unit.Normalize(&delta)
	proj.MulScalar(&unit, viewDistance)
	proj.Add(&proj, &observerPos)

	return obs.HintXZ{
		RX: truncToZero(proj.X),
		RZ: truncToZero(proj.Z),
	}
}

// truncToZero truncates f toward zero, e.g. -3.7 -> -3, 3.7 -> 3.
func truncToZero(f float64) int32 {
	return int32(math.Trunc(f))
}
