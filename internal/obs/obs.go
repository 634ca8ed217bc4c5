// Package obs defines the data model shared by every stage of the fusion
// pipeline: the raw Observation a protocol client hands us, the Batch the
// Coincidence Gate assembles from matching observations, and the
// EventEstimate the fusion stages annotate and sinks consume.
package obs

import (
	"time"

	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// Observation is one observer's hint for one event, as delivered by the
// external protocol client. rx, rz are the integer block coordinates the
// server emitted; y is carried through to sinks as metadata only.
type Observation struct {
	ObserverID  string
	ObserverPos vec2.Point // (px, pz)
	ObserverY   float64
	Hint        HintXZ
	HintY       int32
	ObservedAt  time.Time
}

// HintXZ is the integer 2-D hint emitted by the server.
type HintXZ struct {
	RX, RZ int32
}

// UnitSquareCenter returns the nominal representative point (rx+0.5, rz+0.5)
// of the hint's unit square.
func (h HintXZ) UnitSquareCenter() vec2.Point {
	return vec2.Point{X: float64(h.RX) + 0.5, Z: float64(h.RZ) + 0.5}
}

// Corner returns one of the four corners of the hint's unit square, k in
// {0,1,2,3}: k&1 selects x offset, (k>>1)&1 selects z offset.
func (h HintXZ) Corner(k int) vec2.Point {
	return vec2.Point{
		X: float64(h.RX) + float64(k&1),
		Z: float64(h.RZ) + float64((k>>1)&1),
	}
}

// ErrorKind tags a condition detected while fusing or routing a batch. Kinds
// are attached to an EventEstimate's Flags, never thrown as exceptions
// across the fusion boundary.
type ErrorKind int

const (
	NoError ErrorKind = iota
	InsufficientObservations
	IllConditioned
	EmptyFeasibleRegion
	AngleWrap
	EstimatorDegraded
	SinkFailure
	ObserverDisconnected
)

func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return "NONE"
	case InsufficientObservations:
		return "INSUFFICIENT_OBSERVATIONS"
	case IllConditioned:
		return "ILL_CONDITIONED"
	case EmptyFeasibleRegion:
		return "EMPTY_FEASIBLE_REGION"
	case AngleWrap:
		return "ANGLE_WRAP"
	case EstimatorDegraded:
		return "ESTIMATOR_DEGRADED"
	case SinkFailure:
		return "SINK_FAILURE"
	case ObserverDisconnected:
		return "OBSERVER_DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// EventEstimate is the immutable result of fusing one Batch. It is created
// once per batch and never mutated after emission.
type EventEstimate struct {
	X, Z            float64
	Y               float64 // averaged metadata, not modeled geometrically
	ErrorRadius     float64
	FeasibleRegion  []vec2.Point // convex polygon, CCW; nil if not computed or empty
	Contributing    []Observation
	Flags           []ErrorKind
	EstimatorName   string
	ServerLabel     string
	FirstObservedAt time.Time
}

// HasFlag reports whether k is present among e's flags.
func (e *EventEstimate) HasFlag(k ErrorKind) bool {
	for _, f := range e.Flags {
		if f == k {
			return true
		}
	}
	return false
}

// Batch is the set of observations the Gate attributes to one underlying
// event. Batches are owned exclusively by the Gate until sealed, then handed
// by move semantics (a value copy of the slice header) to the Orchestrator.
type Batch struct {
	Observations []Observation
	FirstAt      time.Time
	ServerLabel  string
}

// Source is the external protocol-client collaborator: a stream of raw
// observer records. Implementations own reconnect/auth; the core only reads.
type Source interface {
	// Observations returns a channel of observations. The channel is closed
	// when the source is done (shutdown or permanent failure).
	Observations() <-chan Observation
	// Close releases the source's resources.
	Close() error
}
