// Package sink delivers finished event estimates to their two destinations:
// a durable log (LogSink) and an operator-facing chat channel (ChatSink).
// Both are single-writer types -- callers drive them from one goroutine per
// sink, matching the rest of this module's concurrency discipline -- and
// both satisfy the Sink interface so the orchestrator can treat them
// uniformly and fan errors out through multierr on shutdown.
package sink

import (
	"context"

	"github.com/hollowgrove/witherlocate/internal/obs"
)

// Sink accepts a finished estimate and forwards it to some external system.
// Write must not retain est's FeasibleRegion or Contributing slices beyond
// the call.
type Sink interface {
	Write(ctx context.Context, est obs.EventEstimate) error
	Close() error
}
