// Package gate implements the Coincidence Gate: a single-writer state
// machine that buffers per-observer hints and releases a batch once every
// active observer has reported for the same event, or a timeout elapses.
//
// The state machine runs as a single goroutine (an exclusive actor) so its
// mutations never race; callers submit observations over a channel rather
// than taking a lock.
package gate

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hollowgrove/witherlocate/internal/obs"
)

// DefaultBatchWindow is the default coincidence window: the underlying
// event is broadcast essentially simultaneously, so any spread observed
// across observers is per-observer network jitter.
const DefaultBatchWindow = 5 * time.Second

// Gate buffers observations into batches and emits sealed ones on its
// output channel. Construct with New and drive with Run; Submit and
// SetActiveObserverCount are safe to call concurrently from any goroutine.
type Gate struct {
	batchWindow time.Duration
	submit      chan obs.Observation
	activeCount chan int
	sealed      chan<- obs.Batch
	done        chan struct{}
	log         *logrus.Logger
}

// New constructs a Gate that emits sealed batches on sealed. batchWindow <=
// 0 uses DefaultBatchWindow.
func New(batchWindow time.Duration, sealed chan<- obs.Batch, log *logrus.Logger) *Gate {
	if batchWindow <= 0 {
		batchWindow = DefaultBatchWindow
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gate{
		batchWindow: batchWindow,
		submit:      make(chan obs.Observation),
		activeCount: make(chan int),
		sealed:      sealed,
		done:        make(chan struct{}),
		log:         log,
	}
}

// Submit delivers an observation to the gate. It blocks until the gate's
// Run loop accepts it or the gate is closed.
func (g *Gate) Submit(o obs.Observation) {
	select {
	case g.submit <- o:
	case <-g.done:
	}
}

// SetActiveObserverCount updates the number of observers the gate expects to
// hear from before sealing a batch early (without waiting for the timeout).
func (g *Gate) SetActiveObserverCount(n int) {
	select {
	case g.activeCount <- n:
	case <-g.done:
	}
}

// Close shuts the gate down. Run returns once its current iteration
// completes; any still-pending batch is dropped without being sealed --
// callers that need a final flush should use Run's ctx cancellation instead,
// which seals eligible pending batches before returning.
func (g *Gate) Close() {
	select {
	case <-g.done:
	default:
		close(g.done)
	}
}

type pending struct {
	firstAt      time.Time
	contributors map[string]bool
	observations []obs.Observation
	serverLabel  string
}

// Run drives the gate's state machine until ctx is canceled. On
// cancellation, a pending batch with >=2 contributors is sealed and emitted
// before Run returns; one with <2 is dropped, matching the timeout path's
// own minimum-contributor rule.
func (g *Gate) Run(ctx context.Context) {
	var cur *pending
	var timerC <-chan time.Time
	var timer *time.Timer
	activeObservers := 0

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	armTimer := func() {
		timer = time.NewTimer(g.batchWindow)
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			if cur != nil && len(cur.contributors) >= 2 {
				g.emit(cur)
			}
			return

		case <-g.done:
			stopTimer()
			return

		case n := <-g.activeCount:
			activeObservers = n

		case o := <-g.submit:
			if cur == nil {
				cur = &pending{
					firstAt:      o.ObservedAt,
					contributors: map[string]bool{o.ObserverID: true},
					observations: []obs.Observation{o},
				}
				armTimer()
				continue
			}
			if cur.contributors[o.ObserverID] {
				// repeat observer for the still-open batch: treat as the
				// start of a new event.
				stopTimer()
				if len(cur.contributors) >= 2 {
					g.emit(cur)
				}
				cur = &pending{
					firstAt:      o.ObservedAt,
					contributors: map[string]bool{o.ObserverID: true},
					observations: []obs.Observation{o},
				}
				armTimer()
				continue
			}
			cur.contributors[o.ObserverID] = true
			cur.observations = append(cur.observations, o)
			if activeObservers > 0 && len(cur.contributors) == activeObservers {
				stopTimer()
				g.emit(cur)
				cur = nil
			}

		case <-timerC:
			if cur != nil {
				if len(cur.contributors) >= 2 {
					g.emit(cur)
				} else {
					g.log.WithField("contributors", len(cur.contributors)).
						Debug("gate: dropping batch, fewer than 2 observers reported before timeout")
				}
				cur = nil
			}
			timerC = nil
		}
	}
}

func (g *Gate) emit(p *pending) {
	g.sealed <- obs.Batch{
		Observations: p.observations,
		FirstAt:      p.firstAt,
		ServerLabel:  p.serverLabel,
	}
}
