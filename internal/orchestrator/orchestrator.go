// Package orchestrator owns observer sessions and drives the pipeline:
// Gate -> ray model -> intersector -> estimator -> region solver -> sinks.
// Its dispatch loop hands each sealed batch a "ticket" channel before
// handing the batch to a bounded worker pool, so results reach the sinks in
// the order their batches were sealed even though fusion for independent
// batches runs concurrently.
package orchestrator

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/hollowgrove/witherlocate/internal/diag"
	"github.com/hollowgrove/witherlocate/internal/errest"
	"github.com/hollowgrove/witherlocate/internal/gate"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/ray"
	"github.com/hollowgrove/witherlocate/internal/sink"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

// FusionDeadline is the default deadline for a single batch's estimator
// call before the orchestrator degrades to the linear estimator.
const FusionDeadline = 1 * time.Second

// ShutdownDrainDeadline bounds how long Shutdown waits for queued sink
// writes to drain before giving up.
const ShutdownDrainDeadline = 5 * time.Second

// sinkQueueWarnDepth is the queue depth at which an async sink logs a
// warning that it is falling behind.
const sinkQueueWarnDepth = 1000

// SourceFactory produces a fresh obs.Source, used to re-establish an
// observer session after disconnect.
type SourceFactory func(ctx context.Context) (obs.Source, error)

// Orchestrator wires together one Gate, one estimator strategy (with a
// linear fallback for deadline overruns), and the log/chat sinks.
type Orchestrator struct {
	gate     *gate.Gate
	strategy errest.Strategy
	fallback errest.Strategy
	logSink  *asyncSink
	chatSink *asyncSink
	log      *logrus.Logger
	deadline time.Duration

	diagServer *diag.Server
	diagDir    string

	sealed chan obs.Batch

	wg sync.WaitGroup
}

// New constructs an Orchestrator. strategy is the configured estimator;
// a Linear{} fallback is always available for deadline overruns since it
// is the cheapest strategy (O(n)). deadline <= 0 uses FusionDeadline.
func New(batchWindow time.Duration, strategy errest.Strategy, logSink, chatSink sink.Sink, log *logrus.Logger, deadline time.Duration) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if deadline <= 0 {
		deadline = FusionDeadline
	}
	sealed := make(chan obs.Batch, runtime.GOMAXPROCS(0)*2)
	o := &Orchestrator{
		strategy: strategy,
		fallback: errest.Linear{},
		logSink:  newAsyncSink(logSink, log),
		chatSink: newAsyncSink(chatSink, log),
		log:      log,
		deadline: deadline,
		sealed:   sealed,
	}
	o.gate = gate.New(batchWindow, sealed, log)
	return o
}

// Gate exposes the orchestrator's Coincidence Gate so observer sessions can
// submit observations to it.
func (o *Orchestrator) Gate() *gate.Gate {
	return o.gate
}

// EnableDiagnostics turns on the per-batch raster diagnostic on the live
// fusion path. server, if non-nil, receives the latest rendered frame per
// server label for its debug HTTP endpoint; dir, if non-empty, additionally
// writes each frame to disk as a PNG. Either, both, or neither may be set;
// with neither set, emit's diagnostics step is a no-op.
func (o *Orchestrator) EnableDiagnostics(server *diag.Server, dir string) {
	o.diagServer = server
	o.diagDir = dir
}

// RunObserver drives one observer's session for the orchestrator's
// lifetime, re-establishing it with exponential backoff whenever its
// Observations channel closes. It returns once ctx is canceled.
func (o *Orchestrator) RunObserver(ctx context.Context, observerID string, factory SourceFactory) {
	backoff := 250 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}
		src, err := factory(ctx)
		if err != nil {
			o.log.WithError(err).WithField("observer", observerID).
				Warn("orchestrator: observer session failed to start, retrying")
			if !sleepOrDone(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 250 * time.Millisecond

		ch := src.Observations()
	drain:
		for {
			select {
			case <-ctx.Done():
				src.Close()
				return
			case ob, ok := <-ch:
				if !ok {
					break drain
				}
				o.gate.Submit(ob)
				backoff = 250 * time.Millisecond
			}
		}
		src.Close()
		o.log.WithField("observer", observerID).Info("orchestrator: observer session closed, reconnecting")
		if !sleepOrDone(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Run drives the fusion dispatch loop until ctx is canceled, then shuts
// down: the Gate's own ctx cancellation (driven by the same ctx passed to
// Run) flushes any eligible pending batch, and Run drains the resulting
// sealed channel before returning.
func (o *Orchestrator) Run(ctx context.Context) {
	maxWorkers := runtime.GOMAXPROCS(0)
	if maxWorkers < 2 {
		maxWorkers = 2
	}

	type workItem struct {
		batch  obs.Batch
		ticket chan obs.EventEstimate
	}
	workCh := make(chan workItem, maxWorkers*2)
	ticketCh := make(chan chan obs.EventEstimate, maxWorkers*2)

	var workers sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for item := range workCh {
				item.ticket <- o.fuseWithDeadline(item.batch)
			}
		}()
	}

	gateDone := make(chan struct{})
	go func() {
		defer close(gateDone)
		o.gate.Run(ctx)
	}()

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		for b := range o.sealed {
			ticket := make(chan obs.EventEstimate, 1)
			workCh <- workItem{batch: b, ticket: ticket}
			ticketCh <- ticket
		}
		close(workCh)
	}()

	consumeDone := make(chan struct{})
	go func() {
		defer close(consumeDone)
		for ticket := range ticketCh {
			est := <-ticket
			o.emit(ctx, est)
		}
	}()

	<-ctx.Done()
	<-gateDone
	o.gate.Close()
	// sealed is only written to by the Gate; now that it has stopped, close
	// it so the dispatcher can drain the remainder and terminate.
	close(o.sealed)
	<-dispatchDone
	workers.Wait()
	close(ticketCh)
	<-consumeDone
}

// fuseWithDeadline runs fuse, falling back to the cheap linear estimator
// (flagged ESTIMATOR_DEGRADED) if the configured strategy overruns the
// orchestrator's deadline (FusionDeadline unless New was given another).
func (o *Orchestrator) fuseWithDeadline(b obs.Batch) obs.EventEstimate {
	resultCh := make(chan obs.EventEstimate, 1)
	go func() {
		resultCh <- fuse(b, o.strategy)
	}()

	select {
	case est := <-resultCh:
		return est
	case <-time.After(o.deadline):
		o.log.WithField("observations", len(b.Observations)).
			Warn("orchestrator: estimator deadline exceeded, degrading to linear")
		est := fuse(b, o.fallback)
		est.Flags = append(est.Flags, obs.EstimatorDegraded)
		return est
	}
}

func (o *Orchestrator) emit(ctx context.Context, est obs.EventEstimate) {
	o.logSink.enqueue(ctx, est)
	o.chatSink.enqueue(ctx, est)
	o.publishDiagnostics(est)
}

// publishDiagnostics renders est's raster frame and hands it to whichever
// diagnostic outputs EnableDiagnostics configured. Rebuilds wedges from
// est.Contributing rather than threading them through fuse's return value,
// since diagnostics are opt-in and the common case (disabled) should cost
// nothing beyond these two nil/empty checks.
func (o *Orchestrator) publishDiagnostics(est obs.EventEstimate) {
	if o.diagServer == nil && o.diagDir == "" {
		return
	}

	wedges := make([]ray.Wedge, 0, len(est.Contributing))
	for _, ob := range est.Contributing {
		w, err := ray.ObservationToWedge(ob)
		if err != nil {
			continue
		}
		wedges = append(wedges, w)
	}
	frame := diag.DefaultFrame(vec2.Point{X: est.X, Z: est.Z}, est.ErrorRadius)

	label := est.ServerLabel
	if label == "" {
		label = "default"
	}

	if o.diagServer != nil {
		img := diag.Render(frame, est, wedges, nil)
		if err := o.diagServer.PublishImage(label, img); err != nil {
			o.log.WithError(err).Warn("orchestrator: failed to publish diagnostic raster")
		}
	}
	if o.diagDir != "" {
		filename := fmt.Sprintf("%s-%d.png", label, est.FirstObservedAt.UnixNano())
		if err := diag.WriteFile(o.diagDir, filename, frame, est, wedges, nil); err != nil {
			o.log.WithError(err).Warn("orchestrator: failed to write diagnostic raster")
		}
	}
}

// Shutdown waits up to ShutdownDrainDeadline for both sinks' queues to
// drain, then closes them, aggregating any errors with multierr.
func (o *Orchestrator) Shutdown() error {
	var err error
	err = multierr.Append(err, o.logSink.drainAndClose(ShutdownDrainDeadline))
	err = multierr.Append(err, o.chatSink.drainAndClose(ShutdownDrainDeadline))
	return err
}
