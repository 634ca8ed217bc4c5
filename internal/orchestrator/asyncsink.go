package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/sink"
)

// sinkRetryAttempts bounds how many times in total asyncSink attempts a
// write (the first try included) before dropping it and counting the loss,
// per the "retried then dropped with a counter" policy.
const sinkRetryAttempts = 3

// asyncSink decouples a Sink from the fusion consumer: writes are queued on
// an unbounded in-memory slice so sink I/O never blocks hint intake, and
// drained by one dedicated goroutine so writes reach the sink in enqueue
// order.
type asyncSink struct {
	sink sink.Sink
	log  *logrus.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []obs.EventEstimate
	closed  bool
	dropped int

	done chan struct{}
}

func newAsyncSink(s sink.Sink, log *logrus.Logger) *asyncSink {
	a := &asyncSink{sink: s, log: log, done: make(chan struct{})}
	a.cond = sync.NewCond(&a.mu)
	go a.run()
	return a
}

func (a *asyncSink) enqueue(ctx context.Context, est obs.EventEstimate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.queue = append(a.queue, est)
	if depth := len(a.queue); depth > sinkQueueWarnDepth {
		a.log.WithField("depth", depth).Warn("orchestrator: sink queue depth exceeds warning threshold")
	}
	a.cond.Signal()
}

func (a *asyncSink) run() {
	defer close(a.done)
	for {
		a.mu.Lock()
		for len(a.queue) == 0 && !a.closed {
			a.cond.Wait()
		}
		if len(a.queue) == 0 && a.closed {
			a.mu.Unlock()
			return
		}
		est := a.queue[0]
		a.queue = a.queue[1:]
		a.mu.Unlock()

		if err := a.writeWithRetry(est); err != nil {
			a.mu.Lock()
			a.dropped++
			a.mu.Unlock()
			a.log.WithError(err).WithField("dropped_total", a.dropped).
				Error("orchestrator: sink write dropped after retries")
		}
	}
}

func (a *asyncSink) writeWithRetry(est obs.EventEstimate) error {
	var lastErr error
	for attempt := 1; attempt <= sinkRetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = a.sink.Write(ctx, est)
		cancel()
		if lastErr == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return lastErr
}

// drainAndClose signals no more writes are coming, waits up to deadline for
// the queue to empty, then closes the underlying sink.
func (a *asyncSink) drainAndClose(deadline time.Duration) error {
	a.mu.Lock()
	a.closed = true
	a.cond.Signal()
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-time.After(deadline):
		a.log.WithField("remaining", a.queueLen()).
			Warn("orchestrator: sink drain deadline exceeded, closing with work outstanding")
	}
	return a.sink.Close()
}

func (a *asyncSink) queueLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}
