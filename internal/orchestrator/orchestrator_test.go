package orchestrator_test

import (
	"context"
	"sync"
	"time"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/hollowgrove/witherlocate/internal/errest"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/orchestrator"
	"github.com/hollowgrove/witherlocate/internal/vec2"
)

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func observationAt(id string, pos vec2.Point, hint obs.HintXZ, t time.Time) obs.Observation {
	return obs.Observation{ObserverID: id, ObserverPos: pos, Hint: hint, ObservedAt: t}
}

// slowStrategy always overruns whatever deadline it's given, to exercise
// the orchestrator's degrade-to-linear path.
type slowStrategy struct {
	delay time.Duration
}

func (s slowStrategy) Name() string { return "slow" }
func (s slowStrategy) Estimate(obsList []obs.Observation, nominal vec2.Point) (float64, error) {
	time.Sleep(s.delay)
	return 1, nil
}

var _ = Describe("Orchestrator", func() {
	var (
		ctrl     *gomock.Controller
		logSink  *MockSink
		chatSink *MockSink
		ctx      context.Context
		cancel   context.CancelFunc
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		logSink = NewMockSink(ctrl)
		chatSink = NewMockSink(ctrl)
		ctx, cancel = context.WithCancel(context.Background())
	})

	AfterEach(func() {
		cancel()
	})

	It("fuses a sealed batch and writes it to both sinks", func() {
		var mu sync.Mutex
		var wroteLog, wroteChat bool
		logSink.EXPECT().Write(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, est obs.EventEstimate) error {
			mu.Lock()
			wroteLog = true
			mu.Unlock()
			return nil
		}).AnyTimes()
		chatSink.EXPECT().Write(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, est obs.EventEstimate) error {
			mu.Lock()
			wroteChat = true
			mu.Unlock()
			return nil
		}).AnyTimes()
		logSink.EXPECT().Close().Return(nil).AnyTimes()
		chatSink.EXPECT().Close().Return(nil).AnyTimes()

		strat, _ := errest.New(errest.NameLinear, 1)
		o := orchestrator.New(200*time.Millisecond, strat, logSink, chatSink, quietLog(), 0)
		o.Gate().SetActiveObserverCount(2)

		go o.Run(ctx)

		now := time.Now()
		o.Gate().Submit(observationAt("A", vec2.Point{X: -100, Z: 0}, obs.HintXZ{RX: 0, RZ: 0}, now))
		o.Gate().Submit(observationAt("B", vec2.Point{X: 0, Z: -100}, obs.HintXZ{RX: 0, RZ: 0}, now))

		Eventually(func() bool {
			mu.Lock()
			defer mu.Unlock()
			return wroteLog && wroteChat
		}, "2s").Should(BeTrue())
	})

	It("degrades to the linear estimator when the configured strategy overruns the deadline", func() {
		var captured obs.EventEstimate
		var mu sync.Mutex
		logSink.EXPECT().Write(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, est obs.EventEstimate) error {
			mu.Lock()
			captured = est
			mu.Unlock()
			return nil
		}).AnyTimes()
		chatSink.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		logSink.EXPECT().Close().Return(nil).AnyTimes()
		chatSink.EXPECT().Close().Return(nil).AnyTimes()

		o := orchestrator.New(200*time.Millisecond, slowStrategy{delay: 500 * time.Millisecond}, logSink, chatSink, quietLog(), 20*time.Millisecond)
		o.Gate().SetActiveObserverCount(2)

		go o.Run(ctx)

		now := time.Now()
		o.Gate().Submit(observationAt("A", vec2.Point{X: -100, Z: 0}, obs.HintXZ{RX: 0, RZ: 0}, now))
		o.Gate().Submit(observationAt("B", vec2.Point{X: 0, Z: -100}, obs.HintXZ{RX: 0, RZ: 0}, now))

		Eventually(func() bool {
			mu.Lock()
			defer mu.Unlock()
			return captured.HasFlag(obs.EstimatorDegraded)
		}, "2s").Should(BeTrue())
	})

	It("reconnects an observer session with backoff after its source closes", func() {
		logSink.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		chatSink.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		logSink.EXPECT().Close().Return(nil).AnyTimes()
		chatSink.EXPECT().Close().Return(nil).AnyTimes()

		strat, _ := errest.New(errest.NameLinear, 1)
		o := orchestrator.New(200*time.Millisecond, strat, logSink, chatSink, quietLog(), 0)
		o.Gate().SetActiveObserverCount(2)
		go o.Run(ctx)

		var calls int
		var mu sync.Mutex
		factory := func(ctx context.Context) (obs.Source, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()

			src := NewMockSource(ctrl)
			ch := make(chan obs.Observation, 1)
			if n == 1 {
				close(ch) // first session dies immediately
			} else {
				ch <- observationAt("A", vec2.Point{X: -100, Z: 0}, obs.HintXZ{RX: 0, RZ: 0}, time.Now())
				// leave open; RunObserver only advances past it on ctx.Done
			}
			src.EXPECT().Observations().Return((<-chan obs.Observation)(ch)).AnyTimes()
			src.EXPECT().Close().Return(nil).AnyTimes()
			return src, nil
		}

		go o.RunObserver(ctx, "A", factory)

		Eventually(func() int {
			mu.Lock()
			defer mu.Unlock()
			return calls
		}, "3s").Should(BeNumerically(">=", 2))
	})
})
