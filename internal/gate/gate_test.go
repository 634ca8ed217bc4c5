package gate_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/hollowgrove/witherlocate/internal/gate"
	"github.com/hollowgrove/witherlocate/internal/obs"
)

func observationAt(id string, t time.Time) obs.Observation {
	return obs.Observation{ObserverID: id, ObservedAt: t}
}

var _ = Describe("Gate", func() {
	var (
		g      *gate.Gate
		sealed chan obs.Batch
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		sealed = make(chan obs.Batch, 8)
		log := logrus.New()
		log.SetLevel(logrus.ErrorLevel)
		g = gate.New(200*time.Millisecond, sealed, log)
		ctx, cancel = context.WithCancel(context.Background())
		go g.Run(ctx)
	})

	AfterEach(func() {
		cancel()
		g.Close()
	})

	It("seals once every active observer has reported", func() {
		g.SetActiveObserverCount(3)
		now := time.Now()
		g.Submit(observationAt("A", now))
		g.Submit(observationAt("B", now))
		g.Submit(observationAt("C", now))

		Eventually(sealed).Should(Receive(WithTransform(
			func(b obs.Batch) int { return len(b.Observations) },
			Equal(3),
		)))
	})

	It("seals on timeout if at least 2 observers reported", func() {
		g.SetActiveObserverCount(5)
		now := time.Now()
		g.Submit(observationAt("A", now))
		g.Submit(observationAt("B", now))

		Eventually(sealed, "1s").Should(Receive(WithTransform(
			func(b obs.Batch) int { return len(b.Observations) },
			Equal(2),
		)))
	})

	It("drops a batch with fewer than 2 observers at timeout", func() {
		g.SetActiveObserverCount(5)
		g.Submit(observationAt("A", time.Now()))

		Consistently(sealed, "400ms").ShouldNot(Receive())
	})

	It("starts a new batch when an observer repeats within the window", func() {
		g.SetActiveObserverCount(5)
		now := time.Now()
		g.Submit(observationAt("A", now))
		g.Submit(observationAt("B", now))
		g.Submit(observationAt("A", now.Add(6*time.Second)))

		Eventually(sealed).Should(Receive(WithTransform(
			func(b obs.Batch) int { return len(b.Observations) },
			Equal(2),
		)))
	})
})
