package replaysim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/replay"
	"github.com/RobbieRazor/robbies-razor-benchmarks/pkg/replaysim"
)

func newBuffer(capacity int) *replay.Buffer {
	b, err := replay.New(capacity, replay.WithSeed(99))
	Expect(err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("Replay simulation", func() {
	DescribeTable("rejects invalid configs",
		func(mutate func(*replaysim.Config)) {
			cfg := replaysim.DefaultConfig()
			mutate(&cfg)
			_, err := replaysim.Run(context.Background(), cfg, newBuffer(10))
			Expect(err).To(MatchError(replaysim.ErrInvalidConfig))
		},
		Entry("negative steps", func(c *replaysim.Config) { c.Steps = -1 }),
		Entry("zero batch size", func(c *replaysim.Config) { c.BatchSize = 0 }),
		Entry("zero sample interval", func(c *replaysim.Config) { c.SampleEvery = 0 }),
	)

	It("adds one example per step and samples on the interval", func() {
		cfg := replaysim.Config{Steps: 100, BatchSize: 32, SampleEvery: 10, Seed: 1}
		buf := newBuffer(1000)

		s, err := replaysim.Run(context.Background(), cfg, buf)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Added).To(Equal(100))
		Expect(buf.Len()).To(Equal(100))
		Expect(s.Batches).To(Equal(10))
		// Without replacement the early batches are capped by the buffer size.
		Expect(s.Sampled).To(Equal(10 + 20 + 30 + 32*7))
	})

	It("ignores a nil logger", func() {
		cfg := replaysim.Config{Steps: 20, BatchSize: 4, SampleEvery: 5, Seed: 1}
		s, err := replaysim.Run(context.Background(), cfg, newBuffer(10), replaysim.WithLogger(nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Added).To(Equal(20))
	})

	It("draws full batches with replacement", func() {
		cfg := replaysim.Config{Steps: 100, BatchSize: 32, SampleEvery: 10, Replace: true, Seed: 1}
		s, err := replaysim.Run(context.Background(), cfg, newBuffer(1000))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Sampled).To(Equal(320))
	})

	It("samples above-average examples", func() {
		cfg := replaysim.Config{Steps: 2000, BatchSize: 32, SampleEvery: 10, Seed: 5}
		s, err := replaysim.Run(context.Background(), cfg, newBuffer(5000))
		Expect(err).NotTo(HaveOccurred())

		Expect(s.MeanSampledScore).To(BeNumerically(">", s.MeanBufferScore))
	})

	It("keeps the buffer bounded and reports the most sampled examples", func() {
		cfg := replaysim.Config{Steps: 500, BatchSize: 8, SampleEvery: 5, Replace: true, Seed: 3}
		buf := newBuffer(50)
		s, err := replaysim.Run(context.Background(), cfg, buf)
		Expect(err).NotTo(HaveOccurred())

		Expect(buf.Len()).To(Equal(50))
		Expect(s.Unique).To(BeNumerically(">", 0))
		Expect(s.Unique).To(BeNumerically("<=", s.Sampled))
		Expect(s.Top).To(HaveLen(5))
		for i := 1; i < len(s.Top); i++ {
			Expect(s.Top[i-1].Times).To(BeNumerically(">=", s.Top[i].Times))
		}
	})

	It("is reproducible for fixed seeds", func() {
		cfg := replaysim.Config{Steps: 300, BatchSize: 16, SampleEvery: 7, Seed: 11}
		a, err := replaysim.Run(context.Background(), cfg, newBuffer(64))
		Expect(err).NotTo(HaveOccurred())
		b, err := replaysim.Run(context.Background(), cfg, newBuffer(64))
		Expect(err).NotTo(HaveOccurred())

		Expect(a).To(Equal(b))
	})

	It("handles a run with no steps", func() {
		cfg := replaysim.DefaultConfig()
		cfg.Steps = 0
		s, err := replaysim.Run(context.Background(), cfg, newBuffer(10))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Added).To(BeZero())
		Expect(s.Top).To(BeEmpty())
		Expect(s.MeanSampledScore).To(BeZero())
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := replaysim.Run(ctx, replaysim.DefaultConfig(), newBuffer(10))
		Expect(err).To(MatchError(context.Canceled))
	})
})
