package signal_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/averyparr/qpulse/internal/signal"
)

var _ = Describe("GaussianEnvelope", func() {
	It("peaks at the center with the given amplitude", func() {
		v := signal.GaussianEnvelope(2.0, 1.5, 8.0, 8.0)
		Expect(real(v)).To(BeNumerically("~", 2.0, 1e-12))
		Expect(imag(v)).To(BeZero())
	})

	It("is symmetric about the center", func() {
		left := signal.GaussianEnvelope(1.0, 2.0, 5.0, 3.0)
		right := signal.GaussianEnvelope(1.0, 2.0, 5.0, 7.0)
		Expect(real(left)).To(BeNumerically("~", real(right), 1e-12))
	})

	It("decays by exp(-1/2) one width from the center", func() {
		v := signal.GaussianEnvelope(1.0, 2.0, 0.0, 2.0)
		Expect(real(v)).To(BeNumerically("~", math.Exp(-0.5), 1e-12))
	})

	It("stays finite at the smallest positive width", func() {
		atCenter := signal.GaussianEnvelope(1.0, math.SmallestNonzeroFloat64, 4.0, 4.0)
		offCenter := signal.GaussianEnvelope(1.0, math.SmallestNonzeroFloat64, 4.0, 4.5)
		Expect(real(atCenter)).To(Equal(1.0))
		Expect(real(offCenter)).To(BeZero())
	})
})

var _ = Describe("Signal", func() {
	It("modulates the envelope with its carrier", func() {
		s := signal.Gaussian(1.0, 2.0, 0.0, 0.25)
		// At t=1 the carrier phase is pi/2, so the real output vanishes.
		Expect(s.At(1.0)).To(BeNumerically("~", 0.0, 1e-12))
		Expect(s.At(0.0)).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("is constant without a carrier", func() {
		c := signal.Constant(0.7)
		Expect(c.At(0)).To(Equal(0.7))
		Expect(c.At(123.4)).To(Equal(0.7))
	})

	It("evaluates lists per term and sums component signals", func() {
		l := signal.List{signal.Constant(1.0), signal.Constant(2.0)}
		Expect(l.At(0.5)).To(Equal([]float64{1.0, 2.0}))

		sum := signal.Sum{signal.Constant(1.0), signal.Constant(2.0)}
		Expect(sum.At(0.5)).To(Equal(3.0))
	})
})

var _ = Describe("DiscreteSignal", func() {
	It("looks up the covering sample and clamps out-of-range times", func() {
		d := signal.DiscreteSignal{
			Samples: []complex128{1, 2, 3},
			Dt:      1.0,
		}
		Expect(d.At(0.5)).To(Equal(1.0))
		Expect(d.At(1.5)).To(Equal(2.0))
		Expect(d.At(-10.0)).To(Equal(1.0))
		Expect(d.At(10.0)).To(Equal(3.0))
	})

	It("round-trips a sampled constant signal", func() {
		d := signal.Sample(signal.Constant(0.3), 0, 0.1, 50)
		Expect(d.At(2.5)).To(BeNumerically("~", 0.3, 1e-12))
		Expect(d.Continuous().At(2.5)).To(BeNumerically("~", 0.3, 1e-12))
	})
})
