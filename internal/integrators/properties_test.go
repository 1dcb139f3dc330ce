package integrators

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// errorAt integrates the spring to x=span and returns the global error.
func errorAt(kind Kind, h, span float64) float64 {
	in, s, err := newSpring(kind, h)
	Expect(err).NotTo(HaveOccurred())
	defer in.Release()

	steps := int(math.Round(span / h))
	for i := 0; i < steps; i++ {
		in.Step()
	}
	return globalError(in, s)
}

var _ = Describe("harmonic oscillator k=10 m=1", func() {
	DescribeTable("converges at the order of the method",
		func(kind Kind) {
			hs := []float64{0.02, 0.01, 0.005}
			errs := make([]float64, len(hs))
			for i, h := range hs {
				errs[i] = errorAt(kind, h, 2)
			}

			for i := 1; i < len(errs); i++ {
				Expect(errs[i]).To(BeNumerically("<", errs[i-1]))
				order := math.Log2(errs[i-1] / errs[i])
				Expect(order).To(BeNumerically("~", float64(kind.Order()), 0.25),
					"observed order between h=%g and h=%g", hs[i-1], hs[i])
			}
		},
		Entry("rk4", KindRK4),
		Entry("rk5", KindRK5),
		Entry("adams4", KindAdams4),
		Entry("adams5", KindAdams5),
	)

	DescribeTable("tracks the analytic solution",
		func(kind Kind, tol float64) {
			Expect(errorAt(kind, 1e-3, 20)).To(BeNumerically("<", tol))
		},
		Entry("rk4", KindRK4, 1e-9),
		Entry("rk5", KindRK5, 1e-9),
		Entry("adams4", KindAdams4, 1e-8),
		Entry("adams5", KindAdams5, 1e-9),
	)

	DescribeTable("bounds the energy drift over many periods",
		func(kind Kind) {
			in, s, err := newSpring(kind, 1e-3)
			Expect(err).NotTo(HaveOccurred())

			e0 := s.energy(in.Values())
			maxDrift := 0.0
			for in.IndependentVariable() <= 20 {
				in.Step()
				maxDrift = math.Max(maxDrift, math.Abs(s.energy(in.Values())-e0)/e0)
			}
			Expect(maxDrift).To(BeNumerically("<", 1e-8))
		},
		Entry("rk4", KindRK4),
		Entry("rk5", KindRK5),
		Entry("adams4", KindAdams4),
		Entry("adams5", KindAdams5),
	)
})

var _ = Describe("Check", func() {
	var in *Integrator[*spring]

	BeforeEach(func() {
		var err error
		in, err = NewAdams5[*spring](2)
		Expect(err).NotTo(HaveOccurred())
		Expect(in.SetLogger(quietLogger())).To(Succeed())
	})

	AfterEach(func() {
		in.Release()
	})

	It("fails for a never-configured instance", func() {
		Expect(in.Check()).To(MatchError(ErrZeroStep))
	})

	It("fails while only some equations are assigned", func() {
		Expect(in.SetStepSize(1e-3)).To(Succeed())
		Expect(in.SetEquation(iV, springV)).To(Succeed())
		Expect(in.Check()).To(MatchError(ErrMissingEquation))
	})

	It("fails when the step size is left at zero", func() {
		Expect(in.SetEquations([]Func[*spring]{springV, springX})).To(Succeed())
		Expect(in.Check()).To(MatchError(ErrZeroStep))
	})

	It("succeeds once every precondition holds", func() {
		Expect(in.SetEquations([]Func[*spring]{springV, springX})).To(Succeed())
		Expect(in.SetStepSize(1e-3)).To(Succeed())
		Expect(in.Check()).To(Succeed())
	})
})

var _ = DescribeTable("Check on an integrator without equations",
	func(kind Kind) {
		in, err := New[*spring](kind, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(in.SetLogger(quietLogger())).To(Succeed())
		Expect(in.SetStepSize(1e-3)).To(Succeed())

		Expect(in.Check()).To(MatchError(ErrNotInitialized))
	},
	Entry("rk4", KindRK4),
	Entry("rk5", KindRK5),
	Entry("adams4", KindAdams4),
	Entry("adams5", KindAdams5),
)
