package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/odestep/internal/dynamo"
	"github.com/san-kum/odestep/internal/integrators"
)

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 1024

var ErrNoReference = errors.New("analysis: system has no closed-form solution")

// Factory builds a checked integrator of the given kind and step size,
// together with the closed-form solution it should follow. Every call must
// return a fresh integrator.
type Factory func(kind integrators.Kind, h float64) (dynamo.Stepper, dynamo.Reference, error)

type Convergence struct {
	Kind        integrators.Kind
	Steps       []float64
	Errors      []float64
	Evaluations []int64
	// Orders[i] is the observed order between Steps[i] and Steps[i+1], NaN
	// when either error is zero.
	Orders []float64
}

// MeanOrder averages the defined observed orders. It returns NaN when no
// order is defined.
func (c *Convergence) MeanOrder() float64 {
	defined := make([]float64, 0, len(c.Orders))
	for _, p := range c.Orders {
		if !math.IsNaN(p) {
			defined = append(defined, p)
		}
	}
	if len(defined) == 0 {
		return math.NaN()
	}
	return floats.Sum(defined) / float64(len(defined))
}

// Ladder returns n step sizes starting at h0, each half the previous.
func Ladder(h0 float64, n int) []float64 {
	hs := make([]float64, n)
	for i := range hs {
		hs[i] = h0 / math.Pow(2, float64(i))
	}
	return hs
}

// MeasureConvergence integrates over span at every step size concurrently
// and compares the final state with the reference solution.
func MeasureConvergence(ctx context.Context, kind integrators.Kind, build Factory, span float64, steps []float64) (*Convergence, error) {
	c := &Convergence{
		Kind:        kind,
		Steps:       append([]float64(nil), steps...),
		Errors:      make([]float64, len(steps)),
		Evaluations: make([]int64, len(steps)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, h := range steps {
		i, h := i, h
		g.Go(func() error {
			e, evals, err := globalError(gctx, kind, build, span, h)
			if err != nil {
				return fmt.Errorf("%v at h=%g: %w", kind, h, err)
			}
			c.Errors[i] = e
			c.Evaluations[i] = evals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := 1; i < len(steps); i++ {
		c.Orders = append(c.Orders, observedOrder(c.Steps[i-1], c.Steps[i], c.Errors[i-1], c.Errors[i]))
	}
	return c, nil
}

// observedOrder is NaN when either error is zero.
func observedOrder(h0, h1, e0, e1 float64) float64 {
	if e0 == 0 || e1 == 0 || h0 == h1 {
		return math.NaN()
	}
	return math.Log(e0/e1) / math.Log(h0/h1)
}

func globalError(ctx context.Context, kind integrators.Kind, build Factory, span, h float64) (float64, int64, error) {
	stepper, ref, err := build(kind, h)
	if err != nil {
		return 0, 0, err
	}
	if ref == nil {
		return 0, 0, ErrNoReference
	}

	n := int(math.Round(span / math.Abs(h)))
	for i := 0; i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, 0, err
			}
		}
		stepper.Step()
	}

	want := ref.Exact(stepper.IndependentVariable())
	got := stepper.Values()
	if len(want) != len(got) {
		return 0, 0, fmt.Errorf("%w: reference has %d components, state %d", dynamo.ErrDimensionMismatch, len(want), len(got))
	}

	var evals int64
	if ec, ok := stepper.(interface{ Evaluations() int64 }); ok {
		evals = ec.Evaluations()
	}
	return floats.Distance(got, want, 2), evals, nil
}
