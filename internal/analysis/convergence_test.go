package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odestep/internal/dynamo"
	"github.com/san-kum/odestep/internal/integrators"
	"github.com/san-kum/odestep/internal/physics"
)

func oscillator(kind integrators.Kind, h float64) (dynamo.Stepper, dynamo.Reference, error) {
	o := physics.NewOscillator()
	in, err := integrators.New[*physics.Oscillator](kind, o.Dim())
	if err != nil {
		return nil, nil, err
	}
	if err := in.SetEquations(o.Equations()); err != nil {
		return nil, nil, err
	}
	if err := in.SetInitialValues(o.InitialState()); err != nil {
		return nil, nil, err
	}
	if err := in.SetUserContext(o); err != nil {
		return nil, nil, err
	}
	if err := in.SetStepSize(h); err != nil {
		return nil, nil, err
	}
	return in, o, in.Check()
}

func TestLadder(t *testing.T) {
	hs := Ladder(0.02, 3)
	want := []float64{0.02, 0.01, 0.005}
	for i := range want {
		if math.Abs(hs[i]-want[i]) > 1e-18 {
			t.Errorf("rung %d: got %g, want %g", i, hs[i], want[i])
		}
	}
}

func TestMeasureConvergence(t *testing.T) {
	tests := []struct {
		kind  integrators.Kind
		order float64
	}{
		{integrators.KindRK4, 4},
		{integrators.KindRK5, 5},
		{integrators.KindAdams4, 4},
		{integrators.KindAdams5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			c, err := MeasureConvergence(context.Background(), tt.kind, oscillator, 2, Ladder(0.02, 3))
			if err != nil {
				t.Fatalf("measure: %v", err)
			}
			if len(c.Orders) != 2 {
				t.Fatalf("expected 2 orders, got %d", len(c.Orders))
			}
			for i, p := range c.Orders {
				if math.Abs(p-tt.order) > 0.25 {
					t.Errorf("order %d: got %.3f, want %.0f", i, p, tt.order)
				}
			}
			if math.Abs(c.MeanOrder()-tt.order) > 0.25 {
				t.Errorf("mean order %.3f", c.MeanOrder())
			}
			if c.Evaluations[2] <= c.Evaluations[0] {
				t.Errorf("smaller steps should cost more evaluations: %v", c.Evaluations)
			}
		})
	}
}

func TestMeasureConvergence_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MeasureConvergence(ctx, integrators.KindRK4, oscillator, 2, Ladder(0.02, 2))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMeasureConvergence_NoReference(t *testing.T) {
	build := func(kind integrators.Kind, h float64) (dynamo.Stepper, dynamo.Reference, error) {
		s, _, err := oscillator(kind, h)
		return s, nil, err
	}
	_, err := MeasureConvergence(context.Background(), integrators.KindRK4, build, 1, Ladder(0.1, 2))
	if !errors.Is(err, ErrNoReference) {
		t.Errorf("expected ErrNoReference, got %v", err)
	}
}

func TestMeanOrder_Empty(t *testing.T) {
	c := &Convergence{}
	if !math.IsNaN(c.MeanOrder()) {
		t.Error("expected NaN without orders")
	}
}

// fixedError reports a final state whose distance from the zero reference
// is errAt(h).
type fixedError struct {
	x, h  float64
	errAt func(h float64) float64
}

func (f *fixedError) Check() error                 { return nil }
func (f *fixedError) Step()                        { f.x += f.h }
func (f *fixedError) StepSize() float64            { return f.h }
func (f *fixedError) IndependentVariable() float64 { return f.x }
func (f *fixedError) Values() []float64            { return []float64{f.errAt(f.h)} }
func (f *fixedError) Len() int                     { return 1 }

type zeroReference struct{}

func (zeroReference) Exact(t float64) dynamo.State { return dynamo.State{0} }

func fixedErrorFactory(errAt func(h float64) float64) Factory {
	return func(kind integrators.Kind, h float64) (dynamo.Stepper, dynamo.Reference, error) {
		return &fixedError{h: h, errAt: errAt}, zeroReference{}, nil
	}
}

func TestMeasureConvergence_ZeroError(t *testing.T) {
	t.Run("one exact rung", func(t *testing.T) {
		build := fixedErrorFactory(func(h float64) float64 {
			if h < 0.006 {
				return 0
			}
			return math.Pow(h, 4)
		})
		c, err := MeasureConvergence(context.Background(), integrators.KindRK4, build, 1, Ladder(0.02, 3))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(c.Orders[0]-4) > 1e-9 {
			t.Errorf("expected order 4 between non-zero rungs, got %v", c.Orders[0])
		}
		if !math.IsNaN(c.Orders[1]) {
			t.Errorf("expected NaN next to a zero error, got %v", c.Orders[1])
		}
		if math.Abs(c.MeanOrder()-4) > 1e-9 {
			t.Errorf("mean should skip undefined orders, got %v", c.MeanOrder())
		}
	})

	t.Run("exact everywhere", func(t *testing.T) {
		build := fixedErrorFactory(func(h float64) float64 { return 0 })
		c, err := MeasureConvergence(context.Background(), integrators.KindRK4, build, 1, Ladder(0.02, 3))
		if err != nil {
			t.Fatal(err)
		}
		for i, p := range c.Orders {
			if !math.IsNaN(p) {
				t.Errorf("order %d: expected NaN, got %v", i, p)
			}
		}
		if m := c.MeanOrder(); !math.IsNaN(m) {
			t.Errorf("expected NaN mean, got %v", m)
		}
	})
}
