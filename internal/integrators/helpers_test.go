package integrators

import (
	"math"
)

// spring is the undamped oscillator dV/dx = -(k/m)X, dX/dx = V.
type spring struct {
	k, m float64
}

const (
	iV = 0
	iX = 1
)

func springV(x float64, y []float64, s *spring) float64 { return -s.k / s.m * y[iX] }
func springX(x float64, y []float64, s *spring) float64 { return y[iV] }

func (s *spring) omega() float64 { return math.Sqrt(s.k / s.m) }

// exact is the solution for V(0)=1, X(0)=0.
func (s *spring) exact(t float64) (v, x float64) {
	w := s.omega()
	return math.Cos(w * t), math.Sin(w*t) / w
}

func (s *spring) energy(y []float64) float64 {
	return 0.5*s.m*y[iV]*y[iV] + 0.5*s.k*y[iX]*y[iX]
}

func newSpring(kind Kind, h float64) (*Integrator[*spring], *spring, error) {
	s := &spring{k: 10, m: 1}
	in, err := New[*spring](kind, 2)
	if err != nil {
		return nil, nil, err
	}
	steps := []error{
		in.SetInitialValues([]float64{1, 0}),
		in.SetIndependentVariable(0),
		in.SetEquation(iV, springV),
		in.SetEquation(iX, springX),
		in.SetUserContext(s),
		in.SetStepSize(h),
		in.Check(),
	}
	for _, err := range steps {
		if err != nil {
			return nil, nil, err
		}
	}
	return in, s, nil
}

// globalError is the distance from the exact solution at the current x.
func globalError(in *Integrator[*spring], s *spring) float64 {
	v, x := s.exact(in.IndependentVariable())
	return math.Hypot(in.Value(iV)-v, in.Value(iX)-x)
}

// recorder is a context that logs every x a right-hand side sees.
type recorder struct {
	xs []float64
}

func growth(x float64, y []float64, r *recorder) float64 {
	r.xs = append(r.xs, x)
	return y[0]
}
