package physics

import (
	"math"

	"github.com/san-kum/odestep/internal/dynamo"
	"github.com/san-kum/odestep/internal/integrators"
)

const (
	DefaultStiffness = 10.0
	DefaultMass      = 1.0
)

// State indices of the oscillator.
const (
	V = 0
	X = 1
)

// Oscillator is a mass on a spring with optional viscous damping:
//
//	dV/dt = -(k/m)·X - (c/m)·V
//	dX/dt = V
type Oscillator struct {
	Stiffness float64
	Mass      float64
	Damping   float64
	// Initial conditions, used by Exact.
	V0, X0 float64
}

func NewOscillator() *Oscillator {
	return &Oscillator{
		Stiffness: DefaultStiffness,
		Mass:      DefaultMass,
		V0:        1,
	}
}

func (o *Oscillator) Dim() int { return 2 }

func (o *Oscillator) InitialState() []float64 {
	y := make([]float64, 2)
	y[V] = o.V0
	y[X] = o.X0
	return y
}

// Velocity is the right-hand side of V.
func Velocity(t float64, y []float64, o *Oscillator) float64 {
	return -o.Stiffness/o.Mass*y[X] - o.Damping/o.Mass*y[V]
}

// Position is the right-hand side of X.
func Position(t float64, y []float64, o *Oscillator) float64 {
	return y[V]
}

// Equations returns the right-hand side table indexed by V and X.
func (o *Oscillator) Equations() []integrators.Func[*Oscillator] {
	fs := make([]integrators.Func[*Oscillator], 2)
	fs[V] = Velocity
	fs[X] = Position
	return fs
}

// Energy is the mechanical energy ½mV² + ½kX².
func (o *Oscillator) Energy(y dynamo.State) float64 {
	if len(y) < 2 {
		return 0
	}
	return 0.5*o.Mass*y[V]*y[V] + 0.5*o.Stiffness*y[X]*y[X]
}

func (o *Oscillator) omega() float64 { return math.Sqrt(o.Stiffness / o.Mass) }

// HasExact reports whether Exact is defined, i.e. the oscillator is free or
// underdamped.
func (o *Oscillator) HasExact() bool {
	gamma := o.Damping / (2 * o.Mass)
	w := o.omega()
	return o.Mass > 0 && o.Stiffness > 0 && gamma < w
}

// Exact is the closed-form solution from (V0, X0) at t = 0. It returns nil
// when HasExact is false.
func (o *Oscillator) Exact(t float64) dynamo.State {
	if !o.HasExact() {
		return nil
	}
	gamma := o.Damping / (2 * o.Mass)
	w := o.omega()
	wd := math.Sqrt(w*w - gamma*gamma)

	a := o.X0
	b := (o.V0 + gamma*o.X0) / wd
	sin, cos := math.Sincos(wd * t)
	decay := math.Exp(-gamma * t)

	y := make(dynamo.State, 2)
	y[X] = decay * (a*cos + b*sin)
	y[V] = decay * ((wd*b-gamma*a)*cos - (gamma*b+wd*a)*sin)
	return y
}

func (o *Oscillator) GetParams() map[string]float64 {
	return map[string]float64{
		"stiffness": o.Stiffness,
		"mass":      o.Mass,
		"damping":   o.Damping,
	}
}
