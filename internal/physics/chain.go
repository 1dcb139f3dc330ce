package physics

import (
	"github.com/san-kum/odestep/internal/dynamo"
	"github.com/san-kum/odestep/internal/integrators"
)

// Chain is n equal masses joined by n+1 equal springs, the outer two fixed
// to walls. The state is [x0..x(n-1), v0..v(n-1)]; every velocity equation
// reads its neighbours' positions.
type Chain struct {
	Masses    int
	Mass      float64
	Stiffness float64
	Damping   float64
	// Displacement of the first mass at t = 0.
	Kick float64
}

func NewChain(n int) *Chain {
	return &Chain{
		Masses:    n,
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Kick:      1,
	}
}

func (c *Chain) Dim() int { return 2 * c.Masses }

func (c *Chain) InitialState() []float64 {
	y := make([]float64, c.Dim())
	if c.Masses > 0 {
		y[0] = c.Kick
	}
	return y
}

func (c *Chain) Equations() []integrators.Func[*Chain] {
	n := c.Masses
	fs := make([]integrators.Func[*Chain], 2*n)
	for i := 0; i < n; i++ {
		fs[i] = chainPosition(i, n)
		fs[n+i] = chainVelocity(i, n)
	}
	return fs
}

func chainPosition(i, n int) integrators.Func[*Chain] {
	return func(t float64, y []float64, c *Chain) float64 {
		return y[n+i]
	}
}

func chainVelocity(i, n int) integrators.Func[*Chain] {
	return func(t float64, y []float64, c *Chain) float64 {
		left, right := 0.0, 0.0
		if i > 0 {
			left = y[i-1]
		}
		if i < n-1 {
			right = y[i+1]
		}
		force := c.Stiffness*(left-2*y[i]+right) - c.Damping*y[n+i]
		return force / c.Mass
	}
}

func (c *Chain) Energy(y dynamo.State) float64 {
	n := c.Masses
	if len(y) < 2*n {
		return 0
	}
	e := 0.0
	prev := 0.0
	for i := 0; i < n; i++ {
		e += 0.5 * c.Mass * y[n+i] * y[n+i]
		d := y[i] - prev
		e += 0.5 * c.Stiffness * d * d
		prev = y[i]
	}
	e += 0.5 * c.Stiffness * prev * prev
	return e
}

func (c *Chain) GetParams() map[string]float64 {
	return map[string]float64{
		"masses":    float64(c.Masses),
		"mass":      c.Mass,
		"stiffness": c.Stiffness,
		"damping":   c.Damping,
	}
}
