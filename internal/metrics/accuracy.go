package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/odestep/internal/dynamo"
)

// GlobalError is the largest Euclidean distance between an observed state and
// the closed-form solution at the same time.
type GlobalError struct {
	name     string
	ref      dynamo.Reference
	maxError float64
	last     float64
}

func NewGlobalError(ref dynamo.Reference) *GlobalError {
	return &GlobalError{name: "global_error", ref: ref}
}

func (g *GlobalError) Name() string { return g.name }

func (g *GlobalError) Observe(x dynamo.State, t float64) {
	want := g.ref.Exact(t)
	if len(want) != len(x) {
		return
	}
	g.last = floats.Distance(x, want, 2)
	g.maxError = math.Max(g.maxError, g.last)
}

func (g *GlobalError) Value() float64 { return g.maxError }

// Last is the error at the most recent observation.
func (g *GlobalError) Last() float64 { return g.last }

func (g *GlobalError) Reset() {
	g.maxError = 0
	g.last = 0
}
