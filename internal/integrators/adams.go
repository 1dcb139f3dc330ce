package integrators

// Adams-Bashforth weights, newest derivative first.
var (
	adams4Weights = []float64{55.0 / 24.0, -59.0 / 24.0, 37.0 / 24.0, -9.0 / 24.0}
	adams5Weights = []float64{1901.0 / 720.0, -2774.0 / 720.0, 2616.0 / 720.0, -1274.0 / 720.0, 251.0 / 720.0}
)

// adams is an explicit Adams-Bashforth method of order len(weights).
//
// hist is a ring of len(weights) derivative vectors and head is the slot of
// the newest one. While pending > 0 each step is a plain Runge-Kutta step of
// the same order whose first stage becomes the newest history entry, so the
// ring holds order-1 past derivatives by the time the recurrence starts.
type adams struct {
	k       Kind
	boot    singleStep
	weights []float64
	hist    [][]float64
	head    int
	pending int
}

func newAdams(k Kind, boot singleStep, weights []float64, n int) *adams {
	depth := len(weights)
	backing := make([]float64, depth*n)
	hist := make([][]float64, depth)
	for j := range hist {
		hist[j] = backing[j*n : (j+1)*n : (j+1)*n]
	}

	a := &adams{
		k:       k,
		boot:    boot,
		weights: weights,
		hist:    hist,
	}
	a.reset()
	return a
}

func (a *adams) kind() Kind          { return a.k }
func (a *adams) bootstrapping() bool { return a.pending > 0 }

func (a *adams) reset() {
	a.pending = len(a.weights) - 1
	a.head = len(a.hist) - 1
}

func (a *adams) step(s *system) {
	depth := len(a.hist)
	a.head = (a.head + 1) % depth

	if a.pending > 0 {
		a.pending--
		a.boot.step(s)
		copy(a.hist[a.head], a.boot.firstStage())
		return
	}

	// The new slot held the oldest derivative, which drops out of the window.
	s.eval(s.x, s.y, a.hist[a.head])
	for i := range s.y {
		d := 0.0
		for j, w := range a.weights {
			d += w * a.hist[(a.head-j+depth)%depth][i]
		}
		s.dy[i] = d
		s.y[i] += s.h * d
	}
	s.x += s.h
}
