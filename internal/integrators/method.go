package integrators

// system is the numeric state a method advances. eval fills out with the
// right-hand side of every equation at (x, y).
type system struct {
	x, h  float64
	y, dy []float64
	eval  func(x float64, y, out []float64)
}

// method is a stepping strategy. Scratch space is allocated once by the
// constructor, so step never allocates.
type method interface {
	kind() Kind
	step(s *system)
	// reset is called whenever the step size changes.
	reset()
	bootstrapping() bool
}

// singleStep is a Runge-Kutta method whose first stage can seed a multistep history.
type singleStep interface {
	step(s *system)
	firstStage() []float64
}

func newMethod(k Kind, n int) (method, error) {
	switch k {
	case KindRK4:
		return newRK4(n), nil
	case KindRK5:
		return newRK5(n), nil
	case KindAdams4:
		return newAdams(KindAdams4, newRK4(n), adams4Weights, n), nil
	case KindAdams5:
		return newAdams(KindAdams5, newRK5(n), adams5Weights, n), nil
	}
	return nil, ErrUnknownKind
}
