package integrators

const sixth = 1.0 / 6.0

type rk4 struct {
	k1, k2, k3, k4 []float64
	scratch        []float64
}

func newRK4(n int) *rk4 {
	return &rk4{
		k1:      make([]float64, n),
		k2:      make([]float64, n),
		k3:      make([]float64, n),
		k4:      make([]float64, n),
		scratch: make([]float64, n),
	}
}

func (r *rk4) kind() Kind            { return KindRK4 }
func (r *rk4) reset()                {}
func (r *rk4) bootstrapping() bool   { return false }
func (r *rk4) firstStage() []float64 { return r.k1 }

// step evaluates the fourth stage at the already advanced x.
func (r *rk4) step(s *system) {
	h05 := s.h * 0.5
	mid := s.x + h05

	s.eval(s.x, s.y, r.k1)
	for i := range s.y {
		r.scratch[i] = s.y[i] + h05*r.k1[i]
	}

	s.eval(mid, r.scratch, r.k2)
	for i := range s.y {
		r.scratch[i] = s.y[i] + h05*r.k2[i]
	}

	s.eval(mid, r.scratch, r.k3)
	for i := range s.y {
		r.scratch[i] = s.y[i] + s.h*r.k3[i]
	}

	s.x += s.h
	s.eval(s.x, r.scratch, r.k4)

	for i := range s.y {
		s.dy[i] = sixth * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
		s.y[i] += s.h * s.dy[i]
	}
}
