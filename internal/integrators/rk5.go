package integrators

// Stage offsets and final weights of the 6-stage tableau. Stages 2 and 3
// use an offset of 1/2 and stage 4 an offset of 1.
const (
	rk5C5 = 2.0 / 3.0
	rk5C6 = 1.0 / 5.0

	rk5B1 = 1.0 / 24.0
	rk5B4 = 5.0 / 48.0
	rk5B5 = 27.0 / 56.0
	rk5B6 = 125.0 / 336.0
)

type rk5 struct {
	k1, k2, k3, k4, k5, k6 []float64
	scratch                []float64
}

func newRK5(n int) *rk5 {
	return &rk5{
		k1:      make([]float64, n),
		k2:      make([]float64, n),
		k3:      make([]float64, n),
		k4:      make([]float64, n),
		k5:      make([]float64, n),
		k6:      make([]float64, n),
		scratch: make([]float64, n),
	}
}

func (r *rk5) kind() Kind            { return KindRK5 }
func (r *rk5) reset()                {}
func (r *rk5) bootstrapping() bool   { return false }
func (r *rk5) firstStage() []float64 { return r.k1 }

func (r *rk5) step(s *system) {
	h := s.h
	y := s.y
	tmp := r.scratch

	s.eval(s.x, y, r.k1)
	for i := range y {
		tmp[i] = y[i] + 0.5*h*r.k1[i]
	}

	s.eval(s.x+0.5*h, tmp, r.k2)
	for i := range y {
		tmp[i] = y[i] + 0.25*h*(r.k1[i]+r.k2[i])
	}

	s.eval(s.x+0.5*h, tmp, r.k3)
	for i := range y {
		tmp[i] = y[i] + h*(2*r.k3[i]-r.k2[i])
	}

	s.eval(s.x+h, tmp, r.k4)
	for i := range y {
		tmp[i] = y[i] + h/27*(7*r.k1[i]+10*r.k2[i]+r.k4[i])
	}

	s.eval(s.x+rk5C5*h, tmp, r.k5)
	for i := range y {
		tmp[i] = y[i] + h/625*(28*r.k1[i]-125*r.k2[i]+546*r.k3[i]+54*r.k4[i]-378*r.k5[i])
	}

	s.eval(s.x+rk5C6*h, tmp, r.k6)
	for i := range y {
		s.dy[i] = rk5B1*r.k1[i] + rk5B4*r.k4[i] + rk5B5*r.k5[i] + rk5B6*r.k6[i]
		y[i] += h * s.dy[i]
	}

	s.x += h
}
