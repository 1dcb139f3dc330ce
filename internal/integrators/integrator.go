package integrators

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Func is the right-hand side of one equation: the derivative of its state
// component at x, given the full state vector y and the caller's context.
// y must be treated as read-only.
type Func[C any] func(x float64, y []float64, ctx C) float64

// Integrator advances a system of coupled first-order ODEs with a fixed step.
// C is the type of the context value handed to every right-hand side.
//
// The zero value is not usable; construct with New or one of the
// method-specific constructors.
type Integrator[C any] struct {
	sys    system
	n      int
	funcs  []Func[C]
	ctx    C
	method method
	log    logrus.FieldLogger
	evals  int64
}

// New allocates an integrator for n equations using the given method. Every
// value starts at zero and every right-hand side slot starts empty.
func New[C any](kind Kind, n int) (*Integrator[C], error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	m, err := newMethod(kind, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", err, kind)
	}

	in := &Integrator[C]{
		n:      n,
		funcs:  make([]Func[C], n),
		method: m,
		log:    logrus.StandardLogger(),
	}
	in.sys.y = make([]float64, n)
	in.sys.dy = make([]float64, n)
	in.sys.eval = in.sweep
	return in, nil
}

func NewRK4[C any](n int) (*Integrator[C], error)    { return New[C](KindRK4, n) }
func NewRK5[C any](n int) (*Integrator[C], error)    { return New[C](KindRK5, n) }
func NewAdams4[C any](n int) (*Integrator[C], error) { return New[C](KindAdams4, n) }
func NewAdams5[C any](n int) (*Integrator[C], error) { return New[C](KindAdams5, n) }

// sweep evaluates every right-hand side once at (x, y).
func (in *Integrator[C]) sweep(x float64, y, out []float64) {
	for i, f := range in.funcs {
		out[i] = f(x, y, in.ctx)
	}
	in.evals += int64(len(in.funcs))
}

// usable guards every setter.
func (in *Integrator[C]) usable() error {
	if in == nil {
		return ErrNilIntegrator
	}
	if in.method == nil {
		return ErrNotInitialized
	}
	return nil
}

func (in *Integrator[C]) checkIndex(i int) error {
	if i < 0 || i >= in.n {
		return fmt.Errorf("%w: %d (equations: %d)", ErrIndexOutOfRange, i, in.n)
	}
	return nil
}

// SetInitialValues copies ys into the state vector. len(ys) must equal the
// equation count.
func (in *Integrator[C]) SetInitialValues(ys []float64) error {
	if err := in.usable(); err != nil {
		return err
	}
	if len(ys) != in.n {
		return fmt.Errorf("%w: got %d values for %d equations", ErrDimensionMismatch, len(ys), in.n)
	}
	copy(in.sys.y, ys)
	return nil
}

// SetInitialValue sets component i of the state vector.
func (in *Integrator[C]) SetInitialValue(i int, v float64) error {
	if err := in.usable(); err != nil {
		return err
	}
	if err := in.checkIndex(i); err != nil {
		return err
	}
	in.sys.y[i] = v
	return nil
}

func (in *Integrator[C]) SetIndependentVariable(x float64) error {
	if err := in.usable(); err != nil {
		return err
	}
	in.sys.x = x
	return nil
}

// SetStepSize sets h. Multistep methods discard their derivative history and
// bootstrap again, since history built with another step size is unusable.
func (in *Integrator[C]) SetStepSize(h float64) error {
	if err := in.usable(); err != nil {
		return err
	}
	in.sys.h = h
	in.method.reset()
	return nil
}

// SetEquation assigns the right-hand side of equation i.
func (in *Integrator[C]) SetEquation(i int, f Func[C]) error {
	if err := in.usable(); err != nil {
		return err
	}
	if err := in.checkIndex(i); err != nil {
		return err
	}
	in.funcs[i] = f
	return nil
}

// SetEquations replaces the whole right-hand side table.
func (in *Integrator[C]) SetEquations(fs []Func[C]) error {
	if err := in.usable(); err != nil {
		return err
	}
	if len(fs) != in.n {
		return fmt.Errorf("%w: got %d equations, want %d", ErrDimensionMismatch, len(fs), in.n)
	}
	copy(in.funcs, fs)
	return nil
}

// SetUserContext sets the value passed to every right-hand side. The caller
// keeps ownership of anything it references.
func (in *Integrator[C]) SetUserContext(ctx C) error {
	if err := in.usable(); err != nil {
		return err
	}
	in.ctx = ctx
	return nil
}

// SetLogger replaces the logger Check reports to. A nil logger restores the
// logrus standard logger.
func (in *Integrator[C]) SetLogger(l logrus.FieldLogger) error {
	if in == nil {
		return ErrNilIntegrator
	}
	if l == nil {
		l = logrus.StandardLogger()
	}
	in.log = l
	return nil
}

// Step advances the system by one step. It does no validation: call Check
// once after configuration. Stepping an integrator that fails Check is
// undefined.
func (in *Integrator[C]) Step() {
	in.method.step(&in.sys)
}

// Value returns component i of the state vector, or 0 for a nil integrator
// or an index out of range.
func (in *Integrator[C]) Value(i int) float64 {
	if in == nil || i < 0 || i >= in.n {
		return 0
	}
	return in.sys.y[i]
}

// Values returns the state vector itself, not a copy. It stays valid until
// Release and changes with every Step.
func (in *Integrator[C]) Values() []float64 {
	if in == nil {
		return nil
	}
	return in.sys.y
}

// Derivative returns component i of the derivative combination used by the
// last step, or 0 for a nil integrator or an index out of range.
func (in *Integrator[C]) Derivative(i int) float64 {
	if in == nil || i < 0 || i >= in.n {
		return 0
	}
	return in.sys.dy[i]
}

func (in *Integrator[C]) IndependentVariable() float64 {
	if in == nil {
		return 0
	}
	return in.sys.x
}

func (in *Integrator[C]) StepSize() float64 {
	if in == nil {
		return 0
	}
	return in.sys.h
}

// Len is the equation count; 0 after Release.
func (in *Integrator[C]) Len() int {
	if in == nil {
		return 0
	}
	return in.n
}

func (in *Integrator[C]) Kind() Kind {
	if in == nil || in.method == nil {
		return 0
	}
	return in.method.kind()
}

// Bootstrapping reports whether the next Step of a multistep method will be a
// Runge-Kutta bootstrap step.
func (in *Integrator[C]) Bootstrapping() bool {
	if in == nil || in.method == nil {
		return false
	}
	return in.method.bootstrapping()
}

// Evaluations counts right-hand side invocations since construction.
func (in *Integrator[C]) Evaluations() int64 {
	if in == nil {
		return 0
	}
	return in.evals
}

// Release drops every buffer the integrator owns. It is safe on a nil
// integrator and safe to call twice; afterwards Check reports
// ErrNotInitialized and every setter fails.
func (in *Integrator[C]) Release() {
	if in == nil {
		return
	}
	var zero C
	in.sys = system{}
	in.funcs = nil
	in.ctx = zero
	in.method = nil
	in.n = 0
}
