package integrators

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Check reports the first unmet precondition for stepping, in order: an
// integrator that is nil, released or has no equations, a zero step size, and
// the lowest equation index without a right-hand side. The failure is also
// logged. A nil result means Step may be called.
func (in *Integrator[C]) Check() error {
	err := in.check()
	if err == nil {
		return nil
	}

	entry := in.logger().WithField("method", in.Kind().String())
	var missing *MissingEquationError
	if errors.As(err, &missing) {
		entry = entry.WithField("equation", missing.Index)
	}
	entry.WithError(err).Error("integrator check failed")
	return err
}

func (in *Integrator[C]) check() error {
	if in == nil || in.method == nil || in.n == 0 {
		return ErrNotInitialized
	}
	if in.sys.h == 0 {
		return ErrZeroStep
	}
	for i, f := range in.funcs {
		if f == nil {
			return &MissingEquationError{Index: i}
		}
	}
	return nil
}

func (in *Integrator[C]) logger() logrus.FieldLogger {
	if in == nil || in.log == nil {
		return logrus.StandardLogger()
	}
	return in.log
}
