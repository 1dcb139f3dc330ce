// Package integrators provides fixed-step integrators for systems of coupled
// first-order ordinary differential equations.
//
// Four stepping methods share one lifecycle:
//
//   - [KindRK4]: classical 4-stage Runge-Kutta
//   - [KindRK5]: 6-stage 5th-order Runge-Kutta
//   - [KindAdams4]: 4th-order Adams-Bashforth, bootstrapped with 3 RK4 steps
//   - [KindAdams5]: 5th-order Adams-Bashforth, bootstrapped with 4 RK5 steps
//
// Each equation of the system has its own right-hand side [Func]. Every
// callback receives the whole state vector, so equations may be coupled
// arbitrarily, and a caller-owned context value of type C.
//
// # Example
//
//	in, _ := integrators.NewAdams4[*physics.Oscillator](2)
//	in.SetInitialValues([]float64{1, 0})
//	in.SetEquations(osc.Equations())
//	in.SetUserContext(osc)
//	in.SetStepSize(1e-3)
//	if err := in.Check(); err != nil {
//		return err
//	}
//	for in.IndependentVariable() <= 20 {
//		in.Step()
//	}
//
// # Thread Safety
//
// An Integrator is NOT safe for concurrent use. Distinct instances share no
// state and may be stepped from different goroutines.
package integrators
