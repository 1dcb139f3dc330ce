// Package dynamo provides the primitives shared by the simulation layers
// around the integrators.
//
//   - [State]: vector representing the state of an ODE system
//   - [Stepper]: an integrator instance the simulator can drive
//   - [Hamiltonian]: systems with a conserved energy
//   - [Metric], [Observer]: hooks called on every recorded sample
//
// # Example
//
//	in, _ := integrators.NewRK5[*physics.Oscillator](2)
//	// configure and Check ...
//	s := sim.New(in)
//	result, _ := s.Run(ctx, dynamo.Config{Until: 20})
package dynamo
