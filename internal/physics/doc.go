// Package physics provides right-hand sides for the systems the odestep
// tools integrate.
//
// Each model is the user context of its own equations: the callbacks
// returned by Equations read their parameters from the context value the
// integrator passes back on every evaluation.
//
//   - [Oscillator]: damped or free harmonic oscillator, state (V, X)
//   - [Chain]: masses coupled by springs between two walls
//
// Both implement [dynamo.Hamiltonian] so energy drift can be monitored:
//
//	osc := physics.NewOscillator()
//	drift := math.Abs(osc.Energy(y)-osc.Energy(y0)) / osc.Energy(y0)
package physics
