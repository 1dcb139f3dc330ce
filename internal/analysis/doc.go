// Package analysis characterizes integrator output.
//
//   - [MeasureConvergence]: global error at a ladder of step sizes and the
//     observed order of accuracy between neighbouring rungs
//   - [NewPhasePortrait]: 2D projection of a recorded trajectory
//
// # Convergence
//
// A method of order p should show errors shrinking by 2^p each time the
// step size halves:
//
//	c, _ := analysis.MeasureConvergence(ctx, integrators.KindAdams5, factory, 2, analysis.Ladder(0.02, 3))
//	fmt.Println(c.Orders) // ≈ [5 5]
package analysis
