package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odestep/internal/dynamo"
	"github.com/san-kum/odestep/internal/integrators"
)

func decay(x float64, y []float64, rate float64) float64 { return -rate * y[0] }

func newDecay(t *testing.T, kind integrators.Kind, h float64) *integrators.Integrator[float64] {
	t.Helper()
	in, err := integrators.New[float64](kind, 1)
	if err != nil {
		t.Fatal(err)
	}
	in.SetInitialValue(0, 1)
	in.SetEquation(0, decay)
	in.SetUserContext(1.0)
	in.SetStepSize(h)
	return in
}

func TestSimulatorRun(t *testing.T) {
	in := newDecay(t, integrators.KindRK4, 0.1)
	sim := New(in)

	result, err := sim.Run(context.Background(), dynamo.Config{Until: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != len(result.Times) {
		t.Fatalf("states/times mismatch: %d vs %d", len(result.States), len(result.Times))
	}
	if result.StepsTaken != len(result.States)-1 {
		t.Errorf("expected one sample per step, got %d samples for %d steps", len(result.States), result.StepsTaken)
	}
	last := result.Times[len(result.Times)-1]
	if last <= 1.0 || last > 1.0+0.1+1e-9 {
		t.Errorf("last sample at x=%v, want just beyond 1.0", last)
	}
	if result.Times[len(result.Times)-2] > 1.0 {
		t.Error("loop should stop at the first sample beyond the bound")
	}

	final := result.States[len(result.States)-1][0]
	if math.Abs(final-math.Exp(-last)) > 1e-5 {
		t.Errorf("expected final state ~%.6f, got %.6f", math.Exp(-last), final)
	}
	if result.Evaluations != int64(4*result.StepsTaken) {
		t.Errorf("expected %d evaluations, got %d", 4*result.StepsTaken, result.Evaluations)
	}
}

func TestSimulatorTakesFirstStepPastBound(t *testing.T) {
	in := newDecay(t, integrators.KindRK5, 0.5)
	in.SetIndependentVariable(10)

	result, err := New(in).Run(context.Background(), dynamo.Config{Until: 1})
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 1 {
		t.Errorf("expected exactly one step, got %d", result.StepsTaken)
	}
}

func TestSimulatorBackwards(t *testing.T) {
	in := newDecay(t, integrators.KindAdams4, -0.01)
	in.SetIndependentVariable(1)

	result, err := New(in).Run(context.Background(), dynamo.Config{Until: 0})
	if err != nil {
		t.Fatal(err)
	}
	last := result.Times[len(result.Times)-1]
	if last >= 0 {
		t.Errorf("expected to stop below 0, got %v", last)
	}
}

func TestSimulatorSampling(t *testing.T) {
	in := newDecay(t, integrators.KindRK4, 0.01)
	result, err := New(in).Run(context.Background(), dynamo.Config{Until: 1, SampleEvery: 10})
	if err != nil {
		t.Fatal(err)
	}

	// Initial point, every tenth step, and the final step.
	want := 1 + result.StepsTaken/10
	if result.StepsTaken%10 != 0 {
		want++
	}
	if len(result.States) != want {
		t.Errorf("expected %d samples for %d steps, got %d", want, result.StepsTaken, len(result.States))
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  dynamo.Config
	}{
		{"NaN bound", dynamo.Config{Until: math.NaN()}},
		{"infinite bound", dynamo.Config{Until: math.Inf(1)}},
		{"negative sampling", dynamo.Config{Until: 1, SampleEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := New(newDecay(t, integrators.KindRK4, 0.1))
			_, err := sim.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorRequiresCheck(t *testing.T) {
	in, _ := integrators.NewRK4[float64](1)
	logger, _ := newNullLogger()
	in.SetLogger(logger)

	_, err := New(in).Run(context.Background(), dynamo.Config{Until: 1})
	if !errors.Is(err, integrators.ErrZeroStep) {
		t.Errorf("expected ErrZeroStep, got %v", err)
	}
}

func TestSimulatorDetectsBlowUp(t *testing.T) {
	in := newDecay(t, integrators.KindRK4, 0.1)
	in.SetEquation(0, func(x float64, y []float64, rate float64) float64 { return math.Inf(1) })

	result, err := New(in).Run(context.Background(), dynamo.Config{Until: 1, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if !errors.Is(result.Errors[0], dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", result.Errors[0])
	}
	if result.StepsTaken != 1 {
		t.Errorf("expected to stop after the first step, got %d", result.StepsTaken)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(newDecay(t, integrators.KindRK4, 0.1)).Run(ctx, dynamo.Config{Until: 1})
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Fatalf("expected ErrContextCanceled, got %v", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) || simErr.Step != 0 {
		t.Errorf("expected a SimulationError at step 0, got %v", err)
	}
	if len(result.States) != 1 {
		t.Errorf("expected only the initial sample, got %d", len(result.States))
	}
}

type countMetric struct {
	count int
	sum   float64
}

func (c *countMetric) Name() string { return "test" }
func (c *countMetric) Observe(x dynamo.State, t float64) {
	c.count++
	c.sum += x[0]
}
func (c *countMetric) Value() float64 {
	if c.count == 0 {
		return 0
	}
	return c.sum / float64(c.count)
}
func (c *countMetric) Reset() {
	c.count = 0
	c.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(newDecay(t, integrators.KindRK4, 0.1))
	metric := &countMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), dynamo.Config{Until: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != len(result.States) {
		t.Errorf("expected %d observations, got %d", len(result.States), metric.count)
	}
}

func TestEnsemble(t *testing.T) {
	e := NewEnsemble(2)
	for _, kind := range integrators.Kinds() {
		e.Add(New(newDecay(t, kind, 0.01)))
	}

	results, err := e.Run(context.Background(), dynamo.Config{Until: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != e.Len() {
		t.Fatalf("expected %d results, got %d", e.Len(), len(results))
	}
	for i, r := range results {
		last := r.Times[len(r.Times)-1]
		got := r.States[len(r.States)-1][0]
		if math.Abs(got-math.Exp(-last)) > 1e-7 {
			t.Errorf("member %d: got %v, want %v", i, got, math.Exp(-last))
		}
	}
}
