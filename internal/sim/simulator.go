package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/odestep/internal/dynamo"
)

const maxPrealloc = 1 << 16

// evaluationCounter is implemented by integrators that count right-hand side calls.
type evaluationCounter interface {
	Evaluations() int64
}

// Simulator drives one configured integrator and records its trajectory.
type Simulator struct {
	stepper   dynamo.Stepper
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(stepper dynamo.Stepper) *Simulator {
	return &Simulator{
		stepper:   stepper,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run checks the integrator, records the initial point and then steps
// while the independent variable has not passed cfg.Until. The first step
// is always taken, so the last recorded sample lies just beyond the bound.
func (s *Simulator) Run(ctx context.Context, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := s.stepper.Check(); err != nil {
		return nil, fmt.Errorf("integrator not ready: %w", err)
	}

	every := cfg.SampleEvery
	if every < 1 {
		every = 1
	}
	forward := s.stepper.StepSize() > 0
	x0 := s.stepper.IndependentVariable()
	capacity := int(math.Abs(cfg.Until-x0)/math.Abs(s.stepper.StepSize()))/every + 2
	if capacity > maxPrealloc {
		capacity = maxPrealloc
	}

	result := &dynamo.Result{
		States:  make([]dynamo.State, 0, capacity),
		Times:   make([]float64, 0, capacity),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	var start int64
	if ec, ok := s.stepper.(evaluationCounter); ok {
		start = ec.Evaluations()
	}

	s.record(result, dynamo.State(s.stepper.Values()), x0)

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, start)
			x := s.stepper.IndependentVariable()
			return result, &dynamo.SimulationError{
				Step:    i,
				Time:    x,
				State:   dynamo.State(s.stepper.Values()).Clone(),
				Wrapped: fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err()),
			}
		default:
		}

		s.stepper.Step()
		result.StepsTaken++

		x := s.stepper.IndependentVariable()
		y := dynamo.State(s.stepper.Values())

		if cfg.ValidateState && !y.IsValid() {
			err := dynamo.SimError{Time: x, Step: i, Message: "invalid state (NaN/Inf)", Err: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			break
		}

		done := x > cfg.Until
		if !forward {
			done = x < cfg.Until
		}

		if done || result.StepsTaken%every == 0 {
			s.record(result, y, x)
		}
		if done {
			break
		}
	}

	s.finish(result, start)
	return result, nil
}

func (s *Simulator) record(result *dynamo.Result, y dynamo.State, x float64) {
	sample := y.Clone()
	result.States = append(result.States, sample)
	result.Times = append(result.Times, x)

	for _, m := range s.metrics {
		m.Observe(sample, x)
	}
	for _, obs := range s.observers {
		obs.OnStep(sample, x)
	}
}

func (s *Simulator) finish(result *dynamo.Result, start int64) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if ec, ok := s.stepper.(evaluationCounter); ok {
		result.Evaluations = ec.Evaluations() - start
	}
}

func (s *Simulator) validateConfig(cfg dynamo.Config) error {
	if math.IsNaN(cfg.Until) || math.IsInf(cfg.Until, 0) {
		return fmt.Errorf("%w: until must be finite, got %f", dynamo.ErrInvalidConfig, cfg.Until)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("%w: sample interval must not be negative, got %d", dynamo.ErrInvalidConfig, cfg.SampleEvery)
	}
	return nil
}
