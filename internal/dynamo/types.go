package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Stepper is the part of an integrator the simulator drives. Every
// integrators.Integrator satisfies it whatever its context type.
type Stepper interface {
	Check() error
	Step()
	StepSize() float64
	IndependentVariable() float64
	Values() []float64
	Len() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

// Reference is implemented by systems with a known closed-form solution
// from their initial state.
type Reference interface {
	Exact(t float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	// Until is the bound of the do/while loop: stepping continues while the
	// independent variable is <= Until after a step.
	Until float64
	// SampleEvery records one sample per SampleEvery steps; 0 or 1 records all.
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Until:         20.0,
		SampleEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	States      []State
	Times       []float64
	Metrics     map[string]float64
	StepsTaken  int
	Evaluations int64
	Errors      []error
}

// SimError is a non-fatal problem recorded in Result.Errors.
type SimError struct {
	Time    float64
	Step    int
	Message string
	Err     error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }
