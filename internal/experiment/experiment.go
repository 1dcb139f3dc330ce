package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/odestep/internal/config"
	"github.com/san-kum/odestep/internal/dynamo"
	"github.com/san-kum/odestep/internal/integrators"
	"github.com/san-kum/odestep/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	system    *System
	simulator *sim.Simulator
}

// New builds the system described by cfg and a simulator with the default
// metrics attached.
func New(cfg *config.Config, registry *Registry, log logrus.FieldLogger) (*Experiment, error) {
	sys, err := registry.Build(cfg, log)
	if err != nil {
		return nil, err
	}
	s := sim.New(sys.Stepper)
	for _, m := range registry.DefaultMetrics(sys) {
		s.AddMetric(m)
	}
	return &Experiment{cfg: cfg, system: sys, simulator: s}, nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.simulator.Run(ctx, runConfig(e.cfg))
}

func runConfig(cfg *config.Config) dynamo.Config {
	return dynamo.Config{
		Until:         cfg.Until,
		SampleEvery:   cfg.SampleEvery,
		ValidateState: true,
	}
}

func (e *Experiment) System() *System { return e.system }

// GetSimulator returns the underlying simulator for adding observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Close() { e.system.Release() }

// Comparison is the outcome of one method in Compare.
type Comparison struct {
	Kind        integrators.Kind
	Result      *dynamo.Result
	Evaluations int64
	EnergyDrift float64
	// MaxError is NaN when the model has no closed-form solution.
	MaxError float64
}

// Compare runs cfg once per method, each on its own integrator, at most
// limit at a time. Results come back in the order of kinds.
func Compare(ctx context.Context, cfg *config.Config, kinds []integrators.Kind, limit int, log logrus.FieldLogger) ([]Comparison, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	registry := NewRegistry()
	ens := sim.NewEnsemble(limit)
	exps := make([]*Experiment, 0, len(kinds))
	defer func() {
		for _, e := range exps {
			e.Close()
		}
	}()

	for _, k := range kinds {
		c := *cfg
		c.Method = k.String()
		e, err := New(&c, registry, log)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", k, err)
		}
		exps = append(exps, e)
		ens.Add(e.simulator)
	}

	start := time.Now()
	results, err := ens.Run(ctx, runConfig(cfg))
	if err != nil {
		return nil, err
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"methods": len(kinds),
			"elapsed": time.Since(start),
		}).Debug("comparison finished")
	}

	out := make([]Comparison, len(kinds))
	for i, res := range results {
		maxErr, ok := res.Metrics["global_error"]
		if !ok {
			maxErr = math.NaN()
		}
		out[i] = Comparison{
			Kind:        kinds[i],
			Result:      res,
			Evaluations: res.Evaluations,
			EnergyDrift: res.Metrics["energy_drift"],
			MaxError:    maxErr,
		}
	}
	return out, nil
}
