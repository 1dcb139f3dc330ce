package experiment

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/odestep/internal/config"
	"github.com/san-kum/odestep/internal/dynamo"
	"github.com/san-kum/odestep/internal/integrators"
	"github.com/san-kum/odestep/internal/metrics"
	"github.com/san-kum/odestep/internal/physics"
)

// stabilityThreshold bounds |y_i| before a sample counts as unstable.
const stabilityThreshold = 1e6

// System is a configured, checked integrator together with what is known
// about the model it integrates.
type System struct {
	Model   string
	Kind    integrators.Kind
	Stepper dynamo.Stepper
	Energy  dynamo.Hamiltonian
	// Exact is nil when the model has no closed-form solution.
	Exact  dynamo.Reference
	Params map[string]float64
	// Trajectory columns.
	Position, Velocity int

	release func()
}

// Release frees the integrator. The System must not be stepped afterwards.
func (s *System) Release() {
	if s != nil && s.release != nil {
		s.release()
		s.release = nil
	}
}

type builder func(cfg *config.Config, kind integrators.Kind, log logrus.FieldLogger) (*System, error)

type Registry struct {
	models map[string]builder
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]builder)}
	r.models[config.ModelOscillator] = buildOscillator
	r.models[config.ModelChain] = buildChain
	return r
}

// Build validates cfg and returns a System that passed Check.
func (r *Registry) Build(cfg *config.Config, log logrus.FieldLogger) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fn, ok := r.models[cfg.Model]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", cfg.Model)
	}
	kind, err := cfg.Kind()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return fn(cfg, kind, log)
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListMethods() []string {
	kinds := integrators.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

// DefaultMetrics returns fresh metrics for one run of sys.
func (r *Registry) DefaultMetrics(sys *System) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewEnergy(sys.Energy),
		metrics.NewEnergyDrift(sys.Energy),
		metrics.NewStability(stabilityThreshold),
	}
	if sys.Exact != nil {
		ms = append(ms, metrics.NewGlobalError(sys.Exact))
	}
	return ms
}

func buildOscillator(cfg *config.Config, kind integrators.Kind, log logrus.FieldLogger) (*System, error) {
	o := &physics.Oscillator{
		Stiffness: cfg.Params.Stiffness,
		Mass:      cfg.Params.Mass,
		Damping:   cfg.Params.Damping,
		V0:        cfg.InitState.Velocity,
		X0:        cfg.InitState.Position,
	}
	in, err := configure(kind, o, o.Equations(), cfg.GetInitState(), cfg, log)
	if err != nil {
		return nil, err
	}

	sys := &System{
		Model:    config.ModelOscillator,
		Kind:     kind,
		Stepper:  in,
		Energy:   o,
		Params:   o.GetParams(),
		Position: physics.X,
		Velocity: physics.V,
		release:  in.Release,
	}
	if o.HasExact() {
		sys.Exact = shifted{ref: o, t0: cfg.Start}
	}
	return sys, nil
}

func buildChain(cfg *config.Config, kind integrators.Kind, log logrus.FieldLogger) (*System, error) {
	c := &physics.Chain{
		Masses:    cfg.Params.Masses,
		Mass:      cfg.Params.Mass,
		Stiffness: cfg.Params.Stiffness,
		Damping:   cfg.Params.Damping,
		Kick:      cfg.InitState.Position,
	}
	in, err := configure(kind, c, c.Equations(), cfg.GetInitState(), cfg, log)
	if err != nil {
		return nil, err
	}

	return &System{
		Model:    config.ModelChain,
		Kind:     kind,
		Stepper:  in,
		Energy:   c,
		Params:   c.GetParams(),
		Position: 0,
		Velocity: c.Masses,
		release:  in.Release,
	}, nil
}

// configure runs the whole setter sequence and the Check gate.
func configure[C any](kind integrators.Kind, ctx C, fs []integrators.Func[C], y0 []float64, cfg *config.Config, log logrus.FieldLogger) (*integrators.Integrator[C], error) {
	in, err := integrators.New[C](kind, len(fs))
	if err != nil {
		return nil, err
	}
	steps := []error{
		in.SetLogger(log),
		in.SetEquations(fs),
		in.SetUserContext(ctx),
		in.SetInitialValues(y0),
		in.SetIndependentVariable(cfg.Start),
		in.SetStepSize(cfg.Step),
	}
	for _, err := range steps {
		if err != nil {
			in.Release()
			return nil, err
		}
	}
	if err := in.Check(); err != nil {
		in.Release()
		return nil, err
	}
	return in, nil
}

// shifted moves a closed-form solution defined from t = 0 to start at t0.
type shifted struct {
	ref dynamo.Reference
	t0  float64
}

func (s shifted) Exact(t float64) dynamo.State {
	return s.ref.Exact(t - s.t0)
}
