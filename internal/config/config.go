package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/odestep/internal/integrators"
)

const (
	DefaultStep      = 1e-3
	DefaultUntil     = 20.0
	DefaultStiffness = 10.0
	DefaultMass      = 1.0
	DefaultVelocity  = 1.0
	DefaultMasses    = 3
)

const (
	ModelOscillator = "oscillator"
	ModelChain      = "chain"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Model       string          `yaml:"model"`
	Method      string          `yaml:"method"`
	Step        float64         `yaml:"step"`
	Start       float64         `yaml:"start"`
	Until       float64         `yaml:"until"`
	SampleEvery int             `yaml:"sample_every"`
	InitState   InitStateConfig `yaml:"init_state"`
	Params      ParamsConfig    `yaml:"params"`
	Output      string          `yaml:"output,omitempty"`
	LogLevel    string          `yaml:"log_level,omitempty"`
}

// InitStateConfig is the oscillator's state at Start. For the chain,
// Position is the displacement of the first mass.
type InitStateConfig struct {
	Velocity float64 `yaml:"velocity"`
	Position float64 `yaml:"position"`
}

type ParamsConfig struct {
	Stiffness float64 `yaml:"stiffness"`
	Mass      float64 `yaml:"mass"`
	Damping   float64 `yaml:"damping"`
	Masses    int     `yaml:"masses,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       ModelOscillator,
		Method:      integrators.KindAdams4.String(),
		Step:        DefaultStep,
		Until:       DefaultUntil,
		SampleEvery: 1,
		InitState: InitStateConfig{
			Velocity: DefaultVelocity,
		},
		Params: ParamsConfig{
			Stiffness: DefaultStiffness,
			Mass:      DefaultMass,
			Masses:    DefaultMasses,
		},
		LogLevel: "info",
	}
}

// Load reads a yaml file over DefaultConfig, so omitted keys keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Kind resolves Method.
func (c *Config) Kind() (integrators.Kind, error) {
	return integrators.ParseKind(c.Method)
}

// Validate reports the first field that cannot describe a run.
func (c *Config) Validate() error {
	if c.Model != ModelOscillator && c.Model != ModelChain {
		return fmt.Errorf("%w: unknown model %q", ErrInvalidConfig, c.Model)
	}
	if _, err := c.Kind(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Step == 0 || !finite(c.Step) {
		return fmt.Errorf("%w: step must be finite and non-zero, got %g", ErrInvalidConfig, c.Step)
	}
	if !finite(c.Start) || !finite(c.Until) {
		return fmt.Errorf("%w: start and until must be finite", ErrInvalidConfig)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", ErrInvalidConfig, c.SampleEvery)
	}
	if c.Params.Mass <= 0 {
		return fmt.Errorf("%w: mass must be positive, got %g", ErrInvalidConfig, c.Params.Mass)
	}
	if c.Model == ModelChain && c.Params.Masses < 1 {
		return fmt.Errorf("%w: chain needs at least one mass, got %d", ErrInvalidConfig, c.Params.Masses)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// GetInitState returns the state vector at Start in the model's layout.
func (c *Config) GetInitState() []float64 {
	switch c.Model {
	case ModelChain:
		y := make([]float64, 2*c.Params.Masses)
		if c.Params.Masses > 0 {
			y[0] = c.InitState.Position
			y[c.Params.Masses] = c.InitState.Velocity
		}
		return y
	default:
		return []float64{c.InitState.Velocity, c.InitState.Position}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
