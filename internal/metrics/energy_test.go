package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/odestep/internal/dynamo"
	"github.com/san-kum/odestep/internal/physics"
)

func TestEnergy(t *testing.T) {
	o := physics.NewOscillator()
	m := NewEnergy(o)

	m.Observe(dynamo.State{1, 0}, 0)
	if m.Value() != 0.5 {
		t.Errorf("expected energy 0.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	o := physics.NewOscillator()
	m := NewEnergyDrift(o)

	m.Observe(dynamo.State{1, 0}, 0)
	m.Observe(dynamo.State{0, math.Sqrt(0.1)}, 1)
	if m.Value() > 1e-12 {
		t.Errorf("equal energies should not drift, got %e", m.Value())
	}

	m.Observe(dynamo.State{1.1, 0}, 2)
	want := (0.5*1.21 - 0.5) / 0.5
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected drift %f, got %f", want, m.Value())
	}

	m.Observe(dynamo.State{1, 0}, 3)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Error("drift should keep its maximum")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}
