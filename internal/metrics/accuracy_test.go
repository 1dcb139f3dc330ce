package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/odestep/internal/dynamo"
	"github.com/san-kum/odestep/internal/physics"
)

func TestGlobalError(t *testing.T) {
	o := physics.NewOscillator()
	m := NewGlobalError(o)

	m.Observe(o.Exact(0.5), 0.5)
	if m.Value() != 0 {
		t.Errorf("exact state should have zero error, got %e", m.Value())
	}

	y := o.Exact(1).Clone()
	y[physics.X] += 3e-6
	y[physics.V] += 4e-6
	m.Observe(y, 1)
	if math.Abs(m.Value()-5e-6) > 1e-15 {
		t.Errorf("expected error 5e-6, got %e", m.Value())
	}

	m.Observe(o.Exact(2), 2)
	if m.Last() != 0 || m.Value() == 0 {
		t.Errorf("Value should keep the maximum, Last the latest: %e %e", m.Value(), m.Last())
	}

	m.Observe(dynamo.State{1}, 3)
	if m.Last() != 0 {
		t.Error("mismatched state lengths should be ignored")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestStability(t *testing.T) {
	m := NewStability(10)
	if m.Value() != 1 {
		t.Errorf("no samples should read as stable, got %v", m.Value())
	}

	m.Observe(dynamo.State{1, -2}, 0)
	m.Observe(dynamo.State{0, -11}, 1)
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %v", m.Value())
	}

	m.Reset()
	if m.Value() != 1 {
		t.Error("expected stable after reset")
	}
}
