package integrators

import "testing"

func benchmarkSpring(b *testing.B, kind Kind) {
	in, _, err := newSpring(kind, 1e-3)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		in.Step()
	}
}

func BenchmarkRK4(b *testing.B)    { benchmarkSpring(b, KindRK4) }
func BenchmarkRK5(b *testing.B)    { benchmarkSpring(b, KindRK5) }
func BenchmarkAdams4(b *testing.B) { benchmarkSpring(b, KindAdams4) }
func BenchmarkAdams5(b *testing.B) { benchmarkSpring(b, KindAdams5) }

type chain struct {
	k float64
}

// chainRHS couples every position to its neighbours: y = [x0..x9, v0..v9].
func chainRHS(i, n int) Func[*chain] {
	if i < n {
		return func(x float64, y []float64, c *chain) float64 { return y[n+i] }
	}
	j := i - n
	return func(x float64, y []float64, c *chain) float64 {
		f := -2 * y[j]
		if j > 0 {
			f += y[j-1]
		}
		if j < n-1 {
			f += y[j+1]
		}
		return c.k * f
	}
}

func benchmarkChain(b *testing.B, kind Kind) {
	const masses = 10
	in, err := New[*chain](kind, 2*masses)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 2*masses; i++ {
		in.SetEquation(i, chainRHS(i, masses))
		in.SetInitialValue(i, float64(i)*0.1)
	}
	in.SetUserContext(&chain{k: 0.1})
	in.SetStepSize(1e-3)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		in.Step()
	}
}

func BenchmarkRK4_Chain10(b *testing.B)    { benchmarkChain(b, KindRK4) }
func BenchmarkAdams4_Chain10(b *testing.B) { benchmarkChain(b, KindAdams4) }
